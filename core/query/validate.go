// core/query/validate.go
package query

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidSequence is returned for chains with characters outside A-Z.
var ErrInvalidSequence = errors.New("invalid sequence")

// Normalize removes spaces and quotes and uppercases residues.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == '\'' || r == '"' {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Validate checks that every chain is a non-empty run of residue letters.
// Jobs with a supplied alignment are checked by its parser instead.
func (q Query) Validate() error {
	if q.A3M != nil {
		return nil
	}
	if len(q.Chains) == 0 {
		return fmt.Errorf("%w: no chains", ErrInvalidSequence)
	}
	for c, seq := range q.Chains {
		if seq == "" {
			return fmt.Errorf("%w: chain %d is empty", ErrInvalidSequence, c+1)
		}
		for i, r := range seq {
			if r < 'A' || r > 'Z' {
				return fmt.Errorf("%w: chain %d has %q at %d", ErrInvalidSequence, c+1, r, i+1)
			}
		}
	}
	return nil
}
