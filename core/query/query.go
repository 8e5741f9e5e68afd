// core/query/query.go
package query

import (
	"errors"
	"math/rand"
	"sort"
	"strings"

	"foldrun-core/msa"
)

var (
	// ErrEmptyInput is returned for inputs that yield no sequence.
	ErrEmptyInput = errors.New("input has no sequences")
	// ErrUnknownFormat is returned for unsupported input file types.
	ErrUnknownFormat = errors.New("unknown input format")
)

// Query is one prediction job.
type Query struct {
	JobName string
	// Chains holds one sequence per chain. For an alignment input it holds
	// the alignment's first row.
	Chains []string
	// A3M is the supplied alignment text, nil when the job needs a search.
	A3M []string
}

// TotalLength is the residue count over all chains.
func (q Query) TotalLength() int {
	n := 0
	for _, c := range q.Chains {
		n += len(c)
	}
	return n
}

// IsComplex reports whether the job has more than one chain, either listed
// or declared by a serialized alignment header.
func (q Query) IsComplex() bool {
	if len(q.Chains) > 1 {
		return true
	}
	if len(q.A3M) == 0 || !msa.HasHeader(q.A3M[0]) {
		return false
	}
	first, _, _ := strings.Cut(q.A3M[0], "\n")
	lens, cards, err := msa.ParseHeader(strings.TrimSuffix(first, "\r"))
	if err != nil {
		return false
	}
	return !(len(lens) == 1 && cards[0] == 1)
}

// AnyComplex reports whether any job is a complex.
func AnyComplex(qs []Query) bool {
	for _, q := range qs {
		if q.IsComplex() {
			return true
		}
	}
	return false
}

// SortBy orders jobs before running.
type SortBy string

const (
	SortLength SortBy = "length"
	SortRandom SortBy = "random"
	SortNone   SortBy = "none"
)

// Sort orders qs in place. Length order is stable on total residues.
func Sort(qs []Query, by SortBy, seed int64) {
	switch by {
	case SortLength:
		sort.SliceStable(qs, func(i, j int) bool { return qs[i].TotalLength() < qs[j].TotalLength() })
	case SortRandom:
		r := rand.New(rand.NewSource(seed))
		r.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
	}
}

// SafeFilename keeps letters, digits and "_.-"; everything else becomes "_".
func SafeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '_', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
