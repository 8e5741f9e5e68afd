// core/msa/pair.go
package msa

import (
	"fmt"
	"strings"
)

// PairRows concatenates row i of every chain's paired block into one row.
// Each chain's residues are repeated by its cardinality; headers of the
// second and later chains are appended with their '>' turned into a tab.
// All blocks must have the same number of lines.
func PairRows(blocks []string, set SequenceSet) (string, error) {
	if len(blocks) < len(set.Seqs) {
		return "", fmt.Errorf("%w: %d paired blocks for %d sequences", ErrPairedRowMismatch, len(blocks), len(set.Seqs))
	}
	split := make([][]string, len(set.Seqs))
	for n := range set.Seqs {
		split[n] = splitLines(blocks[n])
		if len(split[n]) != len(split[0]) {
			return "", fmt.Errorf("%w: chain 1 has %d lines, chain %d has %d",
				ErrPairedRowMismatch, len(split[0]), n+1, len(split[n]))
		}
	}
	rows := make([]strings.Builder, len(split[0]))
	for n := range set.Seqs {
		for i, line := range split[n] {
			if strings.HasPrefix(line, ">") {
				if n != 0 {
					line = strings.Replace(line, ">", "\t", 1)
				}
				rows[i].WriteString(line)
				continue
			}
			rows[i].WriteString(strings.Repeat(line, set.Cardinality[n]))
		}
	}
	out := make([]string, len(rows))
	for i := range rows {
		out[i] = rows[i].String()
	}
	return strings.Join(out, "\n"), nil
}

// PadRows widens every unpaired row to the full complex: the row sits in
// its chain copy's slot and all other slots are filled with gaps.
func PadRows(blocks []string, set SequenceSet) string {
	var blanks []string
	for n, seq := range set.Seqs {
		for j := 0; j < set.Cardinality[n]; j++ {
			blanks = append(blanks, strings.Repeat("-", len(seq)))
		}
	}
	var out []string
	pos := 0
	for n := range set.Seqs {
		var lines []string
		if n < len(blocks) {
			lines = splitLines(blocks[n])
		}
		for j := 0; j < set.Cardinality[n]; j++ {
			for _, line := range lines {
				if line == "" {
					continue
				}
				if strings.HasPrefix(line, ">") {
					out = append(out, line)
					continue
				}
				var b strings.Builder
				for k, blank := range blanks {
					if k == pos {
						b.WriteString(line)
					} else {
						b.WriteString(blank)
					}
				}
				out = append(out, b.String())
			}
			pos++
		}
	}
	return strings.Join(out, "\n")
}

// Combine builds the single alignment used by monomer-style features:
// paired rows first, then padded unpaired rows. A nil slice means absent.
func Combine(set SequenceSet, paired, unpaired []string) (string, error) {
	switch {
	case paired == nil && unpaired != nil:
		return PadRows(unpaired, set), nil
	case paired != nil && unpaired != nil:
		p, err := PairRows(paired, set)
		if err != nil {
			return "", err
		}
		return p + "\n" + PadRows(unpaired, set), nil
	case paired != nil:
		return PairRows(paired, set)
	default:
		return "", ErrInvalidPairing
	}
}
