// core/fasta/parse.go
package fasta

import "strings"

// Record is one FASTA/A3M entry. Description is the header without '>'.
type Record struct {
	Description string
	Seq         string
}

// Parse splits FASTA text into records. Lines starting with '#' and blank
// lines are ignored; sequence lines are trimmed and concatenated. Sequence
// lines seen before any header are dropped.
func Parse(text string) []Record {
	var out []Record
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "", strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, ">"):
			out = append(out, Record{Description: line[1:]})
		case len(out) > 0:
			out[len(out)-1].Seq += line
		}
	}
	return out
}

// Sequences returns the sequences and descriptions of Parse(text) as two
// parallel slices.
func Sequences(text string) (seqs, descs []string) {
	recs := Parse(text)
	seqs = make([]string, len(recs))
	descs = make([]string, len(recs))
	for i, r := range recs {
		seqs[i] = r.Seq
		descs[i] = r.Description
	}
	return seqs, descs
}
