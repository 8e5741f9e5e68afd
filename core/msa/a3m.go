// core/msa/a3m.go
package msa

import (
	"strings"

	"foldrun-core/fasta"
)

// Alignment is a parsed A3M block: insertion-free rows plus, per row, the
// number of deleted (lowercase) residues preceding each aligned column.
type Alignment struct {
	Rows         []string
	Descriptions []string
	Deletions    [][]int
}

// Depth is the number of rows.
func (a Alignment) Depth() int { return len(a.Rows) }

// ParseA3M parses an A3M block.
func ParseA3M(text string) Alignment {
	recs := fasta.Parse(text)
	a := Alignment{
		Rows:         make([]string, 0, len(recs)),
		Descriptions: make([]string, 0, len(recs)),
		Deletions:    make([][]int, 0, len(recs)),
	}
	for _, r := range recs {
		var row strings.Builder
		del := make([]int, 0, len(r.Seq))
		count := 0
		for i := 0; i < len(r.Seq); i++ {
			c := r.Seq[i]
			if c >= 'a' && c <= 'z' {
				count++
				continue
			}
			del = append(del, count)
			count = 0
			row.WriteByte(c)
		}
		a.Rows = append(a.Rows, row.String())
		a.Descriptions = append(a.Descriptions, r.Description)
		a.Deletions = append(a.Deletions, del)
	}
	return a
}
