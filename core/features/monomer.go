// core/features/monomer.go
package features

import (
	"fmt"
	"regexp"

	"foldrun-core/msa"
	"foldrun-core/residue"
	"foldrun-core/template"
	"foldrun-core/tensor"
)

const chainBreakOffset = 200

// uniprotID matches headers like "tr|A0A146SKV9|A0A146SKV9_FUNHE" and
// captures the species mnemonic.
var uniprotID = regexp.MustCompile(`^(?:tr|sp)\|[A-Z0-9]{6,10}(?:_\d+)?\|[A-Z0-9]{1,10}_([A-Z0-9]{1,5})`)

// SequenceFeatures returns the per-residue features of one sequence.
func SequenceFeatures(seq, description string) Dict {
	n := len(seq)
	index := tensor.New(n)
	for i := range index.Data {
		index.Data[i] = float32(i)
	}
	return Dict{
		Aatype: &Tensor{
			Shape: []int{n, residue.RestypeNum + 1},
			Data:  residue.OneHot(seq, residue.Order, residue.RestypeNum+1),
		},
		"between_segment_residues": tensor.New(n),
		"domain_name":              Strings{description},
		ResidueIndex:               index,
		SeqLength:                  tensor.Full(float32(n), n),
		Sequence:                   Strings{seq},
	}
}

// MSAFeatures encodes alignments as HHblits indices plus deletion counts.
// Rows repeated across or within alignments are kept once.
func MSAFeatures(alignments ...msa.Alignment) (Dict, error) {
	if len(alignments) == 0 {
		return nil, ErrEmptyMSA
	}
	seen := map[string]bool{}
	var rows [][]int
	var dels [][]int
	var species Strings
	for i, a := range alignments {
		if a.Depth() == 0 {
			return nil, fmt.Errorf("alignment %d: %w", i, ErrEmptyMSA)
		}
		for j, row := range a.Rows {
			if seen[row] {
				continue
			}
			seen[row] = true
			ids := make([]int, len(row))
			for k := 0; k < len(row); k++ {
				ids[k] = residue.HHblitsID(row[k])
			}
			rows = append(rows, ids)
			dels = append(dels, a.Deletions[j])
			species = append(species, speciesOf(a.Descriptions[j]))
		}
	}
	width := len(alignments[0].Rows[0])
	msaT := tensor.New(len(rows), width)
	delT := tensor.New(len(rows), width)
	for r := range rows {
		if len(rows[r]) != width || len(dels[r]) != width {
			return nil, fmt.Errorf("%w: row %d has %d columns, query has %d", ErrRowLength, r, len(rows[r]), width)
		}
		for c := 0; c < width; c++ {
			msaT.Data[r*width+c] = float32(rows[r][c])
			delT.Data[r*width+c] = float32(dels[r][c])
		}
	}
	return Dict{
		MSA:                       msaT,
		"deletion_matrix_int":     delT,
		"num_alignments":          tensor.Full(float32(len(rows)), width),
		"msa_species_identifiers": species,
	}, nil
}

func speciesOf(description string) string {
	if m := uniprotID.FindStringSubmatch(description); m != nil {
		return m[1]
	}
	return ""
}

// Monomer returns sequence, alignment and template features of one chain.
func Monomer(seq, a3m string, tmpl template.Features) (Dict, error) {
	msaFeats, err := MSAFeatures(msa.ParseA3M(a3m))
	if err != nil {
		return nil, err
	}
	if w := msaFeats.Tensor(MSA).Shape[1]; w != len(seq) {
		return nil, fmt.Errorf("%w: alignment has %d columns, sequence has %d residues", ErrRowLength, w, len(seq))
	}
	out := SequenceFeatures(seq, "none")
	out.Merge(msaFeats)
	out.Merge(tmpl)
	return out, nil
}

// ChainBreak shifts the residue index of every chain after the first by a
// fixed offset per preceding boundary.
func ChainBreak(index *Tensor, lengths []int) *Tensor {
	out := index.Clone()
	start := 0
	for _, l := range lengths[:max(len(lengths)-1, 0)] {
		start += l
		for i := start; i < len(out.Data); i++ {
			out.Data[i] += chainBreakOffset
		}
	}
	return out
}

// AsymIDs labels each residue with its 0-based chain ordinal.
func AsymIDs(lengths []int) *Tensor {
	var ids []int
	for n, l := range lengths {
		for i := 0; i < l; i++ {
			ids = append(ids, n)
		}
	}
	return tensor.FromInts(ids)
}
