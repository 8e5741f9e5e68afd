// core/template/template.go
package template

import (
	"context"
	"fmt"
	"strings"

	"foldrun-core/residue"
	"foldrun-core/tensor"
)

// Feature names shared by Mock and real featurizers.
const (
	AllAtomPositions = "template_all_atom_positions"
	AllAtomMasks     = "template_all_atom_masks"
	Sequence         = "template_sequence"
	Aatype           = "template_aatype"
	ConfidenceScores = "template_confidence_scores"
	DomainNames      = "template_domain_names"
	ReleaseDate      = "template_release_date"
)

// Keys lists every template feature name.
var Keys = []string{
	AllAtomPositions, AllAtomMasks, Sequence, Aatype,
	ConfidenceScores, DomainNames, ReleaseDate,
}

// Depth of the template_aatype one-hot (HHblits alphabet).
const AatypeDepth = 22

// Features is the template part of a feature dict.
type Features = tensor.Dict

// Featurizer finds and featurizes structural templates for one chain.
// templatePath is the directory the alignment search produced.
type Featurizer interface {
	Featurize(ctx context.Context, a3m, templatePath, seq string) (Features, error)
}

// Mock returns n stub templates covering length residues: no coordinates,
// an all-alanine sequence and full confidence.
func Mock(length, n int) Features {
	aatype := &tensor.Tensor{
		Shape: []int{length, AatypeDepth},
		Data:  residue.OneHot(strings.Repeat("A", length), residue.HHblitsID, AatypeDepth),
	}
	none := make(tensor.Strings, n)
	for i := range none {
		none[i] = "none"
	}
	return Features{
		AllAtomPositions: tensor.New(n, length, residue.AtomTypeNum, 3),
		AllAtomMasks:     tensor.New(n, length, residue.AtomTypeNum),
		Sequence:         none,
		Aatype:           aatype.Tile(n),
		ConfidenceScores: tensor.Full(1, n, length),
		DomainNames:      append(tensor.Strings(nil), none...),
		ReleaseDate:      append(tensor.Strings(nil), none...),
	}
}

// Validate checks that f carries every template key with a leading
// template axis of equal size and a residue axis of length.
func Validate(f Features, length int) error {
	n := -1
	for _, k := range Keys {
		v, ok := f[k]
		if !ok {
			return fmt.Errorf("template features: missing %q", k)
		}
		if n < 0 {
			n = v.Rows()
		} else if v.Rows() != n {
			return fmt.Errorf("template features: %q has %d templates, want %d", k, v.Rows(), n)
		}
		if t, ok := v.(*tensor.Tensor); ok && (len(t.Shape) < 2 || t.Shape[1] != length) {
			return fmt.Errorf("template features: %q shape %v does not cover %d residues", k, t.Shape, length)
		}
	}
	return nil
}
