// core/protein/protein.go
package protein

import (
	"errors"
	"fmt"

	"foldrun-core/residue"
	"foldrun-core/tensor"
)

// ErrInvalid is returned for structures that cannot be rendered.
var ErrInvalid = errors.New("invalid protein")

// Protein is a predicted structure in atom37 layout.
type Protein struct {
	Aatype []int
	// ResidueIndex is 1-based.
	ResidueIndex []int
	// ChainIndex is 0-based into residue.ChainIDs.
	ChainIndex []int
	Positions  *tensor.Tensor // (L, 37, 3)
	AtomMask   *tensor.Tensor // (L, 37)
	BFactors   *tensor.Tensor // (L, 37)
}

// Prediction is the structure part of a model result.
type Prediction struct {
	Positions *tensor.Tensor
	AtomMask  *tensor.Tensor
	PLDDT     []float64
}

// Len is the residue count.
func (p *Protein) Len() int { return len(p.Aatype) }

// FromFeatures combines the input features of a job with a prediction.
// Per-residue arrays of the prediction may be longer than the sequence
// (padded batches); they are cut to the feature length. B-factors are the
// residue pLDDT on every present atom.
func FromFeatures(f tensor.Dict, pred Prediction) (*Protein, error) {
	at := f.Tensor("aatype")
	ri := f.Tensor("residue_index")
	if at == nil || ri == nil {
		return nil, fmt.Errorf("%w: features need aatype and residue_index", ErrInvalid)
	}
	var aatype []int
	if len(at.Shape) == 2 {
		aatype = at.Argmax()
	} else {
		aatype = at.Ints()
	}
	n := len(aatype)
	if len(ri.Data) < n {
		return nil, fmt.Errorf("%w: %d residue indices for %d residues", ErrInvalid, len(ri.Data), n)
	}
	if pred.Positions == nil || pred.AtomMask == nil || pred.Positions.Rows() < n || pred.AtomMask.Rows() < n {
		return nil, fmt.Errorf("%w: prediction covers fewer than %d residues", ErrInvalid, n)
	}

	p := &Protein{
		Aatype:       aatype,
		ResidueIndex: make([]int, n),
		ChainIndex:   make([]int, n),
		Positions:    pred.Positions.Crop(0, n),
		AtomMask:     pred.AtomMask.Crop(0, n),
	}
	for i := 0; i < n; i++ {
		p.ResidueIndex[i] = int(ri.Data[i]) + 1
	}
	if asym := f.Tensor("asym_id"); asym != nil && len(asym.Data) >= n {
		ids := asym.Ints()[:n]
		low := ids[0]
		for _, id := range ids {
			low = min(low, id)
		}
		for i, id := range ids {
			p.ChainIndex[i] = id - low
		}
	}
	p.BFactors = tensor.New(n, residue.AtomTypeNum)
	for i := 0; i < n && i < len(pred.PLDDT); i++ {
		for a := 0; a < residue.AtomTypeNum; a++ {
			p.BFactors.Data[i*residue.AtomTypeNum+a] = float32(pred.PLDDT[i]) * p.AtomMask.Data[i*residue.AtomTypeNum+a]
		}
	}
	return p, nil
}

// RestartNumbering numbers residues from 1 within each chain, where a
// chain starts wherever the index jumps by more than one.
func (p *Protein) RestartNumbering() {
	p.ResidueIndex = RestartNumbering(p.ResidueIndex)
}

// RestartNumbering returns index renumbered from 1 after every jump.
func RestartNumbering(index []int) []int {
	out := make([]int, len(index))
	cur := 1
	for i := range index {
		if i > 0 && index[i]-index[i-1] > 1 {
			cur = 1
		}
		out[i] = cur
		cur++
	}
	return out
}
