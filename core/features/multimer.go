// core/features/multimer.go
package features

import (
	"fmt"
	"sort"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"foldrun-core/residue"
	"foldrun-core/template"
	"foldrun-core/tensor"
)

const (
	allSeq = "_all_seq"

	// MSACropSize bounds the rows kept per chain before merging.
	MSACropSize = 2048
	// MaxTemplates is the template count every chain is cropped/padded to.
	MaxTemplates = 4
	// MinMSARows is the row count the merged alignment is padded to.
	MinMSARows = 512

	msaGapID = 21
)

var chainLabels = residue.ChainIDs

var (
	msaFeatures      = nameSet("msa", "msa_mask", "deletion_matrix", "deletion_matrix_int")
	templateFeatures = nameSet("template_aatype", "template_all_atom_positions", "template_all_atom_mask")
	chainFeatures    = nameSet("num_alignments", "seq_length")
	seqFeatures      = nameSet(
		"residue_index", "aatype", "all_atom_positions", "all_atom_mask", "seq_mask",
		"between_segment_residues", "has_alternate_locations", "has_hetatoms",
		"asym_id", "entity_id", "sym_id", "entity_mask", "deletion_mean",
		"prediction_atom_mask", "literature_positions", "atom_indices_to_group_indices",
		"rigid_group_default_frame",
	)
	msaPadValues = map[string]float32{
		"msa_all_seq": 21, "msa_mask_all_seq": 1,
		"deletion_matrix_all_seq": 0, "deletion_matrix_int_all_seq": 0,
		"msa": 21, "msa_mask": 1, "deletion_matrix": 0, "deletion_matrix_int": 0,
	}
	// RequiredMultimer is the feature set left after final processing.
	RequiredMultimer = []string{
		"aatype", "all_atom_mask", "all_atom_positions", "assembly_num_chains",
		"asym_id", "bert_mask", "cluster_bias_mask", "deletion_matrix",
		"deletion_mean", "entity_id", "entity_mask", "msa", "msa_mask",
		"num_alignments", "num_templates", "residue_index", "seq_length",
		"seq_mask", "sym_id", "template_aatype", "template_all_atom_mask",
		"template_all_atom_positions",
	}
)

func nameSet(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func baseName(name string) string {
	base, _, _ := strings.Cut(name, allSeq)
	return base
}

func multimer(in Input) (Dict, error) {
	labels, chains, err := chainInputs(in)
	if err != nil {
		return nil, err
	}
	for i := range chains {
		chains[i] = convertChain(chains[i], labels[i])
	}
	addAssembly(chains)
	for _, c := range chains {
		processUnmerged(c, len(chains))
	}
	pairRows := !homomerOrMonomer(chains)
	for _, c := range chains {
		padAllSeq(c)
	}
	for _, c := range chains {
		cropChain(c, MSACropSize, pairRows, MaxTemplates)
	}
	merged, err := mergeChains(chains, pairRows, MaxTemplates)
	if err != nil {
		return nil, err
	}
	final, err := processFinal(merged)
	if err != nil {
		return nil, err
	}
	return padMSA(final, MinMSARows), nil
}

// convertChain drops leading dimensions the multimer model does not use and
// turns one-hot residue types into indices.
func convertChain(f Dict, label string) Dict {
	out := Dict{"auth_chain_id": Strings{label}}
	for name, v := range f {
		switch name {
		case "sequence", "domain_name":
			s := v.(Strings)
			out[name] = s[:min(1, len(s))]
		case "num_alignments", "seq_length":
			t := v.(*Tensor)
			first := float32(0)
			if len(t.Data) > 0 {
				first = t.Data[0]
			}
			out[name] = tensor.Scalar(first)
		case "aatype":
			out[name] = tensor.FromInts(v.(*Tensor).Argmax())
		case template.Aatype:
			t := v.(*Tensor)
			ids := t.Argmax()
			for i, id := range ids {
				ids[i] = residue.HHblitsToModel(id)
			}
			r, _ := tensor.FromInts(ids).Reshape(t.Shape[:len(t.Shape)-1]...)
			out[name] = r
		case template.AllAtomMasks:
			out["template_all_atom_mask"] = v
		default:
			out[name] = v
		}
	}
	return out
}

// addAssembly assigns 1-based entity ids by distinct sequence, symmetry ids
// within an entity and chain ids in order.
func addAssembly(chains []Dict) {
	entities := linkedhashmap.New()
	for _, c := range chains {
		seq := c.Strings("sequence")[0]
		if _, ok := entities.Get(seq); !ok {
			entities.Put(seq, entities.Size()+1)
		}
	}
	symCount := map[int]int{}
	for i, c := range chains {
		e, _ := entities.Get(c.Strings("sequence")[0])
		entity := e.(int)
		symCount[entity]++
		n := int(c.Tensor("seq_length").Data[0])
		c["asym_id"] = tensor.Full(float32(i+1), n)
		c["sym_id"] = tensor.Full(float32(symCount[entity]), n)
		c["entity_id"] = tensor.Full(float32(entity), n)
	}
}

func processUnmerged(c Dict, numChains int) {
	c["deletion_matrix"] = c["deletion_matrix_int"]
	delete(c, "deletion_matrix_int")
	if v, ok := c["deletion_matrix_int"+allSeq]; ok {
		c["deletion_matrix"+allSeq] = v
		delete(c, "deletion_matrix_int"+allSeq)
	}
	c["deletion_mean"] = c.Tensor("deletion_matrix").MeanRows()

	aatype := c.Tensor("aatype").Ints()
	mask := tensor.New(len(aatype), residue.AtomTypeNum)
	for i, a := range aatype {
		copy(mask.Data[i*residue.AtomTypeNum:], residue.StandardAtomMask(a))
	}
	c["all_atom_mask"] = mask
	c["all_atom_positions"] = tensor.New(len(aatype), residue.AtomTypeNum, 3)
	c["assembly_num_chains"] = tensor.Scalar(float32(numChains))

	entity := c.Tensor("entity_id")
	c["entity_mask"] = entity.Map(func(v float32) float32 {
		if v != 0 {
			return 1
		}
		return 0
	})
}

func homomerOrMonomer(chains []Dict) bool {
	ids := map[float32]bool{}
	for _, c := range chains {
		ids[c.Tensor("entity_id").Data[0]] = true
	}
	return len(ids) == 1
}

// padAllSeq appends one padding row to the paired alignment features.
func padAllSeq(c Dict) {
	msaAll := c.Tensor("msa" + allSeq)
	if msaAll == nil {
		return
	}
	c["num_alignments"+allSeq] = tensor.Scalar(float32(msaAll.Rows()))
	for name, v := range c {
		if !strings.HasSuffix(name, allSeq) {
			continue
		}
		switch t := v.(type) {
		case *Tensor:
			if pad, ok := msaPadValues[name]; ok {
				c[name] = t.Pad(0, t.Rows()+1, pad)
			}
		case Strings:
			if name == "msa_species_identifiers"+allSeq {
				c[name] = append(append(Strings(nil), t...), "")
			}
		}
	}
}

func nonGappedRows(t *Tensor) int {
	if len(t.Shape) != 2 {
		return 0
	}
	n := 0
	for r := 0; r < t.Shape[0]; r++ {
		for _, v := range t.Data[r*t.Shape[1] : (r+1)*t.Shape[1]] {
			if v != msaGapID {
				n++
				break
			}
		}
	}
	return n
}

// cropChain bounds the alignment rows and templates of one chain. Paired
// rows that carry residues reduce the room left for unpaired rows.
func cropChain(c Dict, cropSize int, pairRows bool, maxTemplates int) {
	msaSize := int(c.Tensor("num_alignments").Data[0])
	cropAll := 0
	if pairRows {
		sizeAll := int(c.Tensor("num_alignments" + allSeq).Data[0])
		cropAll = min(sizeAll, cropSize/2)
		pairs := min(nonGappedRows(c.Tensor("msa"+allSeq).Crop(0, cropAll)), cropAll)
		cropSize = min(msaSize, max(cropSize-pairs, 0))
	} else {
		cropSize = min(msaSize, cropSize)
	}

	templates := -1
	if t := c.Tensor(template.Aatype); t != nil && maxTemplates > 0 {
		templates = min(t.Rows(), maxTemplates)
	}
	for name, v := range c {
		t, ok := v.(*Tensor)
		if !ok {
			continue
		}
		base := baseName(name)
		switch {
		case templateFeatures[base] && templates >= 0:
			c[name] = t.Crop(0, templates)
		case msaFeatures[base]:
			if strings.Contains(name, allSeq) && pairRows {
				c[name] = t.Crop(0, cropAll)
			} else {
				c[name] = t.Crop(0, cropSize)
			}
		}
	}
	c["num_alignments"] = tensor.Scalar(float32(cropSize))
	if templates >= 0 {
		c["num_templates"] = tensor.Scalar(float32(templates))
	}
	if pairRows {
		c["num_alignments"+allSeq] = tensor.Scalar(float32(cropAll))
	}
}

func mergeChains(chains []Dict, pairRows bool, maxTemplates int) (Dict, error) {
	for _, c := range chains {
		for name := range templateFeatures {
			if t := c.Tensor(name); t != nil {
				c[name] = t.Pad(0, maxTemplates, 0)
			}
		}
	}
	groups, err := mergeHomomers(chains)
	if err != nil {
		return nil, err
	}
	out, err := mergeFeatures(groups, false)
	if err != nil {
		return nil, err
	}
	if pairRows {
		for name := range msaFeatures {
			feat := out.Tensor(name)
			if feat == nil {
				continue
			}
			all := out.Tensor(name + allSeq)
			if all == nil {
				return nil, fmt.Errorf("%w: %s", ErrMissingFeature, name+allSeq)
			}
			if out[name], err = tensor.Concat(0, all, feat); err != nil {
				return nil, fmt.Errorf("merge %s: %w", name, err)
			}
		}
	}
	return correctMerged(out, groups, pairRows)
}

// mergeHomomers merges the chains of each entity into one dense chain.
func mergeHomomers(chains []Dict) ([]Dict, error) {
	byEntity := map[float32][]Dict{}
	var ids []float32
	for _, c := range chains {
		id := c.Tensor("entity_id").Data[0]
		if _, ok := byEntity[id]; !ok {
			ids = append(ids, id)
		}
		byEntity[id] = append(byEntity[id], c)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]Dict, 0, len(ids))
	for _, id := range ids {
		m, err := mergeFeatures(byEntity[id], true)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func collect(chains []Dict, name string) ([]*Tensor, error) {
	ts := make([]*Tensor, len(chains))
	for i, c := range chains {
		if ts[i] = c.Tensor(name); ts[i] == nil {
			return nil, fmt.Errorf("%w: %s in chain %d", ErrMissingFeature, name, i)
		}
	}
	return ts, nil
}

// mergeFeatures joins chains: alignment rows side by side (paired) or
// block-diagonally (unpaired), residue features end to end, templates along
// the residue axis, and per-chain counts summed.
func mergeFeatures(chains []Dict, pairRows bool) (Dict, error) {
	out := Dict{}
	for _, name := range chains[0].Keys() {
		base := baseName(name)
		var err error
		switch {
		case msaFeatures[base]:
			var ts []*Tensor
			if ts, err = collect(chains, name); err != nil {
				return nil, err
			}
			if pairRows || strings.Contains(name, allSeq) {
				out[name], err = tensor.Concat(1, ts...)
			} else {
				out[name], err = tensor.BlockDiagonal(msaPadValues[name], ts...)
			}
		case seqFeatures[base]:
			var ts []*Tensor
			if ts, err = collect(chains, name); err != nil {
				return nil, err
			}
			out[name], err = tensor.Concat(0, ts...)
		case templateFeatures[base]:
			var ts []*Tensor
			if ts, err = collect(chains, name); err != nil {
				return nil, err
			}
			out[name], err = tensor.Concat(1, ts...)
		case chainFeatures[base]:
			var ts []*Tensor
			if ts, err = collect(chains, name); err != nil {
				return nil, err
			}
			var sum float32
			for _, t := range ts {
				sum += t.Data[0]
			}
			out[name] = tensor.Scalar(sum)
		default:
			out[name] = chains[0][name]
		}
		if err != nil {
			return nil, fmt.Errorf("merge %s: %w", name, err)
		}
	}
	return out, nil
}

// correctMerged fixes counts after merging and builds the cluster-bias and
// bert masks. The first row of every chain block is its query.
func correctMerged(out Dict, groups []Dict, pairRows bool) (Dict, error) {
	msaT := out.Tensor("msa")
	if msaT == nil {
		return nil, fmt.Errorf("%w: msa", ErrMissingFeature)
	}
	out["seq_length"] = tensor.Scalar(float32(out.Tensor("aatype").Rows()))
	out["num_alignments"] = tensor.Scalar(float32(msaT.Rows()))

	ones := make([]*Tensor, len(groups))
	for i, g := range groups {
		ones[i] = tensor.Full(1, g.Tensor("msa").Shape...)
	}
	diag, err := tensor.BlockDiagonal(0, ones...)
	if err != nil {
		return nil, err
	}
	if !pairRows {
		var bias []*Tensor
		for _, g := range groups {
			m := tensor.New(g.Tensor("msa").Rows())
			if len(m.Data) > 0 {
				m.Data[0] = 1
			}
			bias = append(bias, m)
		}
		if out["cluster_bias_mask"], err = tensor.Concat(0, bias...); err != nil {
			return nil, err
		}
		out["bert_mask"] = diag
		return out, nil
	}

	bias := tensor.New(msaT.Rows())
	if len(bias.Data) > 0 {
		bias.Data[0] = 1
	}
	out["cluster_bias_mask"] = bias
	onesAll := make([]*Tensor, len(groups))
	for i, g := range groups {
		all := g.Tensor("msa" + allSeq)
		if all == nil {
			return nil, fmt.Errorf("%w: msa%s", ErrMissingFeature, allSeq)
		}
		onesAll[i] = tensor.Full(1, all.Shape...)
	}
	top, err := tensor.Concat(1, onesAll...)
	if err != nil {
		return nil, err
	}
	if out["bert_mask"], err = tensor.Concat(0, top, diag); err != nil {
		return nil, err
	}
	return out, nil
}

// processFinal remaps alignment residues to model order, adds sequence and
// alignment masks and keeps only the model's features.
func processFinal(in Dict) (Dict, error) {
	msaT := in.Tensor("msa").Map(func(v float32) float32 {
		return float32(residue.HHblitsToModel(int(v)))
	})
	in["msa"] = msaT

	entity := in.Tensor("entity_id")
	seqMask := entity.Map(func(v float32) float32 {
		if v > 0 {
			return 1
		}
		return 0
	})
	in["seq_mask"] = seqMask

	msaMask := tensor.New(msaT.Shape...)
	width := msaT.Shape[1]
	for r := 0; r < msaT.Shape[0]; r++ {
		copy(msaMask.Data[r*width:(r+1)*width], seqMask.Data)
	}
	in["msa_mask"] = msaMask

	out := Dict{}
	for _, name := range RequiredMultimer {
		v, ok := in[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingFeature, name)
		}
		out[name] = v
	}
	return out, nil
}

// padMSA pads the alignment features with zero rows up to minRows.
func padMSA(in Dict, minRows int) Dict {
	rows := in.Tensor("msa").Rows()
	if rows >= minRows {
		return in
	}
	for _, name := range []string{"msa", "deletion_matrix", "bert_mask", "msa_mask", "cluster_bias_mask"} {
		in[name] = in.Tensor(name).Pad(0, minRows, 0)
	}
	return in
}
