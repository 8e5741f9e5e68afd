// core/features/build.go
package features

import (
	"fmt"
	"strings"

	"foldrun-core/msa"
	"foldrun-core/template"
)

// Input is everything a job contributes to its features.
type Input struct {
	Set msa.SequenceSet
	// Unpaired and Paired are indexed by unique sequence; nil means absent.
	Unpaired []string
	Paired   []string
	// Templates is indexed by unique sequence; nil entries get a stub.
	Templates []template.Features
}

func (in Input) templateFor(i int) template.Features {
	if i < len(in.Templates) && in.Templates[i] != nil {
		return in.Templates[i]
	}
	return template.Mock(len(in.Set.Seqs[i]), 1)
}

// Build assembles the feature dict of a job.
func Build(in Input, mode Mode) (Dict, error) {
	if len(in.Set.Seqs) == 0 {
		return nil, fmt.Errorf("build features: no sequences")
	}
	if in.Unpaired == nil && in.Paired == nil {
		return nil, fmt.Errorf("build features: no alignments: %w", msa.ErrInvalidPairing)
	}
	switch mode {
	case ModeSingleChain:
		a3m := msa.SingleSequence(in.Set.Seqs[:1])[0]
		if len(in.Unpaired) > 0 {
			a3m = in.Unpaired[0]
		}
		return Monomer(in.Set.Seqs[0], a3m, in.templateFor(0))
	case ModePseudoMonomer:
		return pseudoMonomer(in)
	case ModeMultimer:
		return multimer(in)
	}
	return nil, fmt.Errorf("build features: unknown mode %d", mode)
}

func pseudoMonomer(in Input) (Dict, error) {
	a3m, err := msa.Combine(in.Set, in.Paired, in.Unpaired)
	if err != nil {
		return nil, err
	}
	total := strings.Join(in.Set.Expanded(), "")
	lengths := in.Set.Lengths()
	out, err := Monomer(total, a3m, template.Mock(len(total), 1))
	if err != nil {
		return nil, err
	}
	out[ResidueIndex] = ChainBreak(out.Tensor(ResidueIndex), lengths)
	out[AsymID] = AsymIDs(lengths)
	return out, nil
}

// chainInputs returns per-chain monomer features keyed by PDB chain label,
// with paired features added for complexes.
func chainInputs(in Input) ([]string, []Dict, error) {
	if in.Set.NumChains() > len(chainLabels) {
		return nil, nil, fmt.Errorf("%w: %d chains, at most %d", ErrTooManyChains, in.Set.NumChains(), len(chainLabels))
	}
	if len(in.Unpaired) > 0 && len(in.Unpaired) != len(in.Set.Seqs) {
		return nil, nil, fmt.Errorf("build features: %d unpaired alignments for %d sequences: %w",
			len(in.Unpaired), len(in.Set.Seqs), msa.ErrInvalidPairing)
	}
	isComplex := in.Set.NumChains() > 1
	var labels []string
	var chains []Dict
	for i, seq := range in.Set.Seqs {
		for c := 0; c < in.Set.Cardinality[i]; c++ {
			unpaired := msa.SingleSequence([]string{seq})[0]
			if in.Unpaired != nil {
				unpaired = in.Unpaired[i]
			}
			f, err := Monomer(seq, unpaired, in.templateFor(i))
			if err != nil {
				return nil, nil, fmt.Errorf("chain %s: %w", chainLabels[len(chains):len(chains)+1], err)
			}
			if isComplex {
				paired := msa.SingleSequence([]string{seq})[0]
				if i < len(in.Paired) {
					paired = in.Paired[i]
				}
				all, err := MSAFeatures(msa.ParseA3M(paired))
				if err != nil {
					return nil, nil, fmt.Errorf("chain %s paired: %w", chainLabels[len(chains):len(chains)+1], err)
				}
				for k, v := range all {
					f[k+allSeq] = v
				}
			}
			labels = append(labels, chainLabels[len(chains):len(chains)+1])
			chains = append(chains, f)
		}
	}
	return labels, chains, nil
}
