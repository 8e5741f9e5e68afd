// internal/predictor/fixed.go
package predictor

import (
	"foldrun-core/features"
)

// Axis placeholder names used in EvalConfig.Feat.
const (
	NumResidues    = "num residues placeholder"
	MSAClusters    = "msa placeholder"
	ExtraMSA       = "extra msa placeholder"
	NumTemplates   = "num templates placeholder"
	extraMSASize   = 5120
	batchTemplates = 4
)

// Sizes are the static dimensions of a fixed-size batch.
type Sizes struct {
	NumRes      int
	MSAClusters int
	ExtraMSA    int
	Templates   int
}

func (s Sizes) of(placeholder string) (int, bool) {
	switch placeholder {
	case NumResidues:
		return s.NumRes, true
	case MSAClusters:
		return s.MSAClusters, true
	case ExtraMSA:
		return s.ExtraMSA, true
	case NumTemplates:
		return s.Templates, true
	}
	return 0, false
}

// BatchSizes returns the fixed sizes for model name at cropLen residues.
// model_1 and model_2 give up MSA clusters to template slots.
func BatchSizes(eval EvalConfig, name string, cropLen int, useTemplates bool) Sizes {
	clusters := eval.MaxMSAClusters
	if useTemplates && (name == "model_1" || name == "model_2") {
		clusters -= eval.MaxTemplates
	}
	return Sizes{
		NumRes:      cropLen,
		MSAClusters: clusters,
		ExtraMSA:    extraMSASize,
		Templates:   batchTemplates,
	}
}

// FixedSize crops and zero-pads every feature named in schema to sizes.
// Schema axes describe the trailing dimensions; a leading batch axis is
// left alone. Features outside the schema are passed through.
func FixedSize(f features.Dict, schema map[string][]string, sizes Sizes) features.Dict {
	out := make(features.Dict, len(f))
	for name, v := range f {
		out[name] = v
		axes, ok := schema[name]
		t, isTensor := v.(*features.Tensor)
		if !ok || !isTensor || len(t.Shape) < len(axes) {
			continue
		}
		lead := len(t.Shape) - len(axes)
		fixed := t
		for i, ph := range axes {
			size, known := sizes.of(ph)
			if !known {
				continue
			}
			fixed = fixed.Fit(lead+i, size, 0)
		}
		out[name] = fixed
	}
	return out
}
