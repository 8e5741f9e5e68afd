// internal/predictor/predictor.go
package predictor

import (
	"context"
	"errors"
	"fmt"

	"foldrun-core/features"
	"foldrun-core/tensor"
)

// ErrResourceExhausted is returned when the accelerator runs out of memory.
var ErrResourceExhausted = errors.New("resource exhausted")

// EvalConfig is the evaluation part of a model configuration. Feat maps a
// feature name to the placeholder names of its axes (see FixedSize).
type EvalConfig struct {
	MaxMSAClusters int                 `json:"max_msa_clusters"`
	MaxTemplates   int                 `json:"max_templates"`
	Feat           map[string][]string `json:"feat"`
}

// Config describes the loaded model family.
type Config struct {
	ModelType    features.ModelType `json:"model_type"`
	NumRecycles  int                `json:"num_recycles"`
	UseTemplates bool               `json:"use_templates"`
	Eval         EvalConfig         `json:"eval"`
}

// Result is the raw output of one model on one job.
type Result struct {
	PLDDT     []float64      `json:"plddt"`
	PAE       [][]float64    `json:"pae"`
	PTM       float64        `json:"ptm"`
	Positions *tensor.Tensor `json:"positions"`
	AtomMask  *tensor.Tensor `json:"atom_mask"`
}

// Predictor is the structure-prediction collaborator. Parameters are swapped
// with SetParams so runners of one model family share compiled state.
type Predictor interface {
	Config() Config
	SetParams(ctx context.Context, name string) error
	ProcessFeatures(ctx context.Context, raw features.Dict, seed int64) (features.Dict, error)
	Predict(ctx context.Context, f features.Dict) (*Result, error)
}

// Runner is one named model to run.
type Runner struct {
	Name      string
	Predictor Predictor
}

// Runners names models model_<n> following order, limited to num.
func Runners(p Predictor, order []int, num int) ([]Runner, error) {
	if num < 1 || num > len(order) {
		return nil, fmt.Errorf("num models %d out of range 1..%d", num, len(order))
	}
	out := make([]Runner, 0, num)
	for _, n := range order[:num] {
		out = append(out, Runner{Name: fmt.Sprintf("model_%d", n), Predictor: p})
	}
	return out, nil
}
