package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foldrun-core/features"
	"foldrun-core/residue"
	"foldrun-core/tensor"
	"foldrun/internal/config"
	"foldrun/internal/predictor"
)

type stubPredictor struct{ model features.ModelType }

func (s stubPredictor) Config() predictor.Config { return predictor.Config{ModelType: s.model} }

func (stubPredictor) SetParams(context.Context, string) error { return nil }

func (stubPredictor) ProcessFeatures(_ context.Context, raw features.Dict, _ int64) (features.Dict, error) {
	return raw, nil
}

func (stubPredictor) Predict(_ context.Context, f features.Dict) (*predictor.Result, error) {
	n := f.Tensor("aatype").Rows()
	res := &predictor.Result{PTM: 0.5, Positions: tensor.New(n, residue.AtomTypeNum, 3), AtomMask: tensor.New(n, residue.AtomTypeNum)}
	for i := 0; i < n; i++ {
		res.PLDDT = append(res.PLDDT, 80)
		res.AtomMask.Set(1, i, 1)
	}
	return res, nil
}

func withPredictor(t *testing.T, p predictor.Predictor) {
	t.Helper()
	orig := newPredictor
	newPredictor = func(context.Context, config.PredictorConfig) (predictor.Predictor, error) { return p, nil }
	t.Cleanup(func() { newPredictor = orig })
}

func TestRunContextHelpAndVersion(t *testing.T) {
	var out, errb bytes.Buffer
	assert.Equal(t, 0, RunContext(context.Background(), nil, &out, &errb))
	assert.Contains(t, out.String(), "Usage of foldrun")

	out.Reset()
	assert.Equal(t, 0, RunContext(context.Background(), []string{"--version"}, &out, &errb))
	assert.True(t, strings.HasPrefix(out.String(), "foldrun version "))

	out.Reset()
	errb.Reset()
	assert.Equal(t, 2, RunContext(context.Background(), []string{"--msa-mode", "x", "a", "b"}, &out, &errb))
	assert.Contains(t, errb.String(), "invalid --msa-mode")
}

func TestRunContextEndToEnd(t *testing.T) {
	withPredictor(t, stubPredictor{model: features.ModelPTM})
	dir := t.TempDir()
	in := filepath.Join(dir, "q.fasta")
	require.NoError(t, os.WriteFile(in, []byte(">one\nMKV\n>two\nGGGA\n"), 0o644))
	res := filepath.Join(dir, "out")

	var out, errb bytes.Buffer
	code := RunContext(context.Background(), []string{"--msa-mode", "single_sequence", "--num-models", "2", "--quiet", in, res}, &out, &errb)
	require.Equal(t, 0, code, errb.String())

	for _, name := range []string{
		"config.json", "cite.bibtex",
		"one.a3m", "one.done.txt", "one_unrelaxed_model_3_rank_1.pdb", "one_unrelaxed_model_4_rank_2.pdb",
		"two.done.txt",
	} {
		assert.FileExists(t, filepath.Join(res, name))
	}
	cfg, err := os.ReadFile(filepath.Join(res, "config.json"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), `"model_type": "AlphaFold2-ptm"`)
	assert.Contains(t, string(cfg), `"run_id": "`)
}

func TestRunContextPrecomputedAlignments(t *testing.T) {
	withPredictor(t, stubPredictor{model: features.ModelPTM})
	dir := t.TempDir()
	in := filepath.Join(dir, "job.a3m")
	require.NoError(t, os.WriteFile(in, []byte("#3\t1\n>101\nMKV\n>h1\nMK-\n"), 0o644))
	res := filepath.Join(dir, "out")

	// database mode with no search configured
	var out, errb bytes.Buffer
	code := RunContext(context.Background(), []string{"--num-models", "1", "--quiet", in, res}, &out, &errb)
	require.Equal(t, 0, code, errb.String())
	assert.FileExists(t, filepath.Join(res, "job.done.txt"))
	assert.FileExists(t, filepath.Join(res, "job_unrelaxed_model_3_rank_1.pdb"))
}

func TestRunContextSetupErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "q.fasta")
	require.NoError(t, os.WriteFile(in, []byte(">one\nMKV:GG\n"), 0o644))
	var out, errb bytes.Buffer

	// complex run resolves to multimer, predictor serves ptm
	withPredictor(t, stubPredictor{model: features.ModelPTM})
	assert.Equal(t, 2, RunContext(context.Background(), []string{"--msa-mode", "single_sequence", in, filepath.Join(dir, "o")}, &out, &errb))

	// no search backend for database modes
	withPredictor(t, stubPredictor{model: features.ModelMultimer})
	assert.Equal(t, 2, RunContext(context.Background(), []string{in, filepath.Join(dir, "o")}, &out, &errb))

	// relaxation without a command
	assert.Equal(t, 2, RunContext(context.Background(), []string{"--msa-mode", "single_sequence", "--amber", in, filepath.Join(dir, "o")}, &out, &errb))

	// missing input
	assert.Equal(t, 2, RunContext(context.Background(), []string{filepath.Join(dir, "nope.fasta"), filepath.Join(dir, "o")}, &out, &errb))
}
