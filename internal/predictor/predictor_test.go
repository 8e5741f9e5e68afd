package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foldrun-core/features"
	"foldrun-core/tensor"
)

func TestRunners(t *testing.T) {
	rs, err := Runners(nil, []int{3, 4, 5, 1, 2}, 2)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, "model_3", rs[0].Name)
	assert.Equal(t, "model_4", rs[1].Name)

	_, err = Runners(nil, []int{1}, 2)
	assert.Error(t, err)
	_, err = Runners(nil, []int{1}, 0)
	assert.Error(t, err)
}

func TestBatchSizes(t *testing.T) {
	eval := EvalConfig{MaxMSAClusters: 512, MaxTemplates: 4}
	assert.Equal(t, Sizes{NumRes: 70, MSAClusters: 508, ExtraMSA: 5120, Templates: 4}, BatchSizes(eval, "model_1", 70, true))
	assert.Equal(t, 508, BatchSizes(eval, "model_2", 70, true).MSAClusters)
	assert.Equal(t, 512, BatchSizes(eval, "model_3", 70, true).MSAClusters)
	assert.Equal(t, 512, BatchSizes(eval, "model_1", 70, false).MSAClusters)
}

func TestFixedSize(t *testing.T) {
	f := features.Dict{
		// leading ensemble axis
		"aatype":     tensor.Full(1, 1, 3),
		"msa_feat":   tensor.Full(2, 1, 6, 3, 2),
		"seq_length": tensor.Scalar(3),
		"names":      tensor.Strings{"x"},
	}
	schema := map[string][]string{
		"aatype":   {NumResidues},
		"msa_feat": {MSAClusters, NumResidues, "feature size"},
		"names":    {NumResidues},
	}
	out := FixedSize(f, schema, Sizes{NumRes: 5, MSAClusters: 4})

	aa := out.Tensor("aatype")
	assert.Equal(t, []int{1, 5}, aa.Shape)
	assert.Equal(t, []float32{1, 1, 1, 0, 0}, aa.Data)

	m := out.Tensor("msa_feat")
	assert.Equal(t, []int{1, 4, 5, 2}, m.Shape)
	assert.Equal(t, float32(2), m.At(0, 3, 2, 1))
	assert.Equal(t, float32(0), m.At(0, 3, 3, 0))

	assert.Same(t, f.Tensor("seq_length"), out.Tensor("seq_length"))
	assert.Equal(t, tensor.Strings{"x"}, out.Strings("names"))
	// input untouched
	assert.Equal(t, []int{1, 3}, f.Tensor("aatype").Shape)
}

func newServer(t *testing.T, compress bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, v any) {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		if compress {
			enc, _, err := codec()
			require.NoError(t, err)
			b = enc.EncodeAll(b, nil)
			w.Header().Set("Content-Encoding", contentEncoding)
		}
		_, _ = w.Write(b)
	}
	read := func(r *http.Request) features.Dict {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if r.Header.Get("Content-Encoding") == contentEncoding {
			b, err = decompress(b)
			require.NoError(t, err)
		}
		var d features.Dict
		require.NoError(t, json.Unmarshal(b, &d))
		return d
	}
	mux.HandleFunc("/config", func(w http.ResponseWriter, _ *http.Request) {
		write(w, Config{ModelType: features.ModelPTM, NumRecycles: 3, Eval: EvalConfig{MaxMSAClusters: 512, MaxTemplates: 4}})
	})
	mux.HandleFunc("/models/model_1/process", func(w http.ResponseWriter, r *http.Request) {
		d := read(r)
		d["seed"] = tensor.Scalar(float32(len(r.URL.Query().Get("seed"))))
		write(w, d)
	})
	mux.HandleFunc("/models/model_1/predict", func(w http.ResponseWriter, r *http.Request) {
		d := read(r)
		n := d.Tensor("aatype").Len()
		write(w, Result{PLDDT: make([]float64, n), PTM: 0.5, Positions: tensor.New(n, 37, 3), AtomMask: tensor.New(n, 37)})
	})
	mux.HandleFunc("/models/model_2/predict", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "out of memory", http.StatusInsufficientStorage)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClient(t *testing.T) {
	for _, compress := range []bool{false, true} {
		srv := newServer(t, compress)
		ctx := context.Background()
		c, err := Dial(ctx, srv.URL+"/", time.Minute, compress)
		require.NoError(t, err)
		assert.Equal(t, features.ModelPTM, c.Config().ModelType)
		assert.Equal(t, 512, c.Config().Eval.MaxMSAClusters)

		var p Predictor = c
		require.NoError(t, p.SetParams(ctx, "model_1"))
		raw := features.Dict{"aatype": tensor.Full(1, 4), "sequence": tensor.Strings{"MKVL"}}
		proc, err := p.ProcessFeatures(ctx, raw, 42)
		require.NoError(t, err)
		assert.Equal(t, float32(2), proc.Tensor("seed").Data[0])
		assert.Equal(t, tensor.Strings{"MKVL"}, proc.Strings("sequence"))

		res, err := p.Predict(ctx, proc)
		require.NoError(t, err)
		assert.Len(t, res.PLDDT, 4)
		assert.Equal(t, 0.5, res.PTM)
		assert.Equal(t, []int{4, 37, 3}, res.Positions.Shape)

		require.NoError(t, p.SetParams(ctx, "model_2"))
		_, err = p.Predict(ctx, proc)
		assert.True(t, errors.Is(err, ErrResourceExhausted))

		require.NoError(t, p.SetParams(ctx, "model_9"))
		_, err = p.Predict(ctx, proc)
		assert.Error(t, err)
	}
}

func TestDialFails(t *testing.T) {
	_, err := Dial(context.Background(), "", time.Second, false)
	assert.Error(t, err)
}
