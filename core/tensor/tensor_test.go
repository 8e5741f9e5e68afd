package tensor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(shape ...int) *Tensor {
	t := New(shape...)
	for i := range t.Data {
		t.Data[i] = float32(i)
	}
	return t
}

func TestIndexing(t *testing.T) {
	x := seq(2, 3)
	assert.Equal(t, float32(4), x.At(1, 1))
	x.Set(9, 0, 2)
	assert.Equal(t, float32(9), x.Data[2])
	assert.Equal(t, 2, x.Rows())
	assert.Equal(t, 1, Scalar(3).Rows())
}

func TestConcat(t *testing.T) {
	a := seq(2, 2)
	b := Full(7, 2, 1)
	c, err := Concat(1, a, b)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, c.Shape)
	assert.Equal(t, []float32{0, 1, 7, 2, 3, 7}, c.Data)

	r, err := Concat(0, a, seq(1, 2))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, r.Shape)
	assert.Equal(t, []float32{0, 1, 2, 3, 0, 1}, r.Data)

	_, err = Concat(0, a, seq(1, 3))
	assert.ErrorIs(t, err, ErrShape)
	_, err = Concat(2, a)
	assert.ErrorIs(t, err, ErrShape)
}

func TestCropPadFit(t *testing.T) {
	x := seq(2, 3)
	c := x.Crop(1, 2)
	assert.Equal(t, []int{2, 2}, c.Shape)
	assert.Equal(t, []float32{0, 1, 3, 4}, c.Data)

	p := x.Pad(0, 3, -1)
	assert.Equal(t, []int{3, 3}, p.Shape)
	assert.Equal(t, []float32{-1, -1, -1}, p.Data[6:])

	assert.Equal(t, []int{2, 5}, x.Fit(1, 5, 0).Shape)
	assert.Equal(t, []int{1, 3}, x.Fit(0, 1, 0).Shape)
	// no-op keeps a copy
	same := x.Pad(0, 1, 0)
	same.Data[0] = 42
	assert.Equal(t, float32(0), x.Data[0])
}

func TestBlockDiagonal(t *testing.T) {
	out, err := BlockDiagonal(21, Full(1, 1, 2), Full(2, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3}, out.Shape)
	assert.Equal(t, []float32{
		1, 1, 21,
		21, 21, 2,
		21, 21, 2,
	}, out.Data)

	_, err = BlockDiagonal(0, New(2))
	assert.ErrorIs(t, err, ErrShape)
}

func TestArgmaxTileMean(t *testing.T) {
	x := &Tensor{Shape: []int{2, 3}, Data: []float32{0, 1, 0, 5, 0, 0}}
	assert.Equal(t, []int{1, 0}, x.Argmax())

	tiled := x.Tile(2)
	assert.Equal(t, []int{2, 2, 3}, tiled.Shape)
	assert.Equal(t, x.Data, tiled.Data[6:])

	m := x.MeanRows()
	assert.Equal(t, []float32{2.5, 0.5, 0}, m.Data)
}

func TestReshape(t *testing.T) {
	x := seq(2, 3)
	r, err := x.Reshape(3, 2)
	require.NoError(t, err)
	assert.Equal(t, float32(3), r.At(1, 1))
	_, err = x.Reshape(4)
	assert.ErrorIs(t, err, ErrShape)
}

func TestDictJSON(t *testing.T) {
	d := Dict{
		"msa":      seq(2, 2),
		"sequence": Strings{"MKV"},
	}
	b, err := json.Marshal(d)
	require.NoError(t, err)

	var back Dict
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d.Tensor("msa"), back.Tensor("msa"))
	assert.Equal(t, Strings{"MKV"}, back.Strings("sequence"))
	assert.Equal(t, []string{"msa", "sequence"}, back.Keys())

	var bad Dict
	err = json.Unmarshal([]byte(`{"x":{"shape":[3],"data":[1]}}`), &bad)
	assert.ErrorIs(t, err, ErrShape)
}
