// core/tensor/tensor.go
package tensor

import (
	"errors"
	"fmt"
)

// ErrShape is returned when tensor shapes are incompatible for an operation.
var ErrShape = errors.New("tensor shape mismatch")

// Value is one named feature: either a *Tensor or Strings.
type Value interface {
	// Rows is the length of the leading dimension.
	Rows() int
}

// Strings is a per-row string feature (sequence, domain names, ...).
type Strings []string

func (s Strings) Rows() int { return len(s) }

// Tensor is a dense row-major float32 array.
type Tensor struct {
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

// New returns a zero tensor of the given shape.
func New(shape ...int) *Tensor {
	return &Tensor{Shape: append([]int(nil), shape...), Data: make([]float32, volume(shape))}
}

// Full returns a tensor of the given shape with every element set to v.
func Full(v float32, shape ...int) *Tensor {
	t := New(shape...)
	if v != 0 {
		for i := range t.Data {
			t.Data[i] = v
		}
	}
	return t
}

// FromInts builds a 1-d tensor.
func FromInts(vs []int) *Tensor {
	t := New(len(vs))
	for i, v := range vs {
		t.Data[i] = float32(v)
	}
	return t
}

// Scalar builds a 0-d tensor.
func Scalar(v float32) *Tensor {
	return &Tensor{Shape: []int{}, Data: []float32{v}}
}

// Rows is the size of the first dimension, or 1 for a scalar.
func (t *Tensor) Rows() int {
	if len(t.Shape) == 0 {
		return 1
	}
	return t.Shape[0]
}

// Len is the number of elements.
func (t *Tensor) Len() int { return len(t.Data) }

// Clone deep-copies t.
func (t *Tensor) Clone() *Tensor {
	return &Tensor{Shape: append([]int(nil), t.Shape...), Data: append([]float32(nil), t.Data...)}
}

// Reshape returns a view with a new shape over the same data.
func (t *Tensor) Reshape(shape ...int) (*Tensor, error) {
	if volume(shape) != len(t.Data) {
		return nil, fmt.Errorf("%w: reshape %v to %v", ErrShape, t.Shape, shape)
	}
	return &Tensor{Shape: append([]int(nil), shape...), Data: t.Data}, nil
}

func (t *Tensor) offset(idx []int) int {
	off := 0
	for i, v := range idx {
		off = off*t.Shape[i] + v
	}
	return off
}

// At returns the element at idx.
func (t *Tensor) At(idx ...int) float32 { return t.Data[t.offset(idx)] }

// Set stores v at idx.
func (t *Tensor) Set(v float32, idx ...int) { t.Data[t.offset(idx)] = v }

// Ints returns the data truncated to int.
func (t *Tensor) Ints() []int {
	out := make([]int, len(t.Data))
	for i, v := range t.Data {
		out[i] = int(v)
	}
	return out
}

// Argmax returns the index of the largest element along the last axis for
// every leading position.
func (t *Tensor) Argmax() []int {
	if len(t.Shape) == 0 {
		return []int{0}
	}
	depth := t.Shape[len(t.Shape)-1]
	if depth == 0 {
		return nil
	}
	n := len(t.Data) / depth
	out := make([]int, n)
	for i := 0; i < n; i++ {
		row := t.Data[i*depth : (i+1)*depth]
		best := 0
		for j := 1; j < depth; j++ {
			if row[j] > row[best] {
				best = j
			}
		}
		out[i] = best
	}
	return out
}

// Tile stacks n copies of t along a new leading axis.
func (t *Tensor) Tile(n int) *Tensor {
	out := &Tensor{Shape: append([]int{n}, t.Shape...), Data: make([]float32, 0, n*len(t.Data))}
	for i := 0; i < n; i++ {
		out.Data = append(out.Data, t.Data...)
	}
	return out
}

// MeanRows averages over the leading axis.
func (t *Tensor) MeanRows() *Tensor {
	inner := volume(t.Shape[1:])
	out := New(t.Shape[1:]...)
	rows := t.Rows()
	if rows == 0 {
		return out
	}
	for r := 0; r < rows; r++ {
		for j := 0; j < inner; j++ {
			out.Data[j] += t.Data[r*inner+j]
		}
	}
	for j := range out.Data {
		out.Data[j] /= float32(rows)
	}
	return out
}

// Map returns a tensor with f applied elementwise.
func (t *Tensor) Map(f func(float32) float32) *Tensor {
	out := t.Clone()
	for i, v := range out.Data {
		out.Data[i] = f(v)
	}
	return out
}

func volume(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

// split returns the product of dimensions before and after axis.
func split(shape []int, axis int) (outer, inner int) {
	return volume(shape[:axis]), volume(shape[axis+1:])
}
