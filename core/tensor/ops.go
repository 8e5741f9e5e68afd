// core/tensor/ops.go
package tensor

import "fmt"

// Concat joins tensors along axis. All other dimensions must agree.
func Concat(axis int, ts ...*Tensor) (*Tensor, error) {
	if len(ts) == 0 {
		return nil, fmt.Errorf("%w: concat of nothing", ErrShape)
	}
	base := ts[0].Shape
	if axis < 0 || axis >= len(base) {
		return nil, fmt.Errorf("%w: axis %d for shape %v", ErrShape, axis, base)
	}
	shape := append([]int(nil), base...)
	shape[axis] = 0
	for _, t := range ts {
		if len(t.Shape) != len(base) {
			return nil, fmt.Errorf("%w: concat %v with %v", ErrShape, base, t.Shape)
		}
		for d := range base {
			if d != axis && t.Shape[d] != base[d] {
				return nil, fmt.Errorf("%w: concat %v with %v on axis %d", ErrShape, base, t.Shape, axis)
			}
		}
		shape[axis] += t.Shape[axis]
	}
	outer, inner := split(shape, axis)
	out := &Tensor{Shape: shape, Data: make([]float32, 0, volume(shape))}
	for o := 0; o < outer; o++ {
		for _, t := range ts {
			chunk := t.Shape[axis] * inner
			out.Data = append(out.Data, t.Data[o*chunk:(o+1)*chunk]...)
		}
	}
	return out, nil
}

// Crop keeps the first n entries along axis. n beyond the size is a no-op.
func (t *Tensor) Crop(axis, n int) *Tensor {
	if n >= t.Shape[axis] {
		return t.Clone()
	}
	if n < 0 {
		n = 0
	}
	shape := append([]int(nil), t.Shape...)
	shape[axis] = n
	outer, inner := split(t.Shape, axis)
	out := &Tensor{Shape: shape, Data: make([]float32, 0, volume(shape))}
	for o := 0; o < outer; o++ {
		start := o * t.Shape[axis] * inner
		out.Data = append(out.Data, t.Data[start:start+n*inner]...)
	}
	return out
}

// Pad grows axis to size, filling new entries with v. A size not larger
// than the current one is a no-op.
func (t *Tensor) Pad(axis, size int, v float32) *Tensor {
	cur := t.Shape[axis]
	if size <= cur {
		return t.Clone()
	}
	shape := append([]int(nil), t.Shape...)
	shape[axis] = size
	outer, inner := split(t.Shape, axis)
	out := &Tensor{Shape: shape, Data: make([]float32, 0, volume(shape))}
	fill := make([]float32, (size-cur)*inner)
	if v != 0 {
		for i := range fill {
			fill[i] = v
		}
	}
	for o := 0; o < outer; o++ {
		start := o * cur * inner
		out.Data = append(out.Data, t.Data[start:start+cur*inner]...)
		out.Data = append(out.Data, fill...)
	}
	return out
}

// Fit crops or pads axis to exactly size.
func (t *Tensor) Fit(axis, size int, v float32) *Tensor {
	if size < t.Shape[axis] {
		return t.Crop(axis, size)
	}
	return t.Pad(axis, size, v)
}

// BlockDiagonal places 2-d blocks along the diagonal of a new matrix; cells
// outside every block hold fill.
func BlockDiagonal(fill float32, blocks ...*Tensor) (*Tensor, error) {
	rows, cols := 0, 0
	for _, b := range blocks {
		if len(b.Shape) != 2 {
			return nil, fmt.Errorf("%w: block diagonal needs 2-d blocks, got %v", ErrShape, b.Shape)
		}
		rows += b.Shape[0]
		cols += b.Shape[1]
	}
	out := Full(fill, rows, cols)
	r0, c0 := 0, 0
	for _, b := range blocks {
		for r := 0; r < b.Shape[0]; r++ {
			copy(out.Data[(r0+r)*cols+c0:], b.Data[r*b.Shape[1]:(r+1)*b.Shape[1]])
		}
		r0 += b.Shape[0]
		c0 += b.Shape[1]
	}
	return out, nil
}
