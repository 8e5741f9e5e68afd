// internal/pipeline/watermark.go
package pipeline

import "math"

// Watermark is the residue count fixed-size batches are padded to. It only
// grows, so models are not recompiled for every shorter job.
type Watermark struct {
	padding float64
	length  int
}

// NewWatermark pads observed lengths by factor padding (at least 1).
func NewWatermark(padding float64) *Watermark {
	if padding < 1 {
		padding = 1
	}
	return &Watermark{padding: padding}
}

// Observe raises the watermark to ceil(total*padding) when total exceeds
// it, and returns the current value.
func (w *Watermark) Observe(total int) int {
	if total > w.length {
		w.length = int(math.Ceil(float64(total) * w.padding))
	}
	return w.length
}

// Len is the current value.
func (w *Watermark) Len() int { return w.length }
