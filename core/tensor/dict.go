// core/tensor/dict.go
package tensor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Dict maps feature names to values.
type Dict map[string]Value

// Tensor returns the named tensor, or nil when absent or not a tensor.
func (d Dict) Tensor(name string) *Tensor {
	t, _ := d[name].(*Tensor)
	return t
}

// Strings returns the named string feature, or nil.
func (d Dict) Strings(name string) Strings {
	s, _ := d[name].(Strings)
	return s
}

// Keys returns the feature names in sorted order.
func (d Dict) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge copies every entry of src into d, overwriting.
func (d Dict) Merge(src Dict) {
	for k, v := range src {
		d[k] = v
	}
}

// Clone returns a shallow copy.
func (d Dict) Clone() Dict {
	out := make(Dict, len(d))
	out.Merge(d)
	return out
}

// UnmarshalJSON decodes tensors ({"shape","data"} objects) and string
// features (arrays).
func (d *Dict) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Dict, len(raw))
	for k, v := range raw {
		v = bytes.TrimSpace(v)
		switch {
		case len(v) > 0 && v[0] == '[':
			var s Strings
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("feature %q: %w", k, err)
			}
			out[k] = s
		default:
			t := &Tensor{}
			if err := json.Unmarshal(v, t); err != nil {
				return fmt.Errorf("feature %q: %w", k, err)
			}
			if volume(t.Shape) != len(t.Data) {
				return fmt.Errorf("feature %q: %w: shape %v with %d values", k, ErrShape, t.Shape, len(t.Data))
			}
			out[k] = t
		}
	}
	*d = out
	return nil
}
