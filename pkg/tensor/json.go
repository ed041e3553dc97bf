package tensor

import (
	"os"

	json "github.com/goccy/go-json"
)

// jsonTensor is the interchange form: {"shape": [...], "data": [...]}.
// Non-f32 tensors marshal as their decoded f32 values.
type jsonTensor struct {
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

// MarshalJSON implements json.Marshaler.
func (t *Tensor) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonTensor{
		Shape: t.Shape,
		Data:  t.Float32s(),
	})
}

// UnmarshalJSON implements json.Unmarshaler. The result is always an f32
// tensor. A missing shape defaults to a vector of the data's length.
func (t *Tensor) UnmarshalJSON(b []byte) error {
	var jt jsonTensor
	if err := json.Unmarshal(b, &jt); err != nil {
		return err
	}
	if jt.Shape == nil {
		jt.Shape = []int{len(jt.Data)}
	}
	n := 1
	for _, d := range jt.Shape {
		if d < 0 {
			return errNegativeDim
		}
		n *= d
	}
	if n != len(jt.Data) {
		return errRawSizeMismatch
	}
	t.Shape = jt.Shape
	t.DType = F32
	t.Data = jt.Data
	t.Raw = nil
	return nil
}

// ReadJSONFile loads a tensor from a JSON interchange file.
func ReadJSONFile(path string) (*Tensor, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t Tensor
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// WriteJSONFile writes a tensor to a JSON interchange file.
func WriteJSONFile(path string, t *Tensor) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}
