package tensor

import (
	"path/filepath"
	"testing"
)

func TestNewZeroInitialised(t *testing.T) {
	t.Parallel()

	x := New(2, 3)
	if x.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", x.Len())
	}
	if x.DType != F32 {
		t.Fatalf("DType = %s, want f32", x.DType)
	}
	for i, v := range x.Data {
		if v != 0 {
			t.Fatalf("element %d = %g, want 0", i, v)
		}
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	t.Parallel()

	x := NewFromData([]float32{1, 2, 3, 4}, 2, 2)
	c := x.Clone()
	c.Data[0] = 99
	if x.Data[0] != 1 {
		t.Fatalf("clone aliases source storage")
	}
	if !c.SameShape(x) {
		t.Fatalf("clone shape mismatch: %v vs %v", c.Shape, x.Shape)
	}
}

func TestNewFromRawF16RoundTrip(t *testing.T) {
	t.Parallel()

	vals := []float32{0.5, -1.25, 2, 0, -0.0625}
	raw := EncodeFP16(vals)
	x, err := NewFromRaw(raw, F16, len(vals))
	if err != nil {
		t.Fatalf("NewFromRaw: %v", err)
	}
	if x.DType != F16 {
		t.Fatalf("DType = %s, want f16", x.DType)
	}
	if !Equal(x.Float32s(), vals) {
		t.Fatalf("f16 decode mismatch: got %v want %v", x.Float32s(), vals)
	}
}

func TestNewFromRawBF16RoundTrip(t *testing.T) {
	t.Parallel()

	vals := []float32{1, -0.5, 3, 0}
	raw := EncodeBF16(vals)
	x, err := NewFromRaw(raw, BF16, 2, 2)
	if err != nil {
		t.Fatalf("NewFromRaw: %v", err)
	}
	if !Equal(x.Float32s(), vals) {
		t.Fatalf("bf16 decode mismatch: got %v want %v", x.Float32s(), vals)
	}
}

func TestNewFromRawSizeMismatch(t *testing.T) {
	t.Parallel()

	if _, err := NewFromRaw(make([]byte, 7), F32, 2); err == nil {
		t.Fatalf("expected error for short raw slice")
	}
	if _, err := NewFromRaw(nil, F16, -1); err == nil {
		t.Fatalf("expected error for negative dimension")
	}
}

func TestFillRandDeterministic(t *testing.T) {
	t.Parallel()

	a := New(64)
	b := New(64)
	a.FillRand(7)
	b.FillRand(7)
	if !Equal(a.Data, b.Data) {
		t.Fatalf("same seed produced different tensors")
	}
	b.FillRand(8)
	if Equal(a.Data, b.Data) {
		t.Fatalf("different seeds produced identical tensors")
	}
	for i, v := range a.Data {
		if v <= -1 || v >= 1 {
			t.Fatalf("element %d = %g outside (-1, 1)", i, v)
		}
	}
}

func TestJSONFileRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "x.json")
	x := NewFromData([]float32{0.5, 1.5, -2.25}, 3)
	if err := WriteJSONFile(path, x); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadJSONFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !got.SameShape(x) {
		t.Fatalf("shape mismatch: %v vs %v", got.Shape, x.Shape)
	}
	if !Equal(got.Data, x.Data) {
		t.Fatalf("data mismatch: %v vs %v", got.Data, x.Data)
	}
}

func TestUnmarshalJSONDefaultsShape(t *testing.T) {
	t.Parallel()

	var x Tensor
	if err := x.UnmarshalJSON([]byte(`{"data":[1,2,3]}`)); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(x.Shape) != 1 || x.Shape[0] != 3 {
		t.Fatalf("shape = %v, want [3]", x.Shape)
	}

	if err := x.UnmarshalJSON([]byte(`{"shape":[2,2],"data":[1,2,3]}`)); err == nil {
		t.Fatalf("expected error for shape/data mismatch")
	}
}
