package tensor

import (
	"math"
	"math/rand"
)

// Tensor is a dense row-major tensor of floating-point values.
//
// Shape holds the dimension sizes; a nil or empty shape describes a scalar
// with one element. DType describes the element encoding. For f32 tensors
// Data is populated; for f16/bf16 tensors the packed bytes live in Raw and
// are decoded on access via Float32s. Exactly one of Data/Raw is set.
//
// Tensor does not perform memory safety beyond the checks done by Go's slice
// types; out-of-range indices will panic.
type Tensor struct {
	Shape []int
	DType DType
	Data  []float32
	Raw   []byte
}

// New allocates a zero-initialised f32 tensor with the given shape.
func New(shape ...int) *Tensor {
	n := 1
	for _, d := range shape {
		if d < 0 {
			panic("negative dimension for tensor")
		}
		n *= d
	}
	return &Tensor{
		Shape: append([]int(nil), shape...),
		DType: F32,
		Data:  make([]float32, n),
	}
}

// NewFromData creates an f32 tensor wrapping existing data.
// It checks that the data length matches the shape's element count.
func NewFromData(data []float32, shape ...int) *Tensor {
	t := &Tensor{
		Shape: append([]int(nil), shape...),
		DType: F32,
		Data:  data,
	}
	if t.Len() != len(data) {
		panic("data length mismatch")
	}
	return t
}

// NewFromRaw creates a tensor backed by raw little-endian bytes in the
// provided dtype. The raw slice must contain exactly one encoded value per
// element of the shape.
func NewFromRaw(raw []byte, dtype DType, shape ...int) (*Tensor, error) {
	elemSize, ok := dtype.ElemSize()
	if !ok {
		return nil, errUnsupportedDType
	}
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, errNegativeDim
		}
		if d != 0 && n > maxInt/d {
			return nil, errTooLarge
		}
		n *= d
	}
	if n != 0 && n > maxInt/elemSize {
		return nil, errTooLarge
	}
	if len(raw) != n*elemSize {
		return nil, errRawSizeMismatch
	}
	t := &Tensor{
		Shape: append([]int(nil), shape...),
		DType: dtype,
	}
	if dtype == F32 {
		t.Data = make([]float32, n)
		for i := range t.Data {
			u := uint32(u16le(raw, i*4)) | uint32(u16le(raw, i*4+2))<<16
			t.Data[i] = math.Float32frombits(u)
		}
	} else {
		t.Raw = raw
	}
	return t, nil
}

// Len returns the number of elements.
func (t *Tensor) Len() int {
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// SameShape reports whether t and o have identical shapes.
func (t *Tensor) SameShape(o *Tensor) bool {
	if len(t.Shape) != len(o.Shape) {
		return false
	}
	for i, d := range t.Shape {
		if d != o.Shape[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of t. The copy never aliases t's storage.
func (t *Tensor) Clone() *Tensor {
	c := &Tensor{
		Shape: append([]int(nil), t.Shape...),
		DType: t.DType,
	}
	if t.Data != nil {
		c.Data = append([]float32(nil), t.Data...)
	}
	if t.Raw != nil {
		c.Raw = append([]byte(nil), t.Raw...)
	}
	return c
}

// ZerosLike returns a zero-initialised f32 tensor with t's shape.
func (t *Tensor) ZerosLike() *Tensor {
	return New(t.Shape...)
}

// Float32s returns t's elements as float32 values. For f32 tensors this is
// the backing slice itself; for f16/bf16 tensors a decoded copy is returned.
func (t *Tensor) Float32s() []float32 {
	if t.DType == F32 || t.Raw == nil {
		return t.Data
	}
	out := make([]float32, t.Len())
	switch t.DType {
	case F16:
		for i := range out {
			out[i] = fp16ToF32(u16le(t.Raw, i*2))
		}
	case BF16:
		for i := range out {
			out[i] = bf16ToF32(u16le(t.Raw, i*2))
		}
	default:
		panic("unsupported dtype for decode")
	}
	return out
}

// FillRand fills an f32 tensor with reproducible pseudo-random values in
// (-1, 1). The seed controls the sequence; the same seed always yields the
// same tensor.
func (t *Tensor) FillRand(seed int64) {
	if t.DType != F32 {
		panic("FillRand only supports f32 tensors")
	}
	rng := rand.New(rand.NewSource(seed))
	for i := range t.Data {
		t.Data[i] = rng.Float32()*2 - 1
	}
}

// MaxAbsDiff returns the largest absolute elementwise difference between a
// and b. The slices must have equal length.
func MaxAbsDiff(a, b []float32) float64 {
	var maxAbs float64
	for i := range a {
		d := float64(a[i] - b[i])
		if d < 0 {
			d = -d
		}
		if d > maxAbs {
			maxAbs = d
		}
	}
	return maxAbs
}

// Equal reports exact elementwise equality of two f32 slices.
func Equal(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

const maxInt = int(^uint(0) >> 1)

var (
	errNegativeDim      = fmtError("negative dimension for tensor")
	errUnsupportedDType = fmtError("unsupported dtype for raw tensor")
	errTooLarge         = fmtError("tensor too large")
	errRawSizeMismatch  = fmtError("raw data length mismatch")
)

type fmtError string

func (e fmtError) Error() string { return string(e) }
