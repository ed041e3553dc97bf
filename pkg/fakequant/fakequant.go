// Package fakequant implements forward and backward operators for per-tensor
// affine fake quantization.
//
// The forward operator quantizes a float tensor to a discrete integer range
// and immediately dequantizes it, so that training observes quantization
// error while all values stay in floating point. The backward operator is a
// straight-through estimator: the rounding step is treated as identity, and
// gradient flow is zeroed only for elements that saturated the clamp range in
// the forward pass.
//
// Both operators are pure functions with no shared state and are safe to call
// concurrently.
package fakequant

import (
	"fmt"
	"math"

	"github.com/samcharles93/fakequant/pkg/tensor"
)

// Params holds the per-tensor affine quantization parameters shared by a
// matched Forward/Backward pair. A pair of calls for one logical op
// application must be given identical Params; Backward reconstructs the
// forward quantization decision from X rather than reusing any cached result.
//
// QuantDelay defers activation: while QuantDelay > 0 and Iter <= QuantDelay,
// both operators are identity pass-throughs. Iter is the caller-owned global
// training step; this package never stores or increments it.
type Params struct {
	Scale      float64
	ZeroPoint  int64
	QuantMin   int64
	QuantMax   int64
	QuantDelay int64
	Iter       int64
}

// check validates the range and sign constraints common to both operators.
// Scale is deliberately not validated; a zero or negative scale flows through
// the arithmetic unchanged.
func (p Params) check() error {
	if p.QuantMin > p.QuantMax {
		return fmt.Errorf("%w: quant_min (%d) must be <= quant_max (%d)", ErrInvalidArgument, p.QuantMin, p.QuantMax)
	}
	if p.ZeroPoint < 0 {
		return fmt.Errorf("%w: zero_point (%d) must be non-negative", ErrInvalidArgument, p.ZeroPoint)
	}
	if p.QuantDelay < 0 {
		return fmt.Errorf("%w: quant_delay (%d) must be non-negative", ErrInvalidArgument, p.QuantDelay)
	}
	return nil
}

// checkIter validates the iteration counter, which is only constrained when
// delayed activation is in effect.
func (p Params) checkIter() error {
	if p.QuantDelay != 0 && p.Iter < 0 {
		return fmt.Errorf("%w: iter (%d) must be >= 0 for non-zero quant_delay", ErrInvalidArgument, p.Iter)
	}
	return nil
}

// bypass reports whether quantization has not activated yet.
func (p Params) bypass() bool {
	return p.QuantDelay > 0 && p.Iter <= p.QuantDelay
}

// Forward fake-quantizes x: each element is rounded to the nearest integer
// code (half away from zero, via floor(v+0.5)), offset by the zero point,
// clamped to [QuantMin, QuantMax] and mapped back to floating point. The
// result is a new f32 tensor with x's shape; x is never modified.
//
// While delayed activation is in effect the input is returned unchanged
// (as a copy).
func Forward(x *tensor.Tensor, p Params) (*tensor.Tensor, error) {
	if x.DType != tensor.F32 {
		return nil, fmt.Errorf("%w: forward input must be f32, got %s", ErrTypeMismatch, x.DType)
	}
	if err := p.check(); err != nil {
		return nil, err
	}
	if err := p.checkIter(); err != nil {
		return nil, err
	}

	if p.bypass() {
		return x.Clone(), nil
	}

	// 1/scale is computed once in float64 and narrowed; the elementwise
	// arithmetic stays in the tensor's working precision.
	invScale := float32(1.0 / p.Scale)
	scale := float32(p.Scale)
	zp := float32(p.ZeroPoint)
	lo := float32(p.QuantMin)
	hi := float32(p.QuantMax)

	y := x.ZerosLike()
	for i, v := range x.Data {
		q := floorf(v*invScale+0.5) + zp
		if q < lo {
			q = lo
		}
		if q > hi {
			q = hi
		}
		y.Data[i] = (q - zp) * scale
	}
	return y, nil
}

// Backward computes the straight-through gradient of Forward. For each
// element of x the pre-clamp quantized code is recomputed; where it falls
// inside [QuantMin, QuantMax] the upstream gradient passes through unchanged,
// elsewhere (elements that saturated the clamp in the forward pass) the
// gradient is zero. The result is a new f32 tensor; dy and x are never
// modified.
//
// While delayed activation is in effect the upstream gradient is returned
// unchanged (as a copy).
func Backward(dy, x *tensor.Tensor, p Params) (*tensor.Tensor, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	if x.Len() == 0 {
		return nil, ErrEmptyInput
	}
	if x.Len() != dy.Len() {
		return nil, fmt.Errorf("%w: x has %d elements, dy has %d", ErrInvalidArgument, x.Len(), dy.Len())
	}
	if err := p.checkIter(); err != nil {
		return nil, err
	}

	if p.bypass() {
		return dy.Clone(), nil
	}

	invScale := float32(1.0 / p.Scale)
	zp := float32(p.ZeroPoint)
	lo := float32(p.QuantMin)
	hi := float32(p.QuantMax)

	xs := x.Float32s()
	ds := dy.Float32s()
	dx := x.ZerosLike()
	for i, v := range xs {
		xq := floorf(v*invScale+0.5) + zp
		if xq >= lo && xq <= hi {
			dx.Data[i] = ds[i]
		}
	}
	return dx, nil
}

func floorf(v float32) float32 {
	return float32(math.Floor(float64(v)))
}
