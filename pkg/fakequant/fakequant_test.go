package fakequant

import (
	"errors"
	"math"
	"testing"

	"github.com/samcharles93/fakequant/pkg/tensor"
)

func u8Params() Params {
	return Params{Scale: 0.03, ZeroPoint: 128, QuantMin: 0, QuantMax: 255}
}

func TestForwardConcreteScenario(t *testing.T) {
	t.Parallel()

	// scale=0.5, zp=2, range [0,15]: codes [3,5,22] clamp to [3,5,15],
	// dequantized [0.5, 1.5, 6.5].
	x := tensor.NewFromData([]float32{0.0, 1.3, 10.0}, 3)
	p := Params{Scale: 0.5, ZeroPoint: 2, QuantMin: 0, QuantMax: 15}

	y, err := Forward(x, p)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	want := []float32{0.5, 1.5, 6.5}
	if !tensor.Equal(y.Data, want) {
		t.Fatalf("forward = %v, want %v", y.Data, want)
	}

	dy := tensor.NewFromData([]float32{1, 1, 1}, 3)
	dx, err := Backward(dy, x, p)
	if err != nil {
		t.Fatalf("backward: %v", err)
	}
	wantGrad := []float32{1, 1, 0}
	if !tensor.Equal(dx.Data, wantGrad) {
		t.Fatalf("backward = %v, want %v", dx.Data, wantGrad)
	}
}

func TestDelayGating(t *testing.T) {
	t.Parallel()

	x := tensor.New(33)
	x.FillRand(11)
	dy := tensor.New(33)
	dy.FillRand(12)

	p := u8Params()
	p.QuantDelay = 100

	for _, iter := range []int64{0, 50, 100} {
		p.Iter = iter
		y, err := Forward(x, p)
		if err != nil {
			t.Fatalf("forward iter=%d: %v", iter, err)
		}
		if !tensor.Equal(y.Data, x.Data) {
			t.Fatalf("iter=%d: forward not identity during delay", iter)
		}
		if &y.Data[0] == &x.Data[0] {
			t.Fatalf("iter=%d: delayed forward aliases its input", iter)
		}

		dx, err := Backward(dy, x, p)
		if err != nil {
			t.Fatalf("backward iter=%d: %v", iter, err)
		}
		if !tensor.Equal(dx.Data, dy.Data) {
			t.Fatalf("iter=%d: backward not identity during delay", iter)
		}
	}

	// One step past the delay quantization activates.
	p.Iter = 101
	y, err := Forward(x, p)
	if err != nil {
		t.Fatalf("forward past delay: %v", err)
	}
	if tensor.Equal(y.Data, x.Data) {
		t.Fatalf("forward still identity past quant_delay")
	}
}

func TestForwardIdempotent(t *testing.T) {
	t.Parallel()

	x := tensor.New(256)
	x.FillRand(3)

	p := Params{Scale: 0.1, ZeroPoint: 8, QuantMin: 0, QuantMax: 31}
	y1, err := Forward(x, p)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	y2, err := Forward(y1, p)
	if err != nil {
		t.Fatalf("forward twice: %v", err)
	}
	if !tensor.Equal(y1.Data, y2.Data) {
		t.Fatalf("re-quantization moved values: max diff %g", tensor.MaxAbsDiff(y1.Data, y2.Data))
	}
}

func TestForwardRangeBound(t *testing.T) {
	t.Parallel()

	x := tensor.New(512)
	x.FillRand(4)
	for i := range x.Data {
		x.Data[i] *= 50 // force saturation on both sides
	}

	p := u8Params()
	y, err := Forward(x, p)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	lo := float32(p.QuantMin-p.ZeroPoint) * float32(p.Scale)
	hi := float32(p.QuantMax-p.ZeroPoint) * float32(p.Scale)
	for i, v := range y.Data {
		if v < lo || v > hi {
			t.Fatalf("element %d = %g outside [%g, %g]", i, v, lo, hi)
		}
	}
}

func TestBackwardMask(t *testing.T) {
	t.Parallel()

	x := tensor.New(512)
	x.FillRand(5)
	for i := range x.Data {
		x.Data[i] *= 10
	}
	dy := tensor.New(512)
	dy.FillRand(6)

	p := Params{Scale: 0.05, ZeroPoint: 64, QuantMin: 0, QuantMax: 127}
	dx, err := Backward(dy, x, p)
	if err != nil {
		t.Fatalf("backward: %v", err)
	}

	invScale := float32(1.0 / p.Scale)
	for i, v := range x.Data {
		xq := float32(math.Floor(float64(v*invScale+0.5))) + float32(p.ZeroPoint)
		inRange := xq >= float32(p.QuantMin) && xq <= float32(p.QuantMax)
		if inRange && dx.Data[i] != dy.Data[i] {
			t.Fatalf("element %d: in-range gradient not passed through", i)
		}
		if !inRange && dx.Data[i] != 0 {
			t.Fatalf("element %d: saturated gradient not zeroed, got %g", i, dx.Data[i])
		}
	}
}

func TestForwardValidation(t *testing.T) {
	t.Parallel()

	x := tensor.NewFromData([]float32{1, 2}, 2)

	cases := []struct {
		name string
		p    Params
		want error
	}{
		{"min above max", Params{Scale: 1, QuantMin: 5, QuantMax: 2}, ErrInvalidArgument},
		{"negative zero point", Params{Scale: 1, ZeroPoint: -1, QuantMax: 255}, ErrInvalidArgument},
		{"negative delay", Params{Scale: 1, QuantMax: 255, QuantDelay: -1}, ErrInvalidArgument},
		{"negative iter with delay", Params{Scale: 1, QuantMax: 255, QuantDelay: 10, Iter: -1}, ErrInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Forward(x, tc.p); !errors.Is(err, tc.want) {
				t.Fatalf("Forward() error = %v, want %v", err, tc.want)
			}
		})
	}

	// Iter is unconstrained when quant_delay is zero.
	if _, err := Forward(x, Params{Scale: 1, QuantMax: 255, Iter: -5}); err != nil {
		t.Fatalf("negative iter without delay rejected: %v", err)
	}
}

func TestForwardRejectsNonF32(t *testing.T) {
	t.Parallel()

	raw := tensor.EncodeFP16([]float32{1, 2, 3})
	x, err := tensor.NewFromRaw(raw, tensor.F16, 3)
	if err != nil {
		t.Fatalf("NewFromRaw: %v", err)
	}

	// The dtype check fires before parameter validation.
	_, err = Forward(x, Params{Scale: 1, QuantMin: 5, QuantMax: 2})
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("Forward() error = %v, want %v", err, ErrTypeMismatch)
	}
}

func TestBackwardValidation(t *testing.T) {
	t.Parallel()

	x := tensor.NewFromData([]float32{1, 2, 3}, 3)
	dy := tensor.NewFromData([]float32{1, 1, 1}, 3)
	p := u8Params()

	// Range checks come first, even with an empty input.
	bad := p
	bad.QuantMin, bad.QuantMax = 5, 2
	if _, err := Backward(tensor.New(0), tensor.New(0), bad); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("range violation = %v, want %v", err, ErrInvalidArgument)
	}

	// Empty input is reported before the size and iter checks.
	late := p
	late.QuantDelay, late.Iter = 10, -1
	if _, err := Backward(dy, tensor.New(0), late); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("empty input = %v, want %v", err, ErrEmptyInput)
	}

	if _, err := Backward(tensor.NewFromData([]float32{1, 1}, 2), x, p); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("size mismatch not rejected")
	}

	if _, err := Backward(dy, x, late); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("negative iter with delay not rejected")
	}

	if _, err := Backward(dy, x, p); err != nil {
		t.Fatalf("valid backward rejected: %v", err)
	}
}

func TestOperatorsMatchNaiveReference(t *testing.T) {
	t.Parallel()

	x := tensor.New(1000)
	x.FillRand(9)
	for i := range x.Data {
		x.Data[i] *= 8
	}
	dy := tensor.New(1000)
	dy.FillRand(10)

	p := Params{Scale: 0.125, ZeroPoint: 16, QuantMin: 0, QuantMax: 63}

	y, err := Forward(x, p)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	dx, err := Backward(dy, x, p)
	if err != nil {
		t.Fatalf("backward: %v", err)
	}

	invScale := float32(1.0 / p.Scale)
	for i, v := range x.Data {
		q := float32(math.Floor(float64(v*invScale+0.5))) + float32(p.ZeroPoint)
		clamped := q
		if clamped < float32(p.QuantMin) {
			clamped = float32(p.QuantMin)
		}
		if clamped > float32(p.QuantMax) {
			clamped = float32(p.QuantMax)
		}
		wantY := (clamped - float32(p.ZeroPoint)) * float32(p.Scale)
		if y.Data[i] != wantY {
			t.Fatalf("element %d: forward = %g, want %g", i, y.Data[i], wantY)
		}
		wantDX := float32(0)
		if q >= float32(p.QuantMin) && q <= float32(p.QuantMax) {
			wantDX = dy.Data[i]
		}
		if dx.Data[i] != wantDX {
			t.Fatalf("element %d: backward = %g, want %g", i, dx.Data[i], wantDX)
		}
	}
}
