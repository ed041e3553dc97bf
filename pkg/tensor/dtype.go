package tensor

import "math"

// DType describes the element encoding of a tensor.
type DType uint8

const (
	F32 DType = iota
	F16
	BF16
)

func (d DType) String() string {
	switch d {
	case F32:
		return "f32"
	case F16:
		return "f16"
	case BF16:
		return "bf16"
	default:
		return "unknown"
	}
}

// ElemSize returns the size in bytes of one element, and whether the dtype is
// supported at all.
func (d DType) ElemSize() (int, bool) {
	switch d {
	case F32:
		return 4, true
	case F16, BF16:
		return 2, true
	default:
		return 0, false
	}
}

func u16le(b []byte, off int) uint16 {
	_ = b[off+1]
	return uint16(b[off]) | uint16(b[off+1])<<8
}

func bf16ToF32(u uint16) float32 {
	return math.Float32frombits(uint32(u) << 16)
}

func bf16FromF32Bits(u uint32) uint16 {
	// Round-to-nearest-even on the truncated 16 bits.
	rnd := uint32(0x7FFF + ((u >> 16) & 1))
	return uint16((u + rnd) >> 16)
}

func fp16ToF32(h uint16) float32 {
	sign := uint32(h>>15) & 0x1
	exp := uint32(h>>10) & 0x1F
	frac := uint32(h & 0x3FF)
	var f uint32
	switch exp {
	case 0:
		if frac == 0 {
			f = sign << 31
		} else {
			e := uint32(127 - 15 + 1)
			for (frac & 0x400) == 0 {
				frac <<= 1
				e--
			}
			frac &= 0x3FF
			f = (sign << 31) | (e << 23) | (frac << 13)
		}
	case 0x1F:
		f = (sign << 31) | 0x7F800000 | (frac << 13)
	default:
		e := exp + (127 - 15)
		f = (sign << 31) | (e << 23) | (frac << 13)
	}
	return math.Float32frombits(f)
}

// float32ToFP16Bits implements IEEE 754 binary16 rounding (nearest-even).
func float32ToFP16Bits(f float32) uint16 {
	u := math.Float32bits(f)
	sign := (u >> 31) & 0x1
	exp := int((u >> 23) & 0xFF)
	frac := u & 0x7FFFFF

	if exp == 0xFF {
		// Inf/NaN
		if frac != 0 {
			return uint16((sign << 15) | 0x7C00 | (frac >> 13) | 1)
		}
		return uint16((sign << 15) | 0x7C00)
	}

	e := exp - 127
	if e > 15 {
		// overflow -> inf
		return uint16((sign << 15) | 0x7C00)
	}
	if e < -14 {
		// subnormal or zero
		if e < -24 {
			return uint16(sign << 15)
		}
		frac |= 0x800000
		shift := uint32(-14 - e)
		rnd := uint32(1<<(shift-1)) - 1 + ((frac >> shift) & 1)
		frac = (frac + rnd) >> shift
		return uint16((sign << 15) | (frac >> 13))
	}

	exp16 := uint32(e + 15)
	rnd := uint32(0xFFF + ((frac >> 13) & 1))
	frac = frac + rnd
	if (frac & 0x800000) != 0 {
		exp16++
		frac = 0
		if exp16 >= 0x1F {
			return uint16((sign << 15) | 0x7C00)
		}
	}
	return uint16((sign << 15) | (exp16 << 10) | (frac >> 13))
}

// EncodeFP16 encodes float32 values as little-endian binary16 bytes.
func EncodeFP16(data []float32) []byte {
	raw := make([]byte, len(data)*2)
	for i, v := range data {
		u := float32ToFP16Bits(v)
		raw[i*2] = byte(u)
		raw[i*2+1] = byte(u >> 8)
	}
	return raw
}

// EncodeBF16 encodes float32 values as little-endian bfloat16 bytes.
func EncodeBF16(data []float32) []byte {
	raw := make([]byte, len(data)*2)
	for i, v := range data {
		u := bf16FromF32Bits(math.Float32bits(v))
		raw[i*2] = byte(u)
		raw[i*2+1] = byte(u >> 8)
	}
	return raw
}
