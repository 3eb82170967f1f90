// Package f16 converts between float32 and IEEE-754 binary16.
//
// It backs the half-precision storage mode of the latent codec: latents are
// always computed in float32 and only narrowed when written to the cache.
package f16

import (
	"encoding/binary"
	"math"
)

// Bits is a raw binary16 value: 1 sign bit, 5 exponent bits (bias 15), 10 fraction bits.
type Bits uint16

const (
	signMask Bits = 0x8000
	expMask  Bits = 0x7C00
	fracMask Bits = 0x03FF

	f32ExpMask  uint32 = 0x7F800000
	f32FracMask uint32 = 0x007FFFFF
)

// ToFloat32 widens a binary16 value. The conversion is exact.
func ToFloat32(h Bits) float32 {
	sign := uint32(h&signMask) << 16
	exp := uint32(h&expMask) >> 10
	frac := uint32(h & fracMask)

	switch exp {
	case 0:
		if frac == 0 {
			return math.Float32frombits(sign)
		}
		// Subnormal half: renormalize into a float32 normal.
		e := int32(-14)
		for frac&0x0400 == 0 {
			frac <<= 1
			e--
		}
		frac &= 0x03FF
		return math.Float32frombits(sign | uint32(127+e)<<23 | frac<<13)
	case 0x1F:
		return math.Float32frombits(sign | f32ExpMask | frac<<13)
	default:
		return math.Float32frombits(sign | (exp-15+127)<<23 | frac<<13)
	}
}

// FromFloat32 narrows a float32 value, rounding to nearest with ties to even.
// Values beyond the binary16 range become infinities.
func FromFloat32(f float32) Bits {
	bits := math.Float32bits(f)
	sign := Bits(bits>>16) & signMask
	exp := int32((bits & f32ExpMask) >> 23)
	frac := bits & f32FracMask

	if exp == 0xFF {
		if frac == 0 {
			return sign | expMask
		}
		// Quiet NaN with a non-zero payload.
		return sign | expMask | 0x0200 | Bits(frac>>13)&fracMask
	}
	if exp == 0 {
		return sign
	}

	e := exp - 127 + 15
	if e >= 0x1F {
		return sign | expMask
	}

	if e <= 0 {
		if e < -10 {
			return sign
		}
		mant := frac | 0x00800000
		shift := uint32(14 - e)
		m := mant >> shift
		rem := mant & (1<<shift - 1)
		half := uint32(1) << (shift - 1)
		if rem > half || (rem == half && m&1 == 1) {
			m++
		}
		return sign | Bits(m)
	}

	m := frac >> 13
	rem := frac & 0x1FFF
	if rem > 0x1000 || (rem == 0x1000 && m&1 == 1) {
		m++
		if m == 0x0400 {
			m = 0
			e++
			if e >= 0x1F {
				return sign | expMask
			}
		}
	}
	return sign | Bits(uint32(e)<<10) | Bits(m)
}

// AppendFloat32s narrows src and appends it to dst as little-endian binary16.
func AppendFloat32s(dst []byte, src []float32) []byte {
	for _, v := range src {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(FromFloat32(v)))
	}
	return dst
}

// DecodeInto widens little-endian binary16 values from src into dst.
// src must hold at least 2*len(dst) bytes.
func DecodeInto(dst []float32, src []byte) {
	for i := range dst {
		dst[i] = ToFloat32(Bits(binary.LittleEndian.Uint16(src[2*i:])))
	}
}
