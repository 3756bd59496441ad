// Package numeric implements the 128-bit wrapping integer arithmetic the
// pattern language's numeric literals and evaluator operations are defined
// over. No third-party module in the retrieval pack offers bitwise
// operations (AND/OR/XOR/shift) over a 128-bit wrapping integer — the
// closest candidate, shopspring/decimal, is a base-10 arbitrary-precision
// *decimal* type with no bitwise operators at all, so it cannot express
// shifts or masks without a lossy round-trip through a different
// representation. math/big's Int already gives arbitrary-precision bitwise
// ops in the standard library with no ecosystem substitute demonstrated by
// the pack, so this package wraps *big.Int rather than reinventing one.
package numeric

import (
	"fmt"
	"math/big"
)

var (
	mask128    = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	signBit128 = new(big.Int).Lsh(big.NewInt(1), 127)
	mod128     = new(big.Int).Lsh(big.NewInt(1), 128)
)

// Int128 is a 128-bit integer that wraps on overflow, the widest numeric
// value the pattern language's evaluator manipulates. All narrower integer
// reads (u8..u96, s8..s96) are sign- or zero-extended into one of these.
type Int128 struct {
	v      big.Int // always kept reduced into [0, 2^128) bit pattern form
	signed bool
}

// FromUint64 builds an unsigned Int128 from a 64-bit value.
func FromUint64(v uint64) Int128 {
	return Int128{v: *new(big.Int).SetUint64(v)}
}

// FromInt64 builds a signed Int128 from a 64-bit value.
func FromInt64(v int64) Int128 {
	var bi big.Int
	bi.SetInt64(v)
	return Int128{v: wrap(&bi), signed: true}
}

// FromBytes decodes a byte slice (little- or big-endian) up to 16 bytes
// wide into an Int128, zero- or sign-extending to 128 bits.
func FromBytes(data []byte, littleEndian bool, signed bool) Int128 {
	buf := make([]byte, len(data))
	copy(buf, data)
	if littleEndian {
		for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
			buf[i], buf[j] = buf[j], buf[i]
		}
	}
	var bi big.Int
	bi.SetBytes(buf)
	if signed && len(buf) > 0 && buf[0]&0x80 != 0 {
		// sign-extend: bi - 2^(8*len(buf))
		full := new(big.Int).Lsh(big.NewInt(1), uint(8*len(buf)))
		bi.Sub(&bi, full)
	}
	return Int128{v: wrapSigned(&bi, signed), signed: signed}
}

func wrap(bi *big.Int) big.Int {
	var out big.Int
	out.Mod(bi, mod128)
	if out.Sign() < 0 {
		out.Add(&out, mod128)
	}
	return out
}

func wrapSigned(bi *big.Int, signed bool) big.Int {
	return wrap(bi)
}

// Signed reports whether this value should be interpreted as two's
// complement signed when converting back out (via Int64/String).
func (a Int128) Signed() bool { return a.signed }

// AsSigned reinterprets the same bit pattern as a signed value.
func (a Int128) AsSigned() Int128 { return Int128{v: a.v, signed: true} }

// AsUnsigned reinterprets the same bit pattern as an unsigned value.
func (a Int128) AsUnsigned() Int128 { return Int128{v: a.v, signed: false} }

func (a Int128) signedValue() *big.Int {
	if a.v.Cmp(signBit128) >= 0 {
		return new(big.Int).Sub(&a.v, mod128)
	}
	return new(big.Int).Set(&a.v)
}

func (a Int128) big() *big.Int {
	if a.signed {
		return a.signedValue()
	}
	return new(big.Int).Set(&a.v)
}

func fromBig(bi *big.Int, signed bool) Int128 {
	return Int128{v: wrap(bi), signed: signed}
}

// binary applies op to the signed (two's-complement) interpretation of both
// operands when either is signed, matching the pattern language's usual
// arithmetic conversions, and wraps the 128-bit result.
func (a Int128) binary(b Int128, op func(z, x, y *big.Int) *big.Int) Int128 {
	signed := a.signed || b.signed
	var x, y *big.Int
	if signed {
		x, y = a.signedValue(), b.signedValue()
	} else {
		x, y = &a.v, &b.v
	}
	var z big.Int
	op(&z, x, y)
	return fromBig(&z, signed)
}

func (a Int128) Add(b Int128) Int128 { return a.binary(b, func(z, x, y *big.Int) *big.Int { return z.Add(x, y) }) }
func (a Int128) Sub(b Int128) Int128 { return a.binary(b, func(z, x, y *big.Int) *big.Int { return z.Sub(x, y) }) }
func (a Int128) Mul(b Int128) Int128 { return a.binary(b, func(z, x, y *big.Int) *big.Int { return z.Mul(x, y) }) }

// Div performs truncating division (rounds toward zero) as C and the
// pattern language do. Caller must check DivByZero first.
func (a Int128) Div(b Int128) Int128 {
	return a.binary(b, func(z, x, y *big.Int) *big.Int { return z.Quo(x, y) })
}

// Mod performs truncating remainder, matching Div's rounding.
func (a Int128) Mod(b Int128) Int128 {
	return a.binary(b, func(z, x, y *big.Int) *big.Int { return z.Rem(x, y) })
}

func (a Int128) IsZero() bool { return a.v.Sign() == 0 }

func (a Int128) And(b Int128) Int128 {
	var z big.Int
	z.And(&a.v, &b.v)
	return Int128{v: z, signed: a.signed || b.signed}
}
func (a Int128) Or(b Int128) Int128 {
	var z big.Int
	z.Or(&a.v, &b.v)
	return Int128{v: z, signed: a.signed || b.signed}
}
func (a Int128) Xor(b Int128) Int128 {
	var z big.Int
	z.Xor(&a.v, &b.v)
	return Int128{v: z, signed: a.signed || b.signed}
}
func (a Int128) Not() Int128 {
	var z big.Int
	z.Sub(mask128, &a.v)
	return Int128{v: z, signed: a.signed}
}

// Shl shifts left by n bits, n in [0, 127]; wraps at 128 bits.
func (a Int128) Shl(n uint) Int128 {
	var z big.Int
	z.Lsh(&a.v, n)
	return fromBig(&z, a.signed)
}

// Shr performs a logical right shift for unsigned values and an arithmetic
// right shift for signed ones, matching C semantics.
func (a Int128) Shr(n uint) Int128 {
	if a.signed {
		var z big.Int
		z.Rsh(a.signedValue(), n)
		return fromBig(&z, true)
	}
	var z big.Int
	z.Rsh(&a.v, n)
	return Int128{v: z}
}

func (a Int128) Neg() Int128 {
	var z big.Int
	z.Neg(a.big())
	return fromBig(&z, true)
}

func (a Int128) Cmp(b Int128) int {
	if a.signed || b.signed {
		return a.signedValue().Cmp(b.signedValue())
	}
	return a.v.Cmp(&b.v)
}

func (a Int128) Equal(b Int128) bool { return a.v.Cmp(&b.v) == 0 }

// Uint64 truncates to the low 64 bits.
func (a Int128) Uint64() uint64 {
	var low big.Int
	low.And(&a.v, new(big.Int).SetUint64(^uint64(0)))
	return low.Uint64()
}

// Int64 truncates the signed interpretation to 64 bits.
func (a Int128) Int64() int64 {
	return a.signedValue().Int64()
}

func (a Int128) Float64() float64 {
	f := new(big.Float).SetInt(a.big())
	v, _ := f.Float64()
	return v
}

// ToBytes encodes the low `width` bytes (width <= 16) of the wrapped bit
// pattern, little- or big-endian, used to write a value back into a
// pattern's backing storage on assignment.
func (a Int128) ToBytes(width int, littleEndian bool) []byte {
	if width > 16 {
		width = 16
	}
	var full [16]byte
	src := a.v.Bytes() // big-endian, no leading zeros
	copy(full[16-len(src):], src)
	buf := make([]byte, width)
	copy(buf, full[16-width:])
	if littleEndian {
		for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
			buf[i], buf[j] = buf[j], buf[i]
		}
	}
	return buf
}

func (a Int128) String() string {
	return a.big().String()
}

func (a Int128) GoString() string {
	return fmt.Sprintf("Int128(%s)", a.String())
}

// FitsUnsigned reports whether the value fits in an unsigned integer of the
// given bit width, used by the validator to bounds-check enum values.
func (a Int128) FitsUnsigned(bits uint) bool {
	if a.signed && a.signedValue().Sign() < 0 {
		return false
	}
	limit := new(big.Int).Lsh(big.NewInt(1), bits)
	return a.v.Cmp(limit) < 0
}
