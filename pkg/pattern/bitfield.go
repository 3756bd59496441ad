package pattern

import "github.com/vellumlang/vellum/pkg/numeric"

// ExtractBits reads the inclusive bit range [bitOffset, bitOffset+bitSize-1]
// out of data, packed MSB-first: bit 0 is the most-significant bit of
// data[0]. This mirrors hex::extract(hi, lo, value) as used by
// PatternDataBitfieldField::getFormattedValue in original_source, which
// treats a bitfield's underlying bytes as one big big-endian integer and
// extracts an inclusive high/low bit range from it.
func ExtractBits(data []byte, bitOffset, bitSize uint8) numeric.Int128 {
	totalBits := len(data) * 8
	hi := totalBits - 1 - int(bitOffset)
	lo := hi - int(bitSize) + 1
	if hi < 0 || lo < 0 {
		return numeric.FromUint64(0)
	}
	whole := numeric.FromBytes(data, false, false) // big-endian, unsigned
	shifted := whole.Shr(uint(lo))
	width := uint(bitSize)
	if width >= 128 {
		return shifted
	}
	mask := numeric.FromUint64(1).Shl(width).Sub(numeric.FromUint64(1))
	return shifted.And(mask)
}

// PackBits writes value into the inclusive MSB-first bit range
// [bitOffset, bitOffset+bitSize-1] of data, used by the evaluator when it
// needs to materialize a bitfield's raw bytes for local (stack-resident)
// patterns.
func PackBits(data []byte, bitOffset, bitSize uint8, value numeric.Int128) {
	totalBits := len(data) * 8
	hi := totalBits - 1 - int(bitOffset)
	lo := hi - int(bitSize) + 1
	if hi < 0 || lo < 0 {
		return
	}
	for i := 0; i < int(bitSize); i++ {
		bitPos := lo + i
		byteIdx := len(data) - 1 - bitPos/8
		bitInByte := uint(bitPos % 8)
		bit := value.Shr(uint(i)).And(numeric.FromUint64(1)).Uint64()
		if bit != 0 {
			data[byteIdx] |= 1 << bitInByte
		} else {
			data[byteIdx] &^= 1 << bitInByte
		}
	}
}
