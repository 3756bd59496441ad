package numeric

import "testing"

func TestWrappingAdd(t *testing.T) {
	max := FromUint64(^uint64(0)).Shl(64).Or(FromUint64(^uint64(0))) // 2^128-1
	got := max.Add(FromUint64(1))
	if !got.IsZero() {
		t.Fatalf("expected wraparound to zero, got %s", got.String())
	}
}

func TestDivTruncatesTowardZero(t *testing.T) {
	a := FromInt64(-7)
	b := FromInt64(2)
	got := a.Div(b)
	if got.Int64() != -3 {
		t.Fatalf("got %d, want -3", got.Int64())
	}
}

func TestModMatchesDivRounding(t *testing.T) {
	a := FromInt64(-7)
	b := FromInt64(2)
	got := a.Mod(b)
	if got.Int64() != -1 {
		t.Fatalf("got %d, want -1", got.Int64())
	}
}

func TestFromBytesLittleEndianUnsigned(t *testing.T) {
	v := FromBytes([]byte{0x01, 0x02, 0x03, 0x04}, true, false)
	if v.Uint64() != 0x04030201 {
		t.Fatalf("got 0x%x", v.Uint64())
	}
}

func TestFromBytesBigEndianUnsigned(t *testing.T) {
	v := FromBytes([]byte{0x01, 0x02, 0x03, 0x04}, false, false)
	if v.Uint64() != 0x01020304 {
		t.Fatalf("got 0x%x", v.Uint64())
	}
}

func TestFromBytesSignExtends(t *testing.T) {
	// 0xFF as a signed s8 is -1; widened to 128 bits it must stay -1.
	v := FromBytes([]byte{0xFF}, true, true)
	if v.Int64() != -1 {
		t.Fatalf("got %d, want -1", v.Int64())
	}
}

func TestShiftSemantics(t *testing.T) {
	signed := FromInt64(-8) // ...11111000
	got := signed.Shr(1)
	if got.Int64() != -4 {
		t.Fatalf("arithmetic shift got %d, want -4", got.Int64())
	}

	unsigned := FromUint64(0x80).AsUnsigned()
	gotU := unsigned.Shr(1)
	if gotU.Uint64() != 0x40 {
		t.Fatalf("logical shift got 0x%x, want 0x40", gotU.Uint64())
	}
}

func TestEndiannessRoundTrip(t *testing.T) {
	// spec §8 "Endianness law": reading with endian E and reading the
	// reversed byte window with endian swap(E) yield equal literals.
	data := []byte{0x11, 0x22, 0x33, 0x44}
	le := FromBytes(data, true, false)
	reversed := make([]byte, len(data))
	for i, b := range data {
		reversed[len(data)-1-i] = b
	}
	be := FromBytes(reversed, false, false)
	if !le.Equal(be) {
		t.Fatalf("le=%s be=%s, want equal", le.String(), be.String())
	}
}

func TestToBytesRoundTrip(t *testing.T) {
	v := FromUint64(0x0102030405060708)
	le := v.ToBytes(8, true)
	back := FromBytes(le, true, false)
	if back.Uint64() != v.Uint64() {
		t.Fatalf("round trip mismatch: got 0x%x", back.Uint64())
	}
}

func TestFitsUnsigned(t *testing.T) {
	v := FromUint64(255)
	if !v.FitsUnsigned(8) {
		t.Fatalf("255 should fit in 8 bits")
	}
	v2 := FromUint64(256)
	if v2.FitsUnsigned(8) {
		t.Fatalf("256 should not fit in 8 bits")
	}
	neg := FromInt64(-1)
	if neg.FitsUnsigned(8) {
		t.Fatalf("negative value should never fit unsigned")
	}
}

func TestBitwiseOps(t *testing.T) {
	a := FromUint64(0b1100)
	b := FromUint64(0b1010)
	if got := a.And(b).Uint64(); got != 0b1000 {
		t.Fatalf("And got %b", got)
	}
	if got := a.Or(b).Uint64(); got != 0b1110 {
		t.Fatalf("Or got %b", got)
	}
	if got := a.Xor(b).Uint64(); got != 0b0110 {
		t.Fatalf("Xor got %b", got)
	}
}
