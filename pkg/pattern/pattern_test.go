package pattern

import (
	"testing"

	"github.com/vellumlang/vellum/pkg/numeric"
	"github.com/vellumlang/vellum/pkg/provider"
)

func leaf(name string, offset, size uint64) *Pattern {
	return &Pattern{Kind: KindUnsigned, VariableName: name, Offset: offset, Size: size}
}

func structOf(name string, offset uint64, members ...*Pattern) *Pattern {
	var size uint64
	for _, m := range members {
		if m.Offset+m.Size > offset+size {
			size = m.Offset + m.Size - offset
		}
	}
	return &Pattern{Kind: KindStruct, VariableName: name, Offset: offset, Size: size, Struct: &StructData{Members: members}}
}

func TestCloneEquivalence(t *testing.T) {
	s := structOf("p", 0, leaf("a", 0, 2), leaf("b", 2, 2))
	clone := s.Clone()
	if !clone.Equal(s) {
		t.Fatalf("clone not equal to source")
	}
	clone.Struct.Members[0].VariableName = "mutated"
	if s.Struct.Members[0].VariableName == "mutated" {
		t.Fatalf("mutating clone affected source")
	}
}

func TestClonePointerDeep(t *testing.T) {
	pointee := leaf("target", 8, 2)
	p := &Pattern{Kind: KindPointer, VariableName: "ptr", Offset: 0, Size: 1,
		Pointer: &PointerData{Pointee: pointee, PointedAtAddress: 8, PointerBase: 0}}
	clone := p.Clone()
	if clone.Pointer.Pointee == p.Pointer.Pointee {
		t.Fatalf("expected deep clone of pointee, got shared pointer")
	}
	if !clone.Equal(p) {
		t.Fatalf("clone not structurally equal")
	}
}

func TestGetPatternFindsDeepestNonHidden(t *testing.T) {
	a := leaf("a", 0, 2)
	b := leaf("b", 2, 2)
	b.Hidden = true
	s := structOf("p", 0, a, b)
	s.Size = 4

	found := s.GetPattern(1)
	if found != a {
		t.Fatalf("got %v, want a", found)
	}
	// hidden member at offset 2 should not itself be returned, but the
	// enclosing struct is since GetPattern falls back to p when no
	// non-hidden child matches.
	found2 := s.GetPattern(2)
	if found2 != s {
		t.Fatalf("got %v, want enclosing struct for hidden byte", found2)
	}
}

func TestGetPatternStaticArrayIndexArithmetic(t *testing.T) {
	tmpl := leaf("[i]", 0, 2)
	arr := &Pattern{Kind: KindStaticArray, VariableName: "xs", Offset: 0, Size: 8,
		StaticArray: &StaticArrayData{Template: tmpl, EntryCount: 4}}
	found := arr.GetPattern(5)
	if found == nil || found.Offset != 4 {
		t.Fatalf("got %+v, want entry at offset 4", found)
	}
}

func TestHighlightedAddressesSkipsHidden(t *testing.T) {
	a := leaf("a", 0, 2)
	a.Color = 0xFF0000FF
	b := leaf("b", 2, 2)
	b.Hidden = true
	b.Color = 0x00FF00FF
	s := structOf("p", 0, a, b)
	s.Size = 4

	out := map[uint64]uint32{}
	s.HighlightedAddresses(out)
	if len(out) != 2 {
		t.Fatalf("got %d highlighted addresses, want 2 (hidden member excluded)", len(out))
	}
	if out[0] != 0xFF0000FF || out[1] != 0xFF0000FF {
		t.Fatalf("got %+v", out)
	}
	if _, ok := out[2]; ok {
		t.Fatalf("hidden member's bytes should not be highlighted")
	}
}

func TestHighlightedAddressesRecursesIntoPointee(t *testing.T) {
	pointee := leaf("target", 8, 2)
	pointee.Color = 0xAABBCCDD
	p := &Pattern{Kind: KindPointer, VariableName: "ptr", Offset: 0, Size: 1, Color: 0x11223344,
		Pointer: &PointerData{Pointee: pointee, PointedAtAddress: 8, PointerBase: 0}}
	out := map[uint64]uint32{}
	p.HighlightedAddresses(out)
	if out[0] != 0x11223344 {
		t.Fatalf("missing pointer's own range")
	}
	if out[8] != 0xAABBCCDD || out[9] != 0xAABBCCDD {
		t.Fatalf("missing pointee's range: %+v", out)
	}
}

func TestRebase(t *testing.T) {
	pointee := leaf("target", 0x108, 2)
	p := &Pattern{Kind: KindPointer, VariableName: "ptr", Offset: 0, Size: 1,
		Pointer: &PointerData{Pointee: pointee, PointedAtAddress: 0x108, PointerBase: 0x100}}
	p.Rebase(0x200)
	if p.Pointer.PointedAtAddress != 0x208 {
		t.Fatalf("got 0x%x, want 0x208", p.Pointer.PointedAtAddress)
	}
	if p.Pointer.PointerBase != 0x200 {
		t.Fatalf("got base 0x%x, want 0x200", p.Pointer.PointerBase)
	}
}

func TestSortByValueBytesComparesRawBytes(t *testing.T) {
	prov := provider.NewMemoryProvider([]byte{0x02, 0x01, 0x00}, 0)
	a := leaf("a", 0, 1) // byte 0x02
	b := leaf("b", 1, 1) // byte 0x01
	c := leaf("c", 2, 1) // byte 0x00
	s := structOf("p", 0, a, b, c)
	if err := s.Sort(SortByValueBytes, SortAscending, prov); err != nil {
		t.Fatalf("sort error: %v", err)
	}
	got := []string{s.Struct.Members[0].VariableName, s.Struct.Members[1].VariableName, s.Struct.Members[2].VariableName}
	want := []string{"c", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got order %v, want %v", got, want)
		}
	}
}

func TestSortByNameDescending(t *testing.T) {
	s := structOf("p", 0, leaf("a", 0, 1), leaf("c", 1, 1), leaf("b", 2, 1))
	if err := s.Sort(SortByName, SortDescending, nil); err != nil {
		t.Fatalf("sort error: %v", err)
	}
	got := []string{s.Struct.Members[0].VariableName, s.Struct.Members[1].VariableName, s.Struct.Members[2].VariableName}
	want := []string{"c", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got order %v, want %v", got, want)
		}
	}
}

func TestEqualTreatsUnsetEndianAsHostEndian(t *testing.T) {
	a := leaf("x", 0, 4)
	a.Endian = EndianUnset
	b := leaf("x", 0, 4)
	b.Endian = EndianLittle
	if !a.Equal(b) {
		t.Fatalf("patterns differing only by EndianUnset vs host endian should be equal")
	}
}

func TestReadIntRespectsEndian(t *testing.T) {
	prov := provider.NewMemoryProvider([]byte{0x01, 0x02}, 0)
	p := leaf("x", 0, 2)
	le, err := p.ReadInt(prov, EndianLittle)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if le.Uint64() != 0x0201 {
		t.Fatalf("got 0x%x", le.Uint64())
	}
	be, err := p.ReadInt(prov, EndianBig)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if be.Uint64() != 0x0102 {
		t.Fatalf("got 0x%x", be.Uint64())
	}
}

func TestReadIntTruncatesPastProviderEnd(t *testing.T) {
	prov := provider.NewMemoryProvider([]byte{0x01}, 0)
	p := leaf("x", 0, 4)
	v, err := p.ReadInt(prov, EndianLittle)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if v.Uint64() != numeric.FromBytes([]byte{0x01, 0, 0, 0}, true, false).Uint64() {
		t.Fatalf("got unexpected zero-filled tail value: 0x%x", v.Uint64())
	}
}
