// Package pattern implements the evaluator's output value model: a typed,
// addressable record of every decoded field (spec §3 "Pattern", §4.5
// "Pattern tree"). A Pattern owns its children exclusively; clones are
// deep. Leaf patterns do not cache their decoded value — like the source
// this is grounded on (original_source/lib/libimhex/include/hex/pattern_language/pattern_data.hpp,
// PatternDataUnsigned::getFormattedValue and friends), they re-read through
// the Provider on every Format/Value call so that edits to the underlying
// bytes are reflected without re-evaluating the whole tree.
package pattern

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/vellumlang/vellum/pkg/numeric"
	"github.com/vellumlang/vellum/pkg/provider"
)

// Kind is the pattern tree's tagged-union discriminator.
type Kind int

const (
	KindPadding Kind = iota
	KindUnsigned
	KindSigned
	KindFloat
	KindBoolean
	KindCharacter
	KindCharacter16
	KindString
	KindString16
	KindPointer
	KindStaticArray
	KindDynamicArray
	KindStruct
	KindUnion
	KindEnum
	KindBitfield
	KindBitfieldField
)

func (k Kind) String() string {
	names := [...]string{
		"padding", "u", "s", "float", "bool", "char", "char16", "string", "string16",
		"pointer", "static array", "array", "struct", "union", "enum", "bitfield", "bitfield field",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// Endian is an explicit little/big endianness, or Unset to defer to the
// evaluator's default (spec §3 invariant: "endian: little|big (defaulted
// from evaluator if unset)").
type Endian int

const (
	EndianUnset Endian = iota
	EndianLittle
	EndianBig
)

// EnumEntry is one (value, name) pair of an enum pattern.
type EnumEntry struct {
	Value numeric.Int128
	Name  string
}

// PointerData holds a pointer pattern's pointee and rebase bookkeeping.
type PointerData struct {
	Pointee          *Pattern
	PointedAtAddress uint64
	PointerBase      uint64 // the provider base address in effect when read
}

// StaticArrayData stores one template child plus a logical entry count,
// giving O(1) random access without materializing every entry — used when
// every element has the same fixed size (spec §4.5).
type StaticArrayData struct {
	Template   *Pattern
	EntryCount uint64
}

// DynamicArrayData stores a heterogeneous vector of children, needed when
// per-element size depends on the data itself.
type DynamicArrayData struct {
	Entries []*Pattern
}

type StructData struct {
	Members []*Pattern
}

type UnionData struct {
	Members []*Pattern
}

type EnumData struct {
	UnderlyingSize uint64
	Entries        []EnumEntry
}

type BitfieldData struct {
	Fields []*Pattern // each a KindBitfieldField pattern
}

// BitfieldFieldData is the payload of a KindBitfieldField pattern: its bit
// range within the owning bitfield's bytes, packed MSB-first (resolved from
// original_source/.../pattern_data.hpp's PatternDataBitfieldField, see
// DESIGN.md).
type BitfieldFieldData struct {
	BitOffset uint8
	BitSize   uint8
	Owner     *Pattern
}

// Pattern is the evaluator's typed annotation of a byte range. Exactly one
// of the Kind-specific payload fields (Pointer/Array/Struct/...) is
// populated, selected by Kind; this is the tagged-sum-via-struct idiom (see
// DESIGN.md on the source's virtual-inheritance pattern hierarchy).
type Pattern struct {
	Kind Kind

	Offset uint64
	Size   uint64
	Color  uint32

	VariableName string
	DisplayName  string
	TypeName     string

	Endian Endian

	Hidden      bool
	Local       bool
	ManualColor bool
	Truncated   bool

	Comment      string
	TransformFn  string
	FormatterFn  string

	Pointer       *PointerData
	StaticArray   *StaticArrayData
	DynamicArray  *DynamicArrayData
	Struct        *StructData
	Union         *UnionData
	Enum          *EnumData
	Bitfield      *BitfieldData
	BitfieldField *BitfieldFieldData
}

// Name returns the display name if set, else the variable name.
func (p *Pattern) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.VariableName
}

// EffectiveEndian resolves Endian against a default when unset.
func (p *Pattern) EffectiveEndian(def Endian) Endian {
	if p.Endian == EndianUnset {
		return def
	}
	return p.Endian
}

// Children returns the visible child list for container kinds (struct,
// union, bitfield, dynamic array); leaf kinds and static arrays return nil
// (a static array's entries come from ArrayEntry). The slice
// is the live backing storage — callers that reorder it (Sort) mutate the
// pattern in place, matching the source's sort-in-place table view.
func (p *Pattern) Children() []*Pattern {
	switch p.Kind {
	case KindStruct:
		return p.Struct.Members
	case KindUnion:
		return p.Union.Members
	case KindBitfield:
		return p.Bitfield.Fields
	case KindDynamicArray:
		return p.DynamicArray.Entries
	case KindStaticArray:
		// No child slice is materialized for a static array; ArrayEntry
		// builds one entry at a time.
		return nil
	default:
		return nil
	}
}

// ArrayEntry returns the logical entry at idx for either array variant,
// computing a static array's offset arithmetically instead of
// materializing every entry (spec §4.5).
func (p *Pattern) ArrayEntry(idx uint64) (*Pattern, error) {
	switch p.Kind {
	case KindStaticArray:
		if idx >= p.StaticArray.EntryCount {
			return nil, fmt.Errorf("index %d out of bounds (count %d)", idx, p.StaticArray.EntryCount)
		}
		entry := p.StaticArray.Template.Clone()
		entry.Offset = p.Offset + idx*p.StaticArray.Template.Size
		entry.VariableName = fmt.Sprintf("[%d]", idx)
		return entry, nil
	case KindDynamicArray:
		if idx >= uint64(len(p.DynamicArray.Entries)) {
			return nil, fmt.Errorf("index %d out of bounds (count %d)", idx, len(p.DynamicArray.Entries))
		}
		return p.DynamicArray.Entries[idx], nil
	default:
		return nil, fmt.Errorf("%s is not an array", p.Kind)
	}
}

// EntryCount returns the number of elements for either array kind.
func (p *Pattern) EntryCount() uint64 {
	switch p.Kind {
	case KindStaticArray:
		return p.StaticArray.EntryCount
	case KindDynamicArray:
		return uint64(len(p.DynamicArray.Entries))
	default:
		return 0
	}
}

// Clone performs a deep copy, including children and any pointee, yielding
// a pattern that compares Equal to its source (spec §8 "Clone
// equivalence").
func (p *Pattern) Clone() *Pattern {
	if p == nil {
		return nil
	}
	clone := *p
	switch p.Kind {
	case KindPointer:
		pd := *p.Pointer
		pd.Pointee = p.Pointer.Pointee.Clone()
		clone.Pointer = &pd
	case KindStaticArray:
		sd := *p.StaticArray
		sd.Template = p.StaticArray.Template.Clone()
		clone.StaticArray = &sd
	case KindDynamicArray:
		entries := make([]*Pattern, len(p.DynamicArray.Entries))
		for i, e := range p.DynamicArray.Entries {
			entries[i] = e.Clone()
		}
		clone.DynamicArray = &DynamicArrayData{Entries: entries}
	case KindStruct:
		members := make([]*Pattern, len(p.Struct.Members))
		for i, m := range p.Struct.Members {
			members[i] = m.Clone()
		}
		clone.Struct = &StructData{Members: members}
	case KindUnion:
		members := make([]*Pattern, len(p.Union.Members))
		for i, m := range p.Union.Members {
			members[i] = m.Clone()
		}
		clone.Union = &UnionData{Members: members}
	case KindEnum:
		ed := *p.Enum
		ed.Entries = append([]EnumEntry(nil), p.Enum.Entries...)
		clone.Enum = &ed
	case KindBitfield:
		fields := make([]*Pattern, len(p.Bitfield.Fields))
		for i, f := range p.Bitfield.Fields {
			cf := f.Clone()
			fields[i] = cf
		}
		clone.Bitfield = &BitfieldData{Fields: fields}
		for _, f := range clone.Bitfield.Fields {
			f.BitfieldField.Owner = &clone
		}
	case KindBitfieldField:
		bf := *p.BitfieldField
		clone.BitfieldField = &bf
	}
	return &clone
}

// Equal is structural equality on type, span, and children; it tolerates
// EndianUnset vs. the host's effective endian as equal (spec §3 invariant).
func (p *Pattern) Equal(o *Pattern) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.Kind != o.Kind || p.Offset != o.Offset || p.Size != o.Size || p.TypeName != o.TypeName {
		return false
	}
	switch p.Kind {
	case KindPointer:
		return p.Pointer.PointedAtAddress == o.Pointer.PointedAtAddress &&
			p.Pointer.Pointee.Equal(o.Pointer.Pointee)
	case KindStaticArray:
		return p.StaticArray.EntryCount == o.StaticArray.EntryCount &&
			p.StaticArray.Template.Equal(o.StaticArray.Template)
	case KindDynamicArray:
		return equalSlice(p.DynamicArray.Entries, o.DynamicArray.Entries)
	case KindStruct:
		return equalSlice(p.Struct.Members, o.Struct.Members)
	case KindUnion:
		return equalSlice(p.Union.Members, o.Union.Members)
	case KindEnum:
		if len(p.Enum.Entries) != len(o.Enum.Entries) {
			return false
		}
		for i := range p.Enum.Entries {
			if p.Enum.Entries[i].Name != o.Enum.Entries[i].Name ||
				!p.Enum.Entries[i].Value.Equal(o.Enum.Entries[i].Value) {
				return false
			}
		}
		return true
	case KindBitfield:
		return equalSlice(p.Bitfield.Fields, o.Bitfield.Fields)
	case KindBitfieldField:
		return p.BitfieldField.BitOffset == o.BitfieldField.BitOffset &&
			p.BitfieldField.BitSize == o.BitfieldField.BitSize
	default:
		return true
	}
}

func equalSlice(a, b []*Pattern) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// GetPattern finds the deepest non-hidden pattern covering offset,
// descending into containers and using arithmetic (not enumeration) to
// index a static array (spec §4.5).
func (p *Pattern) GetPattern(offset uint64) *Pattern {
	if p.Hidden || offset < p.Offset || offset >= p.Offset+p.Size {
		return nil
	}
	switch p.Kind {
	case KindStruct:
		for _, m := range p.Struct.Members {
			if found := m.GetPattern(offset); found != nil {
				return found
			}
		}
	case KindUnion:
		for _, m := range p.Union.Members {
			if found := m.GetPattern(offset); found != nil {
				return found
			}
		}
	case KindStaticArray:
		if p.StaticArray.Template.Size > 0 {
			idx := (offset - p.Offset) / p.StaticArray.Template.Size
			entry, err := p.ArrayEntry(idx)
			if err == nil {
				if found := entry.GetPattern(offset); found != nil {
					return found
				}
			}
		}
	case KindDynamicArray:
		for _, e := range p.DynamicArray.Entries {
			if found := e.GetPattern(offset); found != nil {
				return found
			}
		}
	case KindPointer:
		if found := p.Pointer.Pointee.GetPattern(offset); found != nil {
			return found
		}
	case KindBitfield:
		for _, f := range p.Bitfield.Fields {
			if found := f.GetPattern(offset); found != nil {
				return found
			}
		}
	}
	return p
}

// HighlightedAddresses contributes one (address, color) pair per byte this
// pattern covers; a hidden pattern contributes nothing. A struct, union or
// dynamic array contributes only its non-hidden children's bytes, each with
// the child's color. A pointer pattern contributes both its own range and
// its pointee's, mirroring PatternDataPointer::getHighlightedAddresses in
// original_source (it calls the base implementation and then recurses into
// m_pointedAt).
func (p *Pattern) HighlightedAddresses(out map[uint64]uint32) {
	if p.Hidden {
		return
	}
	switch p.Kind {
	case KindStruct, KindUnion, KindDynamicArray:
		for _, c := range p.Children() {
			c.HighlightedAddresses(out)
		}
		return
	}
	for i := uint64(0); i < p.Size; i++ {
		out[p.Offset+i] = p.Color
	}
	if p.Kind == KindPointer {
		p.Pointer.Pointee.HighlightedAddresses(out)
	}
}

// Rebase adjusts a pointer pattern's pointed-at address as if the
// provider's base address moved to newBase, without re-evaluating
// (PatternDataPointer::rebase in original_source).
func (p *Pattern) Rebase(newBase uint64) {
	if p.Kind != KindPointer {
		return
	}
	p.Pointer.PointedAtAddress = (p.Pointer.Pointee.Offset - p.Pointer.PointerBase) + newBase
	p.Pointer.PointerBase = newBase
}

// SortKey names a sortable column of a container's visible children.
type SortKey int

const (
	SortByName SortKey = iota
	SortByOffset
	SortBySize
	SortByValueBytes
	SortByType
	SortByColor
)

type SortDirection int

const (
	SortAscending SortDirection = iota
	SortDescending
)

// Sort stably reorders a container's visible child list in place. Sorting
// by value compares the raw bytes each pattern covers, unsigned
// byte-for-byte, falling back to offset order on a tie or on a read error —
// exactly PatternData::sortPatternDataTable's rule in original_source,
// which reads both operands through the provider and does a raw memcmp
// rather than decoding a numeric value first.
func (p *Pattern) Sort(key SortKey, dir SortDirection, prov provider.Provider) error {
	children := p.Children()
	if children == nil {
		return nil
	}
	var sortErr error
	less := func(i, j int) bool {
		a, b := children[i], children[j]
		if dir == SortDescending {
			a, b = b, a
		}
		var r bool
		switch key {
		case SortByName:
			r = a.Name() < b.Name()
		case SortByOffset:
			r = a.Offset < b.Offset
		case SortBySize:
			r = a.Size < b.Size
		case SortByType:
			r = a.TypeName < b.TypeName
		case SortByColor:
			r = a.Color < b.Color
		case SortByValueBytes:
			ab, _, errA := prov.Read(a.Offset, a.Size)
			bb, _, errB := prov.Read(b.Offset, b.Size)
			if errA != nil || errB != nil {
				if errA != nil {
					sortErr = errA
				} else {
					sortErr = errB
				}
				r = a.Offset < b.Offset
				break
			}
			cmp := bytesCompare(ab, bb)
			if cmp == 0 {
				r = a.Offset < b.Offset
			} else {
				r = cmp < 0
			}
		}
		return r
	}
	sort.SliceStable(children, less)
	return sortErr
}

func bytesCompare(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}

// Format produces a one-line display string for UI tables, honoring a
// user-supplied formatter function name if attached (the evaluator resolves
// FormatterFn; this package only reports the default rendering).
func (p *Pattern) Format(prov provider.Provider, defaultEndian Endian) (string, error) {
	switch p.Kind {
	case KindPadding:
		return "padding", nil
	case KindUnsigned, KindSigned:
		v, err := p.ReadInt(prov, defaultEndian)
		if err != nil {
			return "", err
		}
		return v.String(), nil
	case KindFloat:
		v, err := p.ReadFloat(prov, defaultEndian)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%g", v), nil
	case KindBoolean:
		data, _, err := prov.Read(p.Offset, 1)
		if err != nil {
			return "", err
		}
		if data[0] != 0 {
			return "true", nil
		}
		return "false", nil
	case KindCharacter:
		data, _, err := prov.Read(p.Offset, 1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("'%c'", data[0]), nil
	case KindCharacter16:
		return p.formatChar16(prov, defaultEndian)
	case KindString, KindString16:
		return p.formatString(prov, defaultEndian)
	case KindEnum:
		return p.formatEnum(prov, defaultEndian)
	case KindPointer:
		return fmt.Sprintf("0x%x", p.Pointer.PointedAtAddress), nil
	case KindBitfieldField:
		v, err := p.readBitfieldField(prov)
		if err != nil {
			return "", err
		}
		return v.String(), nil
	default:
		return fmt.Sprintf("%s { ... }", p.TypeName), nil
	}
}

func (p *Pattern) formatChar16(prov provider.Provider, def Endian) (string, error) {
	data, _, err := prov.Read(p.Offset, 2)
	if err != nil {
		return "", err
	}
	v := numeric.FromBytes(data, p.EffectiveEndian(def) != EndianBig, false)
	return fmt.Sprintf("'\\u%04x'", v.Uint64()), nil
}

func (p *Pattern) formatString(prov provider.Provider, def Endian) (string, error) {
	data, _, err := prov.Read(p.Offset, p.Size)
	if err != nil {
		return "", err
	}
	if p.Kind == KindString {
		return fmt.Sprintf("%q", string(data)), nil
	}
	var b strings.Builder
	le := p.EffectiveEndian(def) != EndianBig
	for i := 0; i+1 < len(data); i += 2 {
		v := numeric.FromBytes(data[i:i+2], le, false)
		b.WriteRune(rune(v.Uint64()))
	}
	return fmt.Sprintf("%q", b.String()), nil
}

func (p *Pattern) formatEnum(prov provider.Provider, def Endian) (string, error) {
	data, _, err := prov.Read(p.Offset, p.Enum.UnderlyingSize)
	if err != nil {
		return "", err
	}
	v := numeric.FromBytes(data, p.EffectiveEndian(def) != EndianBig, false)
	for _, e := range p.Enum.Entries {
		if e.Value.Equal(v) {
			return fmt.Sprintf("%s::%s", p.TypeName, e.Name), nil
		}
	}
	return fmt.Sprintf("%s::%s (unknown)", p.TypeName, v.String()), nil
}

// ReadInt reads a numeric leaf pattern's value through prov, honoring its
// endianness.
func (p *Pattern) ReadInt(prov provider.Provider, def Endian) (numeric.Int128, error) {
	data, _, err := prov.Read(p.Offset, p.Size)
	if err != nil {
		return numeric.Int128{}, err
	}
	le := p.EffectiveEndian(def) != EndianBig
	return numeric.FromBytes(data, le, p.Kind == KindSigned), nil
}

// ReadFloat reads a float/double leaf pattern's value.
func (p *Pattern) ReadFloat(prov provider.Provider, def Endian) (float64, error) {
	data, _, err := prov.Read(p.Offset, p.Size)
	if err != nil {
		return 0, err
	}
	v := numeric.FromBytes(data, p.EffectiveEndian(def) != EndianBig, false)
	bits := v.Uint64()
	if p.Size == 4 {
		return float64(math.Float32frombits(uint32(bits))), nil
	}
	return math.Float64frombits(bits), nil
}

func (p *Pattern) readBitfieldField(prov provider.Provider) (numeric.Int128, error) {
	owner := p.BitfieldField.Owner
	data, _, err := prov.Read(owner.Offset, owner.Size)
	if err != nil {
		return numeric.Int128{}, err
	}
	return ExtractBits(data, p.BitfieldField.BitOffset, p.BitfieldField.BitSize), nil
}
