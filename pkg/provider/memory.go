package provider

// pageSize is the logical page size MemoryProvider and MmapProvider report
// through PageCount/CurrentPage; it has no effect on reads, only on the
// paging metadata the hex-editor viewport (a collaborator, out of scope
// here) uses to size its minimap.
const pageSize = 0x10000

// MemoryProvider is a byte source backed by an in-memory buffer. It is the
// provider used by every test in this module and, empty, by the CLI when
// no data file is given.
type MemoryProvider struct {
	base uint64
	data []byte
}

// NewMemoryProvider wraps data as a Provider with the given base address.
func NewMemoryProvider(data []byte, base uint64) *MemoryProvider {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &MemoryProvider{base: base, data: buf}
}

func (p *MemoryProvider) BaseAddress() uint64 { return p.base }
func (p *MemoryProvider) Size() uint64        { return uint64(len(p.data)) }

func (p *MemoryProvider) PageCount() uint32 {
	if len(p.data) == 0 {
		return 0
	}
	return uint32((uint64(len(p.data)) + pageSize - 1) / pageSize)
}

func (p *MemoryProvider) CurrentPage() uint32        { return 0 }
func (p *MemoryProvider) CurrentPageAddress() uint64 { return p.base }

func (p *MemoryProvider) Read(address, length uint64) ([]byte, bool, error) {
	out := make([]byte, length)
	if address >= uint64(len(p.data)) {
		return out, length > 0, nil
	}
	end := address + length
	truncated := false
	if end > uint64(len(p.data)) {
		end = uint64(len(p.data))
		truncated = true
	}
	n := copy(out, p.data[address:end])
	_ = n
	return out, truncated, nil
}

func (p *MemoryProvider) RegionValidity(address uint64) (Region, bool) {
	if address < uint64(len(p.data)) {
		return RegionValid, true
	}
	return RegionInvalid, false
}

// SetByte overwrites a single byte; used by tests simulating edits.
func (p *MemoryProvider) SetByte(offset uint64, b byte) {
	if offset < uint64(len(p.data)) {
		p.data[offset] = b
	}
}

// Append grows the buffer by data and returns the offset it was written
// at; used by pkg/eval's evaluation stack to bump-allocate storage for
// local (non-placed) variables.
func (p *MemoryProvider) Append(data []byte) uint64 {
	offset := uint64(len(p.data))
	p.data = append(p.data, data...)
	return offset
}

// WriteAt overwrites length bytes starting at offset, growing the buffer
// if necessary; used to update a local variable's stack storage after an
// assignment.
func (p *MemoryProvider) WriteAt(offset uint64, data []byte) {
	end := offset + uint64(len(data))
	if end > uint64(len(p.data)) {
		grown := make([]byte, end)
		copy(grown, p.data)
		p.data = grown
	}
	copy(p.data[offset:end], data)
}
