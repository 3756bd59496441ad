//go:build unix

package provider

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MmapProvider memory-maps a file read-only so large binaries can be read
// without copying them into the Go heap. This is the provider the CLI's
// `run`/`dump`/`serve` commands use for real files; MemoryProvider
// stays in play for tests and small inline buffers.
type MmapProvider struct {
	base uint64
	file *os.File
	data []byte
}

// OpenMmapProvider maps path read-only at the given base address.
func OpenMmapProvider(path string, base uint64) (*MmapProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	size := info.Size()
	if size == 0 {
		return &MmapProvider{base: base, file: f}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return &MmapProvider{base: base, file: f, data: data}, nil
}

// Close unmaps the file and releases the descriptor.
func (p *MmapProvider) Close() error {
	var err error
	if p.data != nil {
		err = unix.Munmap(p.data)
	}
	if cerr := p.file.Close(); err == nil {
		err = cerr
	}
	return err
}

func (p *MmapProvider) BaseAddress() uint64 { return p.base }
func (p *MmapProvider) Size() uint64        { return uint64(len(p.data)) }

func (p *MmapProvider) PageCount() uint32 {
	if len(p.data) == 0 {
		return 0
	}
	return uint32((uint64(len(p.data)) + pageSize - 1) / pageSize)
}

func (p *MmapProvider) CurrentPage() uint32        { return 0 }
func (p *MmapProvider) CurrentPageAddress() uint64 { return p.base }

func (p *MmapProvider) Read(address, length uint64) ([]byte, bool, error) {
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
	copy(out, p.data[address:end])
	return out, truncated, nil
}

func (p *MmapProvider) RegionValidity(address uint64) (Region, bool) {
	if address < uint64(len(p.data)) {
		return RegionValid, true
	}
	return RegionInvalid, false
}
