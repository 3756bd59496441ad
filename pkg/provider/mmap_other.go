//go:build !unix

package provider

import "os"

// MmapProvider falls back to a plain read on non-unix targets, where
// golang.org/x/sys/unix's Mmap is unavailable; the Provider contract is
// identical either way.
type MmapProvider struct {
	*MemoryProvider
}

// OpenMmapProvider reads path into memory on platforms without unix mmap.
func OpenMmapProvider(path string, base uint64) (*MmapProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &MmapProvider{MemoryProvider: NewMemoryProvider(data, base)}, nil
}

func (p *MmapProvider) Close() error { return nil }
