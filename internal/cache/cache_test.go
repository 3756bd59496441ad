package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNeedsRegenerationDetectsChange(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "header.pat")
	if err := os.WriteFile(src, []byte("u32 x;"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c := New(filepath.Join(dir, "cache.json"))

	needs, err := c.NeedsRegeneration(src)
	if err != nil {
		t.Fatalf("NeedsRegeneration: %v", err)
	}
	if !needs {
		t.Fatalf("first sight of a file should need regeneration")
	}

	needs, err = c.NeedsRegeneration(src)
	if err != nil {
		t.Fatalf("NeedsRegeneration: %v", err)
	}
	if needs {
		t.Fatalf("unchanged file should not need regeneration")
	}

	if err := os.WriteFile(src, []byte("u32 x; u32 y;"), 0644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	needs, err = c.NeedsRegeneration(src)
	if err != nil {
		t.Fatalf("NeedsRegeneration: %v", err)
	}
	if !needs {
		t.Fatalf("changed file should need regeneration")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "header.pat")
	if err := os.WriteFile(src, []byte("u32 x;"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cachePath := filepath.Join(dir, "nested", "cache.json")

	c := New(cachePath)
	if err := c.UpdateHash(src); err != nil {
		t.Fatalf("UpdateHash: %v", err)
	}
	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(cachePath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	needs, err := loaded.NeedsRegeneration(src)
	if err != nil {
		t.Fatalf("NeedsRegeneration: %v", err)
	}
	if needs {
		t.Fatalf("loaded cache should already have the hash recorded")
	}
}

func TestLoadMissingFileIsEmptyCache(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(filepath.Join(dir, "does-not-exist.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Hashes) != 0 {
		t.Fatalf("expected empty cache, got %v", c.Hashes)
	}
}

func TestRemoveAndClear(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "header.pat")
	os.WriteFile(src, []byte("u32 x;"), 0644)

	c := New(filepath.Join(dir, "cache.json"))
	c.UpdateHash(src)
	if len(c.Hashes) != 1 {
		t.Fatalf("expected one entry")
	}
	c.Remove(src)
	if len(c.Hashes) != 0 {
		t.Fatalf("expected entry removed")
	}
	c.UpdateHash(src)
	c.Clear()
	if len(c.Hashes) != 0 {
		t.Fatalf("expected cache cleared")
	}
}
