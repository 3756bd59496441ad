package liveserver

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatchRunsPipelineOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pattern.pat")
	if err := os.WriteFile(path, []byte("u8 x @ 0;"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var calls int32
	pipeline := func(p string) (Result, error) {
		atomic.AddInt32(&calls, 1)
		return Result{OK: true}, nil
	}

	s := New(path, nil, pipeline)
	s.Debounce = 10 * time.Millisecond

	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- s.Watch(stop) }()

	// Give the watcher time to arm before writing.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("u8 x @ 0; u8 y @ 1;"), 0644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&calls) == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	close(stop)
	<-done

	if atomic.LoadInt32(&calls) == 0 {
		t.Fatalf("expected the pipeline to run at least once after a file write")
	}
}

func TestNewDefaults(t *testing.T) {
	s := New("path.pat", []string{"inc.pat"}, func(string) (Result, error) { return Result{}, nil })
	if s.Debounce != 100*time.Millisecond {
		t.Fatalf("got debounce %v, want 100ms", s.Debounce)
	}
	if len(s.clients) != 0 {
		t.Fatalf("expected no clients initially")
	}
}
