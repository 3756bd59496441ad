// Package liveserver implements `vellum serve`'s live-reload loop (spec
// §4.7's highlighter and §4.6's evaluator "must converge... while the
// editor keeps typing, debounces: a new run supersedes a pending one").
// It watches a pattern source file and the extra paths listed in
// Server.Includes with fsnotify, re-runs the pipeline on change, and
// pushes the resulting pipeline Result to every connected browser over a
// gorilla/websocket connection. jpillora/backoff paces the watcher's
// retry loop when the filesystem watch itself needs re-arming (e.g. the
// editor replaces the file instead of writing in place, which drops the
// inotify watch on some platforms).
package liveserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"
)

// Pipeline runs the full lexer→...→evaluator pipeline over the current
// contents of the watched file and returns a JSON-serializable result.
// Server is deliberately decoupled from pkg/lexer/.../pkg/eval so it has
// no import cycle concerns; cmd/vellum supplies the closure.
type Pipeline func(path string) (Result, error)

// Result is whatever a Pipeline run produces; cmd/vellum fills this with
// the pattern-tree JSON (internal/patternjson), or with the first error
// message when the run failed.
type Result struct {
	OK     bool            `json:"ok"`
	Error  string          `json:"error,omitempty"`
	Patterns json.RawMessage `json:"patterns,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server watches one pattern file, re-running pipeline on every change
// and fanning the result out to every connected client.
type Server struct {
	Path     string
	Includes []string
	Pipeline Pipeline
	// Debounce coalesces a burst of filesystem events (many editors write
	// a file as truncate+several writes) into a single re-run.
	Debounce time.Duration

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// New builds a Server with spec-sane defaults (100ms debounce, matching
// the highlighter's "converges in at most two passes" turnaround goal).
func New(path string, includes []string, pipeline Pipeline) *Server {
	return &Server{
		Path:     path,
		Includes: includes,
		Pipeline: pipeline,
		Debounce: 100 * time.Millisecond,
		clients:  map[*websocket.Conn]bool{},
	}
}

// ServeHTTP upgrades to a websocket, registers the connection, and runs
// the pipeline once right away, sending that result to the new
// connection so a newly connected browser doesn't wait for the next file
// change.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("liveserver: upgrade failed: %v", err)
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	if res, err := s.Pipeline.safeRun(s.Path); err == nil {
		_ = conn.WriteJSON(res)
	}

	go func() {
		defer s.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

func (p Pipeline) safeRun(path string) (Result, error) {
	return p(path)
}

// broadcast sends res to every connected client, dropping any that error
// (a closed browser tab leaves a dead connection until the next write).
func (s *Server) broadcast(res Result) {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteJSON(res); err != nil {
			s.drop(c)
		}
	}
}

// Watch runs the fsnotify loop until stop is closed, debouncing bursts
// of events and re-arming the watcher (with backoff) if the watched path
// is replaced rather than written in place.
func (s *Server) Watch(stop <-chan struct{}) error {
	b := &backoff.Backoff{Min: 50 * time.Millisecond, Max: 2 * time.Second, Factor: 2}

	for {
		err := s.watchOnce(stop, b)
		if err == nil {
			return nil // stop was closed
		}
		log.Printf("liveserver: watcher error: %v, retrying in %s", err, b.Duration())
		select {
		case <-stop:
			return nil
		case <-time.After(b.Duration()):
		}
	}
}

func (s *Server) watchOnce(stop <-chan struct{}, b *backoff.Backoff) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(s.Path); err != nil {
		return err
	}
	for _, inc := range s.Includes {
		_ = watcher.Add(inc) // a missing include is reported by the pipeline itself
	}

	var debounceTimer *time.Timer
	run := func() {
		res, err := s.Pipeline.safeRun(s.Path)
		if err != nil {
			res = Result{OK: false, Error: err.Error()}
		}
		s.broadcast(res)
	}

	for {
		select {
		case <-stop:
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&fsnotify.Rename != 0 && ev.Name == s.Path {
				// The editor replaced the file; fsnotify drops the watch on
				// the old inode. Bail out so the caller re-arms from scratch.
				return errors.New("watched file was replaced")
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(s.Debounce, run)
			b.Reset()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
