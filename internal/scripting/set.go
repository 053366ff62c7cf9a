package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Set holds named events.
//
// Set is safe for concurrent use.
type Set struct {
	mu     sync.RWMutex
	events map[string]*Event
	limit  int
	logger *zap.Logger
}

// NewSet creates an empty Set whose events run with instLimit opcodes per
// evaluation (0 = DefaultInstructionLimit).
//
// Precondition: logger must be non-nil.
func NewSet(instLimit int, logger *zap.Logger) *Set {
	return &Set{
		events: make(map[string]*Event),
		limit:  instLimit,
		logger: logger,
	}
}

// Add compiles source as event name, replacing any event of the same name.
func (s *Set) Add(name, source string) error {
	if name == "" {
		return fmt.Errorf("scripting: event name must not be empty")
	}
	ev, err := Compile(name, source, s.limit)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if old, ok := s.events[name]; ok {
		old.Close()
	}
	s.events[name] = ev
	s.mu.Unlock()

	s.logger.Debug("event loaded", zap.String("event", name))
	return nil
}

// LoadDir adds every *.lua file in dir, in lexicographic order, naming each
// event after its file without the extension.
//
// Precondition: dir must be a readable directory.
func (s *Set) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading event dir %q: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		path := filepath.Join(dir, f)
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("scripting: reading %q: %w", path, err)
		}
		if err := s.Add(strings.TrimSuffix(f, ".lua"), string(src)); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the named event.
func (s *Set) Get(name string) (*Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[name]
	return ev, ok
}

// Names returns the event names in sorted order.
func (s *Set) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.events))
	for n := range s.events {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Close releases every event.
func (s *Set) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, ev := range s.events {
		ev.Close()
		delete(s.events, name)
	}
}
