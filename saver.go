package orderpdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Saver persists a finished document.
type Saver interface {
	// Save stores data under name and returns where it went. On error
	// nothing must remain at the destination.
	Save(name string, data []byte) (string, error)
}

// DirSaver writes artifacts into a directory through a temporary file that
// is renamed into place, so readers never observe a partial document.
type DirSaver struct {
	Dir  string
	Perm os.FileMode // defaults to 0o644
}

func (s DirSaver) Save(name string, data []byte) (path string, err error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("orderpdf: creating output directory: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("orderpdf: creating temp file: %w", err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("orderpdf: writing %s: %w", name, err)
	}
	if err = f.Close(); err != nil {
		return "", fmt.Errorf("orderpdf: writing %s: %w", name, err)
	}
	perm := s.Perm
	if perm == 0 {
		perm = 0o644
	}
	if err = os.Chmod(tmp, perm); err != nil {
		return "", fmt.Errorf("orderpdf: chmod %s: %w", name, err)
	}
	path = filepath.Join(dir, name)
	if err = os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("orderpdf: saving %s: %w", name, err)
	}
	return path, nil
}

// MemorySaver keeps artifacts in memory. It is safe for concurrent use.
type MemorySaver struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (s *MemorySaver) Save(name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = make(map[string][]byte)
	}
	s.files[name] = append([]byte(nil), data...)
	return "mem://" + name, nil
}

// Get returns a saved artifact.
func (s *MemorySaver) Get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[name]
	return b, ok
}

// Names lists saved artifacts in lexical order.
func (s *MemorySaver) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.files))
	for n := range s.files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
