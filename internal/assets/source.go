package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
)

// DirSource reads assets from a directory where each asset is stored as
// "<uuid>" or "<uuid>.<ext>".
type DirSource struct {
	dir string
}

// NewDirSource creates a source over an existing directory.
func NewDirSource(dir string) (*DirSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return &DirSource{dir: dir}, nil
}

// Read reads the asset file for id.
func (s *DirSource) Read(id uuid.UUID) ([]byte, error) {
	name := id.String()
	matches, err := filepath.Glob(filepath.Join(s.dir, name+".*"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	candidates := append([]string{filepath.Join(s.dir, name)}, matches...)

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

func (s *DirSource) String() string {
	return s.dir
}

// MemorySource serves assets from memory.
type MemorySource map[uuid.UUID][]byte

// Read returns the stored bytes for id.
func (s MemorySource) Read(id uuid.UUID) ([]byte, error) {
	data, ok := s[id]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (s MemorySource) String() string {
	return "memory"
}
