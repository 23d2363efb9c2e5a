// Package output decides where converted assets live and writes them there.
package output

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Faultbox/primgltf/pkg/gltf"
)

// fileNamespace seeds the content-derived file names.
var fileNamespace = uuid.MustParse("0d4f1a52-9b6e-4c39-8f1e-2a7c5d3b6e90")

// Resolver places each asset kind in its own subdirectory of Dir. File names
// are derived from the kind and asset name, so the same input always lands
// at the same path.
type Resolver struct {
	Dir     string
	BaseURI string

	mu   sync.Mutex
	seen map[string]gltf.Location
}

// NewResolver creates a resolver rooted at dir. URIs are relative to the
// document unless baseURI is set.
func NewResolver(dir, baseURI string) *Resolver {
	return &Resolver{
		Dir:     dir,
		BaseURI: baseURI,
		seen:    make(map[string]gltf.Location),
	}
}

// Resolve returns the location of an asset. Asking twice for the same asset
// returns the same location.
func (r *Resolver) Resolve(kind gltf.AssetKind, name string) (gltf.Location, error) {
	ext, err := extension(kind)
	if err != nil {
		return gltf.Location{}, err
	}
	if name == "" {
		return gltf.Location{}, fmt.Errorf("resolving %s: empty name", kind)
	}

	key := kind.String() + "/" + name

	r.mu.Lock()
	defer r.mu.Unlock()
	if loc, ok := r.seen[key]; ok {
		return loc, nil
	}

	file := uuid.NewSHA1(fileNamespace, []byte(key)).String() + ext
	loc := gltf.Location{
		Path: filepath.Join(r.Dir, kind.String(), file),
		URI:  r.uri(kind.String(), file),
	}
	r.seen[key] = loc
	return loc, nil
}

func (r *Resolver) uri(dir, file string) string {
	if r.BaseURI == "" {
		return path.Join(dir, file)
	}
	return strings.TrimSuffix(r.BaseURI, "/") + "/" + path.Join(dir, file)
}

func extension(kind gltf.AssetKind) (string, error) {
	switch kind {
	case gltf.KindImage:
		return ".png", nil
	case gltf.KindMesh, gltf.KindBuffer:
		return ".bin", nil
	case gltf.KindShader:
		return ".glsl", nil
	default:
		return "", fmt.Errorf("unknown asset kind %s", kind)
	}
}
