// Package pack de-duplicates vertices across meshes into one shared pool and
// packs the remapped indices and the pool into a single binary buffer.
package pack

import (
	"errors"
	"fmt"

	"github.com/Faultbox/primgltf/pkg/scene"
)

// MaxPoolSize is the largest pool addressable with 16-bit indices.
const MaxPoolSize = 65535

// Packing errors.
var (
	ErrVertexPoolOverflow = errors.New("vertex pool exceeds 16-bit index range")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrEmptyPool          = errors.New("no vertices to pack")
)

// Pool is the ordered set of unique vertices shared by every packed mesh.
type Pool struct {
	vertices []scene.Vertex
	index    map[scene.VertexKey]uint32
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{index: make(map[scene.VertexKey]uint32)}
}

// Add returns the pool index of v, appending it when it has not been seen.
func (p *Pool) Add(v scene.Vertex) uint32 {
	key := v.Key()
	if idx, ok := p.index[key]; ok {
		return idx
	}
	idx := uint32(len(p.vertices))
	p.vertices = append(p.vertices, v)
	p.index[key] = idx
	return idx
}

// Len returns the number of unique vertices.
func (p *Pool) Len() int {
	return len(p.vertices)
}

// Vertices returns the pool in index order.
func (p *Pool) Vertices() []scene.Vertex {
	return p.vertices
}

// Collect adds every vertex of the mesh and returns, for each local vertex,
// its pool index.
func (p *Pool) Collect(vertices []scene.Vertex) []uint32 {
	mapping := make([]uint32, len(vertices))
	for i, v := range vertices {
		mapping[i] = p.Add(v)
	}
	return mapping
}

// Remap rewrites a mesh's indices through the mapping returned by Collect.
// The result has the same length and order as indices.
func Remap(indices []uint32, mapping []uint32) ([]uint16, error) {
	out := make([]uint16, len(indices))
	for i, idx := range indices {
		if int(idx) >= len(mapping) {
			return nil, fmt.Errorf("%w: index %d references vertex %d of %d", ErrIndexOutOfRange, i, idx, len(mapping))
		}
		global := mapping[idx]
		if global > MaxPoolSize {
			return nil, fmt.Errorf("%w: pool index %d", ErrVertexPoolOverflow, global)
		}
		out[i] = uint16(global)
	}
	return out, nil
}
