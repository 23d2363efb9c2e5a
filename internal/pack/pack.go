package pack

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Faultbox/primgltf/pkg/scene"
)

const (
	indexSize   = 2
	floatSize   = 4
	vertexSize  = 8 * floatSize
	normalStart = 3 * floatSize
	uvStart     = 6 * floatSize
)

// Input is one mesh to pack.
type Input struct {
	Name     string
	Vertices []scene.Vertex
	Indices  []uint32
}

// Layout is where one mesh's indices ended up in the packed buffer.
type Layout struct {
	Name string
	// IndexOffset is the byte offset of the mesh's indices within the index region.
	IndexOffset int
	Indices     []uint16
}

// IndexCount returns the number of indices of the mesh.
func (l *Layout) IndexCount() int {
	return len(l.Indices)
}

// Result is a packed buffer: [index region][padding][vertex region].
type Result struct {
	Data []byte

	// IndexBytes is the length of the index region without padding.
	IndexBytes int
	// VertexOffset is where the vertex region starts, 4-byte aligned.
	VertexOffset int
	// VertexBytes is the length of the vertex region.
	VertexBytes int

	Pool    []scene.Vertex
	Meshes  []Layout
	Min     [3]float32
	Max     [3]float32
	Sources int
}

// Pack de-duplicates the vertices of every mesh, in order, into one pool,
// remaps each mesh's indices into it, and lays everything out in one buffer.
// It fails with ErrVertexPoolOverflow when the pool would need indices wider
// than 16 bits; nothing is truncated. Meshes without a single vertex between
// them are refused with ErrEmptyPool.
func Pack(meshes []Input) (*Result, error) {
	pool := NewPool()

	// Collect: assign pool indices in mesh order, vertex order.
	mappings := make([][]uint32, len(meshes))
	sources := 0
	for i, m := range meshes {
		mappings[i] = pool.Collect(m.Vertices)
		sources += len(m.Vertices)
	}
	if len(meshes) > 0 && pool.Len() == 0 {
		return nil, fmt.Errorf("%w: %d meshes", ErrEmptyPool, len(meshes))
	}
	if pool.Len() > MaxPoolSize {
		return nil, fmt.Errorf("%w: %d unique vertices, limit %d", ErrVertexPoolOverflow, pool.Len(), MaxPoolSize)
	}

	// Remap: rewrite every index through its mesh's mapping.
	res := &Result{
		Pool:    pool.Vertices(),
		Meshes:  make([]Layout, len(meshes)),
		Sources: sources,
	}
	for i, m := range meshes {
		remapped, err := Remap(m.Indices, mappings[i])
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
		}
		res.Meshes[i] = Layout{
			Name:        m.Name,
			IndexOffset: res.IndexBytes,
			Indices:     remapped,
		}
		res.IndexBytes += len(remapped) * indexSize
	}

	res.VertexOffset = align4(res.IndexBytes)
	res.VertexBytes = pool.Len() * vertexSize
	res.Data = make([]byte, res.VertexOffset+res.VertexBytes)

	writeVertices(res.Data[res.VertexOffset:], res.Pool)
	for _, l := range res.Meshes {
		dst := res.Data[l.IndexOffset:]
		for j, idx := range l.Indices {
			binary.LittleEndian.PutUint16(dst[j*indexSize:], idx)
		}
	}

	res.Min, res.Max = bounds(res.Pool)
	return res, nil
}

// DedupRatio returns unique vertices over submitted vertices.
func (r *Result) DedupRatio() float64 {
	if r.Sources == 0 {
		return 1
	}
	return float64(len(r.Pool)) / float64(r.Sources)
}

func writeVertices(dst []byte, vertices []scene.Vertex) {
	off := 0
	put := func(f float32) {
		binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(f))
		off += floatSize
	}
	for _, v := range vertices {
		put(v.Position[0])
		put(v.Position[1])
		put(v.Position[2])
		put(v.Normal[0])
		put(v.Normal[1])
		put(v.Normal[2])
		put(v.TexCoord[0])
		put(v.TexCoord[1])
	}
}

func bounds(vertices []scene.Vertex) (lo, hi [3]float32) {
	if len(vertices) == 0 {
		return lo, hi
	}
	lo = vertices[0].Position
	hi = vertices[0].Position
	for _, v := range vertices[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], v.Position[k])
			hi[k] = max(hi[k], v.Position[k])
		}
	}
	return lo, hi
}

func align4(n int) int {
	return (n + 3) &^ 3
}
