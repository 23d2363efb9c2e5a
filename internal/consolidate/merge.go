package consolidate

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/primgltf/pkg/scene"
)

// Mesh is one consolidated face. Vertex positions are relative to Anchor.
type Mesh struct {
	Name string
	Face scene.Face

	// Anchor is the local frame of the mesh. For merged meshes the rotation is
	// always identity and Scale is only carried along as a hint; vertex data
	// already includes every scale.
	Anchor scene.Transform

	// Sources are the distinct owner names of the contributing fragments,
	// in first-seen order.
	Sources []string

	// PassThrough is set when the mesh is a single unmerged fragment kept in
	// its own frame.
	PassThrough bool
}

// Consolidate clusters the fragments of one scope and merges every cluster.
// A scope with exactly one face is passed through unchanged.
func Consolidate(name string, frags []scene.MeshFragment, log *zap.Logger) []Mesh {
	if log == nil {
		log = zap.NewNop()
	}
	if len(frags) == 0 {
		return nil
	}
	if len(frags) == 1 {
		return []Mesh{passThrough(name, frags[0])}
	}

	clusters := Group(frags)
	meshes := make([]Mesh, 0, len(clusters))
	for i := range clusters {
		m := Merge(&clusters[i], log)
		m.Name = fmt.Sprintf("%s-%d", name, i)
		meshes = append(meshes, m)
	}

	log.Debug("consolidated scope",
		zap.String("scope", name),
		zap.Int("fragments", len(frags)),
		zap.Int("clusters", len(clusters)))

	return meshes
}

func passThrough(name string, frag scene.MeshFragment) Mesh {
	anchor := scene.IdentityTransform()
	if frag.Transform != nil {
		anchor = *frag.Transform
	}
	return Mesh{
		Name:        name,
		Face:        frag.Face,
		Anchor:      anchor,
		Sources:     []string{frag.Owner},
		PassThrough: true,
	}
}

// Merge combines every fragment of the cluster into one face anchored at the
// root fragment's world position with identity rotation.
func Merge(c *Cluster, log *zap.Logger) Mesh {
	if log == nil {
		log = zap.NewNop()
	}
	if len(c.Fragments) == 0 {
		return Mesh{Anchor: scene.IdentityTransform()}
	}

	root := rootFragment(c.Fragments)
	anchor := scene.IdentityTransform()
	if t := c.Fragments[root].Transform; t != nil {
		anchor.Position = t.Position
		anchor.Scale = t.Scale
	}

	var vertexCount, indexCount int
	for _, frag := range c.Fragments {
		vertexCount += len(frag.Face.Vertices)
		indexCount += len(frag.Face.Indices)
	}

	face := scene.Face{
		Vertices: make([]scene.Vertex, 0, vertexCount),
		Indices:  make([]uint32, 0, indexCount),
		Texture:  c.Texture,
	}
	var sources []string
	seen := make(map[string]bool)

	for _, frag := range c.Fragments {
		if face.Image == nil && frag.Face.Image != nil {
			face.Image = frag.Face.Image
		}

		xf := scene.IdentityTransform()
		if frag.Transform != nil {
			xf = *frag.Transform
		} else {
			log.Warn("fragment has no world transform, placing at origin",
				zap.String("owner", frag.Owner))
		}
		rot := xf.Rotation.Normalize()

		base := uint32(len(face.Vertices))
		for _, v := range frag.Face.Vertices {
			world := rot.Rotate(v.Position).Add(xf.Position)
			face.Vertices = append(face.Vertices, scene.Vertex{
				Position: world.Sub(anchor.Position),
				Normal:   rot.Rotate(v.Normal),
				TexCoord: v.TexCoord,
			})
		}
		for _, idx := range frag.Face.Indices {
			face.Indices = append(face.Indices, idx+base)
		}
		if !seen[frag.Owner] {
			seen[frag.Owner] = true
			sources = append(sources, frag.Owner)
		}
	}

	return Mesh{
		Face:    face,
		Anchor:  anchor,
		Sources: sources,
	}
}

// rootFragment picks the first fragment owned by a root prim, or the first fragment.
func rootFragment(frags []scene.MeshFragment) int {
	for i, f := range frags {
		if f.Root {
			return i
		}
	}
	return 0
}
