// Package scene holds the plain value types a host scene hands to the converter:
// objects, their prims, and the textured faces those prims are built from.
package scene

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is one mesh vertex. Two vertices are the same vertex only when all
// eight components are bit-identical; see Key.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
}

// VertexKey is the bit pattern of a Vertex, used as a de-duplication key.
// Unlike comparing the floats directly, -0 and +0 are distinct keys and
// NaN compares equal to itself.
type VertexKey [8]uint32

// Key returns the de-duplication key of v.
func (v Vertex) Key() VertexKey {
	return VertexKey{
		math.Float32bits(v.Position[0]),
		math.Float32bits(v.Position[1]),
		math.Float32bits(v.Position[2]),
		math.Float32bits(v.Normal[0]),
		math.Float32bits(v.Normal[1]),
		math.Float32bits(v.Normal[2]),
		math.Float32bits(v.TexCoord[0]),
		math.Float32bits(v.TexCoord[1]),
	}
}

// Face is a triangle list over its own vertex array, counter-clockwise winding.
type Face struct {
	Vertices []Vertex
	Indices  []uint32
	Texture  TextureEntry

	// Image is an optional pre-decoded source image. When set it is used
	// instead of fetching Texture.TextureID.
	Image image.Image
}

// TriangleCount returns the number of triangles in the face.
func (f Face) TriangleCount() int {
	return len(f.Indices) / 3
}

// Transform is a world transform of a prim.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// IdentityTransform returns a transform at the origin with no rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// MeshFragment is one face together with the world transform of the prim that owns it.
type MeshFragment struct {
	Face Face

	// Transform is nil when the owner's world transform could not be resolved.
	Transform *Transform

	// Root marks fragments whose owner is the root prim of a linked object.
	Root bool

	// Owner is the owning prim's name, used for logging and node names.
	Owner string
}

// Prim is a single part of an object.
type Prim struct {
	Name      string
	Transform *Transform
	Faces     []Face
}

// Object is a linked set of prims. The first prim is the root.
type Object struct {
	Name  string
	Prims []Prim
}

// Fragments flattens the object into mesh fragments, one per face, in prim order.
func (o Object) Fragments() []MeshFragment {
	var frags []MeshFragment
	for i, p := range o.Prims {
		for _, f := range p.Faces {
			frags = append(frags, MeshFragment{
				Face:      f,
				Transform: p.Transform,
				Root:      i == 0,
				Owner:     p.Name,
			})
		}
	}
	return frags
}
