package scene

import "github.com/go-gl/mathgl/mgl32"

// boxSides lists each side of a box as (normal, u, v) with u x v = normal,
// so corners walked -u-v, +u-v, +u+v, -u+v wind counter-clockwise from outside.
var boxSides = [6][3]mgl32.Vec3{
	{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {0, 1, 0}, {1, 0, 0}},
}

var boxCorners = [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

// Box builds the six faces of an axis-aligned box centered on the origin.
// size is the full edge length per axis, already in world units.
// textures supplies one entry per side (+X, -X, +Y, -Y, +Z, -Z); missing
// entries repeat the last one, or the default entry when none is given.
func Box(size mgl32.Vec3, textures ...TextureEntry) []Face {
	half := size.Mul(0.5)
	faces := make([]Face, 0, len(boxSides))

	for i, side := range boxSides {
		n, u, v := side[0], side[1], side[2]
		center := mulElem(n, half)
		hu := mulElem(u, half)
		hv := mulElem(v, half)

		verts := make([]Vertex, 4)
		for j, c := range boxCorners {
			verts[j] = Vertex{
				Position: center.Add(hu.Mul(c[0])).Add(hv.Mul(c[1])),
				Normal:   n,
				TexCoord: mgl32.Vec2{(c[0] + 1) / 2, (c[1] + 1) / 2},
			}
		}

		faces = append(faces, Face{
			Vertices: verts,
			Indices:  []uint32{0, 1, 2, 0, 2, 3},
			Texture:  sideTexture(textures, i),
		})
	}
	return faces
}

func sideTexture(textures []TextureEntry, i int) TextureEntry {
	switch {
	case len(textures) == 0:
		return DefaultTextureEntry()
	case i < len(textures):
		return textures[i]
	default:
		return textures[len(textures)-1]
	}
}

func mulElem(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
