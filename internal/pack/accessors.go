package pack

import (
	"github.com/Faultbox/primgltf/pkg/gltf"
)

// MeshAccessors are the accessors created for one packed mesh.
type MeshAccessors struct {
	Indices  gltf.ID
	Position gltf.ID
	Normal   gltf.ID
	TexCoord gltf.ID
}

// Attributes returns the primitive attributes for the accessors.
func (a MeshAccessors) Attributes() gltf.Attributes {
	return gltf.Attributes{
		Position:  a.Position,
		Normal:    a.Normal,
		TexCoord0: a.TexCoord,
	}
}

// AddTo registers the packed buffer in the document: one buffer, one view
// over the index region, one over the vertex region, and four accessors per
// mesh. The returned slice is parallel to r.Meshes.
func (r *Result) AddTo(d *gltf.Document) (gltf.ID, []MeshAccessors) {
	if len(r.Meshes) == 0 {
		return "", nil
	}

	buf := d.AddBuffer(r.Data)
	indexView := d.AddBufferView(gltf.BufferView{
		Buffer:     buf,
		ByteOffset: 0,
		ByteLength: r.IndexBytes,
		Target:     gltf.TargetElementArrayBuffer,
	})
	vertexView := d.AddBufferView(gltf.BufferView{
		Buffer:     buf,
		ByteOffset: r.VertexOffset,
		ByteLength: r.VertexBytes,
		Target:     gltf.TargetArrayBuffer,
	})

	count := len(r.Pool)
	out := make([]MeshAccessors, len(r.Meshes))
	for i, l := range r.Meshes {
		out[i] = MeshAccessors{
			Indices: d.AddAccessor(gltf.Accessor{
				BufferView:    indexView,
				ByteOffset:    l.IndexOffset,
				ComponentType: gltf.ComponentUnsignedShort,
				Count:         l.IndexCount(),
				Type:          gltf.TypeScalar,
			}),
			Position: d.AddAccessor(gltf.Accessor{
				BufferView:    vertexView,
				ByteOffset:    0,
				ByteStride:    vertexSize,
				ComponentType: gltf.ComponentFloat,
				Count:         count,
				Type:          gltf.TypeVec3,
				Min:           r.Min[:],
				Max:           r.Max[:],
			}),
			Normal: d.AddAccessor(gltf.Accessor{
				BufferView:    vertexView,
				ByteOffset:    normalStart,
				ByteStride:    vertexSize,
				ComponentType: gltf.ComponentFloat,
				Count:         count,
				Type:          gltf.TypeVec3,
			}),
			TexCoord: d.AddAccessor(gltf.Accessor{
				BufferView:    vertexView,
				ByteOffset:    uvStart,
				ByteStride:    vertexSize,
				ComponentType: gltf.ComponentFloat,
				Count:         count,
				Type:          gltf.TypeVec2,
			}),
		}
	}
	return buf, out
}
