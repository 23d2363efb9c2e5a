package gltf

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangleDoc builds a minimal valid document with one mesh.
func triangleDoc(t *testing.T) (*Document, ID) {
	t.Helper()
	d := New(Options{Generator: "test"})

	buf := d.AddBuffer(make([]byte, 8+3*32))
	iv := d.AddBufferView(BufferView{Buffer: buf, ByteOffset: 0, ByteLength: 6, Target: TargetElementArrayBuffer})
	vv := d.AddBufferView(BufferView{Buffer: buf, ByteOffset: 8, ByteLength: 96, Target: TargetArrayBuffer})

	idx := d.AddAccessor(Accessor{BufferView: iv, ComponentType: ComponentUnsignedShort, Count: 3, Type: TypeScalar})
	pos := d.AddAccessor(Accessor{BufferView: vv, ByteStride: 32, ComponentType: ComponentFloat, Count: 3, Type: TypeVec3})
	nrm := d.AddAccessor(Accessor{BufferView: vv, ByteOffset: 12, ByteStride: 32, ComponentType: ComponentFloat, Count: 3, Type: TypeVec3})
	uv := d.AddAccessor(Accessor{BufferView: vv, ByteOffset: 24, ByteStride: 32, ComponentType: ComponentFloat, Count: 3, Type: TypeVec2})

	mat := d.AddMaterial(Material{Values: MaterialValues{Ambient: [4]float32{1, 1, 1, 1}, Diffuse: Diffuse{Color: [4]float32{1, 0, 0, 1}}, Transparency: 1}})
	mesh := d.AddMesh(Mesh{Primitives: []Primitive{{
		Attributes: Attributes{Position: pos, Normal: nrm, TexCoord0: uv},
		Indices:    idx,
		Material:   mat,
		Mode:       ModeTriangles,
	}}})
	_, err := d.AddNode("", Node{Meshes: []ID{mesh}})
	require.NoError(t, err)
	return d, mesh
}

func decode(t *testing.T, d *Document) map[string]json.RawMessage {
	t.Helper()
	data, err := Marshal(d)
	require.NoError(t, err)
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestEmptyDocumentOmitsOptionalCollections(t *testing.T) {
	out := decode(t, New(Options{}))

	for _, key := range []string{"asset", "scene", "scenes", "nodes", "meshes", "accessors", "bufferViews", "buffers"} {
		assert.Contains(t, out, key)
	}
	for _, key := range []string{"materials", "textures", "images", "samplers", "techniques", "programs", "shaders"} {
		assert.NotContains(t, out, key)
	}
	assert.JSONEq(t, `{}`, string(out["meshes"]))
	assert.JSONEq(t, `"defaultScene"`, string(out["scene"]))
}

func TestMaterialsEmittedWhenPresent(t *testing.T) {
	d, _ := triangleDoc(t)
	out := decode(t, d)
	assert.Contains(t, out, "materials")
	assert.NotContains(t, out, "textures")
}

func TestMarshalIsDeterministic(t *testing.T) {
	d1, _ := triangleDoc(t)
	d2, _ := triangleDoc(t)

	a, err := Marshal(d1)
	require.NoError(t, err)
	b, err := Marshal(d2)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestMarshalFieldOrder(t *testing.T) {
	d, _ := triangleDoc(t)
	data, err := Marshal(d)
	require.NoError(t, err)

	s := string(data)
	order := []string{`"asset"`, `"scene"`, `"scenes"`, `"nodes"`, `"meshes"`, `"accessors"`, `"bufferViews"`, `"buffers"`, `"materials"`}
	last := -1
	for _, key := range order {
		i := strings.Index(s, key+":")
		require.GreaterOrEqual(t, i, 0, "missing %s", key)
		assert.Greater(t, i, last, "%s out of order", key)
		last = i
	}
}

func TestCollectionInsertionOrder(t *testing.T) {
	d := New(Options{})
	var ids []ID
	for i := 0; i < 12; i++ {
		id, err := d.AddNode("", Node{})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	assert.Equal(t, ID("node-0"), ids[0])
	assert.Equal(t, ID("node-11"), ids[11])

	data, err := json.Marshal(&d.Nodes)
	require.NoError(t, err)
	// node-10 sorts before node-2 lexically but must follow insertion order.
	assert.Less(t, bytes.Index(data, []byte(`"node-2"`)), bytes.Index(data, []byte(`"node-10"`)))
	assert.Equal(t, ids, d.DefaultScene().Nodes)
}

func TestReferencesSerializeAsIDs(t *testing.T) {
	d, mesh := triangleDoc(t)
	out := decode(t, d)

	var meshes map[string]struct {
		Primitives []struct {
			Attributes map[string]string `json:"attributes"`
			Indices    string            `json:"indices"`
			Material   string            `json:"material"`
		} `json:"primitives"`
	}
	require.NoError(t, json.Unmarshal(out["meshes"], &meshes))
	p := meshes[string(mesh)].Primitives[0]
	assert.Equal(t, "accessor-0", p.Indices)
	assert.Equal(t, "accessor-1", p.Attributes[AttrPosition])
	assert.Equal(t, "material-0", p.Material)
}

func TestIDPrefix(t *testing.T) {
	d := New(Options{IDPrefix: "run7-"})
	id := d.AddMesh(Mesh{})
	assert.Equal(t, ID("run7-mesh-0"), id)
	assert.Equal(t, ID("run7-defaultScene"), d.Scene)
}

func TestAddNodeUnknownParent(t *testing.T) {
	d := New(Options{})
	_, err := d.AddNode("node-42", Node{})
	assert.ErrorIs(t, err, ErrMalformedReference)
}

func TestValidateDanglingReferences(t *testing.T) {
	d, mesh := triangleDoc(t)
	m, _ := d.Meshes.Get(mesh)
	m.Primitives[0].Material = "material-missing"
	m.Primitives[0].Indices = "accessor-missing"

	err := d.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedReference)
	assert.Contains(t, err.Error(), "material-missing")
	assert.Contains(t, err.Error(), "accessor-missing")

	_, err = Marshal(d)
	assert.ErrorIs(t, err, ErrMalformedReference)
}

func TestValidateAccessorBounds(t *testing.T) {
	d, _ := triangleDoc(t)
	a, _ := d.Accessors.Get("accessor-3")
	a.Count = 4

	assert.ErrorIs(t, d.Validate(), ErrOutOfBounds)
}

func TestValidateBufferViewBounds(t *testing.T) {
	d, _ := triangleDoc(t)
	v, _ := d.BufferViews.Get("bufferView-1")
	v.ByteLength = 200

	assert.ErrorIs(t, d.Validate(), ErrOutOfBounds)
}

func TestAccessorByteEnd(t *testing.T) {
	tests := []struct {
		name string
		acc  Accessor
		want int
	}{
		{"empty", Accessor{ByteOffset: 4, ComponentType: ComponentFloat, Type: TypeVec3}, 4},
		{"tight indices", Accessor{ComponentType: ComponentUnsignedShort, Type: TypeScalar, Count: 6}, 12},
		{"interleaved position", Accessor{ByteStride: 32, ComponentType: ComponentFloat, Type: TypeVec3, Count: 2}, 44},
		{"interleaved texcoord", Accessor{ByteOffset: 24, ByteStride: 32, ComponentType: ComponentFloat, Type: TypeVec2, Count: 2}, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.acc.ByteEnd())
		})
	}
}

func TestFinalizeFreezes(t *testing.T) {
	d, _ := triangleDoc(t)
	require.NoError(t, d.Finalize())
	assert.True(t, d.Finalized())
	assert.Panics(t, func() { d.AddMesh(Mesh{}) })
}

func TestDiffuseMarshal(t *testing.T) {
	tex, err := json.Marshal(Diffuse{Texture: "texture-0"})
	require.NoError(t, err)
	assert.JSONEq(t, `"texture-0"`, string(tex))

	col, err := json.Marshal(Diffuse{Color: [4]float32{0.5, 0.25, 1, 1}})
	require.NoError(t, err)
	assert.JSONEq(t, `[0.5,0.25,1,1]`, string(col))
}

func TestDefaultTechniques(t *testing.T) {
	d, _ := triangleDoc(t)
	tech := AddDefaultTechniques(d)

	m, _ := d.Materials.Get("material-0")
	m.Technique = tech.Color

	require.NoError(t, d.Validate())
	out := decode(t, d)
	assert.Contains(t, out, "techniques")
	assert.Contains(t, out, "programs")
	assert.Contains(t, out, "shaders")
	assert.Equal(t, 3, d.Shaders.Len())
}
