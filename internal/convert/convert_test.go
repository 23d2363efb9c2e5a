package convert

import (
	"context"
	"encoding/json"
	"image"
	"strings"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/primgltf/internal/assets"
	"github.com/Faultbox/primgltf/internal/output"
	"github.com/Faultbox/primgltf/internal/pack"
	"github.com/Faultbox/primgltf/internal/texture"
	"github.com/Faultbox/primgltf/pkg/gltf"
	"github.com/Faultbox/primgltf/pkg/scene"
)

type countingFetcher struct {
	mu    sync.Mutex
	known map[uuid.UUID]bool
	calls int
}

func (f *countingFetcher) FetchRawAsset(context.Context, uuid.UUID) ([]byte, error) {
	return nil, assets.ErrNotFound
}

func (f *countingFetcher) FetchTextureImage(_ context.Context, id uuid.UUID) (texture.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if !f.known[id] {
		return texture.Image{}, assets.ErrNotFound
	}
	return texture.Image{Pixels: image.NewRGBA(image.Rect(0, 0, 2, 2)), Format: "png"}, nil
}

func at(x, y, z float32) *scene.Transform {
	t := scene.IdentityTransform()
	t.Position = mgl32.Vec3{x, y, z}
	return &t
}

func cube(name string, pos *scene.Transform, tex scene.TextureEntry) scene.Prim {
	return scene.Prim{Name: name, Transform: pos, Faces: scene.Box(mgl32.Vec3{1, 1, 1}, tex)}
}

func newConverter(t *testing.T, f assets.Fetcher, opts Options) *Converter {
	t.Helper()
	return New(f, output.NewResolver(t.TempDir(), ""), opts, nil)
}

func TestRunTwoCubes(t *testing.T) {
	obj := scene.Object{
		Name: "pair",
		Prims: []scene.Prim{
			cube("a", at(5, 0, 0), scene.DefaultTextureEntry()),
			cube("b", at(7, 0, 0), scene.DefaultTextureEntry()),
		},
	}

	res, err := newConverter(t, nil, Options{}).Run(context.Background(), "two-cubes", []scene.Object{obj})
	require.NoError(t, err)
	doc := res.Document

	assert.True(t, doc.Finalized())
	assert.Equal(t, 1, doc.Meshes.Len())
	assert.Equal(t, 1, doc.Materials.Len())
	assert.Equal(t, 2, doc.Nodes.Len(), "scope node plus mesh node")
	assert.Equal(t, 4, doc.Accessors.Len())
	assert.Equal(t, 48, res.Stats.SourceVertices)
	assert.Equal(t, 48, res.Stats.PoolVertices)

	mesh, _ := doc.Meshes.Get(doc.Meshes.IDs()[0])
	require.Len(t, mesh.Primitives, 1)
	indices, _ := doc.Accessors.Get(mesh.Primitives[0].Indices)
	assert.Equal(t, 72, indices.Count, "24 triangles")

	// The mesh node sits at the root prim, the second cube two units along X.
	meshNode, _ := doc.Nodes.Get(doc.Nodes.IDs()[1])
	require.NotNil(t, meshNode.Translation)
	assert.Equal(t, [3]float32{5, 0, 0}, *meshNode.Translation)
	assert.Nil(t, meshNode.Rotation)
	assert.Equal(t, []string{"a", "b"}, meshNode.Extras.Sources)

	pos, _ := doc.Accessors.Get(mesh.Primitives[0].Attributes.Position)
	assert.Equal(t, []float32{-0.5, -0.5, -0.5}, pos.Min)
	assert.Equal(t, []float32{2.5, 0.5, 0.5}, pos.Max)

	buffer, _ := doc.Buffers.Get(doc.Buffers.IDs()[0])
	assert.True(t, strings.HasPrefix(buffer.URI, "buffers/"))
	assert.Equal(t, 72*2+48*32, buffer.ByteLength)
}

func TestRunSharesMaterialsAcrossObjects(t *testing.T) {
	texID := uuid.New()
	f := &countingFetcher{known: map[uuid.UUID]bool{texID: true}}

	entry := scene.DefaultTextureEntry()
	entry.TextureID = texID
	objects := []scene.Object{
		{Name: "left", Prims: []scene.Prim{cube("l", at(0, 0, 0), entry)}},
		{Name: "right", Prims: []scene.Prim{cube("r", at(3, 0, 0), entry)}},
	}

	res, err := newConverter(t, f, Options{Workers: 2}).Run(context.Background(), "shared", objects)
	require.NoError(t, err)
	doc := res.Document

	assert.Equal(t, 2, doc.Meshes.Len())
	assert.Equal(t, 1, doc.Materials.Len())
	assert.Equal(t, 1, doc.Textures.Len())
	assert.Equal(t, 1, doc.Images.Len())
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, 1, res.Stats.MaterialReuses)

	material := doc.Materials.IDs()[0]
	doc.Meshes.Each(func(_ gltf.ID, m *gltf.Mesh) {
		assert.Equal(t, material, m.Primitives[0].Material)
	})

	// Identical cubes in their own frames share every vertex.
	assert.Equal(t, 24, res.Stats.PoolVertices)
	assert.Equal(t, 48, res.Stats.SourceVertices)
}

func TestRunSceneGranularity(t *testing.T) {
	objects := []scene.Object{
		{Name: "left", Prims: []scene.Prim{cube("l", at(0, 0, 0), scene.DefaultTextureEntry())}},
		{Name: "right", Prims: []scene.Prim{cube("r", at(3, 0, 0), scene.DefaultTextureEntry())}},
	}

	res, err := newConverter(t, nil, Options{Granularity: WholeScene}).Run(context.Background(), "town", objects)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Document.Meshes.Len())
	assert.Equal(t, 1, res.Stats.Clusters)
	scope, _ := res.Document.Nodes.Get(res.Document.Nodes.IDs()[0])
	assert.Equal(t, "town", scope.Name)
}

func TestRunPassThrough(t *testing.T) {
	tr := at(1, 2, 3)
	tr.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})
	face := scene.Box(mgl32.Vec3{1, 1, 1})[0]

	obj := scene.Object{Name: "tile", Prims: []scene.Prim{{Name: "tile", Transform: tr, Faces: []scene.Face{face}}}}
	res, err := newConverter(t, nil, Options{}).Run(context.Background(), "tile", []scene.Object{obj})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Stats.PassThrough)
	node, _ := res.Document.Nodes.Get(res.Document.Nodes.IDs()[1])
	require.NotNil(t, node.Rotation)
	assert.Equal(t, [4]float32{tr.Rotation.V[0], tr.Rotation.V[1], tr.Rotation.V[2], tr.Rotation.W}, *node.Rotation)
	assert.Equal(t, [3]float32{1, 2, 3}, *node.Translation)
}

func TestRunMissingTextureDegrades(t *testing.T) {
	f := &countingFetcher{known: map[uuid.UUID]bool{}}
	entry := scene.DefaultTextureEntry()
	entry.TextureID = uuid.New()

	obj := scene.Object{Name: "x", Prims: []scene.Prim{cube("x", at(0, 0, 0), entry)}}
	res, err := newConverter(t, f, Options{}).Run(context.Background(), "x", []scene.Object{obj})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Stats.TextureMisses)
	assert.Equal(t, 0, res.Document.Textures.Len())
	m, _ := res.Document.Materials.Get(res.Document.Materials.IDs()[0])
	assert.Empty(t, m.Values.Diffuse.Texture)
}

func TestRunVertexPoolOverflow(t *testing.T) {
	face := scene.Face{
		Vertices: make([]scene.Vertex, pack.MaxPoolSize+1),
		Indices:  []uint32{0, 1, pack.MaxPoolSize},
		Texture:  scene.DefaultTextureEntry(),
	}
	for i := range face.Vertices {
		face.Vertices[i].Position = mgl32.Vec3{float32(i), 0, 0}
	}
	obj := scene.Object{Name: "big", Prims: []scene.Prim{{Name: "big", Transform: at(0, 0, 0), Faces: []scene.Face{face}}}}

	_, err := newConverter(t, nil, Options{}).Run(context.Background(), "big", []scene.Object{obj})
	assert.ErrorIs(t, err, pack.ErrVertexPoolOverflow)
}

func TestRunEmpty(t *testing.T) {
	res, err := newConverter(t, nil, Options{}).Run(context.Background(), "empty", nil)
	require.NoError(t, err)

	data, err := gltf.Marshal(res.Document)
	require.NoError(t, err)

	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &top))
	assert.NotContains(t, top, "materials")
	assert.Contains(t, top, "buffers")
	assert.Contains(t, top, "meshes")
}

func TestRunSkipsFacesWithoutTriangles(t *testing.T) {
	empty := scene.Prim{Name: "hollow", Transform: at(0, 0, 0), Faces: []scene.Face{{Texture: scene.DefaultTextureEntry()}}}

	t.Run("only empty geometry", func(t *testing.T) {
		obj := scene.Object{Name: "a", Prims: []scene.Prim{empty}}
		res, err := newConverter(t, nil, Options{}).Run(context.Background(), "x", []scene.Object{obj})
		require.NoError(t, err)

		assert.Equal(t, 1, res.Stats.Skipped)
		assert.Equal(t, 0, res.Stats.Meshes)
		assert.Equal(t, 0, res.Document.Meshes.Len())
		assert.Equal(t, 0, res.Document.Buffers.Len())
		assert.Equal(t, 0, res.Document.Accessors.Len())
		assert.NoError(t, res.Document.Validate())
	})

	t.Run("next to a cube", func(t *testing.T) {
		objects := []scene.Object{
			{Name: "a", Prims: []scene.Prim{empty}},
			{Name: "b", Prims: []scene.Prim{cube("b", at(1, 0, 0), scene.DefaultTextureEntry())}},
		}
		res, err := newConverter(t, nil, Options{}).Run(context.Background(), "x", objects)
		require.NoError(t, err)

		assert.Equal(t, 1, res.Stats.Skipped)
		assert.Equal(t, 1, res.Document.Meshes.Len())
		assert.Equal(t, 24, res.Stats.PoolVertices)
		assert.Equal(t, 4, res.Document.Accessors.Len())
	})
}

func TestRunDefaultTechnique(t *testing.T) {
	obj := scene.Object{Name: "c", Prims: []scene.Prim{cube("c", at(0, 0, 0), scene.DefaultTextureEntry())}}
	res, err := newConverter(t, nil, Options{DefaultTechnique: true}).Run(context.Background(), "c", []scene.Object{obj})
	require.NoError(t, err)
	doc := res.Document

	assert.Equal(t, 3, doc.Shaders.Len())
	doc.Shaders.Each(func(id gltf.ID, s *gltf.Shader) {
		assert.True(t, strings.HasPrefix(s.URI, "shaders/"), "shader %s uri %q", id, s.URI)
		assert.NotEmpty(t, s.Path)
	})
	m, _ := doc.Materials.Get(doc.Materials.IDs()[0])
	assert.NotEmpty(t, m.Technique)
}

func TestRunIsDeterministic(t *testing.T) {
	objects := []scene.Object{
		{Name: "a", Prims: []scene.Prim{cube("a", at(0, 0, 0), scene.DefaultTextureEntry())}},
		{Name: "b", Prims: []scene.Prim{cube("b", at(0, 4, 0), scene.DefaultTextureEntry()), cube("b2", nil, scene.DefaultTextureEntry())}},
	}
	c := New(nil, output.NewResolver("/out", ""), Options{IDPrefix: "t-"}, nil)

	first, err := c.Run(context.Background(), "det", objects)
	require.NoError(t, err)
	second, err := c.Run(context.Background(), "det", objects)
	require.NoError(t, err)

	a, err := gltf.Marshal(first.Document)
	require.NoError(t, err)
	b, err := gltf.Marshal(second.Document)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	bufA, _ := first.Document.Buffers.Get(first.Document.Buffers.IDs()[0])
	bufB, _ := second.Document.Buffers.Get(second.Document.Buffers.IDs()[0])
	assert.Equal(t, bufA.Data, bufB.Data)
	assert.True(t, strings.HasPrefix(string(first.Document.Meshes.IDs()[0]), "t-"))
}

func TestRunCancelled(t *testing.T) {
	texID := uuid.New()
	f := &countingFetcher{known: map[uuid.UUID]bool{texID: true}}
	entry := scene.DefaultTextureEntry()
	entry.TextureID = texID
	obj := scene.Object{Name: "x", Prims: []scene.Prim{cube("x", at(0, 0, 0), entry)}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newConverter(t, f, Options{}).Run(ctx, "x", []scene.Object{obj})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseGranularity(t *testing.T) {
	tests := []struct {
		in      string
		want    Granularity
		wantErr bool
	}{
		{"", PerObject, false},
		{"object", PerObject, false},
		{"scene", WholeScene, false},
		{"prim", PerObject, true},
	}
	for _, tt := range tests {
		got, err := ParseGranularity(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
