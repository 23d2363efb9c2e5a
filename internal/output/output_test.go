package output

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/primgltf/pkg/gltf"
)

func TestResolverLayout(t *testing.T) {
	r := NewResolver("/out", "")

	img, err := r.Resolve(gltf.KindImage, "abc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img.URI, "images/"))
	assert.True(t, strings.HasSuffix(img.URI, ".png"))
	assert.Equal(t, filepath.Join("/out", filepath.FromSlash(img.URI)), img.Path)

	buf, err := r.Resolve(gltf.KindBuffer, "abc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.URI, "buffers/"))
	assert.True(t, strings.HasSuffix(buf.URI, ".bin"))
	assert.NotEqual(t, filepath.Base(img.Path), filepath.Base(buf.Path))
}

func TestResolverIsStable(t *testing.T) {
	a, err := NewResolver("/a", "").Resolve(gltf.KindImage, "tex")
	require.NoError(t, err)
	b, err := NewResolver("/b", "").Resolve(gltf.KindImage, "tex")
	require.NoError(t, err)
	assert.Equal(t, a.URI, b.URI, "file names depend only on kind and name")

	r := NewResolver("/a", "")
	first, _ := r.Resolve(gltf.KindShader, "lambert")
	second, _ := r.Resolve(gltf.KindShader, "lambert")
	assert.Equal(t, first, second)
}

func TestResolverBaseURI(t *testing.T) {
	r := NewResolver("/out", "https://cdn.example.com/scene/")
	loc, err := r.Resolve(gltf.KindBuffer, "house")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(loc.URI, "https://cdn.example.com/scene/buffers/"), loc.URI)
}

func TestResolverRejects(t *testing.T) {
	r := NewResolver("/out", "")
	_, err := r.Resolve(gltf.KindImage, "")
	assert.Error(t, err)
	_, err = r.Resolve(gltf.AssetKind(42), "x")
	assert.Error(t, err)
}

func TestStoreSave(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(dir, "")
	d := gltf.New(gltf.Options{Generator: "test"})

	bufID := d.AddBuffer([]byte{1, 2, 3, 4})
	loc, err := r.Resolve(gltf.KindBuffer, "scene")
	require.NoError(t, err)
	b, _ := d.Buffers.Get(bufID)
	b.URI, b.Path = loc.URI, loc.Path

	imgLoc, err := r.Resolve(gltf.KindImage, "tex")
	require.NoError(t, err)
	d.AddImage(gltf.Image{
		URI:  imgLoc.URI,
		Path: imgLoc.Path,
		Data: image.NewNRGBA(image.Rect(0, 0, 64, 32)),
	})

	docPath := filepath.Join(dir, "scene.gltf")
	sum, err := NewStore(16, nil).Save(d, docPath)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Buffers)
	assert.Equal(t, 1, sum.Images)
	assert.True(t, d.Finalized())

	data, err := os.ReadFile(loc.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)

	f, err := os.Open(imgLoc.Path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Width)
	assert.Equal(t, 8, cfg.Height)

	info, err := Inspect(docPath)
	require.NoError(t, err)
	assert.Equal(t, "1.0", info.Version)
	assert.Equal(t, "test", info.Generator)
	assert.Equal(t, 1, info.Collections["buffers"])
	assert.Equal(t, 1, info.Collections["images"])
	assert.Equal(t, 0, info.Collections["meshes"])
	assert.Equal(t, 4, info.BufferBytes)
	assert.Equal(t, []string{imgLoc.URI}, info.ImageURIs)
	assert.NotContains(t, info.Names(), "materials")
}

func TestStoreSaveInvalidDocument(t *testing.T) {
	d := gltf.New(gltf.Options{})
	d.AddBufferView(gltf.BufferView{Buffer: "missing", ByteLength: 4})

	_, err := NewStore(0, nil).Save(d, filepath.Join(t.TempDir(), "bad.gltf"))
	assert.ErrorIs(t, err, gltf.ErrMalformedReference)
}

func TestParseInfoRejectsGarbage(t *testing.T) {
	_, err := ParseInfo([]byte("not json"))
	assert.Error(t, err)
}
