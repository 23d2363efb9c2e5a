// Package scenefile reads scene descriptions: linked objects made of prims,
// each prim either a box or an explicit list of faces.
package scenefile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/primgltf/internal/texture"
	"github.com/Faultbox/primgltf/pkg/scene"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid scene file")

// File is a loaded scene description.
type File struct {
	Name    string
	Objects []scene.Object
}

// Fragments returns every fragment of every object, in file order.
func (f *File) Fragments() []scene.MeshFragment {
	var frags []scene.MeshFragment
	for _, o := range f.Objects {
		frags = append(frags, o.Fragments()...)
	}
	return frags
}

type fileDoc struct {
	Name    string      `yaml:"name"`
	Objects []objectDoc `yaml:"objects"`
}

type objectDoc struct {
	Name  string    `yaml:"name"`
	Prims []primDoc `yaml:"prims"`
}

type primDoc struct {
	Name      string        `yaml:"name"`
	Transform *transformDoc `yaml:"transform"`
	Box       *boxDoc       `yaml:"box"`
	Textures  []textureDoc  `yaml:"textures"`
	Faces     []faceDoc     `yaml:"faces"`
}

type transformDoc struct {
	Position [3]float32  `yaml:"position"`
	Rotation *[4]float32 `yaml:"rotation"` // x, y, z, w
	Euler    *[3]float32 `yaml:"euler"`    // degrees, applied X then Y then Z
	Scale    *[3]float32 `yaml:"scale"`
}

type boxDoc struct {
	Size *[3]float32 `yaml:"size"`
}

type textureDoc struct {
	Texture    string    `yaml:"texture"`
	Color      []float32 `yaml:"color"`
	Fullbright bool      `yaml:"fullbright"`
	Glow       float32   `yaml:"glow"`
	Shiny      string    `yaml:"shiny"`
	Alpha      string    `yaml:"alpha"`
}

type faceDoc struct {
	Vertices []vertexDoc `yaml:"vertices"`
	Indices  []uint32    `yaml:"indices"`
	Texture  *textureDoc `yaml:"texture"`
	Image    string      `yaml:"image"`
}

type vertexDoc struct {
	Position [3]float32 `yaml:"position"`
	Normal   [3]float32 `yaml:"normal"`
	UV       [2]float32 `yaml:"uv"`
}

// Load reads a scene file. Image paths inside it are relative to the file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return f, nil
}

// Parse decodes a scene description. baseDir resolves relative image paths.
func Parse(data []byte, baseDir string) (*File, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	p := parser{baseDir: baseDir, images: make(map[string]texture.Image)}
	f := &File{Name: doc.Name}
	for i, od := range doc.Objects {
		obj, err := p.object(od, i)
		if err != nil {
			return nil, err
		}
		f.Objects = append(f.Objects, obj)
	}
	return f, nil
}

type parser struct {
	baseDir string
	images  map[string]texture.Image
}

func (p *parser) object(od objectDoc, index int) (scene.Object, error) {
	obj := scene.Object{Name: od.Name}
	if obj.Name == "" {
		obj.Name = fmt.Sprintf("object-%d", index)
	}
	if len(od.Prims) == 0 {
		return obj, fmt.Errorf("%w: object %s has no prims", ErrInvalid, obj.Name)
	}

	for i, pd := range od.Prims {
		prim, err := p.prim(pd)
		if err != nil {
			return obj, fmt.Errorf("object %s prim %d: %w", obj.Name, i, err)
		}
		if prim.Name == "" {
			prim.Name = fmt.Sprintf("%s-prim-%d", obj.Name, i)
		}
		obj.Prims = append(obj.Prims, prim)
	}
	return obj, nil
}

func (p *parser) prim(pd primDoc) (scene.Prim, error) {
	prim := scene.Prim{Name: pd.Name}

	if pd.Transform != nil {
		t := pd.Transform.transform()
		prim.Transform = &t
	}

	if pd.Box != nil && len(pd.Faces) > 0 {
		return prim, fmt.Errorf("%w: box and faces are exclusive", ErrInvalid)
	}

	switch {
	case pd.Box != nil:
		textures := make([]scene.TextureEntry, 0, len(pd.Textures))
		for _, td := range pd.Textures {
			entry, err := td.entry()
			if err != nil {
				return prim, err
			}
			textures = append(textures, entry)
		}
		size := mgl32.Vec3{1, 1, 1}
		switch {
		case pd.Box.Size != nil:
			size = mgl32.Vec3(*pd.Box.Size)
		case prim.Transform != nil:
			size = prim.Transform.Scale
		}
		prim.Faces = scene.Box(size, textures...)

	case len(pd.Faces) > 0:
		for i, fd := range pd.Faces {
			face, err := p.face(fd, pd.Textures, i)
			if err != nil {
				return prim, fmt.Errorf("face %d: %w", i, err)
			}
			prim.Faces = append(prim.Faces, face)
		}

	default:
		return prim, fmt.Errorf("%w: prim needs a box or faces", ErrInvalid)
	}
	return prim, nil
}

func (p *parser) face(fd faceDoc, shared []textureDoc, index int) (scene.Face, error) {
	var face scene.Face

	if len(fd.Vertices) == 0 || len(fd.Indices) == 0 {
		return face, fmt.Errorf("%w: face has no triangles", ErrInvalid)
	}
	if len(fd.Indices)%3 != 0 {
		return face, fmt.Errorf("%w: %d indices is not a triangle list", ErrInvalid, len(fd.Indices))
	}
	for _, idx := range fd.Indices {
		if int(idx) >= len(fd.Vertices) {
			return face, fmt.Errorf("%w: index %d out of range for %d vertices", ErrInvalid, idx, len(fd.Vertices))
		}
	}

	face.Vertices = make([]scene.Vertex, len(fd.Vertices))
	for i, v := range fd.Vertices {
		face.Vertices[i] = scene.Vertex{
			Position: mgl32.Vec3(v.Position),
			Normal:   mgl32.Vec3(v.Normal),
			TexCoord: mgl32.Vec2(v.UV),
		}
	}
	face.Indices = fd.Indices

	// A face's own texture wins, then the prim's entry for this face index,
	// then the prim's last entry.
	td := fd.Texture
	if td == nil && len(shared) > 0 {
		td = &shared[min(index, len(shared)-1)]
	}
	face.Texture = scene.DefaultTextureEntry()
	if td != nil {
		entry, err := td.entry()
		if err != nil {
			return face, err
		}
		face.Texture = entry
	}

	if fd.Image != "" {
		img, err := p.image(fd.Image)
		if err != nil {
			return face, err
		}
		face.Image = img.Pixels
		if !face.Texture.HasTexture() {
			face.Texture.TextureID = imageID(fd.Image)
		}
	}
	return face, nil
}

// image decodes an image file once per path.
func (p *parser) image(name string) (texture.Image, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.baseDir, path)
	}
	if img, ok := p.images[path]; ok {
		return img, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return texture.Image{}, fmt.Errorf("reading image: %w", err)
	}
	img, err := texture.Decode(data)
	if err != nil {
		return texture.Image{}, fmt.Errorf("image %s: %w", name, err)
	}
	p.images[path] = img
	return img, nil
}

var imageNamespace = uuid.MustParse("6f1c2f7e-3a5d-4e0b-9d8a-4b7e1c5a2f30")

// imageID names an inline image so faces sharing it share a texture.
func imageID(name string) uuid.UUID {
	return uuid.NewSHA1(imageNamespace, []byte(filepath.ToSlash(name)))
}

func (td transformDoc) transform() scene.Transform {
	t := scene.IdentityTransform()
	t.Position = mgl32.Vec3(td.Position)
	switch {
	case td.Rotation != nil:
		r := td.Rotation
		t.Rotation = mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}.Normalize()
	case td.Euler != nil:
		e := td.Euler
		t.Rotation = mgl32.AnglesToQuat(
			mgl32.DegToRad(e[0]), mgl32.DegToRad(e[1]), mgl32.DegToRad(e[2]), mgl32.XYZ)
	}
	if td.Scale != nil {
		t.Scale = mgl32.Vec3(*td.Scale)
	}
	return t
}

func (td textureDoc) entry() (scene.TextureEntry, error) {
	e := scene.DefaultTextureEntry()

	switch strings.ToLower(td.Texture) {
	case "", "blank":
	case "none":
		e.TextureID = uuid.Nil
	default:
		id, err := uuid.Parse(td.Texture)
		if err != nil {
			return e, fmt.Errorf("%w: texture %q: %w", ErrInvalid, td.Texture, err)
		}
		e.TextureID = id
	}

	switch len(td.Color) {
	case 0:
	case 3:
		e.Color = [4]float32{td.Color[0], td.Color[1], td.Color[2], 1}
	case 4:
		e.Color = [4]float32(td.Color)
	default:
		return e, fmt.Errorf("%w: color needs 3 or 4 components, got %d", ErrInvalid, len(td.Color))
	}

	e.Fullbright = td.Fullbright
	e.Glow = td.Glow

	shiny, err := parseShininess(td.Shiny)
	if err != nil {
		return e, err
	}
	e.Shiny = shiny

	if td.Alpha != "" {
		alpha, err := scene.ParseAlphaMode(td.Alpha)
		if err != nil {
			return e, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		e.Alpha = alpha
	}
	return e, nil
}

func parseShininess(s string) (scene.Shininess, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return scene.ShinyNone, nil
	case "low":
		return scene.ShinyLow, nil
	case "medium":
		return scene.ShinyMedium, nil
	case "high":
		return scene.ShinyHigh, nil
	default:
		return scene.ShinyNone, fmt.Errorf("%w: unknown shininess %q", ErrInvalid, s)
	}
}
