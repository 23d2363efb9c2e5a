package gltf

import (
	"encoding/json"
	"fmt"
	"image"
)

// WebGL enums used by the format.
const (
	ComponentUnsignedShort = 5123
	ComponentFloat         = 5126

	TargetArrayBuffer        = 34962
	TargetElementArrayBuffer = 34963

	ModeTriangles = 4

	FormatRGBA        = 6408
	TextureTarget2D   = 3553
	TexelUnsignedByte = 5121

	FilterLinear             = 9729
	FilterLinearMipmapLinear = 9987
	WrapRepeat               = 10497

	ShaderFragment = 35632
	ShaderVertex   = 35633

	StateBlend     = 3042
	StateDepthTest = 2929
	StateCullFace  = 2884
)

// Accessor element shapes.
const (
	TypeScalar = "SCALAR"
	TypeVec2   = "VEC2"
	TypeVec3   = "VEC3"
	TypeVec4   = "VEC4"
)

// Vertex attribute semantics.
const (
	AttrPosition  = "POSITION"
	AttrNormal    = "NORMAL"
	AttrTexCoord0 = "TEXCOORD_0"
)

// ComponentSize returns the byte size of one component of the given type.
func ComponentSize(componentType int) int {
	switch componentType {
	case ComponentUnsignedShort:
		return 2
	case ComponentFloat:
		return 4
	default:
		return 0
	}
}

// ComponentsPerElement returns how many components make up one element of the given shape.
func ComponentsPerElement(shape string) int {
	switch shape {
	case TypeScalar:
		return 1
	case TypeVec2:
		return 2
	case TypeVec3:
		return 3
	case TypeVec4:
		return 4
	default:
		return 0
	}
}

// AssetKind is the kind of file an entity is persisted as.
type AssetKind int

const (
	KindImage AssetKind = iota
	KindMesh
	KindBuffer
	KindShader
)

// String returns the kind name, also used as its output subdirectory.
func (k AssetKind) String() string {
	switch k {
	case KindImage:
		return "images"
	case KindMesh:
		return "meshes"
	case KindBuffer:
		return "buffers"
	case KindShader:
		return "shaders"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Location is where a persisted asset lives: a filesystem path for the
// writer and the URI the document refers to it by.
type Location struct {
	Path string
	URI  string
}

// Asset is the document's metadata block.
type Asset struct {
	Generator          string  `json:"generator,omitempty"`
	PremultipliedAlpha bool    `json:"premultipliedAlpha"`
	Profile            Profile `json:"profile"`
	Version            string  `json:"version"`
}

// Profile names the rendering API the asset targets.
type Profile struct {
	API     string `json:"api"`
	Version string `json:"version"`
}

// Scene is a set of root nodes.
type Scene struct {
	Name  string `json:"name,omitempty"`
	Nodes []ID   `json:"nodes"`
}

// Node is an element of the transform hierarchy.
type Node struct {
	Name        string      `json:"name,omitempty"`
	Children    []ID        `json:"children,omitempty"`
	Meshes      []ID        `json:"meshes,omitempty"`
	Translation *[3]float32 `json:"translation,omitempty"`
	Rotation    *[4]float32 `json:"rotation,omitempty"`
	Scale       *[3]float32 `json:"scale,omitempty"`
	Extras      *NodeExtras `json:"extras,omitempty"`
}

// NodeExtras carries data renderers may use but are not required to.
type NodeExtras struct {
	ScaleHint [3]float32 `json:"scaleHint"`
	Sources   []string   `json:"sources,omitempty"`
}

// Mesh is a set of primitives drawn together.
type Mesh struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives"`
}

// Primitive is one draw call of a mesh.
type Primitive struct {
	Attributes Attributes `json:"attributes"`
	Indices    ID         `json:"indices"`
	Material   ID         `json:"material"`
	Mode       int        `json:"mode"`
}

// Attributes maps vertex semantics to accessors.
type Attributes struct {
	Position  ID `json:"POSITION"`
	Normal    ID `json:"NORMAL,omitempty"`
	TexCoord0 ID `json:"TEXCOORD_0,omitempty"`
}

// Accessor is a typed view into a buffer view.
type Accessor struct {
	BufferView    ID        `json:"bufferView"`
	ByteOffset    int       `json:"byteOffset"`
	ByteStride    int       `json:"byteStride"`
	ComponentType int       `json:"componentType"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Min           []float32 `json:"min,omitempty"`
	Max           []float32 `json:"max,omitempty"`
}

// ElementSize returns the byte size of one element.
func (a *Accessor) ElementSize() int {
	return ComponentSize(a.ComponentType) * ComponentsPerElement(a.Type)
}

// ByteEnd returns the first byte past the accessor's last element, relative
// to the start of its buffer view.
func (a *Accessor) ByteEnd() int {
	if a.Count == 0 {
		return a.ByteOffset
	}
	stride := a.ByteStride
	if stride == 0 {
		stride = a.ElementSize()
	}
	return a.ByteOffset + stride*(a.Count-1) + a.ElementSize()
}

// BufferView is a byte range within a buffer.
type BufferView struct {
	Buffer     ID  `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	Target     int `json:"target,omitempty"`
}

// Buffer is a binary blob stored as a sibling file.
type Buffer struct {
	ByteLength int    `json:"byteLength"`
	Type       string `json:"type"`
	URI        string `json:"uri"`

	Data []byte `json:"-"`
	Path string `json:"-"`
}

// Material describes surface appearance.
type Material struct {
	Name      string         `json:"name,omitempty"`
	Technique ID             `json:"technique,omitempty"`
	Values    MaterialValues `json:"values"`
}

// MaterialValues are the technique parameters of a material.
type MaterialValues struct {
	Ambient      [4]float32  `json:"ambient"`
	Diffuse      Diffuse     `json:"diffuse"`
	Emission     *[4]float32 `json:"emission,omitempty"`
	Shininess    float32     `json:"shininess,omitempty"`
	Transparency float32     `json:"transparency"`
	Transparent  bool        `json:"transparent,omitempty"`
}

// Diffuse is either a texture reference or a flat color.
type Diffuse struct {
	Texture ID
	Color   [4]float32
}

// MarshalJSON writes the texture ID when set and the color otherwise.
func (d Diffuse) MarshalJSON() ([]byte, error) {
	if d.Texture != "" {
		return json.Marshal(d.Texture)
	}
	return json.Marshal(d.Color)
}

// Texture binds an image to a sampler.
type Texture struct {
	Format         int `json:"format"`
	InternalFormat int `json:"internalFormat"`
	Sampler        ID  `json:"sampler"`
	Source         ID  `json:"source"`
	Target         int `json:"target"`
	Type           int `json:"type"`
}

// Image is a texture image persisted as a sibling file.
type Image struct {
	Name string `json:"name,omitempty"`
	URI  string `json:"uri"`

	Data     image.Image `json:"-"`
	HasAlpha bool        `json:"-"`
	Path     string      `json:"-"`
}

// Sampler describes texture filtering and wrapping.
type Sampler struct {
	MagFilter int `json:"magFilter"`
	MinFilter int `json:"minFilter"`
	WrapS     int `json:"wrapS"`
	WrapT     int `json:"wrapT"`
}

// Technique is a shading recipe referenced by materials.
type Technique struct {
	Name       string                        `json:"name,omitempty"`
	Attributes map[string]string             `json:"attributes"`
	Parameters map[string]TechniqueParameter `json:"parameters"`
	Program    ID                            `json:"program"`
	States     TechniqueStates               `json:"states"`
	Uniforms   map[string]string             `json:"uniforms"`
}

// TechniqueParameter declares one technique input.
type TechniqueParameter struct {
	Semantic string `json:"semantic,omitempty"`
	Type     int    `json:"type"`
}

// TechniqueStates lists the GL states a technique enables.
type TechniqueStates struct {
	Enable []int `json:"enable"`
}

// Program links a vertex and a fragment shader.
type Program struct {
	Name           string   `json:"name,omitempty"`
	Attributes     []string `json:"attributes"`
	FragmentShader ID       `json:"fragmentShader"`
	VertexShader   ID       `json:"vertexShader"`
}

// Shader is GLSL source persisted as a sibling file.
type Shader struct {
	Name string `json:"name,omitempty"`
	Type int    `json:"type"`
	URI  string `json:"uri"`

	Source string `json:"-"`
	Path   string `json:"-"`
}
