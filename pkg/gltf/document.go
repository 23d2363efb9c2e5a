// Package gltf builds glTF 1.0 scene documents: an arena of entities keyed by
// string IDs that serializes to deterministic JSON.
package gltf

import (
	"errors"
	"fmt"
)

// Document errors.
var (
	ErrMalformedReference = errors.New("malformed reference")
	ErrOutOfBounds        = errors.New("byte range out of bounds")
)

const (
	formatVersion    = "1.0"
	defaultSceneName = "defaultScene"
)

// Options configures a new document.
type Options struct {
	// Generator is written to the asset block.
	Generator string
	// IDPrefix is prepended to every generated ID so documents from
	// concurrent runs never share an ID namespace.
	IDPrefix string
}

// Document is the entity arena of one conversion run.
type Document struct {
	Asset Asset
	Scene ID

	Scenes      Collection[Scene]
	Nodes       Collection[Node]
	Meshes      Collection[Mesh]
	Accessors   Collection[Accessor]
	BufferViews Collection[BufferView]
	Buffers     Collection[Buffer]
	Materials   Collection[Material]
	Techniques  Collection[Technique]
	Programs    Collection[Program]
	Shaders     Collection[Shader]
	Textures    Collection[Texture]
	Images      Collection[Image]
	Samplers    Collection[Sampler]

	prefix    string
	counters  map[string]int
	finalized bool
}

// New creates an empty document holding one empty default scene.
func New(opts Options) *Document {
	d := &Document{
		Asset: Asset{
			Generator: opts.Generator,
			Profile:   Profile{API: "WebGL", Version: "1.0.2"},
			Version:   formatVersion,
		},
		prefix:   opts.IDPrefix,
		counters: make(map[string]int),
	}
	d.Scene = ID(d.prefix + defaultSceneName)
	d.Scenes.add(d.Scene, &Scene{Nodes: []ID{}})
	return d
}

// newID returns the next ID for an entity kind, e.g. "mesh-3".
func (d *Document) newID(kind string) ID {
	d.mustMutable()
	n := d.counters[kind]
	d.counters[kind] = n + 1
	return ID(fmt.Sprintf("%s%s-%d", d.prefix, kind, n))
}

func (d *Document) mustMutable() {
	if d.finalized {
		panic("gltf: document modified after Finalize")
	}
}

// DefaultScene returns the scene written as the document's default.
func (d *Document) DefaultScene() *Scene {
	s, _ := d.Scenes.Get(d.Scene)
	return s
}

// AddNode adds a node. When parent is empty the node becomes a root of the
// default scene; otherwise it is appended to the parent's children.
func (d *Document) AddNode(parent ID, n Node) (ID, error) {
	id := d.newID("node")
	if parent == "" {
		s := d.DefaultScene()
		s.Nodes = append(s.Nodes, id)
	} else {
		p, ok := d.Nodes.Get(parent)
		if !ok {
			return "", fmt.Errorf("%w: parent node %s", ErrMalformedReference, parent)
		}
		p.Children = append(p.Children, id)
	}
	d.Nodes.add(id, &n)
	return id, nil
}

// AddMesh adds a mesh.
func (d *Document) AddMesh(m Mesh) ID {
	id := d.newID("mesh")
	d.Meshes.add(id, &m)
	return id
}

// AddAccessor adds an accessor.
func (d *Document) AddAccessor(a Accessor) ID {
	id := d.newID("accessor")
	d.Accessors.add(id, &a)
	return id
}

// AddBufferView adds a buffer view.
func (d *Document) AddBufferView(v BufferView) ID {
	id := d.newID("bufferView")
	d.BufferViews.add(id, &v)
	return id
}

// AddBuffer adds a binary buffer holding data. The URI is filled in by the
// persistence layer before the document is written.
func (d *Document) AddBuffer(data []byte) ID {
	id := d.newID("buffer")
	d.Buffers.add(id, &Buffer{
		ByteLength: len(data),
		Type:       "arraybuffer",
		Data:       data,
	})
	return id
}

// AddMaterial adds a material.
func (d *Document) AddMaterial(m Material) ID {
	id := d.newID("material")
	d.Materials.add(id, &m)
	return id
}

// AddTexture adds a texture.
func (d *Document) AddTexture(t Texture) ID {
	id := d.newID("texture")
	d.Textures.add(id, &t)
	return id
}

// AddImage adds an image.
func (d *Document) AddImage(img Image) ID {
	id := d.newID("image")
	d.Images.add(id, &img)
	return id
}

// AddSampler adds a sampler.
func (d *Document) AddSampler(s Sampler) ID {
	id := d.newID("sampler")
	d.Samplers.add(id, &s)
	return id
}

// AddTechnique adds a technique.
func (d *Document) AddTechnique(t Technique) ID {
	id := d.newID("technique")
	d.Techniques.add(id, &t)
	return id
}

// AddProgram adds a program.
func (d *Document) AddProgram(p Program) ID {
	id := d.newID("program")
	d.Programs.add(id, &p)
	return id
}

// AddShader adds a shader.
func (d *Document) AddShader(s Shader) ID {
	id := d.newID("shader")
	d.Shaders.add(id, &s)
	return id
}

// Finalize validates every reference and freezes the document. Further
// Add calls panic.
func (d *Document) Finalize() error {
	if err := d.Validate(); err != nil {
		return err
	}
	d.finalized = true
	return nil
}

// Finalized reports whether Finalize succeeded.
func (d *Document) Finalized() bool {
	return d.finalized
}
