// Package convert runs the conversion pipeline: it consolidates the faces of
// each scope, assigns materials, packs every mesh into one buffer and returns
// the finished document.
package convert

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/primgltf/internal/assets"
	"github.com/Faultbox/primgltf/internal/consolidate"
	"github.com/Faultbox/primgltf/internal/material"
	"github.com/Faultbox/primgltf/internal/pack"
	"github.com/Faultbox/primgltf/pkg/gltf"
	"github.com/Faultbox/primgltf/pkg/scene"
)

// Granularity selects how fragments are grouped before merging.
type Granularity int

const (
	// PerObject merges within each linked object.
	PerObject Granularity = iota
	// WholeScene merges every fragment of the run together.
	WholeScene
)

// ParseGranularity parses "object" or "scene".
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "", "object":
		return PerObject, nil
	case "scene":
		return WholeScene, nil
	default:
		return PerObject, fmt.Errorf("unknown granularity %q", s)
	}
}

// Options configures a Converter.
type Options struct {
	Granularity      Granularity
	Generator        string
	IDPrefix         string
	DefaultTechnique bool
	// Workers limits concurrent texture fetches.
	Workers int
}

// Converter turns scenes into documents. It holds no per-run state, so one
// converter may serve any number of sequential or concurrent runs.
type Converter struct {
	fetcher  assets.Fetcher
	resolver material.Resolver
	opts     Options
	log      *zap.Logger
}

// New creates a converter. fetcher may be nil when every textured face
// carries its own decoded image.
func New(fetcher assets.Fetcher, resolver material.Resolver, opts Options, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{fetcher: fetcher, resolver: resolver, opts: opts, log: log}
}

// Result is the outcome of one run.
type Result struct {
	Document *gltf.Document
	Stats    Stats
}

// scope is a set of fragments merged together.
type scope struct {
	name  string
	frags []scene.MeshFragment
}

// placed is a consolidated mesh registered in the document.
type placed struct {
	mesh consolidate.Mesh
	id   gltf.ID
}

// Run converts objects into a finalized document named name. A vertex pool
// overflow or a dangling reference fails the run; unavailable textures only
// cost their faces the texture.
func (c *Converter) Run(ctx context.Context, name string, objects []scene.Object) (*Result, error) {
	log := c.log.With(zap.String("run", name))
	doc := gltf.New(gltf.Options{Generator: c.opts.Generator, IDPrefix: c.opts.IDPrefix})
	stats := Stats{Objects: len(objects)}

	var techniques *gltf.DefaultTechniques
	if c.opts.DefaultTechnique {
		t := gltf.AddDefaultTechniques(doc)
		techniques = &t
		if err := c.resolveShaders(doc); err != nil {
			return nil, err
		}
	}

	// Consolidate each scope and give every mesh a node.
	var meshes []placed
	for _, s := range c.scopes(name, objects) {
		stats.Fragments += len(s.frags)
		if len(s.frags) == 0 {
			log.Debug("skipping empty scope", zap.String("scope", s.name))
			continue
		}

		parent, err := doc.AddNode("", gltf.Node{Name: s.name})
		if err != nil {
			return nil, err
		}

		for _, m := range consolidate.Consolidate(s.name, s.frags, log) {
			if len(m.Face.Indices) == 0 {
				log.Warn("skipping mesh without triangles", zap.String("mesh", m.Name))
				stats.Skipped++
				continue
			}
			stats.Meshes++
			if m.PassThrough {
				stats.PassThrough++
			} else {
				stats.Clusters++
			}

			id := doc.AddMesh(gltf.Mesh{Name: m.Name})
			if _, err := doc.AddNode(parent, meshNode(m, id)); err != nil {
				return nil, err
			}
			meshes = append(meshes, placed{mesh: m, id: id})
		}
	}

	// Materials, with every distinct texture fetched up front.
	assembler := material.New(doc, c.fetcher, c.resolver, material.Options{
		Workers:    c.opts.Workers,
		Techniques: techniques,
	}, log)

	faces := make([]scene.Face, len(meshes))
	for i, p := range meshes {
		faces[i] = p.mesh.Face
	}
	if err := assembler.Prefetch(ctx, faces); err != nil {
		return nil, fmt.Errorf("fetching textures: %w", err)
	}

	materials := make([]gltf.ID, len(meshes))
	for i, p := range meshes {
		id, err := assembler.Material(ctx, p.mesh.Face)
		if err != nil {
			return nil, fmt.Errorf("material for %s: %w", p.mesh.Name, err)
		}
		materials[i] = id
	}

	// One buffer for every mesh of the run.
	inputs := make([]pack.Input, len(meshes))
	for i, p := range meshes {
		inputs[i] = pack.Input{Name: p.mesh.Name, Vertices: p.mesh.Face.Vertices, Indices: p.mesh.Face.Indices}
	}
	packed, err := pack.Pack(inputs)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", name, err)
	}

	buffer, accessors := packed.AddTo(doc)
	if buffer != "" {
		if err := c.resolveBuffer(doc, buffer, name); err != nil {
			return nil, err
		}
	}

	for i, p := range meshes {
		m, _ := doc.Meshes.Get(p.id)
		m.Primitives = append(m.Primitives, gltf.Primitive{
			Attributes: accessors[i].Attributes(),
			Indices:    accessors[i].Indices,
			Material:   materials[i],
			Mode:       gltf.ModeTriangles,
		})
	}

	if err := doc.Finalize(); err != nil {
		return nil, fmt.Errorf("finalizing %s: %w", name, err)
	}

	stats.addPack(packed)
	stats.addMaterials(assembler.Stats())
	stats.log(log)

	return &Result{Document: doc, Stats: stats}, nil
}

func (c *Converter) scopes(name string, objects []scene.Object) []scope {
	if c.opts.Granularity == WholeScene {
		s := scope{name: name}
		for _, o := range objects {
			s.frags = append(s.frags, o.Fragments()...)
		}
		return []scope{s}
	}

	scopes := make([]scope, len(objects))
	for i, o := range objects {
		scopes[i] = scope{name: o.Name, frags: o.Fragments()}
	}
	return scopes
}

// meshNode places a mesh at its anchor. Merged meshes never rotate; a
// pass-through mesh keeps its fragment's rotation.
func meshNode(m consolidate.Mesh, id gltf.ID) gltf.Node {
	pos := [3]float32(m.Anchor.Position)
	n := gltf.Node{
		Name:        m.Name,
		Meshes:      []gltf.ID{id},
		Translation: &pos,
		Extras: &gltf.NodeExtras{
			ScaleHint: [3]float32(m.Anchor.Scale),
			Sources:   m.Sources,
		},
	}
	if m.PassThrough {
		q := m.Anchor.Rotation
		rot := [4]float32{q.V[0], q.V[1], q.V[2], q.W}
		n.Rotation = &rot
	}
	return n
}

func (c *Converter) resolveBuffer(doc *gltf.Document, id gltf.ID, name string) error {
	loc, err := c.resolver.Resolve(gltf.KindBuffer, name)
	if err != nil {
		return fmt.Errorf("resolving buffer: %w", err)
	}
	b, _ := doc.Buffers.Get(id)
	b.URI, b.Path = loc.URI, loc.Path
	return nil
}

func (c *Converter) resolveShaders(doc *gltf.Document) error {
	var err error
	doc.Shaders.Each(func(id gltf.ID, s *gltf.Shader) {
		if err != nil {
			return
		}
		loc, rerr := c.resolver.Resolve(gltf.KindShader, s.Name)
		if rerr != nil {
			err = fmt.Errorf("resolving shader %s: %w", id, rerr)
			return
		}
		s.URI, s.Path = loc.URI, loc.Path
	})
	return err
}
