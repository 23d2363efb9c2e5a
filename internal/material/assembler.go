// Package material turns texture entries into deduplicated glTF materials,
// textures, images and samplers.
package material

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/primgltf/internal/assets"
	"github.com/Faultbox/primgltf/internal/texture"
	"github.com/Faultbox/primgltf/pkg/gltf"
	"github.com/Faultbox/primgltf/pkg/scene"
)

// Resolver assigns the file location of a persisted asset. It is called once
// per distinct image or buffer.
type Resolver interface {
	Resolve(kind gltf.AssetKind, name string) (gltf.Location, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(kind gltf.AssetKind, name string) (gltf.Location, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(kind gltf.AssetKind, name string) (gltf.Location, error) {
	return f(kind, name)
}

// Options configures an Assembler.
type Options struct {
	// Workers limits concurrent fetches during Prefetch. Zero means 4.
	Workers int
	// Techniques, when set, are attached to every material.
	Techniques *gltf.DefaultTechniques
}

// Stats counts what an Assembler produced.
type Stats struct {
	Materials      int
	MaterialReuses int
	Textures       int
	Fetches        int
	FetchFailures  int
}

// Assembler creates one material per distinct texture entry and one texture
// per distinct source image. It owns its lookup tables; nothing is shared
// between runs.
type Assembler struct {
	doc      *gltf.Document
	fetcher  assets.Fetcher
	resolver Resolver
	opts     Options
	log      *zap.Logger

	materials map[uuid.UUID]gltf.ID
	textures  map[uuid.UUID]textureRef
	sampler   gltf.ID

	mu    sync.Mutex
	tasks map[uuid.UUID]*Task

	stats Stats
}

type textureRef struct {
	id       gltf.ID
	hasAlpha bool
}

// New creates an assembler adding entities to doc. fetcher may be nil, in
// which case only faces carrying a decoded image get textures.
func New(doc *gltf.Document, fetcher assets.Fetcher, resolver Resolver, opts Options, log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Assembler{
		doc:       doc,
		fetcher:   fetcher,
		resolver:  resolver,
		opts:      opts,
		log:       log,
		materials: make(map[uuid.UUID]gltf.ID),
		textures:  make(map[uuid.UUID]textureRef),
		tasks:     make(map[uuid.UUID]*Task),
	}
}

// Stats returns the counters so far.
func (a *Assembler) Stats() Stats {
	return a.stats
}

// Prefetch starts one fetch per distinct texture among faces and waits for
// all of them. Failed fetches are kept on their task and reported when the
// material is built. Only cancellation of ctx is returned.
func (a *Assembler) Prefetch(ctx context.Context, faces []scene.Face) error {
	if a.fetcher == nil {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)

	for _, f := range faces {
		if f.Image != nil || !f.Texture.HasTexture() {
			continue
		}
		task, started := a.task(f.Texture.TextureID)
		if !started {
			continue
		}
		g.Go(func() error {
			a.run(gctx, task)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Task returns the fetch for id, starting it in the background if no fetch
// was issued yet.
func (a *Assembler) Task(ctx context.Context, id uuid.UUID) *Task {
	task, started := a.task(id)
	if started {
		go a.run(ctx, task)
	}
	return task
}

// task returns the task for id and whether the caller must run it.
func (a *Assembler) task(id uuid.UUID) (*Task, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if t, ok := a.tasks[id]; ok {
		return t, false
	}
	t := newTask(id)
	a.tasks[id] = t
	a.stats.Fetches++
	return t, true
}

func (a *Assembler) run(ctx context.Context, t *Task) {
	if a.fetcher == nil {
		t.complete(texture.Image{}, assets.ErrNotFound)
		return
	}
	img, err := a.fetcher.FetchTextureImage(ctx, t.ID)
	t.complete(img, err)
}

// Material returns the material for a face, creating it and its texture on
// first use. Missing or undecodable textures leave the material untextured.
// Errors are returned only for a failing resolver or a cancelled ctx.
func (a *Assembler) Material(ctx context.Context, face scene.Face) (gltf.ID, error) {
	entry := face.Texture
	hash := entry.Hash()
	if id, ok := a.materials[hash]; ok {
		a.stats.MaterialReuses++
		return id, nil
	}

	var tex *textureRef
	if entry.HasTexture() {
		ref, err := a.texture(ctx, entry.TextureID, face.Image)
		switch {
		case err == nil:
			tex = &ref
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return "", err
		case errors.Is(err, errResolve):
			return "", err
		default:
			a.stats.FetchFailures++
			a.log.Warn("texture unavailable, using flat color",
				zap.Stringer("texture", entry.TextureID),
				zap.Error(err))
		}
	}

	m := gltf.Material{
		Name:   "material-" + hash.String()[:8],
		Values: values(entry, tex),
	}
	if t := a.opts.Techniques; t != nil {
		m.Technique = t.Color
		if tex != nil {
			m.Technique = t.Texture
		}
	}

	id := a.doc.AddMaterial(m)
	a.materials[hash] = id
	a.stats.Materials++
	return id, nil
}

var errResolve = errors.New("resolving image location")

// texture returns the texture for a source image, fetching it when the face
// carries no decoded image.
func (a *Assembler) texture(ctx context.Context, id uuid.UUID, decoded image.Image) (textureRef, error) {
	if ref, ok := a.textures[id]; ok {
		return ref, nil
	}

	img := texture.Image{Pixels: decoded}
	if decoded != nil {
		img.HasAlpha = texture.HasAlpha(decoded)
	} else {
		var err error
		img, err = a.Task(ctx, id).Await(ctx)
		if err != nil {
			return textureRef{}, err
		}
	}

	loc, err := a.resolver.Resolve(gltf.KindImage, id.String())
	if err != nil {
		return textureRef{}, fmt.Errorf("%w %s: %w", errResolve, id, err)
	}

	source := a.doc.AddImage(gltf.Image{
		Name:     id.String(),
		URI:      loc.URI,
		Data:     img.Pixels,
		HasAlpha: img.HasAlpha,
		Path:     loc.Path,
	})
	ref := textureRef{
		id: a.doc.AddTexture(gltf.Texture{
			Format:         gltf.FormatRGBA,
			InternalFormat: gltf.FormatRGBA,
			Sampler:        a.defaultSampler(),
			Source:         source,
			Target:         gltf.TextureTarget2D,
			Type:           gltf.TexelUnsignedByte,
		}),
		hasAlpha: img.HasAlpha,
	}
	a.textures[id] = ref
	a.stats.Textures++
	return ref, nil
}

func (a *Assembler) defaultSampler() gltf.ID {
	if a.sampler == "" {
		a.sampler = a.doc.AddSampler(gltf.Sampler{
			MagFilter: gltf.FilterLinear,
			MinFilter: gltf.FilterLinearMipmapLinear,
			WrapS:     gltf.WrapRepeat,
			WrapT:     gltf.WrapRepeat,
		})
	}
	return a.sampler
}

// values maps a texture entry onto the common material parameters.
func values(entry scene.TextureEntry, tex *textureRef) gltf.MaterialValues {
	v := gltf.MaterialValues{
		Ambient:      entry.Color,
		Diffuse:      gltf.Diffuse{Color: entry.Color},
		Shininess:    entry.Shiny.Exponent(),
		Transparency: entry.Color[3],
	}
	if tex != nil {
		v.Diffuse.Texture = tex.id
	}

	switch {
	case entry.Fullbright:
		c := entry.Color
		v.Emission = &c
	case entry.Glow > 0:
		c := [4]float32{entry.Color[0] * entry.Glow, entry.Color[1] * entry.Glow, entry.Color[2] * entry.Glow, 1}
		v.Emission = &c
	}

	v.Transparent = transparent(entry, tex)
	return v
}

func transparent(entry scene.TextureEntry, tex *textureRef) bool {
	if entry.Color[3] < 1 {
		return true
	}
	switch entry.Alpha {
	case scene.AlphaOpaque:
		return false
	case scene.AlphaBlend:
		return true
	default:
		return tex != nil && tex.hasAlpha
	}
}
