package gltf

import (
	"fmt"

	"go.uber.org/multierr"
)

// Validate checks that every cross reference resolves and that every byte
// range fits inside the range it views. All problems are reported together.
func (d *Document) Validate() error {
	var err error

	ref := func(owner string, ownerID ID, field string, target ID, ok bool) {
		if !ok {
			err = multierr.Append(err, fmt.Errorf("%w: %s %s: %s %q", ErrMalformedReference, owner, ownerID, field, target))
		}
	}

	if !d.Scenes.Has(d.Scene) {
		err = multierr.Append(err, fmt.Errorf("%w: default scene %q", ErrMalformedReference, d.Scene))
	}

	d.Scenes.Each(func(id ID, s *Scene) {
		for _, n := range s.Nodes {
			ref("scene", id, "node", n, d.Nodes.Has(n))
		}
	})

	d.Nodes.Each(func(id ID, n *Node) {
		for _, c := range n.Children {
			ref("node", id, "child", c, d.Nodes.Has(c))
		}
		for _, m := range n.Meshes {
			ref("node", id, "mesh", m, d.Meshes.Has(m))
		}
	})

	d.Meshes.Each(func(id ID, m *Mesh) {
		for _, p := range m.Primitives {
			ref("mesh", id, "indices", p.Indices, d.Accessors.Has(p.Indices))
			ref("mesh", id, "material", p.Material, d.Materials.Has(p.Material))
			ref("mesh", id, AttrPosition, p.Attributes.Position, d.Accessors.Has(p.Attributes.Position))
			if p.Attributes.Normal != "" {
				ref("mesh", id, AttrNormal, p.Attributes.Normal, d.Accessors.Has(p.Attributes.Normal))
			}
			if p.Attributes.TexCoord0 != "" {
				ref("mesh", id, AttrTexCoord0, p.Attributes.TexCoord0, d.Accessors.Has(p.Attributes.TexCoord0))
			}
		}
	})

	d.Accessors.Each(func(id ID, a *Accessor) {
		view, ok := d.BufferViews.Get(a.BufferView)
		ref("accessor", id, "bufferView", a.BufferView, ok)
		if !ok {
			return
		}
		if a.ElementSize() == 0 {
			err = multierr.Append(err, fmt.Errorf("accessor %s: unsupported element %d/%s", id, a.ComponentType, a.Type))
			return
		}
		if a.ByteOffset < 0 || a.ByteEnd() > view.ByteLength {
			err = multierr.Append(err, fmt.Errorf("%w: accessor %s spans [%d,%d) of view %s with %d bytes",
				ErrOutOfBounds, id, a.ByteOffset, a.ByteEnd(), a.BufferView, view.ByteLength))
		}
	})

	d.BufferViews.Each(func(id ID, v *BufferView) {
		buf, ok := d.Buffers.Get(v.Buffer)
		ref("bufferView", id, "buffer", v.Buffer, ok)
		if !ok {
			return
		}
		if v.ByteOffset < 0 || v.ByteLength < 0 || v.ByteOffset+v.ByteLength > buf.ByteLength {
			err = multierr.Append(err, fmt.Errorf("%w: view %s spans [%d,%d) of buffer %s with %d bytes",
				ErrOutOfBounds, id, v.ByteOffset, v.ByteOffset+v.ByteLength, v.Buffer, buf.ByteLength))
		}
	})

	d.Materials.Each(func(id ID, m *Material) {
		if m.Technique != "" {
			ref("material", id, "technique", m.Technique, d.Techniques.Has(m.Technique))
		}
		if m.Values.Diffuse.Texture != "" {
			ref("material", id, "diffuse", m.Values.Diffuse.Texture, d.Textures.Has(m.Values.Diffuse.Texture))
		}
	})

	d.Textures.Each(func(id ID, t *Texture) {
		ref("texture", id, "source", t.Source, d.Images.Has(t.Source))
		ref("texture", id, "sampler", t.Sampler, d.Samplers.Has(t.Sampler))
	})

	d.Techniques.Each(func(id ID, t *Technique) {
		ref("technique", id, "program", t.Program, d.Programs.Has(t.Program))
	})

	d.Programs.Each(func(id ID, p *Program) {
		ref("program", id, "vertexShader", p.VertexShader, d.Shaders.Has(p.VertexShader))
		ref("program", id, "fragmentShader", p.FragmentShader, d.Shaders.Has(p.FragmentShader))
	})

	return err
}
