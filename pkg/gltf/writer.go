package gltf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// field is one top-level member of the written document.
type field struct {
	key      string
	value    any
	optional bool
	empty    bool
}

// Marshal validates the document and returns its JSON encoding. Members are
// written in a fixed order; required collections are always present, optional
// ones only when they hold at least one entity.
func Marshal(d *Document) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	fields := []field{
		{key: "asset", value: d.Asset},
		{key: "scene", value: d.Scene},
		{key: "scenes", value: &d.Scenes},
		{key: "nodes", value: &d.Nodes},
		{key: "meshes", value: &d.Meshes},
		{key: "accessors", value: &d.Accessors},
		{key: "bufferViews", value: &d.BufferViews},
		{key: "buffers", value: &d.Buffers},
		{key: "materials", value: &d.Materials, optional: true, empty: d.Materials.Len() == 0},
		{key: "techniques", value: &d.Techniques, optional: true, empty: d.Techniques.Len() == 0},
		{key: "programs", value: &d.Programs, optional: true, empty: d.Programs.Len() == 0},
		{key: "shaders", value: &d.Shaders, optional: true, empty: d.Shaders.Len() == 0},
		{key: "textures", value: &d.Textures, optional: true, empty: d.Textures.Len() == 0},
		{key: "images", value: &d.Images, optional: true, empty: d.Images.Len() == 0},
		{key: "samplers", value: &d.Samplers, optional: true, empty: d.Samplers.Len() == 0},
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, f := range fields {
		if f.optional && f.empty {
			continue
		}
		val, err := json.Marshal(f.value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", f.key, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		fmt.Fprintf(&buf, "%q:", f.key)
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalIndent is like Marshal but indents the output.
func MarshalIndent(d *Document, indent string) ([]byte, error) {
	data, err := Marshal(d)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", indent); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Write writes the indented document to w.
func Write(w io.Writer, d *Document) error {
	data, err := MarshalIndent(d, "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
