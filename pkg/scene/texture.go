package scene

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// BlankTexture is the asset id hosts use for "no texture, just color".
var BlankTexture = uuid.MustParse("5748decc-f629-461c-9a36-a35a236fe36f")

// materialNamespace seeds TextureEntry hashes.
var materialNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("primgltf/material"))

// AlphaMode is how a face's alpha channel is applied.
type AlphaMode uint8

const (
	AlphaOpaque AlphaMode = iota
	AlphaBlend
	AlphaMask
)

// String returns a human-readable alpha mode name.
func (m AlphaMode) String() string {
	switch m {
	case AlphaOpaque:
		return "opaque"
	case AlphaBlend:
		return "blend"
	case AlphaMask:
		return "mask"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// ParseAlphaMode parses the names produced by String.
func ParseAlphaMode(s string) (AlphaMode, error) {
	switch s {
	case "", "opaque":
		return AlphaOpaque, nil
	case "blend":
		return AlphaBlend, nil
	case "mask":
		return AlphaMask, nil
	default:
		return AlphaOpaque, fmt.Errorf("unknown alpha mode %q", s)
	}
}

// Shininess is the host's coarse specular level.
type Shininess uint8

const (
	ShinyNone Shininess = iota
	ShinyLow
	ShinyMedium
	ShinyHigh
)

// Exponent maps the shininess level to a Phong exponent.
func (s Shininess) Exponent() float32 {
	switch s {
	case ShinyLow:
		return 8
	case ShinyMedium:
		return 32
	case ShinyHigh:
		return 128
	default:
		return 0
	}
}

// TextureEntry describes how one face is textured. It is the material identity
// of the face: faces with equal entries share a material.
type TextureEntry struct {
	TextureID  uuid.UUID
	Color      [4]float32 // RGBA, 0..1
	Fullbright bool
	Glow       float32
	Shiny      Shininess
	Alpha      AlphaMode
}

// DefaultTextureEntry is an untextured opaque white face.
func DefaultTextureEntry() TextureEntry {
	return TextureEntry{
		TextureID: BlankTexture,
		Color:     [4]float32{1, 1, 1, 1},
	}
}

// HasTexture reports whether the entry references a real texture asset.
func (t TextureEntry) HasTexture() bool {
	return t.TextureID != uuid.Nil && t.TextureID != BlankTexture
}

// Hash returns the material identity of the entry. Equal entries always hash
// to the same value within and across runs.
func (t TextureEntry) Hash() uuid.UUID {
	var buf [16 + 4*4 + 1 + 4 + 1 + 1]byte
	copy(buf[:16], t.TextureID[:])
	off := 16
	for _, c := range t.Color {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(c))
		off += 4
	}
	if t.Fullbright {
		buf[off] = 1
	}
	off++
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(t.Glow))
	off += 4
	buf[off] = byte(t.Shiny)
	buf[off+1] = byte(t.Alpha)
	return uuid.NewSHA1(materialNamespace, buf[:])
}
