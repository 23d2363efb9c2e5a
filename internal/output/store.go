package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/primgltf/internal/texture"
	"github.com/Faultbox/primgltf/pkg/gltf"
)

// Store writes a finalized document and its sibling files.
type Store struct {
	// MaxResolution caps the longest side of written images. Zero keeps
	// the source size.
	MaxResolution int

	log *zap.Logger
}

// NewStore creates a store.
func NewStore(maxResolution int, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{MaxResolution: maxResolution, log: log}
}

// Summary describes what Save wrote.
type Summary struct {
	Document string
	Buffers  int
	Images   int
	Shaders  int
	Bytes    int64
}

// Save writes every buffer, image and shader to its resolved path, then the
// document itself to docPath. Entities without a path are skipped.
func (s *Store) Save(d *gltf.Document, docPath string) (Summary, error) {
	sum := Summary{Document: docPath}

	if !d.Finalized() {
		if err := d.Finalize(); err != nil {
			return sum, fmt.Errorf("finalizing document: %w", err)
		}
	}

	var err error
	d.Buffers.Each(func(id gltf.ID, b *gltf.Buffer) {
		if err != nil || b.Path == "" {
			return
		}
		if werr := writeFile(b.Path, b.Data); werr != nil {
			err = fmt.Errorf("writing buffer %s: %w", id, werr)
			return
		}
		sum.Buffers++
		sum.Bytes += int64(len(b.Data))
		s.log.Debug("wrote buffer", zap.String("id", string(id)), zap.String("path", b.Path), zap.Int("bytes", len(b.Data)))
	})
	if err != nil {
		return sum, err
	}

	d.Images.Each(func(id gltf.ID, img *gltf.Image) {
		if err != nil || img.Path == "" || img.Data == nil {
			return
		}
		data, eerr := texture.EncodePNG(texture.Fit(img.Data, s.MaxResolution))
		if eerr != nil {
			err = fmt.Errorf("encoding image %s: %w", id, eerr)
			return
		}
		if werr := writeFile(img.Path, data); werr != nil {
			err = fmt.Errorf("writing image %s: %w", id, werr)
			return
		}
		sum.Images++
		sum.Bytes += int64(len(data))
		s.log.Debug("wrote image", zap.String("id", string(id)), zap.String("path", img.Path))
	})
	if err != nil {
		return sum, err
	}

	d.Shaders.Each(func(id gltf.ID, sh *gltf.Shader) {
		if err != nil || sh.Path == "" {
			return
		}
		if werr := writeFile(sh.Path, []byte(sh.Source)); werr != nil {
			err = fmt.Errorf("writing shader %s: %w", id, werr)
			return
		}
		sum.Shaders++
		sum.Bytes += int64(len(sh.Source))
	})
	if err != nil {
		return sum, err
	}

	var buf bytes.Buffer
	if err := gltf.Write(&buf, d); err != nil {
		return sum, fmt.Errorf("encoding document: %w", err)
	}
	if err := writeFile(docPath, buf.Bytes()); err != nil {
		return sum, fmt.Errorf("writing document: %w", err)
	}
	sum.Bytes += int64(buf.Len())

	s.log.Info("saved document",
		zap.String("path", docPath),
		zap.Int("buffers", sum.Buffers),
		zap.Int("images", sum.Images),
		zap.Int("shaders", sum.Shaders),
		zap.Int64("bytes", sum.Bytes))
	return sum, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
