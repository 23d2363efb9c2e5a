// Package assets fetches raw assets and decoded textures by asset id.
package assets

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/primgltf/internal/texture"
)

// Fetch errors.
var (
	ErrNotFound   = errors.New("asset not found")
	ErrNotTexture = errors.New("asset is not a texture")
)

// Fetcher retrieves assets for the converter.
type Fetcher interface {
	FetchRawAsset(ctx context.Context, id uuid.UUID) ([]byte, error)
	FetchTextureImage(ctx context.Context, id uuid.UUID) (texture.Image, error)
}

// Source is one place assets can be read from.
type Source interface {
	Read(id uuid.UUID) ([]byte, error)
	String() string
}

// Manager fetches assets from a list of sources and caches the results.
// Concurrent requests for the same texture share one read and one decode.
type Manager struct {
	sources []Source
	raw     *Cache[[]byte]
	images  *Cache[texture.Image]
	group   singleflight.Group
	mu      sync.RWMutex
	log     *zap.Logger

	decodes int
}

// NewManager creates a manager with no sources.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		raw:    NewCache[[]byte](),
		images: NewCache[texture.Image](),
		log:    log,
	}
}

// AddSource adds a source. Sources are searched in reverse order
// (last added = highest priority).
func (m *Manager) AddSource(s Source) {
	m.mu.Lock()
	m.sources = append(m.sources, s)
	m.mu.Unlock()
}

// AddDir adds a directory source.
func (m *Manager) AddDir(path string) error {
	src, err := NewDirSource(path)
	if err != nil {
		return fmt.Errorf("adding source %s: %w", path, err)
	}
	m.AddSource(src)
	return nil
}

// FetchRawAsset returns the bytes of an asset.
func (m *Manager) FetchRawAsset(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if data, ok := m.raw.Get(id); ok {
		return data, nil
	}

	v, err, _ := m.group.Do("raw/"+id.String(), func() (any, error) {
		return m.read(id)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (m *Manager) read(id uuid.UUID) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.sources) - 1; i >= 0; i-- {
		data, err := m.sources[i].Read(id)
		if err == nil {
			m.raw.Set(id, data)
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			m.log.Warn("asset source failed",
				zap.Stringer("source", m.sources[i]),
				zap.Stringer("asset", id),
				zap.Error(err))
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// FetchTextureImage returns the decoded texture of an asset. Waiting callers
// give up when ctx is done; the shared fetch keeps running for the others.
func (m *Manager) FetchTextureImage(ctx context.Context, id uuid.UUID) (texture.Image, error) {
	if img, ok := m.images.Get(id); ok {
		return img, nil
	}

	ch := m.group.DoChan("image/"+id.String(), func() (any, error) {
		if img, ok := m.images.Peek(id); ok {
			return img, nil
		}
		data, err := m.FetchRawAsset(context.WithoutCancel(ctx), id)
		if err != nil {
			return texture.Image{}, err
		}
		m.mu.Lock()
		m.decodes++
		m.mu.Unlock()

		img, err := texture.Decode(data)
		if err != nil {
			if errors.Is(err, texture.ErrNotImage) {
				return texture.Image{}, fmt.Errorf("%w: %s: %v", ErrNotTexture, id, err)
			}
			return texture.Image{}, fmt.Errorf("decoding %s: %w", id, err)
		}
		m.images.Set(id, img)
		return img, nil
	})

	select {
	case <-ctx.Done():
		return texture.Image{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return texture.Image{}, res.Err
		}
		return res.Val.(texture.Image), nil
	}
}

// Decodes returns how many texture decodes the manager has run.
func (m *Manager) Decodes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.decodes
}

// Stats returns texture cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.images.Stats()
}

// Close drops every source and clears the caches.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = nil
	m.raw.Clear()
	m.images.Clear()
}
