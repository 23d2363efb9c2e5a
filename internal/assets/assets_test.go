package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestFetchRawAssetPriority(t *testing.T) {
	id := uuid.New()
	m := NewManager(nil)
	m.AddSource(MemorySource{id: []byte("low")})
	m.AddSource(MemorySource{id: []byte("high")})

	data, err := m.FetchRawAsset(context.Background(), id)
	if err != nil {
		t.Fatalf("FetchRawAsset: %v", err)
	}
	if string(data) != "high" {
		t.Errorf("expected last added source to win, got %q", data)
	}
}

func TestFetchRawAssetNotFound(t *testing.T) {
	m := NewManager(nil)
	m.AddSource(MemorySource{})

	_, err := m.FetchRawAsset(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchRawAssetCancelled(t *testing.T) {
	m := NewManager(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.FetchRawAsset(ctx, uuid.New()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFetchTextureImage(t *testing.T) {
	id := uuid.New()
	m := NewManager(nil)
	m.AddSource(MemorySource{id: pngBytes(t)})

	img, err := m.FetchTextureImage(context.Background(), id)
	if err != nil {
		t.Fatalf("FetchTextureImage: %v", err)
	}
	if !img.HasAlpha {
		t.Error("transparent PNG should report alpha")
	}
	if img.Pixels.Bounds().Dx() != 2 {
		t.Errorf("unexpected width %d", img.Pixels.Bounds().Dx())
	}
}

func TestFetchTextureImageNotTexture(t *testing.T) {
	id := uuid.New()
	m := NewManager(nil)
	m.AddSource(MemorySource{id: []byte("definitely not pixels")})

	_, err := m.FetchTextureImage(context.Background(), id)
	if !errors.Is(err, ErrNotTexture) {
		t.Errorf("expected ErrNotTexture, got %v", err)
	}
}

func TestFetchTextureImageCoalesces(t *testing.T) {
	id := uuid.New()
	m := NewManager(nil)
	m.AddSource(MemorySource{id: pngBytes(t)})

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.FetchTextureImage(context.Background(), id); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("FetchTextureImage: %v", err)
	}
	if got := m.Decodes(); got != 1 {
		t.Errorf("expected 1 decode, got %d", got)
	}
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	withExt := uuid.New()
	bare := uuid.New()

	if err := os.WriteFile(filepath.Join(dir, withExt.String()+".png"), []byte("png"), 0644); err != nil {
		t.Fatalf("failed to write asset: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, bare.String()), []byte("raw"), 0644); err != nil {
		t.Fatalf("failed to write asset: %v", err)
	}

	m := NewManager(nil)
	if err := m.AddDir(dir); err != nil {
		t.Fatalf("AddDir: %v", err)
	}

	tests := []struct {
		id   uuid.UUID
		want string
	}{
		{withExt, "png"},
		{bare, "raw"},
	}
	for _, tt := range tests {
		data, err := m.FetchRawAsset(context.Background(), tt.id)
		if err != nil {
			t.Fatalf("FetchRawAsset(%s): %v", tt.id, err)
		}
		if string(data) != tt.want {
			t.Errorf("FetchRawAsset(%s) = %q, want %q", tt.id, data, tt.want)
		}
	}

	if _, err := m.FetchRawAsset(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAddDirMissing(t *testing.T) {
	m := NewManager(nil)
	if err := m.AddDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestCacheStats(t *testing.T) {
	c := NewCache[int]()
	id := uuid.New()

	c.Get(id)
	c.Set(id, 7)
	if v, ok := c.Get(id); !ok || v != 7 {
		t.Errorf("Get = %d, %v", v, ok)
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("stats = %d hits, %d misses, want 1, 1", hits, misses)
	}

	c.Clear()
	if c.Len() != 0 {
		t.Error("cache should be empty after Clear")
	}
}
