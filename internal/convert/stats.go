package convert

import (
	"go.uber.org/zap"

	"github.com/Faultbox/primgltf/internal/material"
	"github.com/Faultbox/primgltf/internal/pack"
)

// Stats summarizes one run.
type Stats struct {
	Objects     int
	Fragments   int
	Meshes      int
	Clusters    int
	PassThrough int
	// Skipped counts meshes dropped for having no triangles.
	Skipped int

	SourceVertices int
	PoolVertices   int
	DedupRatio     float64
	BufferBytes    int

	Materials      int
	MaterialReuses int
	Textures       int
	TextureMisses  int
}

func (s *Stats) addPack(r *pack.Result) {
	s.SourceVertices = r.Sources
	s.PoolVertices = len(r.Pool)
	s.DedupRatio = r.DedupRatio()
	s.BufferBytes = len(r.Data)
}

func (s *Stats) addMaterials(m material.Stats) {
	s.Materials = m.Materials
	s.MaterialReuses = m.MaterialReuses
	s.Textures = m.Textures
	s.TextureMisses = m.FetchFailures
}

func (s *Stats) log(log *zap.Logger) {
	log.Info("conversion finished",
		zap.Int("objects", s.Objects),
		zap.Int("fragments", s.Fragments),
		zap.Int("meshes", s.Meshes),
		zap.Int("pass_through", s.PassThrough),
		zap.Int("skipped", s.Skipped),
		zap.Int("vertices", s.SourceVertices),
		zap.Int("pool", s.PoolVertices),
		zap.Float64("dedup_ratio", s.DedupRatio),
		zap.Int("buffer_bytes", s.BufferBytes),
		zap.Int("materials", s.Materials),
		zap.Int("textures", s.Textures))
	if s.TextureMisses > 0 {
		log.Warn("some textures were unavailable", zap.Int("missing", s.TextureMisses))
	}
}
