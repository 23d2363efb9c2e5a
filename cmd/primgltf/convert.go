package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/primgltf/internal/assets"
	"github.com/Faultbox/primgltf/internal/config"
	"github.com/Faultbox/primgltf/internal/convert"
	"github.com/Faultbox/primgltf/internal/logger"
	"github.com/Faultbox/primgltf/internal/output"
	"github.com/Faultbox/primgltf/internal/scenefile"
)

func newConvertCmd(g *globalFlags) *cobra.Command {
	var o config.Overrides

	cmd := &cobra.Command{
		Use:   "convert <scene.yaml>",
		Short: "Convert a scene description to glTF",
		Example: `  primgltf convert village.yaml -o out
  primgltf convert village.yaml --granularity scene --assets ./textures`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(o)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			sum, stats, err := runConvert(ctx, cfg, args[0], logger.Log)
			if err != nil {
				logger.Log.Error("conversion failed", zap.String("scene", args[0]), zap.Error(err))
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Document: %s\n", sum.Document)
			fmt.Fprintf(out, "Meshes:   %d (%d fragments)\n", stats.Meshes, stats.Fragments)
			fmt.Fprintf(out, "Vertices: %d unique of %d (%.1f%%)\n",
				stats.PoolVertices, stats.SourceVertices, stats.DedupRatio*100)
			fmt.Fprintf(out, "Textures: %d (%d unavailable)\n", stats.Textures, stats.TextureMisses)
			fmt.Fprintf(out, "Written:  %.2f KB\n", float64(sum.Bytes)/1024)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.OutputDir, "out", "o", "", "output directory")
	f.StringVar(&o.Name, "name", "", "document name (default: scene name)")
	f.StringVar(&o.Granularity, "granularity", "", `merge scope: "object" or "scene"`)
	f.StringSliceVar(&o.Sources, "assets", nil, "extra asset directories, later ones win")
	f.IntVar(&o.MaxResolution, "max-resolution", 0, "longest texture side in pixels")
	f.IntVar(&o.Workers, "workers", 0, "concurrent texture fetches")
	return cmd
}

func runConvert(ctx context.Context, cfg *config.Config, scenePath string, log *zap.Logger) (output.Summary, convert.Stats, error) {
	var sum output.Summary

	file, err := scenefile.Load(scenePath)
	if err != nil {
		return sum, convert.Stats{}, err
	}

	name := cfg.Output.Name
	if name == "" {
		name = file.Name
	}

	manager := assets.NewManager(log)
	defer manager.Close()
	for _, dir := range cfg.Textures.Sources {
		if err := manager.AddDir(dir); err != nil {
			log.Warn("skipping asset source", zap.String("dir", dir), zap.Error(err))
		}
	}

	granularity, err := convert.ParseGranularity(cfg.Convert.Granularity)
	if err != nil {
		return sum, convert.Stats{}, err
	}

	resolver := output.NewResolver(cfg.Output.Dir, cfg.Output.BaseURI)
	conv := convert.New(manager, resolver, convert.Options{
		Granularity:      granularity,
		Generator:        cfg.Convert.Generator,
		IDPrefix:         cfg.Convert.IDPrefix,
		DefaultTechnique: cfg.Convert.DefaultTechnique,
		Workers:          cfg.Textures.Workers,
	}, log)

	res, err := conv.Run(ctx, name, file.Objects)
	if err != nil {
		return sum, convert.Stats{}, err
	}

	store := output.NewStore(cfg.Textures.MaxResolution, log)
	sum, err = store.Save(res.Document, filepath.Join(cfg.Output.Dir, name+".gltf"))
	if err != nil {
		return sum, res.Stats, err
	}

	hits, misses := manager.Stats()
	log.Debug("asset cache", zap.Int("hits", hits), zap.Int("misses", misses), zap.Int("decodes", manager.Decodes()))
	return sum, res.Stats, nil
}
