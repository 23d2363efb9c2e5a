// primgltf converts prim scene descriptions into glTF documents.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/primgltf/internal/config"
	"github.com/Faultbox/primgltf/internal/logger"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	debug      bool
	logFile    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "primgltf",
		Short: "Convert prim scenes to glTF",
		Long: `primgltf merges the faces of prim-based scenes by material, packs every
mesh into one shared vertex buffer and writes a glTF document with its
buffers and textures.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "path to config file (YAML or TOML)")
	pf.BoolVar(&g.debug, "debug", false, "enable debug logging")
	pf.StringVar(&g.logFile, "log-file", "", "also log to a rotating file")

	root.AddCommand(
		newConvertCmd(g),
		newInfoCmd(),
		newConfigCmd(g),
	)
	return root
}

// load reads the config and sets up logging.
func (g *globalFlags) load(o config.Overrides) (*config.Config, error) {
	o.Debug = o.Debug || g.debug
	if g.logFile != "" {
		o.LogFile = g.logFile
	}
	cfg, err := config.Load(g.configPath, o)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)
	return cfg, nil
}
