package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/primgltf/internal/config"
)

func newConfigCmd(g *globalFlags) *cobra.Command {
	var (
		asTOML bool
		saveTo string
		toUser bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(config.Overrides{})
			if err != nil {
				return err
			}

			if toUser {
				if err := cfg.Save(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved to %s\n", config.ConfigDir())
				return nil
			}

			if saveTo != "" {
				if err := cfg.SaveTo(saveTo); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", saveTo)
				return nil
			}

			data, err := cfg.Marshal(asTOML)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&asTOML, "toml", false, "print as TOML instead of YAML")
	cmd.Flags().StringVar(&saveTo, "save", "", "write the configuration to this path instead")
	cmd.Flags().BoolVar(&toUser, "user", false, "write the configuration to the user config directory")
	cmd.MarkFlagsMutuallyExclusive("save", "user")
	return cmd
}
