package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/primgltf/internal/output"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.gltf>",
		Short: "Show a summary of a written document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := output.Inspect(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Document:  %s\n", args[0])
			fmt.Fprintf(out, "Version:   %s\n", info.Version)
			if info.Generator != "" {
				fmt.Fprintf(out, "Generator: %s\n", info.Generator)
			}
			fmt.Fprintf(out, "Buffers:   %.2f KB\n", float64(info.BufferBytes)/1024)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Collections:")
			for _, name := range info.Names() {
				fmt.Fprintf(out, "  %-12s %d\n", name, info.Collections[name])
			}
			if len(info.ImageURIs) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Images:")
				for _, uri := range info.ImageURIs {
					fmt.Fprintf(out, "  %s\n", uri)
				}
			}
			return nil
		},
	}
}
