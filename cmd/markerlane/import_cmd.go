package main

import (
	"fmt"

	"github.com/markerlane/markerlane/internal/storage"
	"github.com/spf13/cobra"
)

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Load markers from a fixture file into the store",
		Long: `Load every marker of a JSON or YAML fixture (optionally gzipped) into the
configured store. Markers with an existing id are overwritten.

Usage:
  markerlane import scene-42.yaml
  markerlane import markers.json.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := storage.Import(store, args[0])
			if err != nil {
				return err
			}
			a.Logger.Info("Fixture imported", "path", args[0], "markers", n)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d markers from %s\n", n, args[0])
			return nil
		},
	}
}
