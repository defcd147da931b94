package main

import (
	"context"
	"fmt"
	"time"

	"github.com/markerlane/markerlane/internal/storage"
	"github.com/spf13/cobra"
)

func (a *app) exportCmd() *cobra.Command {
	var sceneID string

	cmd := &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write markers from the store to a file",
		Long: `With FILE, write one scene's markers as a fixture; the format follows the
extension (.json, .yaml, .yml, optionally .gz). Without FILE, ask the store
for a full snapshot in its own format: a gzipped JSON dump for the memory
store or a database copy for sqlite.

Usage:
  markerlane export scene-42.yaml --scene 42
  markerlane export`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				if sceneID == "" {
					return fmt.Errorf("export to %s: --scene is required", args[0])
				}
				n, err := storage.ExportScene(store, sceneID, args[0])
				if err != nil {
					return err
				}
				a.Logger.Info("Scene exported", "scene", sceneID, "path", args[0], "markers", n)
				fmt.Fprintf(out, "exported %d markers to %s\n", n, args[0])
				return nil
			}

			exporter, ok := store.(storage.Exporter)
			if !ok {
				return fmt.Errorf("storage backend %T does not support snapshots", store)
			}
			path, err := exporter.Export(AppName)
			if err != nil {
				return err
			}
			a.Logger.Info("Store exported", "path", path)
			fmt.Fprintln(out, path)

			if a.OTelProvider != nil {
				ctx, cancel := context.WithTimeout(cmdContext(cmd), 5*time.Second)
				defer cancel()
				if err := a.OTelProvider.Flush(ctx); err != nil {
					a.Logger.Warn("Failed to flush telemetry", "error", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sceneID, "scene", "", "scene id, required with FILE")
	return cmd
}

// cmdContext guards against commands executed without a context.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
