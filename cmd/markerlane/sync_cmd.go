package main

import (
	"context"
	"fmt"

	"github.com/markerlane/markerlane/internal/catalog"
	"github.com/markerlane/markerlane/internal/config"
	"github.com/markerlane/markerlane/internal/storage"
	"github.com/spf13/cobra"
)

func (a *app) syncCmd() *cobra.Command {
	var sceneID string
	var prune bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull a scene's markers from the media catalog",
		Long: `Fetch a scene's markers with their tags and parent tag chains from the
catalog's GraphQL endpoint and save them to the store. With --prune, stored
markers the catalog no longer has are deleted.

Usage:
  markerlane sync --scene 42
  markerlane sync --scene 42 --prune`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetCatalogConfig()
			if cfg.ServerURL == "" {
				return fmt.Errorf("catalog.serverUrl is not configured")
			}
			client := catalog.New(cfg.ServerURL, cfg.APIKey, cfg.Timeout)

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			saved, deleted, err := syncScene(cmdContext(cmd), client, store, sceneID, prune)
			if err != nil {
				return err
			}
			a.Logger.Info("Scene synced", "scene", sceneID, "saved", saved, "deleted", deleted)
			fmt.Fprintf(cmd.OutOrStdout(), "synced scene %s: %d saved, %d deleted\n", sceneID, saved, deleted)
			return nil
		},
	}

	cmd.Flags().StringVar(&sceneID, "scene", "", "scene id")
	cmd.Flags().BoolVar(&prune, "prune", false, "delete stored markers missing from the catalog")
	_ = cmd.MarkFlagRequired("scene")
	return cmd
}

func syncScene(ctx context.Context, client *catalog.Client, store storage.Backend, sceneID string, prune bool) (saved, deleted int, err error) {
	if err := client.Healthcheck(ctx); err != nil {
		return 0, 0, fmt.Errorf("catalog unreachable: %w", err)
	}

	markers, err := client.FetchSceneMarkers(ctx, sceneID)
	if err != nil {
		return 0, 0, err
	}

	seen := make(map[string]bool, len(markers))
	for i := range markers {
		if err := store.SaveMarker(&markers[i]); err != nil {
			return saved, 0, fmt.Errorf("save marker %s: %w", markers[i].ID, err)
		}
		seen[markers[i].ID] = true
		saved++
	}

	if !prune {
		return saved, 0, nil
	}
	stored, err := store.LoadMarkers(sceneID)
	if err != nil {
		return saved, 0, err
	}
	for _, m := range stored {
		if seen[m.ID] {
			continue
		}
		if err := store.DeleteMarker(m.ID); err != nil {
			return saved, deleted, fmt.Errorf("delete marker %s: %w", m.ID, err)
		}
		deleted++
	}
	return saved, deleted, nil
}
