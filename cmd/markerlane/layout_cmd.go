package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/markerlane/markerlane/internal/layout"
	"github.com/markerlane/markerlane/internal/storage"
	"github.com/spf13/cobra"
)

func (a *app) layoutCmd() *cobra.Command {
	var sceneID string
	var noColor bool

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print a scene's lanes and tracks",
		Long: `Print every lane of a scene with one row per track. Markers are colored
by review status: green confirmed, red rejected, yellow pending.

Usage:
  markerlane layout --scene 42
  markerlane layout --scene 42 --no-color`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			markers, err := store.LoadMarkers(sceneID)
			if err != nil {
				return err
			}
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			l := layout.Build(markers, settings.Layout, a.Logger)
			out := cmd.OutOrStdout()
			if l.Len() == 0 {
				fmt.Fprintf(out, "scene %s has no markers\n", sceneID)
				printKnownScenes(out, store)
				return nil
			}
			renderSummary(out, l)
			renderLayout(out, l, "")
			return nil
		},
	}

	cmd.Flags().StringVar(&sceneID, "scene", "", "scene id")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	_ = cmd.MarkFlagRequired("scene")
	return cmd
}

// printKnownScenes hints at valid --scene values when the backend can list them.
func printKnownScenes(w io.Writer, store storage.Backend) {
	lister, ok := store.(storage.SceneLister)
	if !ok {
		return
	}
	scenes, err := lister.Scenes()
	if err != nil || len(scenes) == 0 {
		return
	}
	fmt.Fprintf(w, "scenes in store: %s\n", strings.Join(scenes, " "))
}
