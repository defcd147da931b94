package main

import (
	"fmt"
	"io"
	"time"

	"github.com/markerlane/markerlane/internal/model"
	"github.com/markerlane/markerlane/internal/storage"
	"github.com/spf13/cobra"
)

func (a *app) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history MARKER_ID",
		Short: "Show the review log of a marker",
		Long: `Print every save and delete recorded for a marker, oldest first. Only the
sqlite and postgres stores keep a review log.

Usage:
  markerlane history 3f2c9a4e-...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			h, ok := store.(storage.Historian)
			if !ok {
				return fmt.Errorf("storage backend %T keeps no review log", store)
			}
			events, err := h.History(args[0])
			if err != nil {
				return err
			}
			renderHistory(cmd.OutOrStdout(), events)
			return nil
		},
	}
}

func renderHistory(w io.Writer, events []model.ReviewEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "no review events")
		return
	}
	for _, e := range events {
		fmt.Fprintf(w, "%s  %-6s scene=%s\n", e.Time.UTC().Format(time.RFC3339), e.Action, e.SceneID)
	}
}
