package main

import (
	"fmt"

	"github.com/markerlane/markerlane/internal/config"
	"github.com/markerlane/markerlane/internal/layout"
	"github.com/markerlane/markerlane/internal/navigation"
	"github.com/markerlane/markerlane/internal/session"
)

// loadSettings assembles layout and navigation settings from configuration.
func loadSettings() (session.Settings, error) {
	review := config.GetReviewConfig()
	timeline := config.GetTimelineConfig()

	ref, err := navigation.ParseReference(review.VerticalReference)
	if err != nil {
		return session.Settings{}, fmt.Errorf("review.verticalReference: %w", err)
	}

	return session.Settings{
		Layout: layout.Settings{
			StatusTags: review.StatusTags(),
			Sort:       config.GetSortConfig(),
			Options: layout.Options{
				Overlap:       timeline.OverlapDuration.Seconds(),
				RenderMinimum: timeline.RenderMinimum.Seconds(),
			},
		},
		Navigation: navigation.Options{
			Window:    timeline.PlayheadWindow.Seconds(),
			Reference: ref,
		},
	}, nil
}
