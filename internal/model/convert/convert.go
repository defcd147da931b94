// Package convert provides functions to convert between GORM rows and core models
package convert

import (
	"github.com/markerlane/markerlane/internal/model"
	"github.com/markerlane/markerlane/pkg/core"
)

// MarkerToCore converts a GORM Marker row to a core.Marker.
func MarkerToCore(m model.Marker) core.Marker {
	out := core.Marker{
		ID:           m.ID,
		SceneID:      m.SceneID,
		Title:        m.Title,
		StartSeconds: m.StartSeconds,
		PrimaryTag:   m.PrimaryTag.Data(),
	}
	if m.EndSeconds != nil {
		out.EndSeconds = core.Seconds(*m.EndSeconds)
	}
	if len(m.Tags) > 0 {
		out.Tags = append([]core.Tag(nil), m.Tags...)
	}
	return out
}

// MarkersToCore converts a slice of rows, preserving order.
func MarkersToCore(rows []model.Marker) []core.Marker {
	out := make([]core.Marker, len(rows))
	for i, r := range rows {
		out[i] = MarkerToCore(r)
	}
	return out
}
