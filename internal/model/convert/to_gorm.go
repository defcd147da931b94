package convert

import (
	"github.com/markerlane/markerlane/internal/model"
	"github.com/markerlane/markerlane/pkg/core"
	"gorm.io/datatypes"
)

// CoreToMarker converts a core.Marker to a GORM Marker row.
func CoreToMarker(m core.Marker) model.Marker {
	row := model.Marker{
		ID:           m.ID,
		SceneID:      m.SceneID,
		Title:        m.Title,
		StartSeconds: m.StartSeconds,
		PrimaryTag:   datatypes.NewJSONType(m.PrimaryTag),
		Tags:         datatypes.NewJSONSlice(m.Tags),
	}
	if m.EndSeconds != nil {
		row.EndSeconds = core.Seconds(*m.EndSeconds)
	}
	return row
}
