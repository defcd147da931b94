package status

import (
	"testing"

	"github.com/markerlane/markerlane/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tags := core.StatusTags{ConfirmedTagID: "ok", RejectedTagID: "no"}

	tests := []struct {
		name   string
		tags   []core.Tag
		expect core.Status
	}{
		{"no tags", nil, core.StatusPending},
		{"unrelated tag", []core.Tag{{ID: "x"}}, core.StatusPending},
		{"confirmed", []core.Tag{{ID: "x"}, {ID: "ok"}}, core.StatusConfirmed},
		{"rejected", []core.Tag{{ID: "no"}}, core.StatusRejected},
		{"both prefers rejected", []core.Tag{{ID: "ok"}, {ID: "no"}}, core.StatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := core.Marker{ID: "m", Tags: tt.tags}
			assert.Equal(t, tt.expect, Classify(m, tags))
		})
	}
}

func TestClassify_EmptyTagIDsNeverMatch(t *testing.T) {
	m := core.Marker{ID: "m", Tags: []core.Tag{{ID: ""}}}
	assert.Equal(t, core.StatusPending, Classify(m, core.StatusTags{}))
	assert.True(t, IsUnprocessed(m, core.StatusTags{}))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "pending", core.StatusPending.String())
	assert.Equal(t, "confirmed", core.StatusConfirmed.String())
	assert.Equal(t, "rejected", core.StatusRejected.String())
}
