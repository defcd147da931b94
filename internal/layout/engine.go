package layout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/markerlane/markerlane/internal/cache"
	"github.com/markerlane/markerlane/pkg/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/markerlane/markerlane/internal/layout"

// Key identifies a layout: the marker snapshot version and the settings fingerprint.
type Key struct {
	Snapshot uint64
	Config   uint64
}

// Engine memoizes the most recent Build so repeated navigation calls on an
// unchanged snapshot reuse it.
type Engine struct {
	memo *cache.Memo[Key, *Layout]
	log  *slog.Logger

	hits   metric.Int64Counter
	misses metric.Int64Counter
}

// NewEngine creates an Engine. Metrics go to the global OTel meter provider
// (no-op if not configured).
func NewEngine(log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{
		memo: cache.NewMemo[Key, *Layout](),
		log:  log,
	}

	m := otel.Meter(instrumentationName)

	var err error
	e.hits, err = m.Int64Counter(
		"layout.cache.hits",
		metric.WithDescription("Layout lookups served from the memo"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating hits counter: %w", err)
	}

	e.misses, err = m.Int64Counter(
		"layout.cache.misses",
		metric.WithDescription("Layout lookups that rebuilt lanes and tracks"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating misses counter: %w", err)
	}

	return e, nil
}

// Layout returns the layout of markers under settings. snapshot must change
// whenever the marker set changes.
func (e *Engine) Layout(snapshot uint64, markers []core.Marker, s Settings) *Layout {
	key := Key{Snapshot: snapshot, Config: s.Fingerprint()}

	l, hit := e.memo.GetOrCompute(key, func() *Layout {
		e.log.Debug("building layout", "snapshot", snapshot, "markers", len(markers))
		return Build(markers, s, e.log)
	})

	if hit {
		e.hits.Add(context.Background(), 1)
	} else {
		e.misses.Add(context.Background(), 1)
	}
	return l
}

// Invalidate drops the memoized layout.
func (e *Engine) Invalidate() {
	e.memo.Reset()
}
