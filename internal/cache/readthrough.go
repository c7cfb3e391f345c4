package cache

import (
	"context"
	"fmt"

	"sportsviz/etl/internal/metrics"
	"sportsviz/etl/internal/ranking"

	"github.com/rs/zerolog/log"
)

// HistorySource loads ranking snapshots for a set of entities.
type HistorySource interface {
	History(ctx context.Context, entities []ranking.EntityID) ([]ranking.Snapshot, error)
}

// HistorySourceFunc adapts a function to HistorySource.
type HistorySourceFunc func(ctx context.Context, entities []ranking.EntityID) ([]ranking.Snapshot, error)

// History calls f.
func (f HistorySourceFunc) History(ctx context.Context, entities []ranking.EntityID) ([]ranking.Snapshot, error) {
	return f(ctx, entities)
}

// Store is the subset of RedisCache used by ReadThrough.
type Store interface {
	GetHistories(ctx context.Context, namespace string, entities []ranking.EntityID) (map[ranking.EntityID][]ranking.Snapshot, error)
	SetHistories(ctx context.Context, namespace string, histories map[ranking.EntityID][]ranking.Snapshot) error
}

// ReadThrough serves histories from a Store and falls back to a source for
// entities the store does not have, caching what it fetched. Store failures
// are logged and never fail a lookup.
type ReadThrough struct {
	store     Store
	source    HistorySource
	namespace string
}

// NewReadThrough creates a read-through history source. A nil store reads
// straight from source.
func NewReadThrough(store Store, source HistorySource, namespace string) *ReadThrough {
	return &ReadThrough{store: store, source: source, namespace: namespace}
}

// History returns the snapshots of entities, grouped by entity in request order.
func (r *ReadThrough) History(ctx context.Context, entities []ranking.EntityID) ([]ranking.Snapshot, error) {
	wanted := dedupe(entities)
	if r.store == nil {
		return r.source.History(ctx, wanted)
	}

	cached, err := r.store.GetHistories(ctx, r.namespace, wanted)
	if err != nil {
		log.Warn().Err(err).Str("namespace", r.namespace).Msg("Cache read failed, reading from source")
		metrics.RecordError("cache", "read")
		cached = nil
	}

	var missing []ranking.EntityID
	for _, e := range wanted {
		if _, ok := cached[e]; ok {
			metrics.RecordCacheHit()
		} else {
			metrics.RecordCacheMiss()
			missing = append(missing, e)
		}
	}

	fetched := make(map[ranking.EntityID][]ranking.Snapshot, len(missing))
	if len(missing) > 0 {
		rows, err := r.source.History(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("failed to load history: %w", err)
		}
		for _, e := range missing {
			fetched[e] = nil
		}
		for _, s := range rows {
			fetched[s.Entity] = append(fetched[s.Entity], s)
		}
		if err := r.store.SetHistories(ctx, r.namespace, fetched); err != nil {
			log.Warn().Err(err).Str("namespace", r.namespace).Msg("Cache write failed")
			metrics.RecordError("cache", "write")
		}
	}

	log.Debug().
		Str("namespace", r.namespace).
		Int("entities", len(wanted)).
		Int("cache_hits", len(wanted)-len(missing)).
		Msg("Ranking history loaded")

	var out []ranking.Snapshot
	for _, e := range wanted {
		if h, ok := cached[e]; ok {
			out = append(out, h...)
		} else {
			out = append(out, fetched[e]...)
		}
	}
	return out, nil
}

func dedupe(entities []ranking.EntityID) []ranking.EntityID {
	seen := make(map[ranking.EntityID]bool, len(entities))
	out := make([]ranking.EntityID, 0, len(entities))
	for _, e := range entities {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}
