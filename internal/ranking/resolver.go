// Package ranking resolves point-in-time ranks: for an (entity, date) pair it
// finds the rank most recently recorded for that entity as of the date.
//
// History is partitioned by entity and each partition is sorted by effective
// date once, in Load. Resolve is a binary search per query and never touches
// another entity's partition, so sparse histories cannot leak into each other.
package ranking

import (
	"context"
	"database/sql"
	"slices"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type partition struct {
	dates []Date
	ranks []int32
}

// search returns the index of the latest snapshot eligible for date under mode, or -1.
func (p *partition) search(date Date, mode Mode) int {
	var i int
	if mode == StrictlyBefore {
		i = sort.Search(len(p.dates), func(i int) bool { return !p.dates[i].Before(date) })
	} else {
		i = sort.Search(len(p.dates), func(i int) bool { return p.dates[i].After(date) })
	}
	return i - 1
}

// Resolver answers rank queries against a loaded history. Load must complete
// before Resolve; concurrent Resolve calls are safe.
type Resolver struct {
	mu          sync.RWMutex
	policy      DuplicatePolicy
	onDuplicate func(DuplicateNotice)
	partitions  map[EntityID]*partition
	loaded      bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDuplicatePolicy sets how same-day snapshots of one entity are collapsed.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(r *Resolver) { r.policy = p }
}

// WithDuplicateHandler registers fn to receive one notice per entity whose
// duplicates were collapsed. The default handler logs a warning.
func WithDuplicateHandler(fn func(DuplicateNotice)) Option {
	return func(r *Resolver) { r.onDuplicate = fn }
}

// NewResolver creates an empty resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		policy:     KeepLast,
		partitions: make(map[EntityID]*partition),
		onDuplicate: func(n DuplicateNotice) {
			log.Warn().
				Str("entity_id", n.Entity.String()).
				Int("collapsed", n.Collapsed).
				Str("policy", n.Policy.String()).
				Msg("Duplicate ranking snapshots collapsed")
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type indexed struct {
	date Date
	rank int32
}

// Load indexes history, replacing anything loaded before. A snapshot with a
// zero effective date fails the whole call with a *DataError; snapshots
// without a rank are dropped. Input order only matters for KeepLast.
func (r *Resolver) Load(history []Snapshot) (LoadReport, error) {
	report := LoadReport{Rows: len(history)}

	grouped := make(map[EntityID][]indexed)
	var order []EntityID
	for i, s := range history {
		if s.Entity == "" {
			return LoadReport{}, &DataError{Row: i, Field: "entity_id"}
		}
		if s.EffectiveDate.IsZero() {
			return LoadReport{}, &DataError{Entity: s.Entity, Row: i, Field: "effective_date"}
		}
		if !s.Rank.Valid {
			report.NullRanks++
			continue
		}
		if _, ok := grouped[s.Entity]; !ok {
			order = append(order, s.Entity)
		}
		grouped[s.Entity] = append(grouped[s.Entity], indexed{date: s.EffectiveDate, rank: s.Rank.Int32})
	}

	partitions := make(map[EntityID]*partition, len(grouped))
	for _, entity := range order {
		rows := grouped[entity]
		cmp := func(a, b indexed) int { return a.date.Compare(b.date) }
		if !slices.IsSortedFunc(rows, cmp) {
			// stable: equal dates keep input order for KeepLast
			slices.SortStableFunc(rows, cmp)
		}

		p, notice := r.collapse(entity, rows)
		partitions[entity] = p
		report.Kept += len(p.dates)
		if notice != nil {
			report.Duplicates = append(report.Duplicates, *notice)
		}
	}
	report.Entities = len(partitions)

	r.mu.Lock()
	r.partitions = partitions
	r.loaded = true
	r.mu.Unlock()

	for _, n := range report.Duplicates {
		if r.onDuplicate != nil {
			r.onDuplicate(n)
		}
	}

	log.Debug().
		Int("rows", report.Rows).
		Int("kept", report.Kept).
		Int("null_ranks", report.NullRanks).
		Int("entities", report.Entities).
		Int("entities_with_duplicates", len(report.Duplicates)).
		Msg("Ranking history loaded")

	return report, nil
}

// collapse turns date-sorted rows into a partition with one snapshot per date.
func (r *Resolver) collapse(entity EntityID, rows []indexed) (*partition, *DuplicateNotice) {
	p := &partition{
		dates: make([]Date, 0, len(rows)),
		ranks: make([]int32, 0, len(rows)),
	}
	var notice *DuplicateNotice

	for _, row := range rows {
		last := len(p.dates) - 1
		if last < 0 || !p.dates[last].Equal(row.date) {
			p.dates = append(p.dates, row.date)
			p.ranks = append(p.ranks, row.rank)
			continue
		}

		if notice == nil {
			notice = &DuplicateNotice{Entity: entity, Policy: r.policy}
		}
		if n := len(notice.Dates); n == 0 || !notice.Dates[n-1].Equal(row.date) {
			notice.Dates = append(notice.Dates, row.date)
		}
		notice.Collapsed++

		switch r.policy {
		case KeepBest:
			if row.rank <= p.ranks[last] {
				p.ranks[last] = row.rank
			}
		case KeepWorst:
			if row.rank >= p.ranks[last] {
				p.ranks[last] = row.rank
			}
		default:
			p.ranks[last] = row.rank
		}
	}
	return p, notice
}

// Resolve answers queries in order. A query with a zero date fails the whole
// batch with a *DataError.
func (r *Resolver) Resolve(queries []Query) ([]Resolved, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.loaded {
		return nil, ErrNotLoaded
	}
	if err := validateQueries(queries); err != nil {
		return nil, err
	}

	out := make([]Resolved, len(queries))
	for i, q := range queries {
		out[i] = r.resolveOne(q)
	}
	return out, nil
}

// ResolveParallel is Resolve with the batch sharded by entity across at most
// workers goroutines. Results stay aligned with queries.
func (r *Resolver) ResolveParallel(ctx context.Context, queries []Query, workers int) ([]Resolved, error) {
	if workers <= 1 {
		return r.Resolve(queries)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.loaded {
		return nil, ErrNotLoaded
	}
	if err := validateQueries(queries); err != nil {
		return nil, err
	}

	shards := make(map[EntityID][]int)
	for i, q := range queries {
		shards[q.Entity] = append(shards[q.Entity], i)
	}

	out := make([]Resolved, len(queries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, idx := range shards {
		idx := idx
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// each shard writes a disjoint set of indices
			for _, i := range idx {
				out[i] = r.resolveOne(queries[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// resolveOne must be called with r.mu held for reading.
func (r *Resolver) resolveOne(q Query) Resolved {
	res := Resolved{Entity: q.Entity, QueryDate: q.Date}

	p, ok := r.partitions[q.Entity]
	if !ok {
		return res
	}
	i := p.search(q.Date, q.Mode)
	if i < 0 {
		return res
	}
	res.Rank = sql.NullInt32{Int32: p.ranks[i], Valid: true}
	res.MatchedDate = p.dates[i]
	return res
}

func validateQueries(queries []Query) error {
	for i, q := range queries {
		if q.Date.IsZero() {
			return &DataError{Entity: q.Entity, Row: i, Field: "query_date"}
		}
		if q.Mode != OnOrBefore && q.Mode != StrictlyBefore {
			return &DataError{Entity: q.Entity, Row: i, Field: "mode", Value: q.Mode.String()}
		}
	}
	return nil
}

// Entities returns the number of entities with at least one ranked snapshot.
func (r *Resolver) Entities() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.partitions)
}

// History returns a copy of the indexed snapshots of entity, oldest first.
func (r *Resolver) History(entity EntityID) []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.partitions[entity]
	if !ok {
		return nil
	}
	out := make([]Snapshot, len(p.dates))
	for i := range p.dates {
		out[i] = Snapshot{
			Entity:        entity,
			EffectiveDate: p.dates[i],
			Rank:          sql.NullInt32{Int32: p.ranks[i], Valid: true},
		}
	}
	return out
}
