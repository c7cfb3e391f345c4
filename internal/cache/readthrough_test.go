package cache

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"sportsviz/etl/internal/ranking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	data    map[string]map[ranking.EntityID][]ranking.Snapshot
	readErr error
	sets    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]map[ranking.EntityID][]ranking.Snapshot{}}
}

func (m *memoryStore) GetHistories(_ context.Context, ns string, entities []ranking.EntityID) (map[ranking.EntityID][]ranking.Snapshot, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	out := map[ranking.EntityID][]ranking.Snapshot{}
	for _, e := range entities {
		if h, ok := m.data[ns][e]; ok {
			out[e] = h
		}
	}
	return out, nil
}

func (m *memoryStore) SetHistories(_ context.Context, ns string, histories map[ranking.EntityID][]ranking.Snapshot) error {
	m.sets++
	if m.data[ns] == nil {
		m.data[ns] = map[ranking.EntityID][]ranking.Snapshot{}
	}
	for e, h := range histories {
		m.data[ns][e] = h
	}
	return nil
}

type countingSource struct {
	rows     []ranking.Snapshot
	requests [][]ranking.EntityID
}

func (s *countingSource) History(_ context.Context, entities []ranking.EntityID) ([]ranking.Snapshot, error) {
	s.requests = append(s.requests, entities)
	want := map[ranking.EntityID]bool{}
	for _, e := range entities {
		want[e] = true
	}
	var out []ranking.Snapshot
	for _, r := range s.rows {
		if want[r.Entity] {
			out = append(out, r)
		}
	}
	return out, nil
}

func snap(entity, date string, rank int32) ranking.Snapshot {
	return ranking.Snapshot{
		Entity:        ranking.EntityID(entity),
		EffectiveDate: ranking.MustParseDate(date),
		Rank:          sql.NullInt32{Int32: rank, Valid: true},
	}
}

func TestReadThrough_CachesMisses(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	source := &countingSource{rows: []ranking.Snapshot{
		snap("1", "2024-01-02", 5),
		snap("2", "2024-01-02", 9),
		snap("1", "2024-01-09", 3),
	}}
	rt := NewReadThrough(store, source, "singles")

	first, err := rt.History(ctx, []ranking.EntityID{"1", "2", "3", "1"})
	require.NoError(t, err)
	require.Len(t, first, 3)
	require.Len(t, source.requests, 1)
	assert.Equal(t, []ranking.EntityID{"1", "2", "3"}, source.requests[0])

	// grouped by entity, source order kept within an entity
	assert.Equal(t, ranking.EntityID("1"), first[0].Entity)
	assert.Equal(t, "2024-01-09", first[1].EffectiveDate.String())
	assert.Equal(t, ranking.EntityID("2"), first[2].Entity)

	second, err := rt.History(ctx, []ranking.EntityID{"1", "2", "3"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, source.requests, 1, "Entity 3 has no history but is cached as empty")
}

func TestReadThrough_NamespacesAreSeparate(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	source := &countingSource{rows: []ranking.Snapshot{snap("1", "2024-01-02", 5)}}

	_, err := NewReadThrough(store, source, "singles").History(ctx, []ranking.EntityID{"1"})
	require.NoError(t, err)
	_, err = NewReadThrough(store, source, "doubles").History(ctx, []ranking.EntityID{"1"})
	require.NoError(t, err)
	assert.Len(t, source.requests, 2)
}

func TestReadThrough_StoreFailureFallsBack(t *testing.T) {
	store := newMemoryStore()
	store.readErr = errors.New("connection refused")
	source := &countingSource{rows: []ranking.Snapshot{snap("1", "2024-01-02", 5)}}

	got, err := NewReadThrough(store, source, "singles").History(context.Background(), []ranking.EntityID{"1"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Len(t, source.requests, 1)
}

func TestReadThrough_NilStore(t *testing.T) {
	source := &countingSource{rows: []ranking.Snapshot{snap("1", "2024-01-02", 5)}}
	rt := NewReadThrough(nil, source, "singles")

	for i := 0; i < 2; i++ {
		_, err := rt.History(context.Background(), []ranking.EntityID{"1"})
		require.NoError(t, err)
	}
	assert.Len(t, source.requests, 2)
}

func TestReadThrough_SourceError(t *testing.T) {
	source := HistorySourceFunc(func(context.Context, []ranking.EntityID) ([]ranking.Snapshot, error) {
		return nil, errors.New("db down")
	})
	_, err := NewReadThrough(newMemoryStore(), source, "singles").History(context.Background(), []ranking.EntityID{"1"})
	assert.ErrorContains(t, err, "db down")
}
