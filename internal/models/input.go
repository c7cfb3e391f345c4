package models

import (
	"strings"

	"sportsviz/etl/internal/ranking"
)

// HistoryCSVRow is a ranking history row read from CSV. Fields stay text so a
// malformed value can be reported with its row number.
type HistoryCSVRow struct {
	EntityID      string `csv:"entity_id"`
	EffectiveDate string `csv:"effective_date"`
	Rank          string `csv:"rank_value"`
}

// QueryCSVRow is a rank query read from CSV. An empty mode falls back to the
// caller's default.
type QueryCSVRow struct {
	EntityID  string `csv:"entity_id"`
	QueryDate string `csv:"query_date"`
	Mode      string `csv:"mode,omitempty"`
}

// Snapshots converts CSV history rows. An empty rank is a null rank; a bad
// date or rank fails with a *ranking.DataError naming the row.
func Snapshots(rows []HistoryCSVRow) ([]ranking.Snapshot, error) {
	out := make([]ranking.Snapshot, 0, len(rows))
	for i, row := range rows {
		entity := ranking.EntityID(strings.TrimSpace(row.EntityID))
		date, err := ranking.ParseDate(row.EffectiveDate)
		if err != nil {
			return nil, &ranking.DataError{Entity: entity, Row: i, Field: "effective_date", Value: row.EffectiveDate, Err: err}
		}
		s := ranking.Snapshot{Entity: entity, EffectiveDate: date}
		var rank NullInt32
		if err := rank.UnmarshalCSV(row.Rank); err != nil {
			return nil, &ranking.DataError{Entity: entity, Row: i, Field: "rank_value", Value: row.Rank, Err: err}
		}
		s.Rank = rank.NullInt32
		out = append(out, s)
	}
	return out, nil
}

// Queries converts CSV query rows, using mode where a row has none.
func Queries(rows []QueryCSVRow, mode ranking.Mode) ([]ranking.Query, error) {
	out := make([]ranking.Query, 0, len(rows))
	for i, row := range rows {
		entity := ranking.EntityID(strings.TrimSpace(row.EntityID))
		date, err := ranking.ParseDate(row.QueryDate)
		if err != nil {
			return nil, &ranking.DataError{Entity: entity, Row: i, Field: "query_date", Value: row.QueryDate, Err: err}
		}
		q := ranking.Query{Entity: entity, Date: date, Mode: mode}
		if strings.TrimSpace(row.Mode) != "" {
			if q.Mode, err = ranking.ParseMode(row.Mode); err != nil {
				return nil, &ranking.DataError{Entity: entity, Row: i, Field: "mode", Value: row.Mode, Err: err}
			}
		}
		out = append(out, q)
	}
	return out, nil
}
