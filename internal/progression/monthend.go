package progression

import (
	"context"
	"fmt"
	"slices"
	"time"

	"sportsviz/etl/internal/models"
	"sportsviz/etl/internal/ranking"
)

const monthEndWorkers = 4

type pointsKey struct {
	athlete int
	date    ranking.Date
	rank    int32
}

// MonthEnd returns, per athlete and year, the last ranking published in month
// of that year. It is a point-in-time lookup at the last day of the month
// (on or before) that only accepts a snapshot dated inside the month.
// Years defaults to every year with a snapshot in month. Results are ordered
// by athlete then year. Points come from the row that supplied the rank.
func MonthEnd(ctx context.Context, rows []models.ArcheryRankingRow, month time.Month, years []int, opts ...ranking.Option) ([]models.ArcheryMonthEndRow, error) {
	snapshots := make([]ranking.Snapshot, 0, len(rows))
	names := make(map[int]string)
	var athletes []int
	seenYears := make(map[int]bool)
	points := make(map[pointsKey]models.NullFloat64)

	for _, r := range rows {
		snapshots = append(snapshots, r.Snapshot())
		if r.Rank.Valid {
			points[pointsKey{r.AthleteID, r.DateIssued, r.Rank.Int32}] = r.Points
		}
		if _, ok := names[r.AthleteID]; !ok {
			athletes = append(athletes, r.AthleteID)
		}
		names[r.AthleteID] = r.AthleteName
		if !r.DateIssued.IsZero() && r.DateIssued.Month() == month {
			seenYears[r.DateIssued.Year()] = true
		}
	}

	if len(years) == 0 {
		for y := range seenYears {
			years = append(years, y)
		}
	}
	years = slices.Clone(years)
	slices.Sort(years)
	slices.Sort(athletes)

	resolver := ranking.NewResolver(opts...)
	if _, err := resolver.Load(snapshots); err != nil {
		return nil, fmt.Errorf("failed to load archery rankings: %w", err)
	}

	queries := make([]ranking.Query, 0, len(athletes)*len(years))
	for _, id := range athletes {
		for _, y := range years {
			queries = append(queries, ranking.Query{
				Entity: ranking.Athlete(id),
				Date:   ranking.NewDate(y, month, 1).EndOfMonth(),
				Mode:   ranking.OnOrBefore,
			})
		}
	}

	resolved, err := resolver.ResolveParallel(ctx, queries, monthEndWorkers)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve month-end rankings: %w", err)
	}

	var out []models.ArcheryMonthEndRow
	for i, res := range resolved {
		if !res.Resolved() || res.MatchedDate.Month() != month || res.MatchedDate.Year() != res.QueryDate.Year() {
			continue
		}
		id := athletes[i/len(years)]
		out = append(out, models.ArcheryMonthEndRow{
			AthleteID:   id,
			AthleteName: names[id],
			Year:        res.QueryDate.Year(),
			Rank:        models.FromNull(res.Rank),
			DateIssued:  res.MatchedDate,
			Points:      points[pointsKey{id, res.MatchedDate, res.Rank.Int32}],
		})
	}
	return out, nil
}
