package models

import "sportsviz/etl/internal/ranking"

// RankingRow is one row of a badminton ranking graph: the ranks of an athlete
// or doubles team as published on RankingDate.
type RankingRow struct {
	EntityID         ranking.EntityID `db:"entity_id"`
	EntityName       string           `db:"entity_name"`
	RankingDate      ranking.Date     `db:"ranking_date"`
	WorldRanking     NullInt32        `db:"world_ranking"`
	WorldTourRanking NullInt32        `db:"world_tour_ranking"`
	OlympicRank      NullInt32        `db:"olympic_rank"`
	CategoryID       int              `db:"ranking_category_id"`
}

// Snapshot returns the world-ranking snapshot carried by the row.
func (r RankingRow) Snapshot() ranking.Snapshot {
	return ranking.Snapshot{
		Entity:        r.EntityID,
		EffectiveDate: r.RankingDate,
		Rank:          r.WorldRanking.NullInt32,
	}
}

// ArcheryRankingRow is one entry of an archer's ranking history.
type ArcheryRankingRow struct {
	AthleteID   int          `db:"athlete_id"`
	AthleteName string       `db:"athlete_name"`
	Rank        NullInt32    `db:"current_rank"`
	OldRank     NullInt32    `db:"old_rank"`
	DateIssued  ranking.Date `db:"rank_date_issued"`
	Points      NullFloat64  `db:"points"`
}

// Snapshot returns the ranking-history snapshot carried by the row.
func (r ArcheryRankingRow) Snapshot() ranking.Snapshot {
	return ranking.Snapshot{
		Entity:        ranking.Athlete(r.AthleteID),
		EffectiveDate: r.DateIssued,
		Rank:          r.Rank.NullInt32,
	}
}

// ArcheryCompetitionRow is an archer's final rank in one competition.
type ArcheryCompetitionRow struct {
	AthleteID       int          `db:"athlete_id"`
	AthleteName     string       `db:"athlete_name"`
	CompetitionID   int          `db:"comp_id"`
	FullName        string       `db:"comp_full_name"`
	ShortName       string       `db:"comp_short_name"`
	Place           string       `db:"comp_place"`
	Date            ranking.Date `db:"comp_date"`
	CompetitionRank NullInt32    `db:"comp_rank"`
}
