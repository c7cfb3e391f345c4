package models

import "sportsviz/etl/internal/ranking"

// Shooting event stages.
const (
	StageQualification = "Qualification"
	StageFinal         = "Final"
)

// ShootingResultRow is one athlete's result in one stage of a shooting event,
// joined with the competition it belongs to. Total is the score as published,
// which may carry an inner-ten count ("588-23x").
type ShootingResultRow struct {
	CompetitionID   string       `db:"competition_id"`
	CompetitionName string       `db:"competition_name"`
	CompetitionType string       `db:"competition_type"`
	Nation          string       `db:"nation_name"`
	NationCode      string       `db:"nation_code"`
	City            string       `db:"city"`
	EventName       string       `db:"event_name"`
	Stage           string       `db:"event_type"`
	Year            int          `db:"year"`
	Date            ranking.Date `db:"competition_date"`
	AthleteName     string       `db:"athlete_name"`
	Rank            NullInt32    `db:"rank"`
	Total           string       `db:"total"`
}
