package models

import "sportsviz/etl/internal/ranking"

// Rows written to the relational sink and to CSV. The csv tags double as the
// column names of the sink tables.

// NotableWinRow is one classified match of a focus entity.
type NotableWinRow struct {
	TournamentID     int              `csv:"tournament_id"`
	TournamentName   string           `csv:"tournament_name"`
	TournamentGrade  string           `csv:"tournament_grade"`
	RoundName        string           `csv:"round_name"`
	Year             int              `csv:"year"`
	StartDate        ranking.Date     `csv:"start_date"`
	EntityID         ranking.EntityID `csv:"entity_id"`
	EntityName       string           `csv:"entity_name"`
	OpponentID       ranking.EntityID `csv:"opponent_id"`
	OpponentName     string           `csv:"opponent_name"`
	WinFlag          bool             `csv:"win_flag"`
	EntityRank       NullInt32        `csv:"entity_world_ranking"`
	EntityRankDate   ranking.Date     `csv:"entity_ranking_date"`
	OpponentRank     NullInt32        `csv:"opponent_world_ranking"`
	OpponentRankDate ranking.Date     `csv:"opponent_ranking_date"`
	Outcome          string           `csv:"outcome"`
	NotableWin       string           `csv:"notable_win"`
	LostTo           string           `csv:"lost_to"`
}

// TournamentSummaryRow is the best finish of an entity in one tournament with
// the notable wins and losses collected on the way.
type TournamentSummaryRow struct {
	EntityID        ranking.EntityID `csv:"entity_id"`
	TournamentID    int              `csv:"tournament_id"`
	TournamentName  string           `csv:"tournament_name"`
	FinalPosition   string           `csv:"final_position"`
	TournamentGrade string           `csv:"tournament_grade"`
	TournamentYear  int              `csv:"tournament_year"`
	StartDate       ranking.Date     `csv:"start_date"`
	NotableWins     string           `csv:"notable_wins"`
	LostTo          string           `csv:"lost_to"`
}

// ProgressionRow is one point of an entity's ranking progression.
type ProgressionRow struct {
	EntityID         ranking.EntityID `csv:"entity_id"`
	EntityName       string           `csv:"entity_name"`
	RankingDate      ranking.Date     `csv:"ranking_date"`
	Year             int              `csv:"year"`
	WorldRanking     NullInt32        `csv:"world_ranking"`
	WorldTourRanking NullInt32        `csv:"world_tour_ranking"`
	OlympicRank      NullInt32        `csv:"olympic_rank"`
	CategoryID       int              `csv:"ranking_category_id"`
}

// ArcheryMonthEndRow is an archer's last ranking published in the snapshot
// month (October by default) of Year.
type ArcheryMonthEndRow struct {
	AthleteID   int          `csv:"athlete_id"`
	AthleteName string       `csv:"athlete_name"`
	Year        int          `csv:"year"`
	Rank        NullInt32    `csv:"rank"`
	DateIssued  ranking.Date `csv:"rank_date_issued"`
	Points      NullFloat64  `csv:"points"`
}

// TournamentDetailRow is a tournament with its parsed date range and
// defaulted grade.
type TournamentDetailRow struct {
	TournamentID int          `csv:"tournament_id"`
	Name         string       `csv:"tournament_name"`
	Grade        string       `csv:"grade"`
	NewGrade     string       `csv:"new_grade"`
	DateText     string       `csv:"date"`
	Year         int          `csv:"year"`
	StartDate    ranking.Date `csv:"start_date"`
	EndDate      ranking.Date `csv:"end_date"`
}

// ResolvedRankRow is one answered rank query.
type ResolvedRankRow struct {
	EntityID    ranking.EntityID `csv:"entity_id"`
	QueryDate   ranking.Date     `csv:"query_date"`
	Mode        ranking.Mode     `csv:"mode"`
	Rank        NullInt32        `csv:"rank_value"`
	MatchedDate ranking.Date     `csv:"matched_date"`
	Resolved    bool             `csv:"resolved"`
}

// NewResolvedRankRow converts a resolver answer.
func NewResolvedRankRow(r ranking.Resolved, mode ranking.Mode) ResolvedRankRow {
	return ResolvedRankRow{
		EntityID:    r.Entity,
		QueryDate:   r.QueryDate,
		Mode:        mode,
		Rank:        FromNull(r.Rank),
		MatchedDate: r.MatchedDate,
		Resolved:    r.Resolved(),
	}
}

// HeadToHeadRow is a past meeting seen from the focus athlete's side.
type HeadToHeadRow struct {
	StatsID        int          `csv:"head_to_head_stats_id"`
	MainID         int          `csv:"main_athlete_id"`
	MainName       string       `csv:"main_athlete_name"`
	OpponentID     int          `csv:"opponent_athlete_id"`
	OpponentName   string       `csv:"opponent_athlete_name"`
	TournamentID   int          `csv:"tournament_id"`
	TournamentName string       `csv:"tournament_name"`
	TournamentDate ranking.Date `csv:"tournament_date"`
	Round          string       `csv:"round_name"`
	Result         string       `csv:"result_for_main_id"`
}

// ArcheryCompetitionRankingRow is an archer's rank in a competition, with a
// "<place> <year>" label for charts.
type ArcheryCompetitionRankingRow struct {
	AthleteID       int          `csv:"athlete_id"`
	AthleteName     string       `csv:"athlete_name"`
	CompetitionID   int          `csv:"comp_id"`
	FullName        string       `csv:"comp_full_name"`
	ShortName       string       `csv:"comp_short_name"`
	Place           string       `csv:"comp_place"`
	Date            ranking.Date `csv:"comp_date"`
	CompetitionRank NullInt32    `csv:"comp_rank"`
	NewShortName    string       `csv:"comp_new_short_name"`
}

// ShootingResultVizRow is an athlete's qualification result in an event with
// the furthest rank reached and the event's qualification band.
type ShootingResultVizRow struct {
	CompetitionID     string       `csv:"competition_id"`
	CompetitionName   string       `csv:"competition_name"`
	CompShortName     string       `csv:"comp_short_name"`
	EventName         string       `csv:"event_name"`
	Year              int          `csv:"year"`
	CompetitionDate   ranking.Date `csv:"competition_date"`
	AthleteName       string       `csv:"athlete_name"`
	QualificationRank NullInt32    `csv:"qualification_rank"`
	FinalRank         NullInt32    `csv:"final_rank"`
	LastAttainedRank  NullInt32    `csv:"last_attained_rank"`
	RankType          string       `csv:"rank_type"`
	Score             NullFloat64  `csv:"score"`
	QMin              NullFloat64  `csv:"q_min"`
	QMax              NullFloat64  `csv:"q_max"`
	HostNation        string       `csv:"host_nation"`
	HostNationCode    string       `csv:"host_nation_code"`
	HostCity          string       `csv:"host_city"`
	CompType          string       `csv:"comp_type"`
}

// ShootingRankDistributionRow counts an athlete's finishes in one rank
// category of an event.
type ShootingRankDistributionRow struct {
	AthleteName string `csv:"athlete_name"`
	EventName   string `csv:"event_name"`
	Category    string `csv:"category"`
	Value       int    `csv:"value"`
}
