package models

import (
	"strings"

	"sportsviz/etl/internal/ranking"
)

// MatchRow is a badminton match played by a focus athlete, joined with its
// tournament. Singles rows leave the *Player2 fields zero.
type MatchRow struct {
	AthleteID      int    `db:"athlete_id"`
	TournamentID   int    `db:"tournament_id"`
	TournamentName string `db:"tournament_name"`
	Grade          string `db:"tournament_grade"`
	DateText       string `db:"tournament_date"`
	Year           int    `db:"tournament_year"`
	Round          string `db:"round_name"`
	Category       string `db:"draw_name_full"`
	Winner         int    `db:"winner"`

	Team1Player1ID   int    `db:"team_1_player_1_id"`
	Team1Player1Name string `db:"team_1_player_1_name"`
	Team1Player2ID   int    `db:"team_1_player_2_id"`
	Team1Player2Name string `db:"team_1_player_2_name"`
	Team2Player1ID   int    `db:"team_2_player_1_id"`
	Team2Player1Name string `db:"team_2_player_1_name"`
	Team2Player2ID   int    `db:"team_2_player_2_id"`
	Team2Player2Name string `db:"team_2_player_2_name"`
}

// IsDoubles reports whether both sides list a second player.
func (m MatchRow) IsDoubles() bool {
	return m.Team1Player2ID != 0 && m.Team2Player2ID != 0
}

// Side1 returns the entity and display name of the first side.
func (m MatchRow) Side1() (ranking.EntityID, string) {
	return side(m.Team1Player1ID, m.Team1Player1Name, m.Team1Player2ID, m.Team1Player2Name)
}

// Side2 returns the entity and display name of the second side.
func (m MatchRow) Side2() (ranking.EntityID, string) {
	return side(m.Team2Player1ID, m.Team2Player1Name, m.Team2Player2ID, m.Team2Player2Name)
}

func side(p1 int, n1 string, p2 int, n2 string) (ranking.EntityID, string) {
	if p2 == 0 {
		return ranking.Athlete(p1), strings.TrimSpace(n1)
	}
	return ranking.Team(p1, p2), strings.TrimSpace(n1) + " & " + strings.TrimSpace(n2)
}

// FinishRow is the final draw position of an athlete in a tournament.
type FinishRow struct {
	AthleteID      int    `db:"athlete_id"`
	TournamentID   int    `db:"tournament_id"`
	TournamentName string `db:"tournament_name"`
	Grade          string `db:"tournament_grade"`
	DateText       string `db:"tournament_date"`
	Year           int    `db:"tournament_year"`
	Category       string `db:"category"`
	Position       string `db:"final_position"`
}

// TournamentRow is a tournament as stored upstream, with its textual date range.
type TournamentRow struct {
	TournamentID int    `db:"tournament_id"`
	Name         string `db:"name"`
	Grade        string `db:"grade"`
	DateText     string `db:"date"`
	Year         int    `db:"year"`
}

// HeadToHeadMatchRow is one past meeting listed on a head-to-head record.
// MainAthleteID is the athlete the record belongs to; either side may hold it.
type HeadToHeadMatchRow struct {
	StatsID        int          `db:"head_to_head_stats_id"`
	MainAthleteID  int          `db:"main_athlete_id"`
	Team1ID        int          `db:"team_1_athlete_1_id"`
	Team1Name      string       `db:"team_1_athlete_1_name"`
	Team2ID        int          `db:"team_2_athlete_1_id"`
	Team2Name      string       `db:"team_2_athlete_1_name"`
	TournamentID   int          `db:"tournament_id"`
	TournamentName string       `db:"tournament_name"`
	TournamentDate ranking.Date `db:"tournament_date"`
	Round          string       `db:"round_name"`
	Winner         int          `db:"winner"`
}
