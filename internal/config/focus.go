package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"sportsviz/etl/internal/ranking"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// focusEnvPrefix overrides focus keys, e.g. SPORTSVIZ_FOCUS_YEARS=2024,2025.
const focusEnvPrefix = "SPORTSVIZ_FOCUS_"

// TeamPair is a doubles team given by its two athletes.
type TeamPair struct {
	Player1 int    `koanf:"player1"`
	Player2 int    `koanf:"player2"`
	Label   string `koanf:"label"`
}

// Entity returns the unordered team key.
func (p TeamPair) Entity() ranking.EntityID {
	return ranking.Team(p.Player1, p.Player2)
}

// Focus holds the competitor sets and report years the jobs run for.
// It replaces the athlete ID lists that used to be hardcoded per script.
type Focus struct {
	SinglesAthletes   []int      `koanf:"singles_athletes"`
	DoublesTeams      []TeamPair `koanf:"doubles_teams"`
	RankingCategories []int      `koanf:"ranking_categories"`
	ArcheryAthletes   []int      `koanf:"archery_athletes"`
	Years             []int      `koanf:"years"`
	DefaultGrade      string     `koanf:"default_grade"`
	SnapshotMonth     int        `koanf:"snapshot_month"`

	// Shooting athletes are keyed by name; results carry no athlete ID.
	ShootingAthletes         []string `koanf:"shooting_athletes"`
	ShootingFromYear         int      `koanf:"shooting_from_year"`
	ShootingCompetitionTypes []string `koanf:"shooting_competition_types"`
}

// DefaultShootingCompetitionTypes are the competitions whose qualification
// scores set an event's qualification band.
var DefaultShootingCompetitionTypes = []string{
	"World Cup",
	"Asian Championships",
	"World Championships",
	"Asian Games",
	"World Cup Final",
	"Olympic Games",
}

// DefaultFocus returns the built-in defaults used for keys missing from the file.
func DefaultFocus() *Focus {
	return &Focus{
		RankingCategories: []int{6, 7},
		Years:             []int{2024, 2025},
		DefaultGrade:      "G1_CC",
		SnapshotMonth:     10,

		ShootingFromYear:         2023,
		ShootingCompetitionTypes: slices.Clone(DefaultShootingCompetitionTypes),
	}
}

// LoadFocus layers defaults, the YAML file at path (if it exists) and
// SPORTSVIZ_FOCUS_* environment variables.
func LoadFocus(path string) (*Focus, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load focus file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat focus file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(focusEnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, focusEnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load focus env: %w", err)
	}

	focus := *DefaultFocus()
	if err := k.UnmarshalWithConf("", &focus, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to decode focus config: %w", err)
	}

	if err := focus.Validate(); err != nil {
		return nil, fmt.Errorf("invalid focus config: %w", err)
	}
	return &focus, nil
}

// Validate checks the focus sets for obvious mistakes.
func (f *Focus) Validate() error {
	if len(f.Years) == 0 {
		return errors.New("years must not be empty")
	}
	if f.SnapshotMonth < 1 || f.SnapshotMonth > 12 {
		return fmt.Errorf("snapshot_month must be 1-12, got %d", f.SnapshotMonth)
	}
	if len(f.ShootingAthletes) > 0 {
		if f.ShootingFromYear < 1 {
			return fmt.Errorf("shooting_from_year must be positive, got %d", f.ShootingFromYear)
		}
		if len(f.ShootingCompetitionTypes) == 0 {
			return errors.New("shooting_competition_types must not be empty when shooting_athletes is set")
		}
	}
	seen := make(map[ranking.EntityID]bool, len(f.DoublesTeams))
	for i, t := range f.DoublesTeams {
		if t.Player1 == 0 || t.Player2 == 0 || t.Player1 == t.Player2 {
			return fmt.Errorf("doubles_teams[%d]: two distinct athletes are required", i)
		}
		if seen[t.Entity()] {
			return fmt.Errorf("doubles_teams[%d]: team %s listed twice", i, t.Entity())
		}
		seen[t.Entity()] = true
	}
	return nil
}

// SinglesEntities returns the entity keys of the singles athletes.
func (f *Focus) SinglesEntities() []ranking.EntityID {
	out := make([]ranking.EntityID, len(f.SinglesAthletes))
	for i, id := range f.SinglesAthletes {
		out[i] = ranking.Athlete(id)
	}
	return out
}

// DoublesEntities returns the entity keys of the doubles teams.
func (f *Focus) DoublesEntities() []ranking.EntityID {
	out := make([]ranking.EntityID, len(f.DoublesTeams))
	for i, t := range f.DoublesTeams {
		out[i] = t.Entity()
	}
	return out
}

// HeadToHeadAthletes returns the singles athletes followed by the doubles
// players not already listed.
func (f *Focus) HeadToHeadAthletes() []int {
	out := slices.Clone(f.SinglesAthletes)
	for _, t := range f.DoublesTeams {
		for _, id := range []int{t.Player1, t.Player2} {
			if !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
	}
	return out
}

// HasYear reports whether year is one of the report years.
func (f *Focus) HasYear(year int) bool {
	for _, y := range f.Years {
		if y == year {
			return true
		}
	}
	return false
}
