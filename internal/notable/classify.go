// Package notable classifies the matches of focus athletes and teams as wins,
// notable wins (beating a better-ranked opponent) or losses, using the ranks
// both sides held when the tournament started.
package notable

import (
	"fmt"
	"strings"

	"sportsviz/etl/internal/ranking"
)

// Outcome is the classification of one match from the focus side's view.
type Outcome string

const (
	// Win is a win that is not notable.
	Win Outcome = "win"
	// NotableWin is a win over an opponent ranked better than the focus side.
	NotableWin Outcome = "notable_win"
	// Loss is any loss; the opponent is reported as "lost to" whatever the ranks.
	Loss Outcome = "loss"
	// InsufficientData is a win where at least one side had no rank yet.
	InsufficientData Outcome = "insufficient_data"
)

// Outcomes lists every outcome.
var Outcomes = []Outcome{Win, NotableWin, Loss, InsufficientData}

// TiePolicy decides whether beating an equally-ranked opponent is notable.
type TiePolicy int

const (
	// Strict requires focus rank > opponent rank.
	Strict TiePolicy = iota
	// Inclusive accepts focus rank >= opponent rank.
	Inclusive
)

// ParseTiePolicy accepts "strict" and "inclusive".
func ParseTiePolicy(s string) (TiePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return Strict, nil
	case "inclusive":
		return Inclusive, nil
	default:
		return Strict, fmt.Errorf("unknown tie policy: %s", s)
	}
}

func (p TiePolicy) String() string {
	if p == Inclusive {
		return "inclusive"
	}
	return "strict"
}

// Classify returns the outcome of a match for the focus side. Ranks are
// numbers where lower is better.
func Classify(focusWon bool, focus, opponent ranking.Resolved, policy TiePolicy) Outcome {
	if !focusWon {
		return Loss
	}
	fr, fok := focus.Value()
	opp, ook := opponent.Value()
	if !fok || !ook {
		return InsufficientData
	}
	if fr > opp || (policy == Inclusive && fr == opp) {
		return NotableWin
	}
	return Win
}

// Display renders "Name (rank)", or just the name when the rank is unknown.
func Display(name string, r ranking.Resolved) string {
	if rank, ok := r.Value(); ok {
		return fmt.Sprintf("%s (%d)", name, rank)
	}
	return name
}
