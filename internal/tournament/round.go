// Package tournament holds the badminton tournament vocabulary shared by the
// jobs: round order, grade levels and textual date ranges.
package tournament

import "strings"

// Rounds lists draw rounds from earliest to latest.
var Rounds = []string{"R32", "R16", "QF", "SF", "F"}

// GradeLevels lists the tournament grades reported on, lowest first.
var GradeLevels = []string{"100", "300", "500", "750", "1000", "G1_CC"}

// DefaultGrade is used for tournaments stored without a grade.
const DefaultGrade = "G1_CC"

// RoundRank returns the position of round in Rounds, or -1 when round is not
// a reported round (qualifiers, group stages, empty values).
func RoundRank(round string) int {
	r := strings.ToUpper(strings.TrimSpace(round))
	for i, name := range Rounds {
		if name == r {
			return i
		}
	}
	return -1
}

// NormalizeRound returns the canonical spelling of round and whether it is reported.
func NormalizeRound(round string) (string, bool) {
	i := RoundRank(round)
	if i < 0 {
		return strings.TrimSpace(round), false
	}
	return Rounds[i], true
}

// NormalizeGrade trims grade and substitutes fallback when it is empty.
// Known grades are returned in their canonical spelling.
func NormalizeGrade(grade, fallback string) string {
	g := strings.TrimSpace(grade)
	if g == "" {
		if fallback == "" {
			return DefaultGrade
		}
		return fallback
	}
	for _, level := range GradeLevels {
		if strings.EqualFold(level, g) {
			return level
		}
	}
	return g
}

// IsGradeLevel reports whether grade is one of GradeLevels.
func IsGradeLevel(grade string) bool {
	for _, level := range GradeLevels {
		if level == grade {
			return true
		}
	}
	return false
}
