package tournament

import (
	"fmt"
	"sort"
	"strconv"

	"sportsviz/etl/internal/models"
	"sportsviz/etl/internal/ranking"
)

// FinishColumn is the tally column for round and grade, e.g. "QF_Super_500".
func FinishColumn(round, grade string) string {
	return fmt.Sprintf("%s_Super_%s", round, grade)
}

// FinishColumns returns every tally column, rounds outermost.
func FinishColumns() []string {
	cols := make([]string, 0, len(Rounds)*len(GradeLevels))
	for _, r := range Rounds {
		for _, g := range GradeLevels {
			cols = append(cols, FinishColumn(r, g))
		}
	}
	return cols
}

// Tally counts the finishes of one entity in one year per (round, grade) cell.
type Tally struct {
	Entity ranking.EntityID
	Year   int
	counts map[string]int
}

// Count returns the number of finishes in round at grade.
func (t *Tally) Count(round, grade string) int {
	return t.counts[FinishColumn(round, grade)]
}

// Total returns the number of counted finishes.
func (t *Tally) Total() int {
	n := 0
	for _, c := range t.counts {
		n += c
	}
	return n
}

// Header returns the CSV/table header: entity_id, year and the tally columns.
func Header() []string {
	return append([]string{"entity_id", "year"}, FinishColumns()...)
}

// Record renders t in Header order. Empty cells stand for zero.
func (t *Tally) Record() []string {
	rec := []string{t.Entity.String(), strconv.Itoa(t.Year)}
	for _, col := range FinishColumns() {
		if c := t.counts[col]; c != 0 {
			rec = append(rec, strconv.Itoa(c))
		} else {
			rec = append(rec, "")
		}
	}
	return rec
}

// Values renders t in Header order for the relational sink. Zero cells are NULL.
func (t *Tally) Values() []any {
	vals := []any{t.Entity.String(), t.Year}
	for _, col := range FinishColumns() {
		if c := t.counts[col]; c != 0 {
			vals = append(vals, c)
		} else {
			vals = append(vals, nil)
		}
	}
	return vals
}

// TallyFinishes pivots finishes into one Tally per (athlete, year) for the
// given years. Missing grades take defaultGrade. Rounds and grades outside
// the reported levels are not counted, but an athlete with any finish in a
// year still gets a (possibly empty) tally for it. Tallies are ordered by year
// then by first appearance of the athlete.
func TallyFinishes(finishes []models.FinishRow, years []int, defaultGrade string) []Tally {
	wanted := make(map[int]bool, len(years))
	for _, y := range years {
		wanted[y] = true
	}

	type key struct {
		entity ranking.EntityID
		year   int
	}
	index := make(map[key]int)
	var tallies []Tally

	for _, f := range finishes {
		if !wanted[f.Year] {
			continue
		}
		k := key{entity: ranking.Athlete(f.AthleteID), year: f.Year}
		i, ok := index[k]
		if !ok {
			i = len(tallies)
			index[k] = i
			tallies = append(tallies, Tally{Entity: k.entity, Year: k.year, counts: make(map[string]int)})
		}

		round, ok := NormalizeRound(f.Position)
		if !ok {
			continue
		}
		grade := NormalizeGrade(f.Grade, defaultGrade)
		if !IsGradeLevel(grade) {
			continue
		}
		tallies[i].counts[FinishColumn(round, grade)]++
	}

	sort.SliceStable(tallies, func(a, b int) bool { return tallies[a].Year < tallies[b].Year })
	return tallies
}
