// Package shooting builds the shooting result views: each athlete's furthest
// rank per event, the qualification band of each event and how often an
// athlete finishes in the top 3 or top 8.
package shooting

import (
	"cmp"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"sportsviz/etl/internal/models"

	"github.com/rs/zerolog/log"
)

// Rank categories of the distribution view.
const (
	Top3      = "top_3"
	Top8      = "top_8"
	NotInTop8 = "not_in_top_8"
)

// Categories lists the rank categories in reporting order.
var Categories = []string{Top3, Top8, NotInTop8}

// BandSize is the number of best qualification scores per competition that
// feed an event's band.
const BandSize = 8

var leadingScore = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)`)

// ParseScore returns the leading number of a published total, dropping any
// inner-ten suffix ("588-23x" is 588). It reports false when total does not
// start with a number.
func ParseScore(total string) (float64, bool) {
	m := leadingScore.FindStringSubmatch(total)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Band is the qualification range of an event: the mean of the top
// qualification scores, plus and minus their sample standard deviation.
type Band struct {
	Min models.NullFloat64
	Max models.NullFloat64
}

// Category returns the rank category of a finishing rank.
func Category(rank models.NullInt32) string {
	switch {
	case !rank.Valid:
		return NotInTop8
	case rank.Int32 >= 1 && rank.Int32 <= 3:
		return Top3
	case rank.Int32 >= 4 && rank.Int32 <= 8:
		return Top8
	default:
		return NotInTop8
	}
}

// QualificationBands computes the band of every event from qualification
// rows: the BandSize best scores of each competition are pooled per event.
// Events with fewer than two scores get an empty band.
func QualificationBands(rows []models.ShootingResultRow) map[string]Band {
	type key struct{ competition, event string }
	perComp := make(map[key][]float64)
	var order []key
	unparsed := 0

	for _, r := range rows {
		if r.Stage != models.StageQualification {
			continue
		}
		score, ok := ParseScore(r.Total)
		if !ok {
			unparsed++
			continue
		}
		k := key{r.CompetitionID, r.EventName}
		if _, seen := perComp[k]; !seen {
			order = append(order, k)
		}
		perComp[k] = append(perComp[k], score)
	}
	if unparsed > 0 {
		log.Debug().Int("rows", unparsed).Msg("Qualification scores not parsed")
	}

	pooled := make(map[string][]float64)
	for _, k := range order {
		scores := perComp[k]
		slices.SortFunc(scores, func(a, b float64) int { return cmp.Compare(b, a) })
		if len(scores) > BandSize {
			scores = scores[:BandSize]
		}
		pooled[k.event] = append(pooled[k.event], scores...)
	}

	bands := make(map[string]Band, len(pooled))
	for event, scores := range pooled {
		var b Band
		if len(scores) >= 2 {
			mean, std := meanStd(scores)
			b.Min = models.Float64(mean - std)
			b.Max = models.Float64(mean + std)
		}
		bands[event] = b
	}
	return bands
}

// Results merges each athlete's qualification result with the final of the
// same event. The last attained rank is the final rank when there is one,
// the qualification rank otherwise; the rank type is Final only when both
// ranks exist and differ. Repeated qualification rows keep the first.
// Output follows the first appearance of each qualification result.
func Results(rows []models.ShootingResultRow, bands map[string]Band) []models.ShootingResultVizRow {
	type finalKey struct{ competition, event, athlete string }
	finals := make(map[finalKey]models.NullInt32)
	for _, r := range rows {
		if r.Stage != models.StageFinal {
			continue
		}
		k := finalKey{r.CompetitionID, r.EventName, r.AthleteName}
		if _, ok := finals[k]; !ok {
			finals[k] = r.Rank
		}
	}

	type qualKey struct{ competition, name, event, athlete string }
	seen := make(map[qualKey]bool)
	var out []models.ShootingResultVizRow
	for _, r := range rows {
		if r.Stage != models.StageQualification {
			continue
		}
		qk := qualKey{r.CompetitionID, r.CompetitionName, r.EventName, r.AthleteName}
		if seen[qk] {
			continue
		}
		seen[qk] = true

		row := models.ShootingResultVizRow{
			CompetitionID:     r.CompetitionID,
			CompetitionName:   r.CompetitionName,
			CompShortName:     shortName(r),
			EventName:         r.EventName,
			Year:              r.Year,
			CompetitionDate:   r.Date,
			AthleteName:       r.AthleteName,
			QualificationRank: r.Rank,
			LastAttainedRank:  r.Rank,
			RankType:          models.StageQualification,
			HostNation:        r.Nation,
			HostNationCode:    r.NationCode,
			HostCity:          r.City,
			CompType:          r.CompetitionType,
		}
		if score, ok := ParseScore(r.Total); ok {
			row.Score = models.Float64(score)
		}
		if final, ok := finals[finalKey{r.CompetitionID, r.EventName, r.AthleteName}]; ok && final.Valid {
			row.FinalRank = final
			row.LastAttainedRank = final
			if r.Rank.Valid && r.Rank.Int32 != final.Int32 {
				row.RankType = models.StageFinal
			}
		}
		if b, ok := bands[r.EventName]; ok {
			row.QMin, row.QMax = b.Min, b.Max
		}
		out = append(out, row)
	}
	return out
}

// Distribution counts, per athlete and event, the results whose last attained
// rank falls in each category. Every category is reported, with zero counts,
// so charts keep a fixed legend. Rows are ordered by athlete, event and
// category order.
func Distribution(results []models.ShootingResultVizRow) []models.ShootingRankDistributionRow {
	type key struct{ athlete, event string }
	counts := make(map[key]map[string]int)
	var keys []key
	for _, r := range results {
		k := key{r.AthleteName, r.EventName}
		c, ok := counts[k]
		if !ok {
			c = make(map[string]int, len(Categories))
			counts[k] = c
			keys = append(keys, k)
		}
		c[Category(r.LastAttainedRank)]++
	}

	slices.SortFunc(keys, func(a, b key) int {
		if c := strings.Compare(a.athlete, b.athlete); c != 0 {
			return c
		}
		return strings.Compare(a.event, b.event)
	})

	out := make([]models.ShootingRankDistributionRow, 0, len(keys)*len(Categories))
	for _, k := range keys {
		for _, cat := range Categories {
			out = append(out, models.ShootingRankDistributionRow{
				AthleteName: k.athlete,
				EventName:   k.event,
				Category:    cat,
				Value:       counts[k][cat],
			})
		}
	}
	return out
}

// shortName labels a competition "<type>-<city>-<year>".
func shortName(r models.ShootingResultRow) string {
	return strings.TrimSpace(r.CompetitionType) + "-" + strings.TrimSpace(r.City) + "-" + strconv.Itoa(r.Year)
}

// meanStd returns the mean and the sample standard deviation of xs, which
// must hold at least two values.
func meanStd(xs []float64) (float64, float64) {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var sq float64
	for _, x := range xs {
		sq += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(sq / float64(len(xs)-1))
}
