package shooting

import (
	"math"
	"strconv"
	"testing"

	"sportsviz/etl/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(comp, stage, athlete string, rank int32, total string) models.ShootingResultRow {
	r := models.ShootingResultRow{
		CompetitionID:   comp,
		CompetitionName: "Competition " + comp,
		CompetitionType: "World Cup",
		City:            "Cairo",
		EventName:       "25m Pistol Women",
		Stage:           stage,
		Year:            2024,
		AthleteName:     athlete,
		Total:           total,
	}
	if rank > 0 {
		r.Rank = models.Int32(rank)
	}
	return r
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		total  string
		want   float64
		wantOK bool
	}{
		{"588-23x", 588, true},
		{" 629.5", 629.5, true},
		{"38", 38, true},
		{"DNS", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.total, func(t *testing.T) {
			got, ok := ParseScore(tt.total)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategory(t *testing.T) {
	assert.Equal(t, Top3, Category(models.Int32(1)))
	assert.Equal(t, Top3, Category(models.Int32(3)))
	assert.Equal(t, Top8, Category(models.Int32(4)))
	assert.Equal(t, Top8, Category(models.Int32(8)))
	assert.Equal(t, NotInTop8, Category(models.Int32(9)))
	assert.Equal(t, NotInTop8, Category(models.NullInt32{}))
}

func TestQualificationBands(t *testing.T) {
	rows := []models.ShootingResultRow{
		result("A", models.StageQualification, "P1", 1, "590-25x"),
		result("A", models.StageQualification, "P2", 2, "588-23x"),
		result("A", models.StageQualification, "P3", 3, "582"),
		result("A", models.StageFinal, "P1", 1, "38"),
		result("B", models.StageQualification, "P1", 1, "579"),
		result("B", models.StageQualification, "P4", 2, "DNS"),
	}

	bands := QualificationBands(rows)
	b, ok := bands["25m Pistol Women"]
	require.True(t, ok)
	require.True(t, b.Min.Valid)
	assert.InDelta(t, 584.75-5.1235, b.Min.Float64, 0.001)
	assert.InDelta(t, 584.75+5.1235, b.Max.Float64, 0.001)
}

func TestQualificationBands_TopEightPerCompetition(t *testing.T) {
	var rows []models.ShootingResultRow
	for i := 1; i <= 10; i++ {
		rows = append(rows, result("A", models.StageQualification, "P"+strconv.Itoa(i), int32(11-i), strconv.Itoa(i)))
	}
	single := result("C", models.StageQualification, "P1", 1, "570")
	single.EventName = "10m Air Rifle Men"
	rows = append(rows, single)

	bands := QualificationBands(rows)
	b := bands["25m Pistol Women"]
	assert.InDelta(t, 6.5-math.Sqrt(6), b.Min.Float64, 1e-9)
	assert.InDelta(t, 6.5+math.Sqrt(6), b.Max.Float64, 1e-9)

	lone, ok := bands["10m Air Rifle Men"]
	require.True(t, ok)
	assert.False(t, lone.Min.Valid, "One score has no sample deviation")
	assert.False(t, lone.Max.Valid)
}

func TestResults(t *testing.T) {
	rows := []models.ShootingResultRow{
		result("A", models.StageQualification, "Manu", 2, "588-23x"),
		result("A", models.StageFinal, "Manu", 1, "38"),
		result("A", models.StageQualification, "Manu", 5, "580"),
		result("A", models.StageQualification, "Esha", 7, "582"),
		result("A", models.StageFinal, "Esha", 7, "20"),
		result("B", models.StageQualification, "Esha", 0, "DNS"),
	}
	bands := map[string]Band{"25m Pistol Women": {Min: models.Float64(580), Max: models.Float64(590)}}

	out := Results(rows, bands)
	require.Len(t, out, 3, "Repeated qualification rows keep the first")

	manu := out[0]
	assert.Equal(t, "Manu", manu.AthleteName)
	assert.Equal(t, models.Int32(2), manu.QualificationRank)
	assert.Equal(t, models.Int32(1), manu.FinalRank)
	assert.Equal(t, models.Int32(1), manu.LastAttainedRank)
	assert.Equal(t, models.StageFinal, manu.RankType)
	assert.Equal(t, models.Float64(588), manu.Score)
	assert.Equal(t, "World Cup-Cairo-2024", manu.CompShortName)
	assert.Equal(t, "Cairo", manu.HostCity)
	assert.Equal(t, "World Cup", manu.CompType)
	assert.Equal(t, models.Float64(580), manu.QMin)
	assert.Equal(t, models.Float64(590), manu.QMax)

	esha := out[1]
	assert.Equal(t, models.Int32(7), esha.LastAttainedRank)
	assert.Equal(t, models.StageQualification, esha.RankType, "Same rank in the final")

	dns := out[2]
	assert.False(t, dns.LastAttainedRank.Valid)
	assert.False(t, dns.Score.Valid)
	assert.False(t, dns.FinalRank.Valid)
}

func TestDistribution(t *testing.T) {
	results := []models.ShootingResultVizRow{
		{AthleteName: "Manu", EventName: "25m Pistol Women", LastAttainedRank: models.Int32(1)},
		{AthleteName: "Manu", EventName: "25m Pistol Women", LastAttainedRank: models.Int32(3)},
		{AthleteName: "Manu", EventName: "25m Pistol Women", LastAttainedRank: models.Int32(6)},
		{AthleteName: "Esha", EventName: "25m Pistol Women"},
	}

	out := Distribution(results)
	require.Len(t, out, 6)

	assert.Equal(t, models.ShootingRankDistributionRow{AthleteName: "Esha", EventName: "25m Pistol Women", Category: Top3, Value: 0}, out[0])
	assert.Equal(t, 1, out[2].Value)
	assert.Equal(t, NotInTop8, out[2].Category)

	assert.Equal(t, "Manu", out[3].AthleteName)
	assert.Equal(t, 2, out[3].Value)
	assert.Equal(t, 1, out[4].Value)
	assert.Equal(t, 0, out[5].Value)
}
