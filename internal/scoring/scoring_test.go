package scoring

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/models"
)

var one = decimal.NewFromInt(1)

func score(home, away int) models.Scoreline {
	return models.Scoreline{Home: home, Away: away}
}

func TestEvaluateScoringTable(t *testing.T) {
	cases := []struct {
		name      string
		predicted models.Scoreline
		actual    models.Scoreline
		total     int
		category  Category
	}{
		{"exact score", score(1, 0), score(1, 0), 12, CategoryExactScore},
		{"winner plus one team score", score(1, 0), score(2, 0), 7, CategoryCorrectWinnerPlusOneTeamScore},
		{"winner only", score(1, 0), score(2, 1), 5, CategoryCorrectWinnerOrDraw},
		{"one team score on a draw", score(1, 0), score(0, 0), 2, CategoryCorrectOneTeamScore},
		{"draw predicted on a different draw", score(1, 1), score(2, 2), 5, CategoryCorrectWinnerOrDraw},
		{"nothing", score(1, 0), score(2, 2), 0, CategoryNone},
		{"away winner plus score", score(0, 2), score(1, 2), 7, CategoryCorrectWinnerPlusOneTeamScore},
		{"wrong winner but one side right", score(2, 1), score(2, 3), 2, CategoryCorrectOneTeamScore},
		{"wrong winner nothing right", score(3, 0), score(0, 1), 0, CategoryNone},
		{"draw predicted on a win with shared score", score(1, 1), score(2, 1), 2, CategoryCorrectOneTeamScore},
		{"exact goalless draw", score(0, 0), score(0, 0), 12, CategoryExactScore},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Evaluate(tc.predicted, tc.actual, one)
			assert.Equal(t, tc.total, res.Total)
			assert.Equal(t, tc.total, res.BasePoints)
			assert.Equal(t, tc.category, res.Category)
		})
	}
}

func TestEvaluateExhaustiveInvariants(t *testing.T) {
	allowed := map[int]bool{0: true, 2: true, 5: true, 7: true, 12: true}

	for ph := 0; ph <= 6; ph++ {
		for pa := 0; pa <= 6; pa++ {
			for ah := 0; ah <= 6; ah++ {
				for aa := 0; aa <= 6; aa++ {
					predicted, actual := score(ph, pa), score(ah, aa)
					res := Evaluate(predicted, actual, one)
					label := fmt.Sprintf("%d-%d vs %d-%d", ph, pa, ah, aa)

					require.True(t, allowed[res.Total], label)

					record := res.Record("grupos")
					populated := countPopulated(record.Breakdown)
					if res.Total == 0 {
						require.Equal(t, 0, populated, label)
					} else {
						require.Equal(t, 1, populated, label)
					}

					if Classify(actual) == Draw && Classify(predicted) != Draw {
						require.Contains(t, []int{0, 2}, res.Total, label)
					}
					if predicted == actual {
						require.Equal(t, ExactScorePoints, res.Total, label)
					}
				}
			}
		}
	}
}

func countPopulated(b models.BreakdownCategories) int {
	n := 0
	for _, v := range []*int{b.ExactScore, b.CorrectWinnerOrDraw, b.CorrectWinnerPlusOneTeamScore, b.CorrectOneTeamScore} {
		if v != nil && *v != 0 {
			n++
		}
	}
	return n
}

func TestEvaluateMultiplierRoundsHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		multiplier string
		predicted  models.Scoreline
		actual     models.Scoreline
		total      int
	}{
		{"1.5", score(1, 0), score(2, 1), 8},  // 7.5
		{"1.5", score(1, 0), score(2, 0), 11}, // 10.5
		{"0.5", score(1, 0), score(2, 1), 3},  // 2.5
		{"2", score(1, 0), score(1, 0), 24},
		{"1.25", score(1, 0), score(0, 0), 3}, // 2.5
		{"3", score(1, 0), score(2, 2), 0},
	}

	for _, tc := range cases {
		res := Evaluate(tc.predicted, tc.actual, decimal.RequireFromString(tc.multiplier))
		assert.Equal(t, tc.total, res.Total, "multiplier %s", tc.multiplier)
	}
}

func TestRecordShape(t *testing.T) {
	res := Evaluate(score(1, 0), score(0, 0), one)
	data, err := json.Marshal(res.Record("grupos"))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"total": 2,
		"basePoints": 2,
		"multiplier": 1,
		"breakdown": {"correctOneTeamScore": 2},
		"context": {
			"predicted": {"home": 1, "away": 0},
			"actual": {"home": 0, "away": 0},
			"phase": "grupos"
		}
	}`, string(data))
}

func TestRecordEmptyBreakdownWhenNoRuleFires(t *testing.T) {
	data, err := json.Marshal(Evaluate(score(1, 0), score(2, 2), one).Record("final"))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, map[string]interface{}{}, decoded["breakdown"])
	assert.EqualValues(t, 0, decoded["total"])
}

func TestClassify(t *testing.T) {
	assert.Equal(t, HomeWin, Classify(score(3, 1)))
	assert.Equal(t, AwayWin, Classify(score(0, 1)))
	assert.Equal(t, Draw, Classify(score(2, 2)))
	assert.Equal(t, "DRAW", Draw.String())
	assert.Equal(t, "exactScore", CategoryExactScore.String())
}
