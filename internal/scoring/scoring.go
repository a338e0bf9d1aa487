// Package scoring turns a predicted scoreline and the actual result into points.
//
// Exactly one rule fires per prediction. Checks run in a fixed order:
//
//	exact scoreline                          12
//	right outcome and one side's goal count   7   (never when the real result is a draw)
//	right outcome only, or a drawn result     5
//	wrong outcome but one side's goal count   2
//	nothing                                   0
//
// The base points are then scaled by the phase multiplier and rounded half away from zero.
package scoring

import (
	"github.com/shopspring/decimal"

	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/models"
)

const (
	ExactScorePoints             = 12
	WinnerPlusOneTeamScorePoints = 7
	WinnerOrDrawPoints           = 5
	OneTeamScorePoints           = 2
)

type Outcome int

const (
	HomeWin Outcome = iota
	AwayWin
	Draw
)

func (o Outcome) String() string {
	switch o {
	case HomeWin:
		return "HOME_WIN"
	case AwayWin:
		return "AWAY_WIN"
	default:
		return "DRAW"
	}
}

// Classify returns the outcome of a scoreline.
func Classify(s models.Scoreline) Outcome {
	switch {
	case s.Home > s.Away:
		return HomeWin
	case s.Away > s.Home:
		return AwayWin
	default:
		return Draw
	}
}

// Category identifies the single rule that produced a prediction's points.
type Category int

const (
	CategoryNone Category = iota
	CategoryExactScore
	CategoryCorrectWinnerPlusOneTeamScore
	CategoryCorrectWinnerOrDraw
	CategoryCorrectOneTeamScore
)

func (c Category) BasePoints() int {
	switch c {
	case CategoryExactScore:
		return ExactScorePoints
	case CategoryCorrectWinnerPlusOneTeamScore:
		return WinnerPlusOneTeamScorePoints
	case CategoryCorrectWinnerOrDraw:
		return WinnerOrDrawPoints
	case CategoryCorrectOneTeamScore:
		return OneTeamScorePoints
	default:
		return 0
	}
}

func (c Category) String() string {
	switch c {
	case CategoryExactScore:
		return "exactScore"
	case CategoryCorrectWinnerPlusOneTeamScore:
		return "correctWinnerPlusOneTeamScore"
	case CategoryCorrectWinnerOrDraw:
		return "correctWinnerOrDraw"
	case CategoryCorrectOneTeamScore:
		return "correctOneTeamScore"
	default:
		return "none"
	}
}

// Result is the outcome of evaluating one prediction.
type Result struct {
	Predicted  models.Scoreline
	Actual     models.Scoreline
	Category   Category
	BasePoints int
	Multiplier decimal.Decimal
	Total      int
}

// ClassifyPrediction picks the rule that fires for predicted against actual. Both scorelines must be non-negative.
func ClassifyPrediction(predicted, actual models.Scoreline) Category {
	if predicted == actual {
		return CategoryExactScore
	}

	sideMatches := predicted.Home == actual.Home || predicted.Away == actual.Away
	predictedOutcome := Classify(predicted)
	actualOutcome := Classify(actual)

	if actualOutcome == Draw {
		switch {
		case predictedOutcome == Draw:
			return CategoryCorrectWinnerOrDraw
		case sideMatches:
			return CategoryCorrectOneTeamScore
		default:
			return CategoryNone
		}
	}

	if predictedOutcome == actualOutcome {
		if sideMatches {
			return CategoryCorrectWinnerPlusOneTeamScore
		}
		return CategoryCorrectWinnerOrDraw
	}
	if sideMatches {
		return CategoryCorrectOneTeamScore
	}
	return CategoryNone
}

// Evaluate scores a prediction and applies multiplier to the base points.
func Evaluate(predicted, actual models.Scoreline, multiplier decimal.Decimal) Result {
	category := ClassifyPrediction(predicted, actual)
	base := category.BasePoints()

	return Result{
		Predicted:  predicted,
		Actual:     actual,
		Category:   category,
		BasePoints: base,
		Multiplier: multiplier,
		Total:      int(decimal.NewFromInt(int64(base)).Mul(multiplier).Round(0).IntPart()),
	}
}

// Record flattens the result into the persisted breakdown shape.
func (r Result) Record(phase string) models.PointsBreakdown {
	var categories models.BreakdownCategories
	if r.Category != CategoryNone {
		points := r.BasePoints
		switch r.Category {
		case CategoryExactScore:
			categories.ExactScore = &points
		case CategoryCorrectWinnerPlusOneTeamScore:
			categories.CorrectWinnerPlusOneTeamScore = &points
		case CategoryCorrectWinnerOrDraw:
			categories.CorrectWinnerOrDraw = &points
		case CategoryCorrectOneTeamScore:
			categories.CorrectOneTeamScore = &points
		}
	}

	return models.PointsBreakdown{
		Total:      r.Total,
		BasePoints: r.BasePoints,
		Multiplier: r.Multiplier.InexactFloat64(),
		Breakdown:  categories,
		Context: models.BreakdownContext{
			Predicted: r.Predicted,
			Actual:    r.Actual,
			Phase:     phase,
		},
	}
}
