package models

// ScoredPrediction is a prediction joined with its match's status and final score.
type ScoredPrediction struct {
	PredictionID       string
	UserID             string
	MatchID            string
	PredictedHomeScore int
	PredictedAwayScore int
	PointsEarned       int
	MatchStatus        MatchStatus
	HomeScore          *int
	AwayScore          *int
}

// Finished reports whether the joined match is FINISHED with a usable final score.
func (p ScoredPrediction) Finished() bool {
	return p.MatchStatus == MatchStatusFinished &&
		p.HomeScore != nil && p.AwayScore != nil &&
		*p.HomeScore >= 0 && *p.AwayScore >= 0
}

// Exact reports whether the predicted scoreline equals the final score of a finished match.
func (p ScoredPrediction) Exact() bool {
	return p.Finished() && p.PredictedHomeScore == *p.HomeScore && p.PredictedAwayScore == *p.AwayScore
}
