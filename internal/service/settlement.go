package service

import (
	"cmp"
	"context"
	"encoding/json"
	stderrors "errors"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/config"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/models"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/scoring"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/pkg/errors"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/pkg/logger"
)

// ErrMatchNotFound is wrapped by the validation error returned for an unknown match id.
var ErrMatchNotFound = stderrors.New("match not found")

type SettlementService struct {
	matchStore        MatchStore
	predictionStore   PredictionStore
	auditStore        AuditStore
	aggregator        Aggregator
	workers           int
	topScorers        int
	defaultMultiplier decimal.Decimal
	now               func() time.Time
}

func NewSettlementService(
	matchStore MatchStore,
	predictionStore PredictionStore,
	auditStore AuditStore,
	aggregator Aggregator,
	cfg *config.ScoringConfig,
) *SettlementService {
	workers := cfg.SettlementWorkers
	if workers < 1 {
		workers = 1
	}
	return &SettlementService{
		matchStore:        matchStore,
		predictionStore:   predictionStore,
		auditStore:        auditStore,
		aggregator:        aggregator,
		workers:           workers,
		topScorers:        cfg.TopScorers,
		defaultMultiplier: cfg.Multiplier(),
		now:               time.Now,
	}
}

// PredictionOutcome is the result of settling a single prediction: either Points or Err.
type PredictionOutcome struct {
	PredictionID string
	UserID       string
	Points       int
	Err          error
}

func (o PredictionOutcome) OK() bool {
	return o.Err == nil
}

type TopScorer struct {
	UserID       string `json:"userId"`
	PredictionID string `json:"predictionId"`
	Points       int    `json:"points"`
}

type SettlementSummary struct {
	MatchID              string      `json:"matchId"`
	HomeTeam             string      `json:"homeTeam"`
	AwayTeam             string      `json:"awayTeam"`
	HomeScore            int         `json:"homeScore"`
	AwayScore            int         `json:"awayScore"`
	Phase                string      `json:"phase"`
	PredictionsProcessed int         `json:"predictionsProcessed"`
	TotalPointsAwarded   int         `json:"totalPointsAwarded"`
	ErrorCount           int         `json:"errorCount"`
	TopScorers           []TopScorer `json:"topScorers"`
	SettledAt            time.Time   `json:"settledAt"`
}

// BatchResult counts matches settled and matches whose settlement returned an error.
type BatchResult struct {
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
}

// SettleMatch scores every prediction of a finished match, then recomputes the leaderboard.
//
// A missing match or one without both final scores is a validation error and nothing is written.
// Individual prediction write failures are counted in the summary and do not stop the others.
// The leaderboard recompute always runs; if it fails the summary is returned together with an
// AGGREGATION_ERROR. Settling the same match again overwrites the previous results.
func (s *SettlementService) SettleMatch(ctx context.Context, matchID string) (*SettlementSummary, error) {
	match, err := s.matchStore.GetByID(ctx, matchID)
	if err != nil {
		return nil, errors.New(errors.ErrSettlement, "failed to load match "+matchID, err)
	}
	if match == nil {
		return nil, errors.New(errors.ErrValidation, "match "+matchID, ErrMatchNotFound)
	}
	if !match.HasFinalScore() {
		return nil, errors.New(errors.ErrValidation, "match "+matchID+" has no final score", nil)
	}

	predictions, err := s.predictionStore.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, errors.New(errors.ErrSettlement, "failed to load predictions for match "+matchID, err)
	}

	settledAt := s.now()
	outcomes := s.settlePredictions(ctx, match, predictions, settledAt)
	summary := s.summarize(match, outcomes, settledAt)

	aggErr := s.aggregator.Recompute(ctx)

	s.writeAudit(ctx, summary)

	if summary.ErrorCount == 0 {
		if err := s.matchStore.MarkSettled(ctx, matchID, settledAt); err != nil {
			logger.WithFields(map[string]interface{}{
				"match_id": matchID,
				"error":    err.Error(),
			}).Warn("Failed to mark match settled")
		}
	}

	fields := map[string]interface{}{
		"match_id":              matchID,
		"predictions_processed": summary.PredictionsProcessed,
		"total_points_awarded":  summary.TotalPointsAwarded,
		"error_count":           summary.ErrorCount,
	}
	if aggErr != nil {
		fields["error"] = aggErr.Error()
		logger.WithFields(fields).Error("Match settled but leaderboard recompute failed")
		return summary, errors.New(errors.ErrAggregation, "leaderboard recompute failed after settling match "+matchID, aggErr)
	}
	logger.WithFields(fields).Info("Match settled")

	return summary, nil
}

func (s *SettlementService) settlePredictions(ctx context.Context, match *models.Match, predictions []models.Prediction, settledAt time.Time) []PredictionOutcome {
	actual := models.Scoreline{Home: *match.HomeScore, Away: *match.AwayScore}
	multiplier := match.Multiplier(s.defaultMultiplier)
	phase := match.PhaseSlug()

	outcomes := make([]PredictionOutcome, len(predictions))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, p := range predictions {
		i, p := i, p
		g.Go(func() error {
			predicted := models.Scoreline{Home: p.PredictedHomeScore, Away: p.PredictedAwayScore}
			result := scoring.Evaluate(predicted, actual, multiplier)

			outcome := PredictionOutcome{PredictionID: p.ID, UserID: p.UserID}
			if err := s.predictionStore.UpdateResult(ctx, p.ID, result.Total, result.Record(phase), settledAt); err != nil {
				logger.WithFields(map[string]interface{}{
					"match_id":      match.ID,
					"prediction_id": p.ID,
					"user_id":       p.UserID,
					"error":         err.Error(),
				}).Error("Failed to persist prediction result")
				outcome.Err = errors.New(errors.ErrPredictionPersist, "prediction "+p.ID, err)
			} else {
				outcome.Points = result.Total
			}
			outcomes[i] = outcome
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (s *SettlementService) summarize(match *models.Match, outcomes []PredictionOutcome, settledAt time.Time) *SettlementSummary {
	summary := &SettlementSummary{
		MatchID:    match.ID,
		HomeTeam:   match.HomeTeam,
		AwayTeam:   match.AwayTeam,
		HomeScore:  *match.HomeScore,
		AwayScore:  *match.AwayScore,
		Phase:      match.PhaseSlug(),
		TopScorers: []TopScorer{},
		SettledAt:  settledAt,
	}

	var scorers []TopScorer
	for _, o := range outcomes {
		if !o.OK() {
			summary.ErrorCount++
			continue
		}
		summary.PredictionsProcessed++
		summary.TotalPointsAwarded += o.Points
		if o.Points > 0 {
			scorers = append(scorers, TopScorer{UserID: o.UserID, PredictionID: o.PredictionID, Points: o.Points})
		}
	}

	slices.SortFunc(scorers, func(a, b TopScorer) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	if len(scorers) > s.topScorers {
		scorers = scorers[:s.topScorers]
	}
	summary.TopScorers = append(summary.TopScorers, scorers...)

	return summary
}

// writeAudit records the settlement. Failures are logged only.
func (s *SettlementService) writeAudit(ctx context.Context, summary *SettlementSummary) {
	details, err := json.Marshal(map[string]interface{}{
		"predictionsProcessed": summary.PredictionsProcessed,
		"totalPointsAwarded":   summary.TotalPointsAwarded,
		"errors":               summary.ErrorCount,
	})
	if err == nil {
		err = s.auditStore.Create(ctx, &models.AuditLog{
			Action:     models.AuditActionCalculateMatchPoints,
			EntityType: models.AuditEntityMatch,
			EntityID:   summary.MatchID,
			Details:    datatypes.JSON(details),
		})
	}
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"match_id": summary.MatchID,
			"error":    errors.New(errors.ErrAuditWrite, "audit write failed", err).Error(),
		}).Warn("Failed to write settlement audit record")
	}
}

// ResettleAllFinishedMatches settles every finished match again, e.g. after a rule change.
func (s *SettlementService) ResettleAllFinishedMatches(ctx context.Context) (BatchResult, error) {
	matches, err := s.matchStore.ListFinished(ctx)
	if err != nil {
		return BatchResult{}, errors.New(errors.ErrSettlement, "failed to list finished matches", err)
	}
	return s.settleAll(ctx, matches), nil
}

// SettleUnsettledMatches settles finished matches that were never settled or changed since.
func (s *SettlementService) SettleUnsettledMatches(ctx context.Context) (BatchResult, error) {
	matches, err := s.matchStore.ListUnsettledFinished(ctx)
	if err != nil {
		return BatchResult{}, errors.New(errors.ErrSettlement, "failed to list unsettled matches", err)
	}
	return s.settleAll(ctx, matches), nil
}

func (s *SettlementService) settleAll(ctx context.Context, matches []models.Match) BatchResult {
	var result BatchResult
	for _, m := range matches {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.SettleMatch(ctx, m.ID); err != nil {
			result.Errors++
			logger.WithFields(map[string]interface{}{
				"match_id": m.ID,
				"error":    err.Error(),
			}).Error("Failed to settle match")
			continue
		}
		result.Processed++
	}

	logger.WithFields(map[string]interface{}{
		"matches":   len(matches),
		"processed": result.Processed,
		"errors":    result.Errors,
	}).Info("Batch settlement finished")

	return result
}
