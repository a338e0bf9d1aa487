package service

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/models"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/pkg/errors"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/pkg/logger"
)

// Aggregator rebuilds the materialized leaderboard. Settlement depends only on this,
// so an incremental implementation can replace the full recompute.
type Aggregator interface {
	Recompute(ctx context.Context) error
}

type LeaderboardService struct {
	predictionStore  PredictionStore
	userStore        UserStore
	leaderboardStore LeaderboardStore
	// mu serializes recomputes; two overlapping read-then-upsert passes can lose updates.
	mu sync.Mutex
}

func NewLeaderboardService(
	predictionStore PredictionStore,
	userStore UserStore,
	leaderboardStore LeaderboardStore,
) *LeaderboardService {
	return &LeaderboardService{
		predictionStore:  predictionStore,
		userStore:        userStore,
		leaderboardStore: leaderboardStore,
	}
}

// Recompute rebuilds every user's standing from all predictions and upserts one row per user.
// Calls are serialized; a caller arriving mid-recompute waits and then runs a fresh pass.
func (s *LeaderboardService) Recompute(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()

	users, err := s.userStore.ListAll(ctx)
	if err != nil {
		return errors.New(errors.ErrAggregation, "failed to load users", err)
	}

	predictions, err := s.predictionStore.ListScored(ctx)
	if err != nil {
		return errors.New(errors.ErrAggregation, "failed to load predictions", err)
	}

	previous, err := s.leaderboardStore.GetAll(ctx)
	if err != nil {
		return errors.New(errors.ErrAggregation, "failed to load previous standings", err)
	}

	entries := buildStandings(users, predictions, previous)

	if err := s.leaderboardStore.UpsertAll(ctx, entries); err != nil {
		return errors.New(errors.ErrAggregation, "failed to upsert standings", err)
	}

	logger.WithFields(map[string]interface{}{
		"users":       len(entries),
		"predictions": len(predictions),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Leaderboard recomputed")

	return nil
}

type userTally struct {
	userID  string
	points  int
	total   int
	correct int
	exact   int
}

// buildStandings computes ranked rows. Points, hits and exact scores only count on finished
// matches; every prediction counts toward the total. Ranks are 1..N with no ties:
// points desc, exact scores desc, correct predictions desc, user id asc.
func buildStandings(users []models.User, predictions []models.ScoredPrediction, previous []models.LeaderboardEntry) []models.LeaderboardEntry {
	tallies := make(map[string]*userTally, len(users))
	for _, u := range users {
		tallies[u.ID] = &userTally{userID: u.ID}
	}

	for _, p := range predictions {
		t, ok := tallies[p.UserID]
		if !ok {
			t = &userTally{userID: p.UserID}
			tallies[p.UserID] = t
		}
		t.total++
		if !p.Finished() {
			continue
		}
		t.points += p.PointsEarned
		if p.PointsEarned > 0 {
			t.correct++
		}
		if p.Exact() {
			t.exact++
		}
	}

	ordered := make([]*userTally, 0, len(tallies))
	for _, t := range tallies {
		ordered = append(ordered, t)
	}
	slices.SortFunc(ordered, func(a, b *userTally) int {
		if c := cmp.Compare(b.points, a.points); c != 0 {
			return c
		}
		if c := cmp.Compare(b.exact, a.exact); c != 0 {
			return c
		}
		if c := cmp.Compare(b.correct, a.correct); c != 0 {
			return c
		}
		return cmp.Compare(a.userID, b.userID)
	})

	previousRank := make(map[string]int, len(previous))
	for _, e := range previous {
		previousRank[e.UserID] = e.Ranking
	}

	entries := make([]models.LeaderboardEntry, 0, len(ordered))
	for i, t := range ordered {
		ranking := i + 1
		entry := models.LeaderboardEntry{
			UserID:             t.userID,
			TotalPoints:        t.points,
			TotalPredictions:   t.total,
			CorrectPredictions: t.correct,
			ExactScores:        t.exact,
			AccuracyRate:       accuracyRate(t.correct, t.total),
			Ranking:            ranking,
		}
		if prev, ok := previousRank[t.userID]; ok {
			entry.PreviousRanking = &prev
			entry.RankingChange = prev - ranking
		}
		entries = append(entries, entry)
	}
	return entries
}

// accuracyRate is correct/total as a percentage with two decimals.
func accuracyRate(correct, total int) string {
	if total == 0 {
		return "0.00"
	}
	return decimal.NewFromInt(int64(correct)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		StringFixed(2)
}

type LeaderboardPage struct {
	Items    []models.LeaderboardEntry `json:"items"`
	Total    int64                     `json:"total"`
	Page     int                       `json:"page"`
	PageSize int                       `json:"pageSize"`
}

// ListLeaderboard returns a page of standings ordered by ranking. Pages start at 1.
func (s *LeaderboardService) ListLeaderboard(ctx context.Context, page, pageSize int) (*LeaderboardPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	items, err := s.leaderboardStore.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.leaderboardStore.Count(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.LeaderboardEntry{}
	}

	return &LeaderboardPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *LeaderboardService) GetUserStanding(ctx context.Context, userID string) (*models.LeaderboardEntry, error) {
	entry, err := s.leaderboardStore.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errors.New(errors.ErrNotFound, "no leaderboard entry for user "+userID, nil)
	}
	return entry, nil
}
