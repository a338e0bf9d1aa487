package service

import (
	"context"
	stderrors "errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/models"
)

var errStore = stderrors.New("store unavailable")

func intPtr(v int) *int { return &v }

func decimalFromString(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	require.NoError(t, err)
	return d
}

// memStore keeps matches, predictions, users and leaderboard rows in memory and
// implements every store interface the services depend on.
type memStore struct {
	mu          sync.Mutex
	matches     map[string]*models.Match
	predictions []*models.Prediction
	users       []models.User
	leaderboard map[string]models.LeaderboardEntry
	audits      []models.AuditLog

	failUpdate    map[string]bool
	failListUsers bool
	failAudit     bool
	failUpsert    bool
	settled       map[string]time.Time
	updateCalls   int
	upsertCalls   int
}

func newMemStore() *memStore {
	return &memStore{
		matches:     map[string]*models.Match{},
		leaderboard: map[string]models.LeaderboardEntry{},
		failUpdate:  map[string]bool{},
		settled:     map[string]time.Time{},
	}
}

func (m *memStore) addUser(id string) {
	m.users = append(m.users, models.User{ID: id, Username: "user-" + id})
}

func (m *memStore) addMatch(id string, status models.MatchStatus, home, away *int) *models.Match {
	match := &models.Match{
		ID:        id,
		HomeTeam:  "ARG",
		AwayTeam:  "FRA",
		Status:    status,
		HomeScore: home,
		AwayScore: away,
		Phase:     &models.Phase{ID: "p1", Slug: "grupos"},
	}
	m.matches[id] = match
	return match
}

func (m *memStore) addPrediction(id, userID, matchID string, home, away int) {
	m.predictions = append(m.predictions, &models.Prediction{
		ID:                 id,
		UserID:             userID,
		MatchID:            matchID,
		PredictedHomeScore: home,
		PredictedAwayScore: away,
	})
}

func (m *memStore) prediction(id string) *models.Prediction {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.predictions {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// MatchStore

func (m *memStore) GetByID(ctx context.Context, id string) (*models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	match, ok := m.matches[id]
	if !ok {
		return nil, nil
	}
	cp := *match
	return &cp, nil
}

func (m *memStore) ListFinished(ctx context.Context) ([]models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Match
	for _, match := range m.matches {
		if match.Status == models.MatchStatusFinished && match.HasFinalScore() {
			out = append(out, *match)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListUnsettledFinished(ctx context.Context) ([]models.Match, error) {
	finished, _ := m.ListFinished(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Match
	for _, match := range finished {
		if _, ok := m.settled[match.ID]; !ok {
			out = append(out, match)
		}
	}
	return out, nil
}

func (m *memStore) MarkSettled(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settled[id] = at
	return nil
}

// PredictionStore

func (m *memStore) ListByMatch(ctx context.Context, matchID string) ([]models.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Prediction
	for _, p := range m.predictions {
		if p.MatchID == matchID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) UpdateResult(ctx context.Context, id string, points int, breakdown models.PointsBreakdown, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.failUpdate[id] {
		return errStore
	}
	for _, p := range m.predictions {
		if p.ID == id {
			p.PointsEarned = points
			b := breakdown
			p.PointsBreakdown = &b
			settledAt := at
			p.SettledAt = &settledAt
			return nil
		}
	}
	return stderrors.New("record not found")
}

func (m *memStore) ListScored(ctx context.Context) ([]models.ScoredPrediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ScoredPrediction, 0, len(m.predictions))
	for _, p := range m.predictions {
		sp := models.ScoredPrediction{
			PredictionID:       p.ID,
			UserID:             p.UserID,
			MatchID:            p.MatchID,
			PredictedHomeScore: p.PredictedHomeScore,
			PredictedAwayScore: p.PredictedAwayScore,
			PointsEarned:       p.PointsEarned,
		}
		if match, ok := m.matches[p.MatchID]; ok {
			sp.MatchStatus = match.Status
			sp.HomeScore = match.HomeScore
			sp.AwayScore = match.AwayScore
		}
		out = append(out, sp)
	}
	return out, nil
}

// UserStore

func (m *memStore) ListAll(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failListUsers {
		return nil, errStore
	}
	return append([]models.User(nil), m.users...), nil
}

// LeaderboardStore

func (m *memStore) GetAll(ctx context.Context) ([]models.LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.LeaderboardEntry, 0, len(m.leaderboard))
	for _, e := range m.leaderboard {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ranking < out[j].Ranking })
	return out, nil
}

func (m *memStore) UpsertAll(ctx context.Context, entries []models.LeaderboardEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertCalls++
	if m.failUpsert {
		return errStore
	}
	m.leaderboard = make(map[string]models.LeaderboardEntry, len(entries))
	for _, e := range entries {
		m.leaderboard[e.UserID] = e
	}
	return nil
}

// removeUser deletes a user and their predictions, as account removal elsewhere would.
func (m *memStore) removeUser(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := m.users[:0]
	for _, u := range m.users {
		if u.ID != id {
			users = append(users, u)
		}
	}
	m.users = users
	predictions := m.predictions[:0]
	for _, p := range m.predictions {
		if p.UserID != id {
			predictions = append(predictions, p)
		}
	}
	m.predictions = predictions
}

func (m *memStore) List(ctx context.Context, offset, limit int) ([]models.LeaderboardEntry, error) {
	all, _ := m.GetAll(ctx)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memStore) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.leaderboard)), nil
}

func (m *memStore) GetByUser(ctx context.Context, userID string) (*models.LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.leaderboard[userID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *memStore) entry(userID string) models.LeaderboardEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaderboard[userID]
}

// AuditStore

func (m *memStore) Create(ctx context.Context, entry *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAudit {
		return errStore
	}
	m.audits = append(m.audits, *entry)
	return nil
}

// memSnapshots is kept apart from memStore because both audit and snapshot stores have Create.
type memSnapshots struct {
	mu        sync.Mutex
	snapshots []models.LeaderboardSnapshot
	failAll   bool
}

func (s *memSnapshots) Create(ctx context.Context, snapshot *models.LeaderboardSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return errStore
	}
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now()
	}
	s.snapshots = append(s.snapshots, *snapshot)
	return nil
}

func (s *memSnapshots) List(ctx context.Context, limit int) ([]models.LeaderboardSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.snapshots) < limit {
		limit = len(s.snapshots)
	}
	return append([]models.LeaderboardSnapshot(nil), s.snapshots[:limit]...), nil
}

func (s *memSnapshots) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []models.LeaderboardSnapshot
	var deleted int64
	for _, snap := range s.snapshots {
		if snap.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, snap)
	}
	s.snapshots = kept
	return deleted, nil
}

type fakeArchiver struct {
	keys   []string
	bodies [][]byte
	err    error
}

func (a *fakeArchiver) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if a.err != nil {
		return a.err
	}
	a.keys = append(a.keys, key)
	a.bodies = append(a.bodies, body)
	return nil
}

// countingAggregator records calls and optionally fails.
type countingAggregator struct {
	mu    sync.Mutex
	calls int
	err   error
	next  Aggregator
}

func (a *countingAggregator) Recompute(ctx context.Context) error {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	if a.next != nil {
		return a.next.Recompute(ctx)
	}
	return nil
}
