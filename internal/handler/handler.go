package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/models"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/service"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/pkg/errors"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/pkg/logger"
)

type Settler interface {
	SettleMatch(ctx context.Context, matchID string) (*service.SettlementSummary, error)
	ResettleAllFinishedMatches(ctx context.Context) (service.BatchResult, error)
}

type Leaderboard interface {
	Recompute(ctx context.Context) error
	ListLeaderboard(ctx context.Context, page, pageSize int) (*service.LeaderboardPage, error)
	GetUserStanding(ctx context.Context, userID string) (*models.LeaderboardEntry, error)
}

type Backups interface {
	BackupLeaderboard(ctx context.Context) (*models.LeaderboardSnapshot, error)
	ListSnapshots(ctx context.Context, limit int) ([]models.LeaderboardSnapshot, error)
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeAppError answers with the status for err's code and includes the code in the body.
func writeAppError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{
		"error": err.Error(),
		"code":  errors.CodeOf(err),
	})
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch {
	case stderrors.Is(err, service.ErrMatchNotFound), errors.HasCode(err, errors.ErrNotFound):
		return http.StatusNotFound
	case errors.HasCode(err, errors.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type SettlementHandler struct {
	settler Settler
}

func NewSettlementHandler(settler Settler) *SettlementHandler {
	return &SettlementHandler{settler: settler}
}

func (h *SettlementHandler) SettleMatch(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	if matchID == "" {
		writeError(w, http.StatusBadRequest, "match id is required")
		return
	}

	// Settlement runs to completion even if the client goes away.
	summary, err := h.settler.SettleMatch(context.WithoutCancel(r.Context()), matchID)
	if err != nil {
		if summary != nil {
			// Predictions were settled but the leaderboard was not rebuilt.
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"error":   err.Error(),
				"summary": summary,
			})
			return
		}
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *SettlementHandler) ResettleAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.settler.ResettleAllFinishedMatches(context.WithoutCancel(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resettle matches: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type LeaderboardHandler struct {
	leaderboard Leaderboard
}

func NewLeaderboardHandler(leaderboard Leaderboard) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

func (h *LeaderboardHandler) ListLeaderboard(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	result, err := h.leaderboard.ListLeaderboard(r.Context(), page, pageSize)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list leaderboard: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *LeaderboardHandler) GetUserStanding(w http.ResponseWriter, r *http.Request) {
	entry, err := h.leaderboard.GetUserStanding(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *LeaderboardHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := h.leaderboard.Recompute(context.WithoutCancel(r.Context())); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to recompute leaderboard: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "leaderboard recomputed",
		"durationMs": time.Since(start).Milliseconds(),
	})
}

type BackupHandler struct {
	backups Backups
}

func NewBackupHandler(backups Backups) *BackupHandler {
	return &BackupHandler{backups: backups}
}

func (h *BackupHandler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.backups.BackupLeaderboard(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create backup: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, snapshot)
}

func (h *BackupHandler) ListBackups(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	snapshots, err := h.backups.ListSnapshots(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list backups: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, snapshots)
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		logger.WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      wrapped.statusCode,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("HTTP request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
