package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the HTTP API. backups may be nil, which leaves the backup routes out.
func NewRouter(settler Settler, leaderboard Leaderboard, backups Backups) http.Handler {
	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	r.HandleFunc("/health", HandleHealth).Methods(http.MethodGet)

	leaderboardHandler := NewLeaderboardHandler(leaderboard)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/leaderboard", leaderboardHandler.ListLeaderboard).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard/users/{userId}", leaderboardHandler.GetUserStanding).Methods(http.MethodGet)

	// Admin routes sit behind the gateway's auth.
	settlementHandler := NewSettlementHandler(settler)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/matches/resettle", settlementHandler.ResettleAll).Methods(http.MethodPost)
	admin.HandleFunc("/matches/{id}/settle", settlementHandler.SettleMatch).Methods(http.MethodPost)
	admin.HandleFunc("/leaderboard/recompute", leaderboardHandler.Recompute).Methods(http.MethodPost)

	if backups != nil {
		backupHandler := NewBackupHandler(backups)
		admin.HandleFunc("/backups", backupHandler.CreateBackup).Methods(http.MethodPost)
		admin.HandleFunc("/backups", backupHandler.ListBackups).Methods(http.MethodGet)
	}

	return r
}
