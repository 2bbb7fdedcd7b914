// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/versusapp/versus-server/battle"
	"github.com/versusapp/versus-server/cliparse"
	"github.com/versusapp/versus-server/handlers"
	"github.com/versusapp/versus-server/middleware"
	"github.com/versusapp/versus-server/notify"
	"github.com/versusapp/versus-server/realtime"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Wire the core: notifications and broadcasts hang off the
	// coordinator through interfaces.
	hub := realtime.NewHub()
	dispatcher := notify.NewStoreDispatcher(db)
	coord := battle.NewCoordinator(db, dispatcher, hub, cfg)

	// Initialize handlers
	battleHandler := handlers.NewBattleHandler(coord)
	notificationHandler := handlers.NewNotificationHandler(db)
	wsHandler := realtime.NewHandler(hub, func(battleID string) (any, error) {
		return coord.Results(battleID)
	})

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Battle lifecycle
	mux.HandleFunc("POST /battles", middleware.WithLogging(battleHandler.CreateBattle))
	mux.HandleFunc("GET /battles", middleware.WithLogging(battleHandler.ListBattles))
	mux.HandleFunc("GET /battles/{id}", middleware.WithLogging(battleHandler.GetBattle))
	mux.HandleFunc("POST /battles/{id}/accept", middleware.WithLogging(battleHandler.AcceptBattle))
	mux.HandleFunc("POST /battles/{id}/decline", middleware.WithLogging(battleHandler.DeclineBattle))
	mux.HandleFunc("POST /battles/{id}/upload", middleware.WithLogging(battleHandler.UploadMedia))

	// Voting and results
	mux.HandleFunc("POST /battles/{id}/vote", middleware.WithLogging(battleHandler.SubmitVote))
	mux.HandleFunc("GET /battles/{id}/results", middleware.WithLogging(battleHandler.GetResults))

	// Realtime (websocket upgrade handles its own logging)
	mux.Handle("GET /ws/battles/{id}", wsHandler)

	// Notifications
	mux.HandleFunc("GET /notifications", middleware.WithLogging(notificationHandler.ListNotifications))
	mux.HandleFunc("POST /notifications/{id}/read", middleware.WithLogging(notificationHandler.MarkRead))
	mux.HandleFunc("POST /notifications/read-all", middleware.WithLogging(notificationHandler.MarkAllRead))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("versus API v1"))
	})

	return mux
}
