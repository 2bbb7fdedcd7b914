// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/versusapp/versus-server/battle"
	"github.com/versusapp/versus-server/middleware"
	"github.com/versusapp/versus-server/models"
)

type BattleHandler struct {
	coord *battle.Coordinator
}

func NewBattleHandler(coord *battle.Coordinator) *BattleHandler {
	return &BattleHandler{coord: coord}
}

// writeBattleError maps coordinator errors to HTTP statuses. Anything
// outside the known taxonomy is a 500 and gets logged.
func writeBattleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, battle.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, battle.ErrForbidden):
		middleware.ErrorResponse(w, http.StatusForbidden, err.Error())
	case errors.Is(err, battle.ErrExpiredWindow),
		errors.Is(err, battle.ErrInvalidState),
		errors.Is(err, battle.ErrAlreadyVoted),
		errors.Is(err, battle.ErrConflict):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, battle.ErrValidation):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("battle operation failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}

// CreateBattle handles POST /battles
func (h *BattleHandler) CreateBattle(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-User-ID header required")
		return
	}

	var req models.CreateBattleRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	b, err := h.coord.Create(userID, req)
	if err != nil {
		writeBattleError(w, err)
		return
	}

	slog.Info("battle created", "battle_id", b.ID, "creator", userID, "mode", b.Mode)

	middleware.JSONResponse(w, http.StatusCreated, models.BattleResponse{Battle: *b})
}

// ListBattles handles GET /battles
func (h *BattleHandler) ListBattles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	battles, err := h.coord.List(q.Get("status"), skip, limit)
	if err != nil {
		writeBattleError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, battles)
}

// GetBattle handles GET /battles/:id
func (h *BattleHandler) GetBattle(w http.ResponseWriter, r *http.Request) {
	battleID := r.PathValue("id")
	if battleID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "battle_id is required")
		return
	}

	b, err := h.coord.Get(battleID, middleware.UserID(r))
	if err != nil {
		writeBattleError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.BattleResponse{Battle: *b})
}

// AcceptBattle handles POST /battles/:id/accept
func (h *BattleHandler) AcceptBattle(w http.ResponseWriter, r *http.Request) {
	battleID := r.PathValue("id")
	userID := middleware.UserID(r)
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-User-ID header required")
		return
	}

	b, err := h.coord.Accept(battleID, userID)
	if err != nil {
		writeBattleError(w, err)
		return
	}

	slog.Info("battle accepted", "battle_id", battleID, "user_id", userID, "status", b.Status)

	middleware.JSONResponse(w, http.StatusOK, models.AcceptResponse{
		Accepted: true,
		Battle:   *b,
	})
}

// DeclineBattle handles POST /battles/:id/decline
func (h *BattleHandler) DeclineBattle(w http.ResponseWriter, r *http.Request) {
	battleID := r.PathValue("id")
	userID := middleware.UserID(r)
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-User-ID header required")
		return
	}

	if err := h.coord.Decline(battleID, userID); err != nil {
		writeBattleError(w, err)
		return
	}

	slog.Info("battle declined", "battle_id", battleID, "user_id", userID)

	middleware.JSONResponse(w, http.StatusOK, models.DeclineResponse{Declined: true})
}

// UploadMedia handles POST /battles/:id/upload
func (h *BattleHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	battleID := r.PathValue("id")
	userID := middleware.UserID(r)
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-User-ID header required")
		return
	}

	var req models.UploadRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	b, err := h.coord.Upload(battleID, userID, req.MediaURL)
	if err != nil {
		writeBattleError(w, err)
		return
	}

	slog.Info("media uploaded", "battle_id", battleID, "user_id", userID, "status", b.Status)

	middleware.JSONResponse(w, http.StatusOK, models.UploadResponse{
		Success: true,
		Status:  b.Status,
	})
}

// SubmitVote handles POST /battles/:id/vote
func (h *BattleHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	battleID := r.PathValue("id")
	userID := middleware.UserID(r)
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-User-ID header required")
		return
	}

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	v, err := h.coord.Vote(battleID, userID, req.Choice)
	if err != nil {
		writeBattleError(w, err)
		return
	}

	slog.Info("vote recorded", "battle_id", battleID, "user_id", userID, "choice", v.Choice)

	middleware.JSONResponse(w, http.StatusCreated, models.VoteResponse{Vote: *v})
}

// GetResults handles GET /battles/:id/results
func (h *BattleHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	battleID := r.PathValue("id")
	if battleID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "battle_id is required")
		return
	}

	results, err := h.coord.Results(battleID)
	if err != nil {
		writeBattleError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}
