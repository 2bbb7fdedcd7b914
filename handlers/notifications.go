// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/versusapp/versus-server/middleware"
	"github.com/versusapp/versus-server/models"
)

type NotificationHandler struct {
	db *sql.DB
}

func NewNotificationHandler(db *sql.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// ListNotifications handles GET /notifications
// Returns the caller's notifications, newest first. ?unread=true limits
// the result to unread ones.
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-User-ID header required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"

	query := `
		SELECT id, user_id, title, message, type, reference_id, is_read, created_at
		FROM notification WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2
	`
	if unreadOnly {
		query = `
			SELECT id, user_id, title, message, type, reference_id, is_read, created_at
			FROM notification WHERE user_id = $1 AND is_read = FALSE
			ORDER BY created_at DESC LIMIT $2
		`
	}

	rows, err := h.db.Query(query, userID, limit)
	if err != nil {
		slog.Error("failed to query notifications", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var message sql.NullString
		err := rows.Scan(&n.ID, &n.UserID, &n.Title, &message, &n.Type,
			&n.ReferenceID, &n.IsRead, &n.CreatedAt)
		if err != nil {
			slog.Error("failed to scan notification", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		n.Message = message.String
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to read notifications", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, notifications)
}

// MarkRead handles POST /notifications/:id/read
// Only the owning user can mark a notification read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-User-ID header required")
		return
	}
	notificationID := r.PathValue("id")

	res, err := h.db.Exec(`
		UPDATE notification SET is_read = $1 WHERE id = $2 AND user_id = $3
	`, true, notificationID, userID)
	if err != nil {
		slog.Error("failed to mark notification read", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Notification not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]bool{"read": true})
}

// MarkAllRead handles POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-User-ID header required")
		return
	}

	res, err := h.db.Exec(`
		UPDATE notification SET is_read = $1 WHERE user_id = $2 AND is_read = $3
	`, true, userID, false)
	if err != nil {
		slog.Error("failed to mark notifications read", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	updated, _ := res.RowsAffected()

	slog.Info("notifications marked read", "user_id", userID, "updated", updated)

	middleware.JSONResponse(w, http.StatusOK, models.MarkAllReadResponse{Updated: updated})
}
