// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// StoreDispatcher persists notifications to the notification table. It
// satisfies the coordinator's Notifier interface: Dispatch never returns
// an error, a failed insert is logged and dropped so the triggering
// operation still succeeds.
type StoreDispatcher struct {
	db *sql.DB
}

func NewStoreDispatcher(db *sql.DB) *StoreDispatcher {
	return &StoreDispatcher{db: db}
}

// Dispatch stores one notification for one user. referenceID links the
// notification back to the battle that produced it and may be empty.
func (d *StoreDispatcher) Dispatch(userID, title, message, category, referenceID string) {
	var ref any
	if referenceID != "" {
		ref = referenceID
	}

	_, err := d.db.Exec(`
		INSERT INTO notification (id, user_id, title, message, type, reference_id, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.NewString(), userID, title, message, category, ref, false, time.Now())
	if err != nil {
		slog.Warn("failed to store notification",
			"user_id", userID, "type", category, "error", err)
	}
}
