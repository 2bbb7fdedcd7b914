// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Battles
CREATE TABLE IF NOT EXISTS battle (
    id TEXT PRIMARY KEY,
    creator_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT,
    mode TEXT NOT NULL CHECK (mode IN ('1v1', 'multi')),
    status TEXT NOT NULL DEFAULT 'INVITED' CHECK (status IN ('INVITED', 'UPLOADING', 'LIVE', 'ENDED', 'CANCELLED')),
    accept_deadline TIMESTAMP NOT NULL,
    start_time TIMESTAMP,
    end_time TIMESTAMP,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_battle_status ON battle(status);
CREATE INDEX IF NOT EXISTS idx_battle_creator ON battle(creator_id);

-- Invites. The invited set is fixed at creation; accepting flips the
-- accepted flag on the invite row, so accepted is a subset of invited by
-- construction.
CREATE TABLE IF NOT EXISTS battle_invite (
    battle_id TEXT NOT NULL REFERENCES battle(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    accepted BOOLEAN NOT NULL DEFAULT FALSE,
    accepted_at TIMESTAMP,
    PRIMARY KEY (battle_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_battle_invite_user ON battle_invite(user_id);

-- Submissions (one per participant per battle, upserted)
CREATE TABLE IF NOT EXISTS battle_submission (
    battle_id TEXT NOT NULL REFERENCES battle(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    media_url TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (battle_id, user_id)
);

-- Votes. The primary key is the one-vote-per-user-per-battle guard; the
-- tally engine relies on the constraint, not its own existence check.
CREATE TABLE IF NOT EXISTS vote (
    battle_id TEXT NOT NULL REFERENCES battle(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    choice TEXT NOT NULL CHECK (choice IN ('A', 'B')),
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (battle_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_battle ON vote(battle_id);

-- Notifications
CREATE TABLE IF NOT EXISTS notification (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    message TEXT,
    type TEXT NOT NULL DEFAULT 'user',
    reference_id TEXT,
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notification_user ON notification(user_id, is_read);
`
