// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The SQL is portable across the two supported drivers (modernc.org/sqlite
and lib/pq): $1 placeholders, ON CONFLICT upserts, explicit timestamps.

# Tables

The schema includes:

  - battle: Battle metadata and lifecycle state
  - battle_invite: Invited users; accepting flips a flag on the invite row
  - battle_submission: One media upload per participant per battle
  - vote: One vote per user per battle (composite primary key)
  - notification: Persisted notification records

# Relationships

	battle 1──* battle_invite
	battle 1──* battle_submission
	battle 1──* vote

All foreign keys use ON DELETE CASCADE.

# Uniqueness

Per-user uniqueness is enforced by composite primary keys rather than
application checks: (battle_id, user_id) on invites, submissions, and
votes. A duplicate vote insert fails at the constraint and surfaces as
battle.ErrAlreadyVoted.
*/
package db
