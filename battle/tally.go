// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package battle

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/versusapp/versus-server/models"
)

// Vote records a user's vote on a live battle and broadcasts the updated
// tallies to everyone watching. The composite primary key on the vote
// table is the authoritative one-vote-per-user guard; a duplicate insert
// surfaces as ErrAlreadyVoted no matter how the requests interleave.
func (c *Coordinator) Vote(battleID, userID, choice string) (*models.Vote, error) {
	if choice != models.ChoiceA && choice != models.ChoiceB {
		return nil, fmt.Errorf("%w: choice must be %q or %q", ErrValidation, models.ChoiceA, models.ChoiceB)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", ErrValidation)
	}

	b, err := c.getBattle(battleID)
	if err != nil {
		return nil, err
	}
	c.lazyEnd(b)
	if b.Status != models.StatusLive {
		return nil, fmt.Errorf("%w: battle is %s, voting requires %s", ErrInvalidState, b.Status, models.StatusLive)
	}

	v := &models.Vote{
		BattleID:  battleID,
		UserID:    userID,
		Choice:    choice,
		CreatedAt: c.now(),
	}
	_, err = c.db.Exec(`
		INSERT INTO vote (battle_id, user_id, choice, created_at)
		VALUES ($1, $2, $3, $4)
	`, v.BattleID, v.UserID, v.Choice, v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: one vote per user per battle", ErrAlreadyVoted)
		}
		return nil, fmt.Errorf("insert vote: %w", err)
	}

	if userID != b.CreatorID {
		c.notifier.Dispatch(b.CreatorID, tag(userID)+" voted in your battle.",
			"", models.NotifyVote, battleID)
	}

	results, err := c.Results(battleID)
	if err != nil {
		// The vote is committed; a failed tally read only costs the
		// broadcast.
		slog.Warn("failed to tally after vote", "battle_id", battleID, "error", err)
		return v, nil
	}
	c.bcast.Publish(battleID, "vote_update", map[string]any{
		"battle_id":   battleID,
		"results":     results,
		"latest_vote": map[string]string{"user_id": userID, "choice": choice},
	})

	return v, nil
}

// Results recomputes the tallies from the vote rows. It is a pure read
// and never mutates state, so it serves on-demand result fetches, the
// post-vote broadcast, and the websocket snapshot alike.
func (c *Coordinator) Results(battleID string) (*models.BattleResults, error) {
	var exists bool
	err := c.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM battle WHERE id = $1)
	`, battleID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("query battle: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: battle %s", ErrNotFound, battleID)
	}

	rows, err := c.db.Query(`
		SELECT choice, COUNT(*) FROM vote WHERE battle_id = $1 GROUP BY choice
	`, battleID)
	if err != nil {
		return nil, fmt.Errorf("query votes: %w", err)
	}
	defer rows.Close()

	res := &models.BattleResults{BattleID: battleID}
	for rows.Next() {
		var choice string
		var count int
		if err := rows.Scan(&choice, &count); err != nil {
			return nil, fmt.Errorf("scan tally: %w", err)
		}
		switch choice {
		case models.ChoiceA:
			res.OptionAVotes = count
		case models.ChoiceB:
			res.OptionBVotes = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	res.TotalVotes = res.OptionAVotes + res.OptionBVotes
	if res.TotalVotes > 0 {
		// Rounded independently to one decimal; the two percentages need
		// not sum to exactly 100.0.
		res.OptionAPercentage = round1(float64(res.OptionAVotes) / float64(res.TotalVotes) * 100)
		res.OptionBPercentage = round1(float64(res.OptionBVotes) / float64(res.TotalVotes) * 100)
	}
	return res, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// isUniqueViolation matches the duplicate-key error text of both
// supported drivers.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // modernc.org/sqlite
		strings.Contains(msg, "duplicate key value violates unique constraint") // lib/pq
}
