// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package battle

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/versusapp/versus-server/cliparse"
	"github.com/versusapp/versus-server/models"
)

// Notifier delivers a notification to a single user. Dispatch is fire and
// forget: implementations must never fail the calling operation.
type Notifier interface {
	Dispatch(userID, title, message, category, referenceID string)
}

// Broadcaster fans an event out to every connection currently watching a
// battle. Delivery is best effort.
type Broadcaster interface {
	Publish(battleID, eventType string, data any)
}

// Coordinator owns the battle state machine. All transitions go through
// it; per-battle locking makes each read-modify-write sequence atomic
// with respect to concurrent callers on the same battle.
type Coordinator struct {
	db       *sql.DB
	notifier Notifier
	bcast    Broadcaster
	cfg      cliparse.Config
	locks    *lockTable

	// now is swapped out by tests to exercise deadline behavior.
	now func() time.Time
}

func NewCoordinator(db *sql.DB, notifier Notifier, bcast Broadcaster, cfg cliparse.Config) *Coordinator {
	return &Coordinator{
		db:       db,
		notifier: notifier,
		bcast:    bcast,
		cfg:      cfg,
		locks:    newLockTable(),
		now:      time.Now,
	}
}

// Create validates the request, stores the battle in INVITED state with
// the acceptance deadline, and notifies every invitee.
func (c *Coordinator) Create(creatorID string, req models.CreateBattleRequest) (*models.Battle, error) {
	title := strings.TrimSpace(req.Title)
	if len(title) < 3 {
		return nil, fmt.Errorf("%w: title must be at least 3 characters", ErrValidation)
	}
	if req.Mode != models.ModeOneVOne && req.Mode != models.ModeMulti {
		return nil, fmt.Errorf("%w: mode must be 1v1 or multi", ErrValidation)
	}

	invited := make([]string, 0, len(req.InvitedUserIDs))
	for _, uid := range req.InvitedUserIDs {
		uid = strings.TrimSpace(uid)
		if uid == "" {
			return nil, fmt.Errorf("%w: invited user ids cannot be empty", ErrValidation)
		}
		if uid == creatorID {
			return nil, fmt.Errorf("%w: creator cannot invite themselves", ErrValidation)
		}
		if !slices.Contains(invited, uid) {
			invited = append(invited, uid)
		}
	}
	switch req.Mode {
	case models.ModeOneVOne:
		if len(invited) != 1 {
			return nil, fmt.Errorf("%w: 1v1 battles require exactly one invited user", ErrValidation)
		}
	case models.ModeMulti:
		if len(invited) < 2 || len(invited) > 3 {
			return nil, fmt.Errorf("%w: multi battles require 2-3 invited users", ErrValidation)
		}
	}

	now := c.now()
	b := &models.Battle{
		ID:              uuid.NewString(),
		CreatorID:       creatorID,
		Title:           title,
		Description:     strings.TrimSpace(req.Description),
		Mode:            req.Mode,
		Status:          models.StatusInvited,
		InvitedUserIDs:  invited,
		AcceptedUserIDs: []string{},
		AcceptDeadline:  now.Add(c.cfg.AcceptWindow),
		CreatedAt:       now,
	}

	tx, err := c.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO battle (id, creator_id, title, description, mode, status, accept_deadline, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, b.ID, b.CreatorID, b.Title, b.Description, b.Mode, b.Status, b.AcceptDeadline, b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert battle: %w", err)
	}

	for _, uid := range invited {
		_, err = tx.Exec(`
			INSERT INTO battle_invite (battle_id, user_id, accepted)
			VALUES ($1, $2, $3)
		`, b.ID, uid, false)
		if err != nil {
			return nil, fmt.Errorf("insert invite: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit battle: %w", err)
	}

	window := c.windowPhrase(c.cfg.AcceptWindow)
	for _, uid := range invited {
		c.notifier.Dispatch(uid, tag(creatorID)+" challenged you.",
			"Accept within "+window+" to join.", models.NotifyChallengeSent, b.ID)
	}
	c.bcast.Publish(b.ID, "battle_update", statusPayload(b))

	return b, nil
}

// Accept records an invitee's acceptance and, when the mode's threshold
// is reached, transitions the battle to UPLOADING. The whole sequence
// runs under the per-battle lock so concurrent accepts cannot drop each
// other's updates or double-fire the transition.
func (c *Coordinator) Accept(battleID, userID string) (*models.Battle, error) {
	unlock := c.locks.lock(battleID)
	defer unlock()

	b, err := c.getBattle(battleID)
	if err != nil {
		return nil, err
	}

	// The acceptance deadline binds until the battle goes live: a late
	// accept cancels the battle even after the threshold transition.
	now := c.now()
	switch b.Status {
	case models.StatusInvited, models.StatusUploading:
		if now.After(b.AcceptDeadline) {
			return nil, c.expire(b)
		}
	}

	if !slices.Contains(b.InvitedUserIDs, userID) {
		return nil, fmt.Errorf("%w: not invited", ErrForbidden)
	}

	switch b.Status {
	case models.StatusInvited, models.StatusUploading:
		// late accepts after the threshold transition are still welcome
	default:
		return nil, fmt.Errorf("%w: battle is %s", ErrInvalidState, b.Status)
	}

	if slices.Contains(b.AcceptedUserIDs, userID) {
		// Idempotent: no state change, no duplicate notifications.
		return b, nil
	}

	res, err := c.db.Exec(`
		UPDATE battle_invite SET accepted = $1, accepted_at = $2
		WHERE battle_id = $3 AND user_id = $4 AND accepted = $5
	`, true, now, battleID, userID, false)
	if err != nil {
		return nil, fmt.Errorf("accept invite: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Someone mutated the invite row outside the lock.
		return nil, fmt.Errorf("%w: invite changed concurrently", ErrConflict)
	}
	b.AcceptedUserIDs = append(b.AcceptedUserIDs, userID)

	accepter := tag(userID)
	c.notifier.Dispatch(b.CreatorID, accepter+" accepted your battle.",
		"Upload your photo to start.", models.NotifyChallengeAccepted, b.ID)
	for _, aid := range b.AcceptedUserIDs {
		if aid != b.CreatorID && aid != userID {
			c.notifier.Dispatch(aid, accepter+" joined the battle.",
				"Upload your photo to start.", models.NotifyChallengeAccepted, b.ID)
		}
	}

	if b.Status == models.StatusInvited && thresholdMet(b.Mode, len(b.AcceptedUserIDs)) {
		_, err := c.db.Exec(`
			UPDATE battle SET status = $1 WHERE id = $2 AND status = $3
		`, models.StatusUploading, battleID, models.StatusInvited)
		if err != nil {
			return nil, fmt.Errorf("transition to uploading: %w", err)
		}
		b.Status = models.StatusUploading
		for _, pid := range participants(b) {
			c.notifier.Dispatch(pid, "Battle is ready to upload.",
				"Upload your image to begin.", models.NotifyBattleStarted, b.ID)
		}
		c.bcast.Publish(b.ID, "battle_update", statusPayload(b))
	}

	return b, nil
}

// Decline validates that the caller was invited. It deliberately has no
// state effect: the user stays in the invited set and the threshold is
// unaffected. See DESIGN.md.
func (c *Coordinator) Decline(battleID, userID string) error {
	b, err := c.getBattle(battleID)
	if err != nil {
		return err
	}
	if !slices.Contains(b.InvitedUserIDs, userID) {
		return fmt.Errorf("%w: not invited", ErrForbidden)
	}
	return nil
}

// Upload upserts the caller's submission and, once every required
// submitter (creator plus all acceptors) has one, takes the battle LIVE
// for the configured window.
func (c *Coordinator) Upload(battleID, userID, mediaURL string) (*models.Battle, error) {
	if strings.TrimSpace(mediaURL) == "" {
		return nil, fmt.Errorf("%w: media_url required", ErrValidation)
	}

	unlock := c.locks.lock(battleID)
	defer unlock()

	b, err := c.getBattle(battleID)
	if err != nil {
		return nil, err
	}

	switch b.Status {
	case models.StatusLive, models.StatusEnded, models.StatusCancelled:
		return nil, fmt.Errorf("%w: cannot upload while battle is %s", ErrInvalidState, b.Status)
	}
	if userID != b.CreatorID && !slices.Contains(b.AcceptedUserIDs, userID) {
		return nil, fmt.Errorf("%w: not allowed to upload", ErrForbidden)
	}

	now := c.now()
	_, err = c.db.Exec(`
		INSERT INTO battle_submission (battle_id, user_id, media_url, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (battle_id, user_id) DO UPDATE SET media_url = excluded.media_url
	`, battleID, userID, mediaURL, now)
	if err != nil {
		return nil, fmt.Errorf("upsert submission: %w", err)
	}

	// The LIVE edge only fires from UPLOADING; an eager creator upload
	// while still INVITED never takes the battle live on its own.
	if b.Status != models.StatusUploading {
		return b, nil
	}

	complete, err := c.submissionsComplete(b)
	if err != nil {
		return nil, err
	}
	if !complete {
		return b, nil
	}

	start := now
	end := now.Add(c.cfg.LiveWindow)
	_, err = c.db.Exec(`
		UPDATE battle SET status = $1, start_time = $2, end_time = $3
		WHERE id = $4 AND status = $5
	`, models.StatusLive, start, end, battleID, models.StatusUploading)
	if err != nil {
		return nil, fmt.Errorf("transition to live: %w", err)
	}
	b.Status = models.StatusLive
	b.StartTime = &start
	b.EndTime = &end

	window := c.windowPhrase(c.cfg.LiveWindow)
	for _, pid := range participants(b) {
		c.notifier.Dispatch(pid, "Battle is LIVE for "+window+".",
			"Share to get votes!", models.NotifyBattleStarted, b.ID)
	}
	c.bcast.Publish(b.ID, "battle_update", statusPayload(b))

	return b, nil
}

// Get returns a battle, applying the view rule: live and ended battles
// are public, earlier stages are visible only to involved users.
func (c *Coordinator) Get(battleID, userID string) (*models.Battle, error) {
	b, err := c.getBattle(battleID)
	if err != nil {
		return nil, err
	}
	c.lazyEnd(b)

	switch b.Status {
	case models.StatusLive, models.StatusEnded:
		return b, nil
	}
	if userID != "" && (userID == b.CreatorID || slices.Contains(b.InvitedUserIDs, userID)) {
		return b, nil
	}
	return nil, fmt.Errorf("%w: not authorized to view this battle", ErrForbidden)
}

// List returns battles ordered newest first, optionally filtered by
// status.
func (c *Coordinator) List(status string, skip, limit int) ([]models.Battle, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if skip < 0 {
		skip = 0
	}

	var (
		rows *sql.Rows
		err  error
	)
	if status != "" {
		rows, err = c.db.Query(`
			SELECT id, creator_id, title, description, mode, status, accept_deadline, start_time, end_time, created_at
			FROM battle WHERE status = $1
			ORDER BY created_at DESC LIMIT $2 OFFSET $3
		`, status, limit, skip)
	} else {
		rows, err = c.db.Query(`
			SELECT id, creator_id, title, description, mode, status, accept_deadline, start_time, end_time, created_at
			FROM battle
			ORDER BY created_at DESC LIMIT $1 OFFSET $2
		`, limit, skip)
	}
	if err != nil {
		return nil, fmt.Errorf("query battles: %w", err)
	}
	defer rows.Close()

	battles := []models.Battle{}
	for rows.Next() {
		b, err := scanBattle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan battle: %w", err)
		}
		battles = append(battles, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range battles {
		if err := c.loadInvites(&battles[i]); err != nil {
			return nil, err
		}
	}
	return battles, nil
}

// expire cancels a pre-live battle whose acceptance window has lapsed.
// Called under the per-battle lock from the accept path (lazy expiry -
// there is no background sweeper).
func (c *Coordinator) expire(b *models.Battle) error {
	_, err := c.db.Exec(`
		UPDATE battle SET status = $1 WHERE id = $2 AND status = $3
	`, models.StatusCancelled, b.ID, b.Status)
	if err != nil {
		return fmt.Errorf("cancel battle: %w", err)
	}
	b.Status = models.StatusCancelled
	c.notifier.Dispatch(b.CreatorID, "Battle cancelled.",
		"Acceptance requirement not met in "+c.windowPhrase(c.cfg.AcceptWindow)+".",
		models.NotifyBattleResult, b.ID)
	c.bcast.Publish(b.ID, "battle_update", statusPayload(b))
	return ErrExpiredWindow
}

// lazyEnd flips an expired live battle to ENDED. Best effort - the
// conditional write makes concurrent flips harmless.
func (c *Coordinator) lazyEnd(b *models.Battle) {
	if b.Status != models.StatusLive || b.EndTime == nil || !c.now().After(*b.EndTime) {
		return
	}
	_, err := c.db.Exec(`
		UPDATE battle SET status = $1 WHERE id = $2 AND status = $3
	`, models.StatusEnded, b.ID, models.StatusLive)
	if err != nil {
		slog.Warn("failed to mark battle ended", "battle_id", b.ID, "error", err)
		return
	}
	b.Status = models.StatusEnded
	c.bcast.Publish(b.ID, "battle_update", statusPayload(b))
}

func (c *Coordinator) getBattle(battleID string) (*models.Battle, error) {
	row := c.db.QueryRow(`
		SELECT id, creator_id, title, description, mode, status, accept_deadline, start_time, end_time, created_at
		FROM battle WHERE id = $1
	`, battleID)

	b, err := scanBattle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: battle %s", ErrNotFound, battleID)
	}
	if err != nil {
		return nil, fmt.Errorf("query battle: %w", err)
	}

	if err := c.loadInvites(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (c *Coordinator) loadInvites(b *models.Battle) error {
	rows, err := c.db.Query(`
		SELECT user_id, accepted FROM battle_invite WHERE battle_id = $1 ORDER BY user_id
	`, b.ID)
	if err != nil {
		return fmt.Errorf("query invites: %w", err)
	}
	defer rows.Close()

	b.InvitedUserIDs = []string{}
	b.AcceptedUserIDs = []string{}
	for rows.Next() {
		var uid string
		var accepted bool
		if err := rows.Scan(&uid, &accepted); err != nil {
			return fmt.Errorf("scan invite: %w", err)
		}
		b.InvitedUserIDs = append(b.InvitedUserIDs, uid)
		if accepted {
			b.AcceptedUserIDs = append(b.AcceptedUserIDs, uid)
		}
	}
	return rows.Err()
}

// submissionsComplete reports whether every required submitter (creator
// plus all acceptors) has a submission row for the battle.
func (c *Coordinator) submissionsComplete(b *models.Battle) (bool, error) {
	rows, err := c.db.Query(`
		SELECT user_id FROM battle_submission WHERE battle_id = $1
	`, b.ID)
	if err != nil {
		return false, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	submitted := make(map[string]bool)
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return false, fmt.Errorf("scan submission: %w", err)
		}
		submitted[uid] = true
	}
	if err := rows.Err(); err != nil {
		return false, err
	}

	for _, pid := range participants(b) {
		if !submitted[pid] {
			return false, nil
		}
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBattle(s rowScanner) (*models.Battle, error) {
	var b models.Battle
	var description sql.NullString
	err := s.Scan(&b.ID, &b.CreatorID, &b.Title, &description, &b.Mode, &b.Status,
		&b.AcceptDeadline, &b.StartTime, &b.EndTime, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.Description = description.String
	return &b, nil
}

func thresholdMet(mode string, acceptedCount int) bool {
	return (mode == models.ModeOneVOne && acceptedCount >= 1) ||
		(mode == models.ModeMulti && acceptedCount >= 2)
}

// participants returns all accepted users plus the creator.
func participants(b *models.Battle) []string {
	out := make([]string, 0, len(b.AcceptedUserIDs)+1)
	out = append(out, b.AcceptedUserIDs...)
	if !slices.Contains(out, b.CreatorID) {
		out = append(out, b.CreatorID)
	}
	return out
}

func statusPayload(b *models.Battle) map[string]any {
	p := map[string]any{
		"battle_id": b.ID,
		"status":    b.Status,
	}
	if b.StartTime != nil {
		p["start_time"] = b.StartTime
	}
	if b.EndTime != nil {
		p["end_time"] = b.EndTime
	}
	return p
}

// windowPhrase renders a duration the way notification copy wants it,
// e.g. "2 hours".
func (c *Coordinator) windowPhrase(d time.Duration) string {
	now := c.now()
	return strings.TrimSpace(humanize.RelTime(now, now.Add(d), "", ""))
}

func tag(userID string) string {
	return "@" + userID
}
