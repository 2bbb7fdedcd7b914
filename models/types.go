// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Battle status constants
const (
	StatusInvited   = "INVITED"
	StatusUploading = "UPLOADING"
	StatusLive      = "LIVE"
	StatusEnded     = "ENDED"
	StatusCancelled = "CANCELLED"
)

// Battle mode constants
const (
	ModeOneVOne = "1v1"
	ModeMulti   = "multi"
)

// Vote choice constants
const (
	ChoiceA = "A"
	ChoiceB = "B"
)

// Notification category constants
const (
	NotifyChallengeSent     = "challenge_sent"
	NotifyChallengeAccepted = "challenge_accepted"
	NotifyBattleStarted     = "battle_started"
	NotifyBattleResult      = "battle_result"
	NotifyVote              = "vote"
)

// Request types

type CreateBattleRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Mode           string   `json:"mode"`
	InvitedUserIDs []string `json:"invited_user_ids"`
}

type UploadRequest struct {
	MediaURL string `json:"media_url"`
}

type VoteRequest struct {
	Choice string `json:"choice"`
}

// Response types

type BattleResponse struct {
	Battle Battle `json:"battle"`
}

type AcceptResponse struct {
	Accepted bool   `json:"accepted"`
	Battle   Battle `json:"battle"`
}

type DeclineResponse struct {
	Declined bool `json:"declined"`
}

type UploadResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

type VoteResponse struct {
	Vote Vote `json:"vote"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// Domain types

type Battle struct {
	ID              string     `json:"id"`
	CreatorID       string     `json:"creator_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Mode            string     `json:"mode"`
	Status          string     `json:"status"`
	InvitedUserIDs  []string   `json:"invited_user_ids"`
	AcceptedUserIDs []string   `json:"accepted_user_ids"`
	AcceptDeadline  time.Time  `json:"accept_deadline"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Submission is one participant's uploaded media for a battle. At most one
// row exists per (battle_id, user_id); re-uploads replace the media
// reference in place.
type Submission struct {
	BattleID  string    `json:"battle_id"`
	UserID    string    `json:"user_id"`
	MediaURL  string    `json:"media_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Vote is immutable once created; choice changes are not supported.
type Vote struct {
	BattleID  string    `json:"battle_id"`
	UserID    string    `json:"user_id"`
	Choice    string    `json:"choice"`
	CreatedAt time.Time `json:"created_at"`
}

type BattleResults struct {
	BattleID          string  `json:"battle_id"`
	TotalVotes        int     `json:"total_votes"`
	OptionAVotes      int     `json:"option_a_votes"`
	OptionBVotes      int     `json:"option_b_votes"`
	OptionAPercentage float64 `json:"option_a_percentage"`
	OptionBPercentage float64 `json:"option_b_percentage"`
}

type Notification struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Message     string    `json:"message,omitempty"`
	Type        string    `json:"type"`
	ReferenceID *string   `json:"reference_id,omitempty"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
