// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package battle

import "errors"

// Error taxonomy for coordinator and tally operations. All of these are
// recoverable and surface to the caller with a stable kind; handlers map
// them to HTTP statuses with errors.Is.
var (
	// ErrNotFound - the battle (or notification) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden - the actor is not entitled: not invited, not a
	// participant, or not the creator.
	ErrForbidden = errors.New("forbidden")

	// ErrExpiredWindow - the acceptance deadline has passed; the battle
	// was cancelled as part of the same call.
	ErrExpiredWindow = errors.New("acceptance window expired")

	// ErrInvalidState - the operation is invalid for the battle's current
	// status, e.g. voting on a non-live battle or uploading after live.
	ErrInvalidState = errors.New("invalid battle state")

	// ErrAlreadyVoted - a vote already exists for (battle_id, user_id).
	ErrAlreadyVoted = errors.New("already voted")

	// ErrConflict - a concurrent update race was detected; the caller
	// should retry.
	ErrConflict = errors.New("conflicting update")

	// ErrValidation - the request payload failed validation.
	ErrValidation = errors.New("invalid request")
)
