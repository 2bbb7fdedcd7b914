// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Versus API.

# Handler Types

Each handler is a struct created via a constructor:

  - BattleHandler: battle lifecycle, voting, results
  - NotificationHandler: notification feed and read state

BattleHandler delegates everything to battle.Coordinator and only does
HTTP work: identity extraction, JSON decoding, and error-to-status
mapping via writeBattleError.

# Battle Lifecycle

Battles progress INVITED → UPLOADING → LIVE → ENDED, or to CANCELLED
when the acceptance window lapses:

	POST /battles              → CreateBattle
	POST /battles/{id}/accept  → AcceptBattle
	POST /battles/{id}/decline → DeclineBattle
	POST /battles/{id}/upload  → UploadMedia
	POST /battles/{id}/vote    → SubmitVote
	GET  /battles/{id}/results → GetResults

Mutating operations require the X-User-ID header; reads are public for
live and ended battles.

# Error Mapping

Coordinator sentinels map to statuses: ErrNotFound 404, ErrForbidden
403, ErrValidation 400; ErrExpiredWindow, ErrInvalidState,
ErrAlreadyVoted and ErrConflict are all 409.
*/
package handlers
