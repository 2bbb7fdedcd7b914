// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateBattleRequest: title, description, mode, invited_user_ids
  - UploadRequest: media_url
  - VoteRequest: choice ("A" or "B")

# Response Types

Types for JSON responses:

  - BattleResponse: battle
  - AcceptResponse / DeclineResponse / UploadResponse
  - VoteResponse: vote
  - BattleResults: tallies and percentages
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Battle: battle metadata and lifecycle state
  - Submission: one participant's media upload
  - Vote: one user's vote (immutable)
  - Notification: persisted notification record

# Constants

Status values (single source of truth for lifecycle stage):

	StatusInvited   = "INVITED"
	StatusUploading = "UPLOADING"
	StatusLive      = "LIVE"
	StatusEnded     = "ENDED"
	StatusCancelled = "CANCELLED"

Modes:

	ModeOneVOne = "1v1"
	ModeMulti   = "multi"

Vote choices:

	ChoiceA = "A"
	ChoiceB = "B"
*/
package models
