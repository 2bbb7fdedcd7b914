// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Versus API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Battle lifecycle (mutations require X-User-ID):

	POST /battles              - Create battle and invite users
	GET  /battles              - List battles (?status=, ?skip=, ?limit=)
	GET  /battles/{id}         - Battle details
	POST /battles/{id}/accept  - Accept an invitation
	POST /battles/{id}/decline - Decline an invitation
	POST /battles/{id}/upload  - Submit media

Voting and results:

	POST /battles/{id}/vote    - Cast a vote (A or B)
	GET  /battles/{id}/results - Current tallies

Realtime:

	GET /ws/battles/{id}?user_id= - Websocket event stream

Notifications (require X-User-ID):

	GET  /notifications           - List (?unread=true, ?limit=)
	POST /notifications/{id}/read - Mark one read
	POST /notifications/read-all  - Mark all read

# Handler Initialization

NewRouter builds the object graph itself: the realtime hub and the
notification dispatcher plug into the battle coordinator, which every
battle handler shares. The websocket handler reuses the coordinator's
Results as its connect-time snapshot.
*/
package router
