// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package battle implements the battle lifecycle and the vote tally.

A battle moves through a fixed state machine:

	INVITED -> UPLOADING -> LIVE -> ENDED
	   \__________\-> CANCELLED (acceptance window expired)

The Coordinator is the only writer of battle state. Every transition is
a conditional UPDATE guarded by a per-battle mutex, so concurrent
accepts and uploads on the same battle serialize and the threshold and
completeness edges fire exactly once. Deadlines are enforced lazily:
there is no background sweeper, an expired pre-live battle is cancelled
by the next accept that touches it (the deadline binds in both INVITED
and UPLOADING), and a live battle past its end time is flipped to ENDED
by the next read or vote.

Votes are insert-only. The composite primary key (battle_id, user_id)
on the vote table is the duplicate-vote guard, which holds under any
interleaving without extra locking.

Side effects (notifications, websocket broadcasts) go through the
Notifier and Broadcaster interfaces declared here, so the package has
no dependency on how either is delivered.
*/
package battle
