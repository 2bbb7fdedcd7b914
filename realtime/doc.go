// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package realtime pushes battle events to websocket clients.

The Hub is a per-battle connection registry with best-effort fan-out:
every subscribed connection receives every event, writes that fail get
the connection pruned, and Publish holds no locks while writing. Only
an explicit Unsubscribe or a failed write deregisters a connection, so
spectators sharing a user id coexist. Handler is the HTTP side, upgrading requests with
gorilla/websocket, sending a battle_state snapshot on connect and
answering ping with pong.

The hub works against a narrow Conn interface rather than
*websocket.Conn so fan-out behavior is testable without sockets.
*/
package realtime
