// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Versus API server.

Versus is a head-to-head photo battle service: a creator challenges
friends, everyone uploads an image, and the battle goes live for a
timed public vote with realtime tallies pushed over websockets.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=versus.db go run main.go

Or with flags:

	go run main.go -p 8400 -d versus.db -t sqlite

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file path or PostgreSQL connection string

Optional settings:

  - PORT (-p): Server port (default: 8400)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
  - ACCEPT_WINDOW (-accept-window): invitation deadline (default: 2h)
  - LIVE_WINDOW (-live-window): voting window (default: 24h)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - battle: lifecycle coordinator and vote tally (the core)
  - realtime: websocket hub and per-battle event fan-out
  - notify: notification storage and dispatch
  - handlers: HTTP request handlers (battles, notifications)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, identity
  - models: Request/response types
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
