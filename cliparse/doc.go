// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from CLI flags and environment
variables.

# Usage

	cfg, err := cliparse.ParseFlags(os.Args[1:])

CLI flags take priority; environment variables are the fallback; anything
still unset gets a documented default or, for the database URL, an error.

# Settings

  - Port (-p / PORT): server port, default 8400
  - DatabaseURL (-d / DATABASE_URL): required
  - DatabaseType (-t / DATABASE_TYPE): "sqlite" (default) or "postgres"
  - AcceptWindow (-accept-window / ACCEPT_WINDOW): default 2h
  - LiveWindow (-live-window / LIVE_WINDOW): default 24h

Invalid values are rejected rather than silently defaulted.
*/
package cliparse
