// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package notify delivers user notifications. The only implementation
// today is StoreDispatcher, which writes rows the notification handlers
// read back; delivery failures are logged, never propagated.
package notify
