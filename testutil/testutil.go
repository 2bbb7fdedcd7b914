// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/versusapp/versus-server/cliparse"
	"github.com/versusapp/versus-server/db"
	"github.com/versusapp/versus-server/models"
)

// SetupTestDB creates a fresh SQLite database in a temp dir with the
// full schema. The single connection keeps SQLite's writer lock from
// surfacing as "database is locked" in concurrent tests.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "versus_test.db")
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         8400,
		DatabaseURL:  "test.db",
		DatabaseType: "sqlite",
		AcceptWindow: 2 * time.Hour,
		LiveWindow:   24 * time.Hour,
	}
}

// TestBattle describes the fixture CreateTestBattle inserts. Zero-value
// fields get sensible defaults.
type TestBattle struct {
	CreatorID      string
	Title          string
	Mode           string
	Status         string
	InvitedUserIDs []string
	AcceptedIDs    []string
	AcceptDeadline time.Time
	StartTime      *time.Time
	EndTime        *time.Time
}

// CreateTestBattle inserts a battle with raw SQL, bypassing the
// coordinator, so tests can build states the API cannot reach directly
// (expired deadlines, already-live battles). Returns the battle id.
func CreateTestBattle(t *testing.T, conn *sql.DB, tb TestBattle) string {
	t.Helper()

	if tb.CreatorID == "" {
		tb.CreatorID = "creator"
	}
	if tb.Title == "" {
		tb.Title = "Test Battle"
	}
	if tb.Mode == "" {
		tb.Mode = models.ModeOneVOne
	}
	if tb.Status == "" {
		tb.Status = models.StatusInvited
	}
	if tb.AcceptDeadline.IsZero() {
		tb.AcceptDeadline = time.Now().Add(2 * time.Hour)
	}

	battleID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO battle (id, creator_id, title, description, mode, status, accept_deadline, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, battleID, tb.CreatorID, tb.Title, "A test battle", tb.Mode, tb.Status,
		tb.AcceptDeadline, tb.StartTime, tb.EndTime, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test battle: %v", err)
	}

	accepted := make(map[string]bool, len(tb.AcceptedIDs))
	for _, uid := range tb.AcceptedIDs {
		accepted[uid] = true
	}
	for _, uid := range tb.InvitedUserIDs {
		_, err := conn.Exec(`
			INSERT INTO battle_invite (battle_id, user_id, accepted)
			VALUES ($1, $2, $3)
		`, battleID, uid, accepted[uid])
		if err != nil {
			t.Fatalf("Failed to create test invite: %v", err)
		}
	}

	return battleID
}

// AddTestSubmission inserts a submission row directly.
func AddTestSubmission(t *testing.T, conn *sql.DB, battleID, userID, mediaURL string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO battle_submission (battle_id, user_id, media_url, created_at)
		VALUES ($1, $2, $3, $4)
	`, battleID, userID, mediaURL, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test submission: %v", err)
	}
}

// AddTestVote inserts a vote row directly.
func AddTestVote(t *testing.T, conn *sql.DB, battleID, userID, choice string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO vote (battle_id, user_id, choice, created_at)
		VALUES ($1, $2, $3, $4)
	`, battleID, userID, choice, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
