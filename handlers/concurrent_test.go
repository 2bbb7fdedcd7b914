// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/versusapp/versus-server/models"
	"github.com/versusapp/versus-server/testutil"
)

// TestConcurrentVotes verifies that simultaneous votes from different
// users all land without corruption.
func TestConcurrentVotes(t *testing.T) {
	handler, _, conn := newTestHandlers(t)

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(23 * time.Hour)
	battleID := testutil.CreateTestBattle(t, conn, testutil.TestBattle{
		CreatorID:      "alice",
		Status:         models.StatusLive,
		InvitedUserIDs: []string{"bob"},
		AcceptedIDs:    []string{"bob"},
		StartTime:      &start,
		EndTime:        &end,
	})

	numVoters := 10
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			choice := "A"
			if idx%2 == 1 {
				choice = "B"
			}
			req := testutil.MakeRequest("POST", "/battles/"+battleID+"/vote",
				models.VoteRequest{Choice: choice}, asUser("voter"+strconv.Itoa(idx)))
			req.SetPathValue("id", battleID)
			w := httptest.NewRecorder()

			handler.SubmitVote(w, req)

			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful votes, got %d", numVoters, successCount.Load())
	}

	var voteCount int
	if err := conn.QueryRow("SELECT COUNT(*) FROM vote WHERE battle_id = $1", battleID).Scan(&voteCount); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if voteCount != numVoters {
		t.Errorf("Expected %d votes in database, got %d", numVoters, voteCount)
	}
}

// TestConcurrentDuplicateVoteRequests verifies that when one user fires
// the same vote repeatedly, exactly one succeeds.
func TestConcurrentDuplicateVoteRequests(t *testing.T) {
	handler, _, conn := newTestHandlers(t)

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(23 * time.Hour)
	battleID := testutil.CreateTestBattle(t, conn, testutil.TestBattle{
		CreatorID:      "alice",
		Status:         models.StatusLive,
		InvitedUserIDs: []string{"bob"},
		AcceptedIDs:    []string{"bob"},
		StartTime:      &start,
		EndTime:        &end,
	})

	numAttempts := 5
	var successCount, conflictCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/battles/"+battleID+"/vote",
				models.VoteRequest{Choice: "A"}, asUser("eager-voter"))
			req.SetPathValue("id", battleID)
			w := httptest.NewRecorder()

			handler.SubmitVote(w, req)

			switch w.Code {
			case http.StatusCreated:
				successCount.Add(1)
			case http.StatusConflict:
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("Expected exactly 1 successful vote, got %d", successCount.Load())
	}
	if conflictCount.Load() != int32(numAttempts-1) {
		t.Errorf("Expected %d conflicts, got %d", numAttempts-1, conflictCount.Load())
	}

	var voteCount int
	if err := conn.QueryRow("SELECT COUNT(*) FROM vote WHERE battle_id = $1 AND user_id = $2", battleID, "eager-voter").Scan(&voteCount); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if voteCount != 1 {
		t.Errorf("Expected 1 vote in database, got %d", voteCount)
	}
}

// TestConcurrentAcceptRequests verifies that racing accepts on a multi
// battle leave consistent state: everyone accepted, battle UPLOADING.
func TestConcurrentAcceptRequests(t *testing.T) {
	handler, _, conn := newTestHandlers(t)

	battleID := testutil.CreateTestBattle(t, conn, testutil.TestBattle{
		CreatorID:      "alice",
		Mode:           models.ModeMulti,
		InvitedUserIDs: []string{"bob", "carol", "dave"},
	})

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for _, uid := range []string{"bob", "carol", "dave"} {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/battles/"+battleID+"/accept", nil, asUser(uid))
			req.SetPathValue("id", battleID)
			w := httptest.NewRecorder()

			handler.AcceptBattle(w, req)

			if w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}(uid)
	}
	wg.Wait()

	if successCount.Load() != 3 {
		t.Errorf("Expected 3 successful accepts, got %d", successCount.Load())
	}

	var status string
	if err := conn.QueryRow("SELECT status FROM battle WHERE id = $1", battleID).Scan(&status); err != nil {
		t.Fatalf("Failed to query status: %v", err)
	}
	if status != models.StatusUploading {
		t.Errorf("Expected UPLOADING, got %s", status)
	}

	var accepted int
	if err := conn.QueryRow("SELECT COUNT(*) FROM battle_invite WHERE battle_id = $1 AND accepted = $2", battleID, true).Scan(&accepted); err != nil {
		t.Fatalf("Failed to count acceptors: %v", err)
	}
	if accepted != 3 {
		t.Errorf("Expected 3 acceptors, got %d", accepted)
	}
}

// TestParallelBattles verifies operations on different battles don't
// interfere.
func TestParallelBattles(t *testing.T) {
	t.Parallel()

	handler, _, conn := newTestHandlers(t)

	numBattles := 5
	var wg sync.WaitGroup

	for i := 0; i < numBattles; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			creator := "creator" + strconv.Itoa(idx)
			invitee := "invitee" + strconv.Itoa(idx)

			req := testutil.MakeRequest("POST", "/battles", models.CreateBattleRequest{
				Title: "Parallel battle " + strconv.Itoa(idx),
				Mode:  models.ModeOneVOne, InvitedUserIDs: []string{invitee},
			}, asUser(creator))
			w := httptest.NewRecorder()
			handler.CreateBattle(w, req)
			if w.Code != http.StatusCreated {
				t.Errorf("Battle %d creation failed: %d", idx, w.Code)
				return
			}

			var createResp models.BattleResponse
			testutil.AssertJSON(t, w, &createResp)
			battleID := createResp.Battle.ID

			req = testutil.MakeRequest("POST", "/battles/"+battleID+"/accept", nil, asUser(invitee))
			req.SetPathValue("id", battleID)
			w = httptest.NewRecorder()
			handler.AcceptBattle(w, req)
			if w.Code != http.StatusOK {
				t.Errorf("Battle %d accept failed: %d", idx, w.Code)
			}
		}(i)
	}
	wg.Wait()

	var count int
	if err := conn.QueryRow("SELECT COUNT(*) FROM battle WHERE status = $1", models.StatusUploading).Scan(&count); err != nil {
		t.Fatalf("Failed to count battles: %v", err)
	}
	if count != numBattles {
		t.Errorf("Expected %d uploading battles, got %d", numBattles, count)
	}
}
