// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/versusapp/versus-server/models"
	"github.com/versusapp/versus-server/testutil"
)

// TestFullBattleLifecycle drives a multi battle through the whole flow:
// create, accepts crossing the threshold, uploads taking it live, votes,
// results, and the notifications produced along the way.
func TestFullBattleLifecycle(t *testing.T) {
	battleHandler, notificationHandler, conn := newTestHandlers(t)

	// Alice challenges three friends
	req := testutil.MakeRequest("POST", "/battles", models.CreateBattleRequest{
		Title:          "Golden hour showdown",
		Description:    "Best sunset wins",
		Mode:           models.ModeMulti,
		InvitedUserIDs: []string{"bob", "carol", "dave"},
	}, asUser("alice"))
	w := httptest.NewRecorder()
	battleHandler.CreateBattle(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var created models.BattleResponse
	testutil.AssertJSON(t, w, &created)
	battleID := created.Battle.ID

	// All three invitees got challenged
	for _, uid := range []string{"bob", "carol", "dave"} {
		req = testutil.MakeRequest("GET", "/notifications", nil, asUser(uid))
		w = httptest.NewRecorder()
		notificationHandler.ListNotifications(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var notifications []models.Notification
		testutil.AssertJSON(t, w, &notifications)
		if len(notifications) != 1 || notifications[0].Type != models.NotifyChallengeSent {
			t.Fatalf("Expected challenge notification for %s, got %+v", uid, notifications)
		}
	}

	// First accept: below the multi threshold, still INVITED
	req = testutil.MakeRequest("POST", "/battles/"+battleID+"/accept", nil, asUser("bob"))
	req.SetPathValue("id", battleID)
	w = httptest.NewRecorder()
	battleHandler.AcceptBattle(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var accept models.AcceptResponse
	testutil.AssertJSON(t, w, &accept)
	if accept.Battle.Status != models.StatusInvited {
		t.Fatalf("Expected INVITED after first accept, got %s", accept.Battle.Status)
	}

	// Dave declines; nothing changes for the others
	req = testutil.MakeRequest("POST", "/battles/"+battleID+"/decline", nil, asUser("dave"))
	req.SetPathValue("id", battleID)
	w = httptest.NewRecorder()
	battleHandler.DeclineBattle(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	// Second accept crosses the threshold
	req = testutil.MakeRequest("POST", "/battles/"+battleID+"/accept", nil, asUser("carol"))
	req.SetPathValue("id", battleID)
	w = httptest.NewRecorder()
	battleHandler.AcceptBattle(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &accept)
	if accept.Battle.Status != models.StatusUploading {
		t.Fatalf("Expected UPLOADING after second accept, got %s", accept.Battle.Status)
	}

	// Uploads: creator plus both acceptors are required
	var upload models.UploadResponse
	uploads := []struct {
		user string
		want string
	}{
		{"alice", models.StatusUploading},
		{"bob", models.StatusUploading},
		{"carol", models.StatusLive},
	}
	for _, u := range uploads {
		req = testutil.MakeRequest("POST", "/battles/"+battleID+"/upload",
			models.UploadRequest{MediaURL: "https://cdn.example.com/" + u.user + ".jpg"}, asUser(u.user))
		req.SetPathValue("id", battleID)
		w = httptest.NewRecorder()
		battleHandler.UploadMedia(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)
		testutil.AssertJSON(t, w, &upload)
		if upload.Status != u.want {
			t.Fatalf("After %s's upload expected %s, got %s", u.user, u.want, upload.Status)
		}
	}

	// Live battles are public
	req = testutil.MakeRequest("GET", "/battles/"+battleID, nil, nil)
	req.SetPathValue("id", battleID)
	w = httptest.NewRecorder()
	battleHandler.GetBattle(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var view models.BattleResponse
	testutil.AssertJSON(t, w, &view)
	if view.Battle.StartTime == nil || view.Battle.EndTime == nil {
		t.Fatal("Expected live battle to expose start and end times")
	}

	// Spectators vote
	for _, vote := range []struct {
		user   string
		choice string
	}{
		{"viewer1", "A"}, {"viewer2", "A"}, {"viewer3", "B"}, {"viewer4", "A"},
	} {
		req = testutil.MakeRequest("POST", "/battles/"+battleID+"/vote",
			models.VoteRequest{Choice: vote.choice}, asUser(vote.user))
		req.SetPathValue("id", battleID)
		w = httptest.NewRecorder()
		battleHandler.SubmitVote(w, req)
		testutil.AssertStatus(t, w, http.StatusCreated)
	}

	// Results reflect the tallies
	req = testutil.MakeRequest("GET", "/battles/"+battleID+"/results", nil, nil)
	req.SetPathValue("id", battleID)
	w = httptest.NewRecorder()
	battleHandler.GetResults(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var res models.BattleResults
	testutil.AssertJSON(t, w, &res)
	if res.TotalVotes != 4 || res.OptionAVotes != 3 || res.OptionBVotes != 1 {
		t.Fatalf("Unexpected results: %+v", res)
	}
	if res.OptionAPercentage != 75.0 || res.OptionBPercentage != 25.0 {
		t.Fatalf("Unexpected percentages: %+v", res)
	}

	// Alice heard about every vote plus the lifecycle events
	var voteNotes int
	if err := conn.QueryRow(`
		SELECT COUNT(*) FROM notification WHERE user_id = $1 AND type = $2
	`, "alice", models.NotifyVote).Scan(&voteNotes); err != nil {
		t.Fatalf("Failed to count vote notifications: %v", err)
	}
	if voteNotes != 4 {
		t.Errorf("Expected 4 vote notifications for creator, got %d", voteNotes)
	}
}
