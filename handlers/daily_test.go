// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blesslab/bless-server/models"
	"github.com/blesslab/bless-server/testutil"
)

// postJSON runs a handler against a marshaled body and returns the recorder.
func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request body: %v", err)
	}

	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func checkBlocked(t *testing.T, handler *DailyHandler, userID string) bool {
	t.Helper()

	w := postJSON(t, handler.Check, "/api/daily/check", models.DailyCheckRequest{UserID: userID})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 from check, got %d. Body: %s", w.Code, w.Body.String())
	}

	var resp models.DailyCheckResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode check response: %v", err)
	}
	return resp.Blocked
}

func TestDailyCheck(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewDailyHandler(db, cfg)

	testutil.CreateTestUser(t, db, "P001", "pw123456", "")

	// Unknown participants are never blocked
	if checkBlocked(t, handler, "GHOST") {
		t.Error("Expected unknown user to be unblocked")
	}

	// Fresh participant: unblocked, and the check itself writes nothing
	if checkBlocked(t, handler, "P001") {
		t.Error("Expected fresh user to be unblocked")
	}
	if checkBlocked(t, handler, "P001") {
		t.Error("Expected repeated check to stay unblocked")
	}

	// A started-but-unfinished cycle does not close the gate
	w := postJSON(t, handler.Status, "/api/daily/status", models.DailyStatusRequest{
		UserID: "P001", IsFinished: false, FeatureType: "breathe",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	if checkBlocked(t, handler, "P001") {
		t.Error("Expected user with only a started row to be unblocked")
	}

	// Finishing it does
	w = postJSON(t, handler.Status, "/api/daily/status", models.DailyStatusRequest{
		UserID: "P001", IsFinished: true, FeatureType: "breathe",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	if !checkBlocked(t, handler, "P001") {
		t.Error("Expected user to be blocked after finishing today's cycle")
	}
}

func TestDailyGateResetsNextDay(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	loc := cfg.Location()

	testutil.CreateTestUser(t, db, "P001", "pw123456", "")

	handler := NewDailyHandler(db, cfg)
	day1 := time.Date(2026, 3, 10, 21, 0, 0, 0, loc)
	handler.now = func() time.Time { return day1 }

	postJSON(t, handler.Status, "/api/daily/status", models.DailyStatusRequest{
		UserID: "P001", IsFinished: false, FeatureType: "breathe",
	})
	postJSON(t, handler.Status, "/api/daily/status", models.DailyStatusRequest{
		UserID: "P001", IsFinished: true, FeatureType: "breathe",
	})

	if !checkBlocked(t, handler, "P001") {
		t.Fatal("Expected block on the same calendar day")
	}

	// Three hours later it is the next local day; the gate reopens even
	// though fewer than 24 hours passed.
	handler.now = func() time.Time { return day1.Add(3 * time.Hour) }
	if checkBlocked(t, handler, "P001") {
		t.Error("Expected gate to reopen on the next calendar day")
	}
}

func TestDailyStatusCompletionWithoutStart(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewDailyHandler(db, cfg)

	realID := testutil.CreateTestUser(t, db, "P001", "pw123456", "")

	// Legacy mark-complete with no started row: 200, but a no-op
	w := postJSON(t, handler.Status, "/api/daily/status", models.DailyStatusRequest{
		UserID: "P001", IsFinished: true, FeatureType: "breathe",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	if n := testutil.CountRows(t, db, "daily_usage", "user_id", realID); n != 0 {
		t.Errorf("Expected 0 usage rows after no-op completion, got %d", n)
	}
	if checkBlocked(t, handler, "P001") {
		t.Error("Expected user to stay unblocked after no-op completion")
	}
}

func TestDailyStatusFinishesLatestStart(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	loc := cfg.Location()

	realID := testutil.CreateTestUser(t, db, "P001", "pw123456", "")

	handler := NewDailyHandler(db, cfg)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, loc)

	// Two tabs started the same feature; both rows are kept
	handler.now = func() time.Time { return base }
	postJSON(t, handler.Status, "/api/daily/status", models.DailyStatusRequest{
		UserID: "P001", IsFinished: false, FeatureType: "breathe",
	})
	handler.now = func() time.Time { return base.Add(time.Minute) }
	postJSON(t, handler.Status, "/api/daily/status", models.DailyStatusRequest{
		UserID: "P001", IsFinished: false, FeatureType: "breathe",
	})

	if n := testutil.CountRows(t, db, "daily_usage", "user_id", realID); n != 2 {
		t.Fatalf("Expected 2 started rows, got %d", n)
	}

	postJSON(t, handler.Status, "/api/daily/status", models.DailyStatusRequest{
		UserID: "P001", IsFinished: true, FeatureType: "breathe",
	})

	// Only the most recent start is finished; the stale row stays open
	var finished int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM daily_usage WHERE user_id = $1 AND is_finished = $2
	`, realID, true).Scan(&finished)
	if err != nil {
		t.Fatalf("Failed to count finished rows: %v", err)
	}
	if finished != 1 {
		t.Errorf("Expected exactly 1 finished row, got %d", finished)
	}
}

func TestCompleteCycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewDailyHandler(db, cfg)

	realID := testutil.CreateTestUser(t, db, "P001", "pw123456", "")

	postJSON(t, handler.Status, "/api/daily/status", models.DailyStatusRequest{
		UserID: "P001", IsFinished: false, FeatureType: "breathe",
	})

	complete := models.CompleteCycleRequest{
		UserID: "P001", CycleID: "cycle-abc", FeatureType: "breathe", NewTrial: 2,
	}

	w := postJSON(t, handler.Complete, "/api/daily/complete", complete)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	var resp models.CompleteCycleResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Trial != 2 || resp.AlreadyApplied {
		t.Errorf("Expected trial=2 alreadyApplied=false, got trial=%d alreadyApplied=%v", resp.Trial, resp.AlreadyApplied)
	}

	// The started row was finished and stamped with the cycle ID
	var trial int
	if err := db.QueryRow(`SELECT trial FROM user_progress WHERE user_id = $1`, realID).Scan(&trial); err != nil {
		t.Fatalf("Failed to read progress: %v", err)
	}
	if trial != 2 {
		t.Errorf("Expected stored trial 2, got %d", trial)
	}
	if n := testutil.CountRows(t, db, "daily_usage", "cycle_id", "cycle-abc"); n != 1 {
		t.Errorf("Expected 1 row with cycle ID, got %d", n)
	}
	if !checkBlocked(t, handler, "P001") {
		t.Error("Expected block after completed cycle")
	}

	// Replay with the same cycle ID: reported as applied, nothing advances
	w = postJSON(t, handler.Complete, "/api/daily/complete", complete)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 on replay, got %d. Body: %s", w.Code, w.Body.String())
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode replay response: %v", err)
	}
	if resp.Trial != 2 || !resp.AlreadyApplied {
		t.Errorf("Expected trial=2 alreadyApplied=true, got trial=%d alreadyApplied=%v", resp.Trial, resp.AlreadyApplied)
	}
	if n := testutil.CountRows(t, db, "daily_usage", "user_id", realID); n != 1 {
		t.Errorf("Expected 1 usage row after replay, got %d", n)
	}
}

func TestCompleteCycleWithoutStart(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewDailyHandler(db, cfg)

	realID := testutil.CreateTestUser(t, db, "P001", "pw123456", "")

	// No started row (lost start marker): the completion still lands and
	// the gate still closes for today.
	w := postJSON(t, handler.Complete, "/api/daily/complete", models.CompleteCycleRequest{
		UserID: "P001", CycleID: "cycle-xyz", FeatureType: "breathe", NewTrial: 2,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	if n := testutil.CountRows(t, db, "daily_usage", "user_id", realID); n != 1 {
		t.Errorf("Expected 1 self-healed usage row, got %d", n)
	}
	if !checkBlocked(t, handler, "P001") {
		t.Error("Expected block after self-healed completion")
	}
}

func TestCompleteCycleValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewDailyHandler(db, cfg)

	testutil.CreateTestUser(t, db, "P001", "pw123456", "")

	tests := []struct {
		name           string
		requestBody    models.CompleteCycleRequest
		expectedStatus int
	}{
		{
			name:           "missing cycleId",
			requestBody:    models.CompleteCycleRequest{UserID: "P001", NewTrial: 2},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing userId",
			requestBody:    models.CompleteCycleRequest{CycleID: "c1", NewTrial: 2},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "zero trial",
			requestBody:    models.CompleteCycleRequest{UserID: "P001", CycleID: "c1", NewTrial: 0},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown user",
			requestBody:    models.CompleteCycleRequest{UserID: "GHOST", CycleID: "c1", NewTrial: 2},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, handler.Complete, "/api/daily/complete", tt.requestBody)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
