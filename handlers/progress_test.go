// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blesslab/bless-server/models"
	"github.com/blesslab/bless-server/testutil"
)

func getProgress(t *testing.T, handler *ProgressHandler, userID string) (*httptest.ResponseRecorder, models.ProgressResponse) {
	t.Helper()

	req := httptest.NewRequest("GET", "/api/progress?userId="+userID, nil)
	w := httptest.NewRecorder()
	handler.Get(w, req)

	var resp models.ProgressResponse
	if w.Code == http.StatusOK {
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode progress response: %v", err)
		}
	}
	return w, resp
}

func TestGetProgress(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewProgressHandler(db, cfg)

	realID := testutil.CreateTestUser(t, db, "P001", "pw123456", "")

	// First read initializes to trial 1
	w, resp := getProgress(t, handler, "P001")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	if resp.Trial != 1 {
		t.Errorf("Expected initial trial 1, got %d", resp.Trial)
	}

	// Second read does not re-initialize or duplicate the row
	_, resp = getProgress(t, handler, "P001")
	if resp.Trial != 1 {
		t.Errorf("Expected trial 1 on repeat read, got %d", resp.Trial)
	}
	if n := testutil.CountRows(t, db, "user_progress", "user_id", realID); n != 1 {
		t.Errorf("Expected 1 progress row, got %d", n)
	}

	// Missing and unknown users
	req := httptest.NewRequest("GET", "/api/progress", nil)
	w2 := httptest.NewRecorder()
	handler.Get(w2, req)
	if w2.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without userId, got %d", w2.Code)
	}

	w, _ = getProgress(t, handler, "GHOST")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown user, got %d", w.Code)
	}
}

func TestUpdateProgress(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewProgressHandler(db, cfg)

	testutil.CreateTestUser(t, db, "P001", "pw123456", "")

	tests := []struct {
		name           string
		requestBody    models.ProgressUpdateRequest
		expectedStatus int
		expectedTrial  int
	}{
		{
			name:           "first update creates the row",
			requestBody:    models.ProgressUpdateRequest{UserID: "P001", NewTrial: 3},
			expectedStatus: http.StatusOK,
			expectedTrial:  3,
		},
		{
			name:           "overwrite wins even when lower",
			requestBody:    models.ProgressUpdateRequest{UserID: "P001", NewTrial: 2},
			expectedStatus: http.StatusOK,
			expectedTrial:  2,
		},
		{
			name:           "zero trial rejected",
			requestBody:    models.ProgressUpdateRequest{UserID: "P001", NewTrial: 0},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown user",
			requestBody:    models.ProgressUpdateRequest{UserID: "GHOST", NewTrial: 2},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, handler.Update, "/api/progress/update", tt.requestBody)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.expectedStatus == http.StatusOK {
				_, resp := getProgress(t, handler, "P001")
				if resp.Trial != tt.expectedTrial {
					t.Errorf("Expected trial %d after update, got %d", tt.expectedTrial, resp.Trial)
				}
			}
		})
	}
}

func TestGetTask(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewProgressHandler(db, cfg)

	testutil.SeedTask(t, db, "P001", 1, "breathe")
	testutil.SeedTask(t, db, "P001", 2, "loosen")

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedTask   string
	}{
		{
			name:           "assigned task",
			query:          "subject=P001&trial=1",
			expectedStatus: http.StatusOK,
			expectedTask:   "breathe",
		},
		{
			name:           "second trial",
			query:          "subject=P001&trial=2",
			expectedStatus: http.StatusOK,
			expectedTask:   "loosen",
		},
		{
			name:           "unassigned trial is a hard 404",
			query:          "subject=P001&trial=99",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unknown subject",
			query:          "subject=NOBODY&trial=1",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "missing trial",
			query:          "subject=P001",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "non-integer trial",
			query:          "subject=P001&trial=abc",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/getTask?"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.GetTask(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.expectedStatus == http.StatusOK {
				var resp models.TaskResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if resp.Task != tt.expectedTask {
					t.Errorf("Expected task '%s', got '%s'", tt.expectedTask, resp.Task)
				}
			}
		})
	}
}
