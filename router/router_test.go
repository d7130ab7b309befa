// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blesslab/bless-server/models"
	"github.com/blesslab/bless-server/testutil"
)

func TestRouterRoutes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg, nil)

	testutil.CreateTestUser(t, db, "P001", "pw123456", "")

	tests := []struct {
		name           string
		method         string
		path           string
		body           interface{}
		expectedStatus int
	}{
		{
			name:           "health check",
			method:         "GET",
			path:           "/health",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "root banner",
			method:         "GET",
			path:           "/",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "daily check",
			method:         "POST",
			path:           "/api/daily/check",
			body:           models.DailyCheckRequest{UserID: "P001"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "progress read",
			method:         "GET",
			path:           "/api/progress?userId=P001",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "method mismatch rejected",
			method:         "GET",
			path:           "/api/daily/check",
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name:           "feedback without a relay",
			method:         "POST",
			path:           "/api/feedback",
			body:           models.FeedbackRequest{UserID: "P001", Text: "練習完心情變好了"},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "missing static asset",
			method:         "GET",
			path:           "/experimental/missing/nothing.html",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != nil {
				payload, err := json.Marshal(tt.body)
				if err != nil {
					t.Fatalf("Failed to marshal request body: %v", err)
				}
				req = httptest.NewRequest(tt.method, tt.path, bytes.NewReader(payload))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
