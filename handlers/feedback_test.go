// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/blesslab/bless-server/llm"
	"github.com/blesslab/bless-server/models"
)

// fakeRelay stands in for the LLM client and counts outbound calls.
type fakeRelay struct {
	reply string
	err   error
	calls int
}

func (f *fakeRelay) Feedback(ctx context.Context, text string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestFeedback(t *testing.T) {
	tests := []struct {
		name           string
		relay          *fakeRelay
		requestBody    models.FeedbackRequest
		expectedStatus int
		expectedCalls  int
	}{
		{
			name:           "successful relay",
			relay:          &fakeRelay{reply: "很棒的反思，繼續保持。"},
			requestBody:    models.FeedbackRequest{UserID: "P001", Text: "今天練習呼吸之後覺得平靜多了"},
			expectedStatus: http.StatusOK,
			expectedCalls:  1,
		},
		{
			// Validation happens before any outbound call
			name:           "empty text",
			relay:          &fakeRelay{reply: "unused"},
			requestBody:    models.FeedbackRequest{UserID: "P001", Text: ""},
			expectedStatus: http.StatusBadRequest,
			expectedCalls:  0,
		},
		{
			name:           "whitespace-only text",
			relay:          &fakeRelay{reply: "unused"},
			requestBody:    models.FeedbackRequest{UserID: "P001", Text: "   \n\t "},
			expectedStatus: http.StatusBadRequest,
			expectedCalls:  0,
		},
		{
			name:           "upstream timeout maps to 504",
			relay:          &fakeRelay{err: fmt.Errorf("generate feedback: %w", llm.ErrTimeout)},
			requestBody:    models.FeedbackRequest{UserID: "P001", Text: "有些想法想分享"},
			expectedStatus: http.StatusGatewayTimeout,
			expectedCalls:  1,
		},
		{
			name:           "upstream failure maps to 502",
			relay:          &fakeRelay{err: fmt.Errorf("generate feedback: %w", llm.ErrService)},
			requestBody:    models.FeedbackRequest{UserID: "P001", Text: "有些想法想分享"},
			expectedStatus: http.StatusBadGateway,
			expectedCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewFeedbackHandler(tt.relay)

			w := postJSON(t, handler.Feedback, "/api/feedback", tt.requestBody)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.relay.calls != tt.expectedCalls {
				t.Errorf("Expected %d outbound calls, got %d", tt.expectedCalls, tt.relay.calls)
			}

			if tt.expectedStatus == http.StatusOK {
				var resp models.FeedbackResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if resp.Feedback != tt.relay.reply {
					t.Errorf("Expected feedback '%s', got '%s'", tt.relay.reply, resp.Feedback)
				}
			}
		})
	}
}

func TestFeedbackUnconfigured(t *testing.T) {
	handler := NewFeedbackHandler(nil)

	w := postJSON(t, handler.Feedback, "/api/feedback", models.FeedbackRequest{
		UserID: "P001", Text: "今天心情不錯",
	})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503 without a configured relay, got %d", w.Code)
	}
}
