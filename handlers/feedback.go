// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/blesslab/bless-server/llm"
	"github.com/blesslab/bless-server/middleware"
	"github.com/blesslab/bless-server/models"
)

// FeedbackRelay is the slice of llm.Client the handler needs; tests swap in
// a fake without standing up an API server.
type FeedbackRelay interface {
	Feedback(ctx context.Context, text string) (string, error)
}

type FeedbackHandler struct {
	relay FeedbackRelay
}

// NewFeedbackHandler creates the relay handler. relay may be nil when no
// API key is configured; the endpoint then reports 503.
func NewFeedbackHandler(relay FeedbackRelay) *FeedbackHandler {
	return &FeedbackHandler{relay: relay}
}

// Feedback handles POST /api/feedback
// Empty text is rejected before any outbound call. A timeout maps to 504,
// any other upstream failure to 502. No retry either way.
func (h *FeedbackHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req models.FeedbackRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "text is required")
		return
	}

	if h.relay == nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Feedback is not configured")
		return
	}

	feedback, err := h.relay.Feedback(r.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, llm.ErrTimeout):
			slog.Warn("feedback relay timed out", "userid", req.UserID)
			middleware.ErrorResponse(w, http.StatusGatewayTimeout, "Feedback generation timed out")
		default:
			slog.Error("feedback relay failed", "error", err, "userid", req.UserID)
			middleware.ErrorResponse(w, http.StatusBadGateway, "Feedback generation failed")
		}
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.FeedbackResponse{Feedback: feedback})
}
