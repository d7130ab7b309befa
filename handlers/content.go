// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/blesslab/bless-server/cliparse"
	"github.com/blesslab/bless-server/middleware"
	"github.com/blesslab/bless-server/models"
)

// Rotations for the educational stimulus content. The files live under the
// static asset directory; only the dispatch-by-day-index lives here.
var (
	dailyArticles = []string{"article1.html", "article2.html", "article3.html"}
	dailyVideos   = []string{"video1.mp4", "video2.mp4", "video3.mp4"}
)

type ContentHandler struct {
	cfg cliparse.Config

	now func() time.Time
}

func NewContentHandler(cfg cliparse.Config) *ContentHandler {
	return &ContentHandler{cfg: cfg, now: time.Now}
}

// dayIndex returns the requested day, defaulting to the current day of month.
func (h *ContentHandler) dayIndex(r *http.Request) int {
	if dayStr := r.URL.Query().Get("day"); dayStr != "" {
		if day, err := strconv.Atoi(dayStr); err == nil && day >= 0 {
			return day
		}
	}
	return h.now().In(h.cfg.Location()).Day()
}

// DailyArticle handles GET /api/daily-article
func (h *ContentHandler) DailyArticle(w http.ResponseWriter, r *http.Request) {
	day := h.dayIndex(r)
	url := "/experimental/articles/" + dailyArticles[day%len(dailyArticles)]
	middleware.JSONResponse(w, http.StatusOK, models.ContentResponse{Day: day, URL: url})
}

// DailyVideo handles GET /api/daily-video
func (h *ContentHandler) DailyVideo(w http.ResponseWriter, r *http.Request) {
	day := h.dayIndex(r)
	url := "/experimental/videos/" + dailyVideos[day%len(dailyVideos)]
	middleware.JSONResponse(w, http.StatusOK, models.ContentResponse{Day: day, URL: url})
}
