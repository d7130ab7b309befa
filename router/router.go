// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/blesslab/bless-server/cliparse"
	"github.com/blesslab/bless-server/handlers"
	"github.com/blesslab/bless-server/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, relay handlers.FeedbackRelay) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	dailyHandler := handlers.NewDailyHandler(db, cfg)
	progressHandler := handlers.NewProgressHandler(db, cfg)
	assessmentHandler := handlers.NewAssessmentHandler(db, cfg)
	activityHandler := handlers.NewActivityHandler(db, cfg)
	contentHandler := handlers.NewContentHandler(cfg)
	feedbackHandler := handlers.NewFeedbackHandler(relay)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Authentication
	mux.HandleFunc("POST /api/login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("POST /api/logout", middleware.WithLogging(authHandler.Logout))

	// Daily gate
	mux.HandleFunc("POST /api/daily/check", middleware.WithLogging(dailyHandler.Check))
	mux.HandleFunc("POST /api/daily/start", middleware.WithLogging(dailyHandler.Start))
	mux.HandleFunc("POST /api/daily/status", middleware.WithLogging(dailyHandler.Status))
	mux.HandleFunc("POST /api/daily/complete", middleware.WithLogging(dailyHandler.Complete))

	// Progress and task assignment
	mux.HandleFunc("GET /api/progress", middleware.WithLogging(progressHandler.Get))
	mux.HandleFunc("POST /api/progress/update", middleware.WithLogging(progressHandler.Update))
	mux.HandleFunc("GET /api/getTask", middleware.WithLogging(progressHandler.GetTask))

	// Assessments and artifacts
	mux.HandleFunc("POST /api/avi/save", middleware.WithLogging(assessmentHandler.SaveAVI))
	mux.HandleFunc("POST /api/writing/save", middleware.WithLogging(assessmentHandler.SaveWriting))
	mux.HandleFunc("POST /api/mood/save", middleware.WithLogging(assessmentHandler.SaveMood))

	// Activity timing
	mux.HandleFunc("POST /api/activity/start", middleware.WithLogging(activityHandler.Start))
	mux.HandleFunc("POST /api/activity/end", middleware.WithLogging(activityHandler.End))

	// Feedback relay
	mux.HandleFunc("POST /api/feedback", middleware.WithLogging(feedbackHandler.Feedback))

	// Daily content dispatch
	mux.HandleFunc("GET /api/daily-article", middleware.WithLogging(contentHandler.DailyArticle))
	mux.HandleFunc("GET /api/daily-video", middleware.WithLogging(contentHandler.DailyVideo))

	// Static exercise assets
	mux.Handle("GET /experimental/", http.StripPrefix("/experimental/",
		http.FileServer(http.Dir(cfg.StaticDir))))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bless-server API v1"))
	})

	return mux
}
