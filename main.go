package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/blesslab/bless-server/cliparse"
	"github.com/blesslab/bless-server/db"
	"github.com/blesslab/bless-server/handlers"
	"github.com/blesslab/bless-server/llm"
	"github.com/blesslab/bless-server/middleware"
	"github.com/blesslab/bless-server/router"
)

func main() {
	var err error

	// Load .env if present; real env always wins
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	driver := "postgres"
	if cfg.DatabaseType == "sqlite" {
		driver = "sqlite"
	}
	dbConn, err := sql.Open(driver, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "driver", driver)

	// Feedback relay is optional: without a key the endpoint reports 503
	var relay handlers.FeedbackRelay
	if cfg.OpenAIKey != "" {
		client, err := llm.NewClient(cfg.OpenAIKey, cfg.OpenAIBase)
		if err != nil {
			slog.Error("feedback relay setup failed", "error", err)
			os.Exit(1)
		}
		relay = client
	} else {
		slog.Warn("OPENAI_API_KEY not set; feedback relay disabled")
	}

	// Create router
	mux := router.NewRouter(dbConn, cfg, relay)

	// Create server
	server := http.Server{
		Handler: middleware.CSP(middleware.CORS(mux)),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "timezone", cfg.Timezone)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
