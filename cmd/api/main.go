package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/pocketledger/internal/aggregate"
	"github.com/dvloznov/pocketledger/internal/api/handlers"
	"github.com/dvloznov/pocketledger/internal/api/middleware"
	"github.com/dvloznov/pocketledger/internal/category"
	"github.com/dvloznov/pocketledger/internal/config"
	"github.com/dvloznov/pocketledger/internal/ledger"
	"github.com/dvloznov/pocketledger/internal/logger"
	"github.com/dvloznov/pocketledger/internal/pipeline"
)

func main() {
	// .env is optional; real env vars win either way
	_ = godotenv.Load()

	log := logger.New()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Flag overrides env for the port, matching how the server is run in
	// development
	port := flag.String("port", cfg.Port, "HTTP server port")
	flag.Parse()

	rules, err := loadRules(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load categorization rules")
	}

	store := ledger.NewStore(cfg.DataDir)
	agg := aggregate.New(store)
	deps := &pipeline.Deps{
		Ledger:     store,
		Rules:      rules,
		Journal:    pipeline.NewJournal(cfg.JournalPath()),
		ArchiveDir: cfg.ArchiveDir,
		Log:        log,
	}

	// Initialize handlers
	aggregatesHandler := handlers.NewAggregatesHandler(agg, log)
	investmentsHandler := handlers.NewInvestmentsHandler(store, log)
	ingestHandler := handlers.NewIngestHandler(deps, cfg.InboxDir, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/summary", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			aggregatesHandler.GetSummary(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/spending", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			aggregatesHandler.GetSpending(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/income", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			aggregatesHandler.GetIncome(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/savings", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			aggregatesHandler.GetSavings(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/assets", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			aggregatesHandler.GetAssets(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/investments", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			investmentsHandler.ListInvestments(w, r)
		case http.MethodPost:
			investmentsHandler.RecordInvestment(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/ingest", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			ingestHandler.IngestInbox(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Str("data_dir", cfg.DataDir).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func loadRules(cfg *config.Config) (*category.Engine, error) {
	if cfg.RulesFile != "" {
		return category.LoadFromFile(cfg.RulesFile)
	}
	return category.LoadEmbedded()
}
