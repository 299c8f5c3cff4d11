// main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/inngest/inngestgo"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/brandlens/brandlens-workflows/internal/analysis"
	"github.com/brandlens/brandlens-workflows/internal/config"
	"github.com/brandlens/brandlens-workflows/internal/database"
	"github.com/brandlens/brandlens-workflows/services"
	"github.com/brandlens/brandlens-workflows/workflows"
)

// createDatabaseClient creates a database client using our config structure
func createDatabaseClient(ctx context.Context, cfg config.DatabaseConfig) (*database.Client, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	db, err := sqlx.ConnectContext(ctx, "postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &database.Client{DB: db}, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("dev.env"); err != nil {
			log.Printf("Note: No .env or dev.env file loaded: %v", err)
		} else {
			log.Printf("Loaded dev.env file for local development")
		}
	} else {
		log.Printf("Loaded .env file")
	}

	cfg := config.Load()

	ctx := context.Background()

	dbClient, err := createDatabaseClient(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbClient.Close()
	log.Printf("Successfully connected to database")

	repoManager := services.NewRepositoryManager(dbClient)
	log.Printf("Repository manager initialized")

	if cfg.Environment == "development" || cfg.Environment == "" {
		os.Unsetenv("INNGEST_SIGNING_KEY")
		cfg.InngestSigningKey = ""
		log.Printf("Running in development mode - signing key verification disabled")
	}

	// Warm the sentence tokenizer and sentiment scorer before serving traffic
	if err := analysis.Init(); err != nil {
		log.Printf("Warning: sentence tokenizer unavailable, using fallback segmentation: %v", err)
	}
	log.Printf("Analysis pipeline initialized")

	// Initialize services with repository manager and proper dependencies
	costService := services.NewCostService()
	providers := map[string]services.AIProvider{}
	if cfg.OpenAIAPIKey != "" {
		providers["OpenAI"] = services.NewOpenAIProvider(cfg, costService)
	}
	if cfg.AnthropicAPIKey != "" {
		providers["Anthropic"] = services.NewAnthropicProvider(cfg, costService)
	}
	if cfg.GeminiAPIKey != "" {
		providers["Gemini"] = services.NewGeminiProvider(cfg, costService)
	}
	if cfg.PerplexityAPIKey != "" {
		providers["Perplexity"] = services.NewPerplexityProvider(cfg, costService)
	}
	if len(providers) == 0 {
		log.Fatalf("No AI providers configured - set at least one provider API key")
	}
	log.Printf("%d AI providers configured", len(providers))

	clientService := services.NewClientService(repoManager)
	queryRunnerService := services.NewQueryRunnerService(cfg, repoManager, clientService, providers)
	analyticsService := services.NewAnalyticsService(repoManager)

	// Create Inngest client
	client, err := inngestgo.NewClient(
		inngestgo.ClientOpts{
			AppID:    "brandlens-workflows",
			EventKey: inngestgo.StrPtr(cfg.InngestEventKey),
			Env:      inngestgo.StrPtr(cfg.Environment),
		},
	)
	if err != nil {
		log.Fatalf("Failed to create Inngest client: %v", err)
	}

	// Initialize and register workflows
	log.Printf("Initializing and registering workflows...")

	runProcessor := workflows.NewRunProcessor(clientService, queryRunnerService, analyticsService, cfg)
	runProcessor.SetClient(client)
	runProcessor.ProcessRun()

	scheduledProcessor := workflows.NewScheduledProcessor(clientService)
	scheduledProcessor.SetClient(client)
	scheduledProcessor.DailyRunProcessor()

	log.Printf("All processors initialized and functions registered")

	h := client.Serve()
	mux := http.NewServeMux()
	mux.Handle("/api/inngest", h)

	// Root endpoint for ALB health check
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"service":"brandlens-workflows","status":"running"}`))
	})

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	mux.HandleFunc("POST /test/trigger-run", func(w http.ResponseWriter, r *http.Request) {
		clientID := r.URL.Query().Get("client_id")
		if clientID == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"client_id query parameter required"}`))
			return
		}
		evt := inngestgo.Event{
			Name: "run.process",
			Data: map[string]interface{}{"client_id": clientID, "run_type": "predefined", "triggered_by": "manual_test"},
		}
		result, err := client.Send(r.Context(), evt)
		if err != nil {
			log.Printf("Failed to send test event: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(fmt.Sprintf(`{"error":"Failed to send event: %v"}`, err)))
			return
		}
		log.Printf("Test event sent successfully: %+v", result)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(fmt.Sprintf(`{"status":"success","message":"Run triggered for client %s"}`, clientID)))
	})

	// Read-only reporting endpoints
	mux.HandleFunc("GET /api/runs/{id}/summary", func(w http.ResponseWriter, r *http.Request) {
		runID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			http.Error(w, `{"error":"invalid run id"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, func() (any, error) { return analyticsService.GetRunSummary(r.Context(), runID) })
	})
	mux.HandleFunc("GET /api/runs/{id}/gaps", func(w http.ResponseWriter, r *http.Request) {
		runID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			http.Error(w, `{"error":"invalid run id"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, func() (any, error) { return analyticsService.GetGapAnalysis(r.Context(), runID) })
	})
	mux.HandleFunc("GET /api/runs/{id}/competitors", func(w http.ResponseWriter, r *http.Request) {
		runID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			http.Error(w, `{"error":"invalid run id"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, func() (any, error) { return analyticsService.GetCompetitorComparison(r.Context(), runID) })
	})
	mux.HandleFunc("GET /api/runs/{id}/citations", func(w http.ResponseWriter, r *http.Request) {
		runID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			http.Error(w, `{"error":"invalid run id"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, func() (any, error) { return analyticsService.GetCitationAnalysis(r.Context(), runID) })
	})
	mux.HandleFunc("GET /api/clients/{id}/time-series", func(w http.ResponseWriter, r *http.Request) {
		clientID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			http.Error(w, `{"error":"invalid client id"}`, http.StatusBadRequest)
			return
		}
		days := 30
		if d := r.URL.Query().Get("days"); d != "" {
			if parsed, err := strconv.Atoi(d); err == nil && parsed >= 1 && parsed <= 365 {
				days = parsed
			}
		}
		writeJSON(w, func() (any, error) { return analyticsService.GetTimeSeries(r.Context(), clientID, days) })
	})
	mux.HandleFunc("GET /api/clients/{id}/dashboard", func(w http.ResponseWriter, r *http.Request) {
		clientID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			http.Error(w, `{"error":"invalid client id"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, func() (any, error) { return analyticsService.GetDashboardStats(r.Context(), clientID) })
	})

	port := cfg.Port
	log.Printf("Starting BrandLens Workflows service on port %s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}

func writeJSON(w http.ResponseWriter, load func() (any, error)) {
	payload, err := load()
	if err != nil {
		log.Printf("Request failed: %v", err)
		http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
