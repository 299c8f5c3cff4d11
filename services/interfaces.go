// services/interfaces.go
package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/jmoiron/sqlx"

	"github.com/brandlens/brandlens-workflows/internal/analysis"
	"github.com/brandlens/brandlens-workflows/internal/database"
	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/repositories/interfaces"
	"github.com/brandlens/brandlens-workflows/internal/repositories/postgresql"
)

// RepositoryManager manages all database repositories
type RepositoryManager struct {
	db                  *database.Client
	ClientRepo          interfaces.ClientRepository
	CompetitorRepo      interfaces.CompetitorRepository
	PredefinedQueryRepo interfaces.PredefinedQueryRepository
	QueryRunRepo        interfaces.QueryRunRepository
	QueryResultRepo     interfaces.QueryResultRepository
	APIUsageRepo        interfaces.APIUsageRepository
}

// NewRepositoryManager creates a new repository manager with all repositories
func NewRepositoryManager(db *database.Client) *RepositoryManager {
	return &RepositoryManager{
		db:                  db,
		ClientRepo:          postgresql.NewClientRepo(db),
		CompetitorRepo:      postgresql.NewCompetitorRepo(db),
		PredefinedQueryRepo: postgresql.NewPredefinedQueryRepo(db),
		QueryRunRepo:        postgresql.NewQueryRunRepo(db),
		QueryResultRepo:     postgresql.NewQueryResultRepo(db),
		APIUsageRepo:        postgresql.NewAPIUsageRepo(db),
	}
}

// BeginTx starts a database transaction
func (rm *RepositoryManager) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return rm.db.DB.BeginTxx(ctx, nil)
}

// AIProvider interface for different AI models
type AIProvider interface {
	GetProviderName() string
	RunQuery(ctx context.Context, query string) (*AIResponse, error)
}

// AIResponse contains the response from an AI provider
type AIResponse struct {
	Response     string
	InputTokens  int
	OutputTokens int
	Cost         float64
}

// CostService calculates API costs based on token usage
type CostService interface {
	CalculateCost(provider string, model string, inputTokens int, outputTokens int) float64
}

// ClientDetails contains everything needed to run and analyze queries for a client
type ClientDetails struct {
	Client      *models.Client
	Competitors []*models.Competitor
	Queries     []*models.PredefinedQuery
	Analyzer    *analysis.Analyzer
}

// ClientService loads client configuration and builds the analysis setup
type ClientService interface {
	GetClientDetails(ctx context.Context, clientID uuid.UUID) (*ClientDetails, error)
	ListActiveClients(ctx context.Context) ([]*models.Client, error)
}

// RunRequest describes one batch of queries to dispatch
type RunRequest struct {
	ClientID  uuid.UUID
	RunType   string   // "predefined" or "custom"
	Name      string   // optional run label
	Queries   []string // used for custom runs; predefined runs load from the database
	Providers []string // subset of configured providers; empty means all
}

// RunOutcome summarizes a completed run
type RunOutcome struct {
	QueryRunID   uuid.UUID
	TotalQueries int
	Completed    int
	Failed       int
	TotalCost    float64
	Status       string
}

// QueryRunnerService dispatches queries across providers and stores analyzed results
type QueryRunnerService interface {
	ExecuteRun(ctx context.Context, req *RunRequest) (*RunOutcome, error)
}

// AnalyticsService aggregates stored results into reporting views
type AnalyticsService interface {
	GetRunSummary(ctx context.Context, queryRunID uuid.UUID) (*RunSummary, error)
	GetGapAnalysis(ctx context.Context, queryRunID uuid.UUID) (*GapAnalysis, error)
	GetCompetitorComparison(ctx context.Context, queryRunID uuid.UUID) (*CompetitorComparison, error)
	GetCitationAnalysis(ctx context.Context, queryRunID uuid.UUID) (*CitationAnalysis, error)
	GetTimeSeries(ctx context.Context, clientID uuid.UUID, days int) (*TimeSeries, error)
	GetDashboardStats(ctx context.Context, clientID uuid.UUID) (*DashboardStats, error)
}

// GenerateSchema builds the JSON schema for structured provider output
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}
