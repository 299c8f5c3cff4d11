// internal/repositories/interfaces/interfaces.go
package interfaces

import (
	"context"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
)

// ClientRepository manages tenant records.
type ClientRepository interface {
	GetByID(ctx context.Context, clientID uuid.UUID) (*models.Client, error)
	GetBySlug(ctx context.Context, slug string) (*models.Client, error)
	ListActive(ctx context.Context) ([]*models.Client, error)
}

// CompetitorRepository manages tracked competitors per client.
type CompetitorRepository interface {
	ListActiveByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Competitor, error)
}

// PredefinedQueryRepository manages the saved queries a client re-runs.
type PredefinedQueryRepository interface {
	ListActiveByClient(ctx context.Context, clientID uuid.UUID) ([]*models.PredefinedQuery, error)
}

// QueryRunRepository manages run lifecycle records.
type QueryRunRepository interface {
	Create(ctx context.Context, run *models.QueryRun) error
	GetByID(ctx context.Context, queryRunID uuid.UUID) (*models.QueryRun, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]*models.QueryRun, error)
	UpdateStatus(ctx context.Context, queryRunID uuid.UUID, status string) error
	IncrementCompleted(ctx context.Context, queryRunID uuid.UUID) error
	MarkCompleted(ctx context.Context, queryRunID uuid.UUID, status string) error
}

// QueryResultRepository stores analyzed responses.
type QueryResultRepository interface {
	Create(ctx context.Context, result *models.QueryResult) error
	ListByRun(ctx context.Context, queryRunID uuid.UUID) ([]*models.QueryResult, error)
	ListByClientSince(ctx context.Context, clientID uuid.UUID, days int) ([]*models.QueryResult, error)
}

// APIUsageRepository records per-call token and cost usage.
type APIUsageRepository interface {
	Create(ctx context.Context, usage *models.APIUsage) error
	TotalCostByClient(ctx context.Context, clientID uuid.UUID, days int) (float64, error)
}
