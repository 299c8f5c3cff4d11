// internal/repositories/postgresql/api_usage_repo.go
package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/database"
	"github.com/brandlens/brandlens-workflows/internal/models"
)

// APIUsageRepo is the PostgreSQL implementation of APIUsageRepository.
type APIUsageRepo struct {
	db *database.Client
}

// NewAPIUsageRepo creates a new API usage repository.
func NewAPIUsageRepo(db *database.Client) *APIUsageRepo {
	return &APIUsageRepo{db: db}
}

func (r *APIUsageRepo) Create(ctx context.Context, usage *models.APIUsage) error {
	query := `
		INSERT INTO api_usage (api_usage_id, client_id, query_run_id, provider, model, input_tokens, output_tokens, total_cost, status, created_at)
		VALUES (:api_usage_id, :client_id, :query_run_id, :provider, :model, :input_tokens, :output_tokens, :total_cost, :status, :created_at)
	`
	if _, err := r.db.DB.NamedExecContext(ctx, query, usage); err != nil {
		return fmt.Errorf("failed to create api usage: %w", err)
	}
	return nil
}

func (r *APIUsageRepo) TotalCostByClient(ctx context.Context, clientID uuid.UUID, days int) (float64, error) {
	var total float64
	query := `
		SELECT COALESCE(SUM(total_cost), 0)
		FROM api_usage
		WHERE client_id = $1 AND created_at >= NOW() - make_interval(days => $2)
	`
	if err := r.db.DB.GetContext(ctx, &total, query, clientID, days); err != nil {
		return 0, fmt.Errorf("failed to total api usage cost: %w", err)
	}
	return total, nil
}
