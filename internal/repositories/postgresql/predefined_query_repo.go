// internal/repositories/postgresql/predefined_query_repo.go
package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/database"
	"github.com/brandlens/brandlens-workflows/internal/models"
)

// PredefinedQueryRepo is the PostgreSQL implementation of PredefinedQueryRepository.
type PredefinedQueryRepo struct {
	db *database.Client
}

// NewPredefinedQueryRepo creates a new predefined query repository.
func NewPredefinedQueryRepo(db *database.Client) *PredefinedQueryRepo {
	return &PredefinedQueryRepo{db: db}
}

func (r *PredefinedQueryRepo) ListActiveByClient(ctx context.Context, clientID uuid.UUID) ([]*models.PredefinedQuery, error) {
	var queries []*models.PredefinedQuery
	query := `
		SELECT predefined_query_id, client_id, query_text, category, order_index, is_active, created_at
		FROM predefined_queries
		WHERE client_id = $1 AND is_active = true
		ORDER BY order_index, created_at
	`
	if err := r.db.DB.SelectContext(ctx, &queries, query, clientID); err != nil {
		return nil, fmt.Errorf("failed to list predefined queries: %w", err)
	}
	return queries, nil
}
