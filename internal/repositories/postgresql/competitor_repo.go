// internal/repositories/postgresql/competitor_repo.go
package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/database"
	"github.com/brandlens/brandlens-workflows/internal/models"
)

// CompetitorRepo is the PostgreSQL implementation of CompetitorRepository.
type CompetitorRepo struct {
	db *database.Client
}

// NewCompetitorRepo creates a new competitor repository.
func NewCompetitorRepo(db *database.Client) *CompetitorRepo {
	return &CompetitorRepo{db: db}
}

func (r *CompetitorRepo) ListActiveByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Competitor, error) {
	var competitors []*models.Competitor
	query := `
		SELECT competitor_id, client_id, name, aliases, website, is_active, created_at
		FROM competitors
		WHERE client_id = $1 AND is_active = true
		ORDER BY created_at
	`
	if err := r.db.DB.SelectContext(ctx, &competitors, query, clientID); err != nil {
		return nil, fmt.Errorf("failed to list competitors: %w", err)
	}
	return competitors, nil
}
