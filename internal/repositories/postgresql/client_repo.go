// internal/repositories/postgresql/client_repo.go
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/database"
	"github.com/brandlens/brandlens-workflows/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ClientRepo is the PostgreSQL implementation of ClientRepository.
type ClientRepo struct {
	db *database.Client
}

// NewClientRepo creates a new client repository.
func NewClientRepo(db *database.Client) *ClientRepo {
	return &ClientRepo{db: db}
}

const clientColumns = `client_id, name, slug, brand_name, brand_aliases, industry, is_active, created_at, updated_at`

func (r *ClientRepo) GetByID(ctx context.Context, clientID uuid.UUID) (*models.Client, error) {
	var client models.Client
	query := fmt.Sprintf(`SELECT %s FROM clients WHERE client_id = $1`, clientColumns)
	if err := r.db.DB.GetContext(ctx, &client, query, clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client %s: %w", clientID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &client, nil
}

func (r *ClientRepo) GetBySlug(ctx context.Context, slug string) (*models.Client, error) {
	var client models.Client
	query := fmt.Sprintf(`SELECT %s FROM clients WHERE slug = $1`, clientColumns)
	if err := r.db.DB.GetContext(ctx, &client, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client %q: %w", slug, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get client by slug: %w", err)
	}
	return &client, nil
}

func (r *ClientRepo) ListActive(ctx context.Context) ([]*models.Client, error) {
	var clients []*models.Client
	query := fmt.Sprintf(`SELECT %s FROM clients WHERE is_active = true ORDER BY name`, clientColumns)
	if err := r.db.DB.SelectContext(ctx, &clients, query); err != nil {
		return nil, fmt.Errorf("failed to list active clients: %w", err)
	}
	return clients, nil
}
