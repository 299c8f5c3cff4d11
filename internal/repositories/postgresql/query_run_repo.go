// internal/repositories/postgresql/query_run_repo.go
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

// QueryRunRepo is the PostgreSQL implementation of QueryRunRepository.
type QueryRunRepo struct {
	db *database.Client
}

// NewQueryRunRepo creates a new query run repository.
func NewQueryRunRepo(db *database.Client) *QueryRunRepo {
	return &QueryRunRepo{db: db}
}

func (r *QueryRunRepo) Create(ctx context.Context, run *models.QueryRun) error {
	query := `
		INSERT INTO query_runs (query_run_id, client_id, name, run_type, status, total_queries, completed_queries, created_at)
		VALUES (:query_run_id, :client_id, :name, :run_type, :status, :total_queries, :completed_queries, :created_at)
	`
	if _, err := r.db.DB.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("failed to create query run: %w", err)
	}
	return nil
}

func (r *QueryRunRepo) GetByID(ctx context.Context, queryRunID uuid.UUID) (*models.QueryRun, error) {
	var run models.QueryRun
	query := `
		SELECT query_run_id, client_id, name, run_type, status, total_queries, completed_queries, created_at, completed_at
		FROM query_runs
		WHERE query_run_id = $1
	`
	if err := r.db.DB.GetContext(ctx, &run, query, queryRunID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("query run %s: %w", queryRunID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get query run: %w", err)
	}
	return &run, nil
}

func (r *QueryRunRepo) ListByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]*models.QueryRun, error) {
	var runs []*models.QueryRun
	query := `
		SELECT query_run_id, client_id, name, run_type, status, total_queries, completed_queries, created_at, completed_at
		FROM query_runs
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	if err := r.db.DB.SelectContext(ctx, &runs, query, clientID, limit); err != nil {
		return nil, fmt.Errorf("failed to list query runs: %w", err)
	}
	return runs, nil
}

func (r *QueryRunRepo) UpdateStatus(ctx context.Context, queryRunID uuid.UUID, status string) error {
	query := `UPDATE query_runs SET status = $2 WHERE query_run_id = $1`
	if _, err := r.db.DB.ExecContext(ctx, query, queryRunID, status); err != nil {
		return fmt.Errorf("failed to update query run status: %w", err)
	}
	return nil
}

func (r *QueryRunRepo) IncrementCompleted(ctx context.Context, queryRunID uuid.UUID) error {
	query := `UPDATE query_runs SET completed_queries = completed_queries + 1 WHERE query_run_id = $1`
	if _, err := r.db.DB.ExecContext(ctx, query, queryRunID); err != nil {
		return fmt.Errorf("failed to increment completed queries: %w", err)
	}
	return nil
}

func (r *QueryRunRepo) MarkCompleted(ctx context.Context, queryRunID uuid.UUID, status string) error {
	query := `UPDATE query_runs SET status = $2, completed_at = NOW() WHERE query_run_id = $1`
	if _, err := r.db.DB.ExecContext(ctx, query, queryRunID, status); err != nil {
		return fmt.Errorf("failed to mark query run completed: %w", err)
	}
	return nil
}
