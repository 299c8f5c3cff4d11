// internal/repositories/postgresql/query_result_repo.go
package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/database"
	"github.com/brandlens/brandlens-workflows/internal/models"
)

// QueryResultRepo is the PostgreSQL implementation of QueryResultRepository.
type QueryResultRepo struct {
	db *database.Client
}

// NewQueryResultRepo creates a new query result repository.
func NewQueryResultRepo(db *database.Client) *QueryResultRepo {
	return &QueryResultRepo{db: db}
}

const queryResultColumns = `query_result_id, query_run_id, query_text, source, response, response_time,
	brand_mentioned, brand_position, brand_sentence_num, brand_position_pct,
	context_type, context_sentiment, competitors_found, sources_cited,
	brand_url_cited, branded_query, created_at`

func (r *QueryResultRepo) Create(ctx context.Context, result *models.QueryResult) error {
	query := `
		INSERT INTO query_results (
			query_result_id, query_run_id, query_text, source, response, response_time,
			brand_mentioned, brand_position, brand_sentence_num, brand_position_pct,
			context_type, context_sentiment, competitors_found, sources_cited,
			brand_url_cited, branded_query, created_at
		) VALUES (
			:query_result_id, :query_run_id, :query_text, :source, :response, :response_time,
			:brand_mentioned, :brand_position, :brand_sentence_num, :brand_position_pct,
			:context_type, :context_sentiment, :competitors_found, :sources_cited,
			:brand_url_cited, :branded_query, :created_at
		)
	`
	if _, err := r.db.DB.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("failed to create query result: %w", err)
	}
	return nil
}

func (r *QueryResultRepo) ListByRun(ctx context.Context, queryRunID uuid.UUID) ([]*models.QueryResult, error) {
	var results []*models.QueryResult
	query := fmt.Sprintf(`
		SELECT %s FROM query_results
		WHERE query_run_id = $1
		ORDER BY created_at
	`, queryResultColumns)
	if err := r.db.DB.SelectContext(ctx, &results, query, queryRunID); err != nil {
		return nil, fmt.Errorf("failed to list query results: %w", err)
	}
	return results, nil
}

func (r *QueryResultRepo) ListByClientSince(ctx context.Context, clientID uuid.UUID, days int) ([]*models.QueryResult, error) {
	var results []*models.QueryResult
	query := fmt.Sprintf(`
		SELECT %s FROM query_results
		WHERE query_run_id IN (
			SELECT query_run_id FROM query_runs
			WHERE client_id = $1 AND created_at >= NOW() - make_interval(days => $2)
		)
		ORDER BY created_at
	`, queryResultColumns)
	if err := r.db.DB.SelectContext(ctx, &results, query, clientID, days); err != nil {
		return nil, fmt.Errorf("failed to list client query results: %w", err)
	}
	return results, nil
}
