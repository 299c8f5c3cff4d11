// services/mocks_test.go
package services_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/services"
)

// In-memory repository fakes backing the service tests.

type mockClientRepo struct {
	clients map[uuid.UUID]*models.Client
}

func (m *mockClientRepo) GetByID(ctx context.Context, clientID uuid.UUID) (*models.Client, error) {
	if c, ok := m.clients[clientID]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("client %s: not found", clientID)
}

func (m *mockClientRepo) GetBySlug(ctx context.Context, slug string) (*models.Client, error) {
	for _, c := range m.clients {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, fmt.Errorf("client %q: not found", slug)
}

func (m *mockClientRepo) ListActive(ctx context.Context) ([]*models.Client, error) {
	var active []*models.Client
	for _, c := range m.clients {
		if c.IsActive {
			active = append(active, c)
		}
	}
	return active, nil
}

type mockCompetitorRepo struct {
	competitors []*models.Competitor
}

func (m *mockCompetitorRepo) ListActiveByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Competitor, error) {
	var matched []*models.Competitor
	for _, c := range m.competitors {
		if c.ClientID == clientID && c.IsActive {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

type mockPredefinedQueryRepo struct {
	queries []*models.PredefinedQuery
}

func (m *mockPredefinedQueryRepo) ListActiveByClient(ctx context.Context, clientID uuid.UUID) ([]*models.PredefinedQuery, error) {
	var matched []*models.PredefinedQuery
	for _, q := range m.queries {
		if q.ClientID == clientID && q.IsActive {
			matched = append(matched, q)
		}
	}
	return matched, nil
}

type mockQueryRunRepo struct {
	mu   sync.Mutex
	runs map[uuid.UUID]*models.QueryRun
}

func newMockQueryRunRepo() *mockQueryRunRepo {
	return &mockQueryRunRepo{runs: map[uuid.UUID]*models.QueryRun{}}
}

func (m *mockQueryRunRepo) Create(ctx context.Context, run *models.QueryRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *run
	m.runs[run.QueryRunID] = &copied
	return nil
}

func (m *mockQueryRunRepo) GetByID(ctx context.Context, queryRunID uuid.UUID) (*models.QueryRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if run, ok := m.runs[queryRunID]; ok {
		return run, nil
	}
	return nil, fmt.Errorf("query run %s: not found", queryRunID)
}

func (m *mockQueryRunRepo) ListByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]*models.QueryRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var runs []*models.QueryRun
	for _, run := range m.runs {
		if run.ClientID == clientID {
			runs = append(runs, run)
		}
	}
	return runs, nil
}

func (m *mockQueryRunRepo) UpdateStatus(ctx context.Context, queryRunID uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if run, ok := m.runs[queryRunID]; ok {
		run.Status = status
	}
	return nil
}

func (m *mockQueryRunRepo) IncrementCompleted(ctx context.Context, queryRunID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if run, ok := m.runs[queryRunID]; ok {
		run.CompletedQueries++
	}
	return nil
}

func (m *mockQueryRunRepo) MarkCompleted(ctx context.Context, queryRunID uuid.UUID, status string) error {
	return m.UpdateStatus(ctx, queryRunID, status)
}

type mockQueryResultRepo struct {
	mu      sync.Mutex
	results []*models.QueryResult
}

func (m *mockQueryResultRepo) Create(ctx context.Context, result *models.QueryResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *result
	m.results = append(m.results, &copied)
	return nil
}

func (m *mockQueryResultRepo) ListByRun(ctx context.Context, queryRunID uuid.UUID) ([]*models.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*models.QueryResult
	for _, r := range m.results {
		if r.QueryRunID == queryRunID {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func (m *mockQueryResultRepo) ListByClientSince(ctx context.Context, clientID uuid.UUID, days int) ([]*models.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.QueryResult(nil), m.results...), nil
}

type mockAPIUsageRepo struct {
	mu     sync.Mutex
	usages []*models.APIUsage
}

func (m *mockAPIUsageRepo) Create(ctx context.Context, usage *models.APIUsage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *usage
	m.usages = append(m.usages, &copied)
	return nil
}

func (m *mockAPIUsageRepo) TotalCostByClient(ctx context.Context, clientID uuid.UUID, days int) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total float64
	for _, u := range m.usages {
		if u.ClientID == clientID {
			total += u.TotalCost
		}
	}
	return total, nil
}

// mockProvider returns canned responses keyed by query text.
type mockProvider struct {
	name      string
	responses map[string]string
	err       error
}

func (m *mockProvider) GetProviderName() string { return m.name }

func (m *mockProvider) RunQuery(ctx context.Context, query string) (*services.AIResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	response, ok := m.responses[query]
	if !ok {
		response = "No answer available."
	}
	return &services.AIResponse{
		Response:     response,
		InputTokens:  10,
		OutputTokens: 50,
		Cost:         0.001,
	}, nil
}

func newTestRepoManager(client *models.Client, competitors []*models.Competitor, queries []*models.PredefinedQuery) *services.RepositoryManager {
	return &services.RepositoryManager{
		ClientRepo:          &mockClientRepo{clients: map[uuid.UUID]*models.Client{client.ClientID: client}},
		CompetitorRepo:      &mockCompetitorRepo{competitors: competitors},
		PredefinedQueryRepo: &mockPredefinedQueryRepo{queries: queries},
		QueryRunRepo:        newMockQueryRunRepo(),
		QueryResultRepo:     &mockQueryResultRepo{},
		APIUsageRepo:        &mockAPIUsageRepo{},
	}
}
