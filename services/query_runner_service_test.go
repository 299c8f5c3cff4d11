// services/query_runner_service_test.go
package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/config"
	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/services"
)

func testConfig() *config.Config {
	return &config.Config{
		Runner: config.RunnerConfig{MaxWorkers: 2, RequestDelay: 0},
		Models: config.ModelConfig{
			OpenAI:     "gpt-4o",
			Anthropic:  "claude-sonnet-4-20250514",
			Gemini:     "gemini-2.0-flash-exp",
			Perplexity: "sonar",
		},
	}
}

func testClient() *models.Client {
	return &models.Client{
		ClientID:  uuid.New(),
		Name:      "Kaysun Corp",
		Slug:      "kaysun",
		BrandName: "Kaysun",
		IsActive:  true,
	}
}

func TestExecuteRunStoresAnalyzedResults(t *testing.T) {
	client := testClient()
	competitors := []*models.Competitor{{
		CompetitorID: uuid.New(),
		ClientID:     client.ClientID,
		Name:         "PTI Plastics",
		Aliases:      "PTI",
		IsActive:     true,
	}}
	repos := newTestRepoManager(client, competitors, nil)
	clientService := services.NewClientService(repos)

	providers := map[string]services.AIProvider{
		"OpenAI": &mockProvider{
			name: "OpenAI",
			responses: map[string]string{
				"best injection molders": "Kaysun is a leading molder. PTI Plastics also competes. Visit https://kaysun.com for details.",
			},
		},
	}
	runner := services.NewQueryRunnerService(testConfig(), repos, clientService, providers)

	outcome, err := runner.ExecuteRun(context.Background(), &services.RunRequest{
		ClientID: client.ClientID,
		RunType:  "custom",
		Queries:  []string{"best injection molders"},
	})
	if err != nil {
		t.Fatalf("ExecuteRun failed: %v", err)
	}

	if outcome.TotalQueries != 1 || outcome.Completed != 1 || outcome.Failed != 0 {
		t.Errorf("outcome = %+v, want 1 total, 1 completed, 0 failed", outcome)
	}
	if outcome.Status != models.RunStatusCompleted {
		t.Errorf("status = %q, want %q", outcome.Status, models.RunStatusCompleted)
	}
	if outcome.TotalCost != 0.001 {
		t.Errorf("total cost = %v, want 0.001", outcome.TotalCost)
	}

	results, err := repos.QueryResultRepo.ListByRun(context.Background(), outcome.QueryRunID)
	if err != nil {
		t.Fatalf("ListByRun failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("stored %d results, want 1", len(results))
	}

	r := results[0]
	if !r.BrandMentioned {
		t.Error("expected brand mentioned")
	}
	if r.Source != "OpenAI" {
		t.Errorf("source = %q, want OpenAI", r.Source)
	}
	if r.CompetitorsFound != "PTI Plastics" {
		t.Errorf("competitors = %q, want PTI Plastics", r.CompetitorsFound)
	}
	if !strings.Contains(r.SourcesCited, "https://kaysun.com") {
		t.Errorf("sources cited = %q, missing kaysun.com", r.SourcesCited)
	}
	if !r.BrandURLCited {
		t.Error("expected brand URL cited")
	}
	if r.BrandedQuery {
		t.Error("query does not name the brand, should not be branded")
	}

	run, err := repos.QueryRunRepo.GetByID(context.Background(), outcome.QueryRunID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if run.CompletedQueries != 1 {
		t.Errorf("run completed count = %d, want 1", run.CompletedQueries)
	}
}

func TestExecuteRunFoldsProviderErrors(t *testing.T) {
	client := testClient()
	repos := newTestRepoManager(client, nil, nil)
	clientService := services.NewClientService(repos)

	providers := map[string]services.AIProvider{
		"Gemini": &mockProvider{name: "Gemini", err: errors.New("quota exceeded")},
	}
	runner := services.NewQueryRunnerService(testConfig(), repos, clientService, providers)

	outcome, err := runner.ExecuteRun(context.Background(), &services.RunRequest{
		ClientID: client.ClientID,
		RunType:  "custom",
		Queries:  []string{"best molders"},
	})
	if err != nil {
		t.Fatalf("ExecuteRun failed: %v", err)
	}

	if outcome.Failed != 1 {
		t.Errorf("failed = %d, want 1", outcome.Failed)
	}

	results, err := repos.QueryResultRepo.ListByRun(context.Background(), outcome.QueryRunID)
	if err != nil {
		t.Fatalf("ListByRun failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("stored %d results, want 1", len(results))
	}

	r := results[0]
	if !strings.HasPrefix(r.Response, "ERROR:") {
		t.Errorf("response = %q, want ERROR prefix", r.Response)
	}
	if r.BrandMentioned {
		t.Error("error responses must not count as brand mentions")
	}
	if r.BrandPosition != "Not Mentioned" {
		t.Errorf("position = %q, want Not Mentioned", r.BrandPosition)
	}
	if r.CompetitorsFound != "" || r.SourcesCited != "" {
		t.Errorf("error response should have empty competitors/sources, got %q / %q", r.CompetitorsFound, r.SourcesCited)
	}
}

func TestExecuteRunDispatchesProvidersInStableOrder(t *testing.T) {
	client := testClient()
	repos := newTestRepoManager(client, nil, nil)
	clientService := services.NewClientService(repos)

	providers := map[string]services.AIProvider{
		"Perplexity": &mockProvider{name: "Perplexity"},
		"Gemini":     &mockProvider{name: "Gemini"},
		"OpenAI":     &mockProvider{name: "OpenAI"},
	}
	cfg := testConfig()
	cfg.Runner.MaxWorkers = 1
	runner := services.NewQueryRunnerService(cfg, repos, clientService, providers)

	outcome, err := runner.ExecuteRun(context.Background(), &services.RunRequest{
		ClientID: client.ClientID,
		RunType:  "custom",
		Queries:  []string{"best molders"},
	})
	if err != nil {
		t.Fatalf("ExecuteRun failed: %v", err)
	}

	results, err := repos.QueryResultRepo.ListByRun(context.Background(), outcome.QueryRunID)
	if err != nil {
		t.Fatalf("ListByRun failed: %v", err)
	}
	want := []string{"OpenAI", "Gemini", "Perplexity"}
	if len(results) != len(want) {
		t.Fatalf("stored %d results, want %d", len(results), len(want))
	}
	for i, r := range results {
		if r.Source != want[i] {
			t.Errorf("result %d source = %q, want %q", i, r.Source, want[i])
		}
	}
}

func TestExecuteRunTalliesPartitionTotal(t *testing.T) {
	client := testClient()
	repos := newTestRepoManager(client, nil, nil)
	clientService := services.NewClientService(repos)

	providers := map[string]services.AIProvider{
		"OpenAI": &mockProvider{name: "OpenAI"},
		"Gemini": &mockProvider{name: "Gemini", err: errors.New("quota exceeded")},
	}
	runner := services.NewQueryRunnerService(testConfig(), repos, clientService, providers)

	outcome, err := runner.ExecuteRun(context.Background(), &services.RunRequest{
		ClientID: client.ClientID,
		RunType:  "custom",
		Queries:  []string{"best molders"},
	})
	if err != nil {
		t.Fatalf("ExecuteRun failed: %v", err)
	}

	if outcome.TotalQueries != 2 || outcome.Completed != 1 || outcome.Failed != 1 {
		t.Errorf("outcome = %+v, want 2 total, 1 completed, 1 failed", outcome)
	}
	if outcome.Completed+outcome.Failed != outcome.TotalQueries {
		t.Errorf("completed %d + failed %d != total %d", outcome.Completed, outcome.Failed, outcome.TotalQueries)
	}

	results, err := repos.QueryResultRepo.ListByRun(context.Background(), outcome.QueryRunID)
	if err != nil {
		t.Fatalf("ListByRun failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("stored %d results, want 2: error rows are stored but counted as failed", len(results))
	}

	run, err := repos.QueryRunRepo.GetByID(context.Background(), outcome.QueryRunID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if run.CompletedQueries != 1 {
		t.Errorf("run completed count = %d, want 1", run.CompletedQueries)
	}
}

func TestExecuteRunUsesPredefinedQueries(t *testing.T) {
	client := testClient()
	queries := []*models.PredefinedQuery{
		{PredefinedQueryID: uuid.New(), ClientID: client.ClientID, QueryText: "top molders", IsActive: true},
		{PredefinedQueryID: uuid.New(), ClientID: client.ClientID, QueryText: "custom molding companies", IsActive: true},
	}
	repos := newTestRepoManager(client, nil, queries)
	clientService := services.NewClientService(repos)

	providers := map[string]services.AIProvider{
		"OpenAI": &mockProvider{name: "OpenAI", responses: map[string]string{}},
	}
	runner := services.NewQueryRunnerService(testConfig(), repos, clientService, providers)

	outcome, err := runner.ExecuteRun(context.Background(), &services.RunRequest{
		ClientID: client.ClientID,
		RunType:  "predefined",
	})
	if err != nil {
		t.Fatalf("ExecuteRun failed: %v", err)
	}
	if outcome.TotalQueries != 2 || outcome.Completed != 2 {
		t.Errorf("outcome = %+v, want 2 total and 2 completed", outcome)
	}
}

func TestExecuteRunRejectsEmptyRun(t *testing.T) {
	client := testClient()
	repos := newTestRepoManager(client, nil, nil)
	clientService := services.NewClientService(repos)

	runner := services.NewQueryRunnerService(testConfig(), repos, clientService, map[string]services.AIProvider{
		"OpenAI": &mockProvider{name: "OpenAI"},
	})

	if _, err := runner.ExecuteRun(context.Background(), &services.RunRequest{
		ClientID: client.ClientID,
		RunType:  "custom",
	}); err == nil {
		t.Fatal("expected error for run with no queries")
	}
}
