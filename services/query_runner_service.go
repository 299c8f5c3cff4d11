// services/query_runner_service.go
package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/analysis"
	"github.com/brandlens/brandlens-workflows/internal/config"
	"github.com/brandlens/brandlens-workflows/internal/models"
)

type queryRunnerService struct {
	cfg           *config.Config
	repos         *RepositoryManager
	clientService ClientService
	providers     map[string]AIProvider
}

func NewQueryRunnerService(cfg *config.Config, repos *RepositoryManager, clientService ClientService, providers map[string]AIProvider) QueryRunnerService {
	return &queryRunnerService{
		cfg:           cfg,
		repos:         repos,
		clientService: clientService,
		providers:     providers,
	}
}

type queryJob struct {
	queryText string
	provider  AIProvider
}

type queryJobResult struct {
	result *models.QueryResult
	usage  *models.APIUsage
	failed bool
}

// ExecuteRun dispatches every query to every selected provider, analyzes each
// response, and stores the results. Provider errors do not abort the run; the
// error text is stored as the response so the analysis defaults apply.
func (s *queryRunnerService) ExecuteRun(ctx context.Context, req *RunRequest) (*RunOutcome, error) {
	details, err := s.clientService.GetClientDetails(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	queries := req.Queries
	if req.RunType == "predefined" {
		queries = make([]string, 0, len(details.Queries))
		for _, q := range details.Queries {
			queries = append(queries, q.QueryText)
		}
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("no queries to run for client %s", req.ClientID)
	}

	providers := s.selectProviders(req.Providers)
	if len(providers) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}

	run := &models.QueryRun{
		QueryRunID:   uuid.New(),
		ClientID:     req.ClientID,
		RunType:      req.RunType,
		Status:       models.RunStatusRunning,
		TotalQueries: len(queries) * len(providers),
		CreatedAt:    time.Now().UTC(),
	}
	if req.Name != "" {
		run.Name = &req.Name
	}
	if err := s.repos.QueryRunRepo.Create(ctx, run); err != nil {
		return nil, err
	}

	fmt.Printf("[ExecuteRun] Run %s: %d queries x %d providers\n", run.QueryRunID, len(queries), len(providers))

	jobs := make(chan queryJob)
	results := make(chan queryJobResult, run.TotalQueries)
	var wg sync.WaitGroup

	workers := s.cfg.Runner.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	delay := time.Duration(s.cfg.Runner.RequestDelay * float64(time.Second))

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results <- s.processQuery(ctx, run, details, job)
				if delay > 0 {
					time.Sleep(delay)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, queryText := range queries {
			for _, provider := range providers {
				select {
				case jobs <- queryJob{queryText: queryText, provider: provider}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	wg.Wait()
	close(results)

	// Completed and Failed partition TotalQueries: a provider-error row is
	// stored for analysis defaults but only counted as failed.
	outcome := &RunOutcome{QueryRunID: run.QueryRunID, TotalQueries: run.TotalQueries}
	for jobResult := range results {
		if jobResult.result != nil {
			if err := s.repos.QueryResultRepo.Create(ctx, jobResult.result); err != nil {
				fmt.Printf("[ExecuteRun] Failed to store result: %v\n", err)
				outcome.Failed++
			} else if jobResult.failed {
				outcome.Failed++
			} else {
				if err := s.repos.QueryRunRepo.IncrementCompleted(ctx, run.QueryRunID); err != nil {
					fmt.Printf("[ExecuteRun] Failed to increment run counter: %v\n", err)
				}
				outcome.Completed++
			}
		}
		if jobResult.usage != nil {
			outcome.TotalCost += jobResult.usage.TotalCost
			if err := s.repos.APIUsageRepo.Create(ctx, jobResult.usage); err != nil {
				fmt.Printf("[ExecuteRun] Failed to store api usage: %v\n", err)
			}
		}
	}

	outcome.Status = models.RunStatusCompleted
	if outcome.Completed == 0 {
		outcome.Status = models.RunStatusFailed
	}
	if err := s.repos.QueryRunRepo.MarkCompleted(ctx, run.QueryRunID, outcome.Status); err != nil {
		return nil, err
	}

	fmt.Printf("[ExecuteRun] Run %s finished: %d completed, %d failed, $%.4f\n",
		run.QueryRunID, outcome.Completed, outcome.Failed, outcome.TotalCost)
	return outcome, nil
}

// processQuery runs one query against one provider and analyzes the response.
func (s *queryRunnerService) processQuery(ctx context.Context, run *models.QueryRun, details *ClientDetails, job queryJob) queryJobResult {
	source := job.provider.GetProviderName()
	model := s.modelFor(source)

	start := time.Now()
	aiResp, err := job.provider.RunQuery(ctx, job.queryText)
	elapsed := time.Since(start).Seconds()

	usage := &models.APIUsage{
		APIUsageID: uuid.New(),
		ClientID:   run.ClientID,
		QueryRunID: &run.QueryRunID,
		Provider:   source,
		Model:      model,
		Status:     "success",
		CreatedAt:  time.Now().UTC(),
	}

	var responseText string
	var failed bool
	if err != nil {
		fmt.Printf("[processQuery] %s failed for %q: %v\n", source, job.queryText, err)
		responseText = fmt.Sprintf("ERROR: %v", err)
		usage.Status = "error"
		failed = true
	} else {
		responseText = aiResp.Response
		usage.InputTokens = aiResp.InputTokens
		usage.OutputTokens = aiResp.OutputTokens
		usage.TotalCost = aiResp.Cost
	}

	analyzed := details.Analyzer.Analyze(job.queryText, source, responseText)

	result := &models.QueryResult{
		QueryResultID:    uuid.New(),
		QueryRunID:       run.QueryRunID,
		QueryText:        job.queryText,
		Source:           source,
		Response:         responseText,
		ResponseTime:     elapsed,
		BrandMentioned:   analyzed.BrandMentioned,
		BrandPosition:    string(analyzed.BrandPosition),
		BrandSentenceNum: analyzed.BrandSentenceNum,
		BrandPositionPct: analyzed.BrandPositionPct,
		ContextType:      string(analyzed.ContextType),
		ContextSentiment: analyzed.ContextSentiment,
		CompetitorsFound: analysis.JoinCompetitors(analyzed.CompetitorsFound),
		SourcesCited:     analysis.JoinSources(analyzed.SourcesCited),
		BrandURLCited:    analyzed.BrandURLCited,
		BrandedQuery:     analyzed.BrandedQuery,
		CreatedAt:        time.Now().UTC(),
	}

	return queryJobResult{result: result, usage: usage, failed: failed}
}

func (s *queryRunnerService) selectProviders(names []string) []AIProvider {
	if len(names) == 0 {
		names = defaultProviderOrder(s.providers)
	}
	var providers []AIProvider
	for _, name := range names {
		if p, ok := s.providers[name]; ok {
			providers = append(providers, p)
		} else {
			fmt.Printf("[selectProviders] Unknown provider %q skipped\n", name)
		}
	}
	return providers
}

// defaultProviderOrder lists every configured provider, known sources first,
// so dispatch order does not depend on map iteration.
func defaultProviderOrder(providers map[string]AIProvider) []string {
	names := make([]string, 0, len(providers))
	seen := make(map[string]bool, len(providers))
	for _, source := range knownSources {
		if _, ok := providers[source]; ok {
			names = append(names, source)
			seen[source] = true
		}
	}
	var extra []string
	for name := range providers {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

func (s *queryRunnerService) modelFor(provider string) string {
	switch provider {
	case "OpenAI":
		return s.cfg.Models.OpenAI
	case "Anthropic":
		return s.cfg.Models.Anthropic
	case "Gemini":
		return s.cfg.Models.Gemini
	case "Perplexity":
		return s.cfg.Models.Perplexity
	}
	return ""
}
