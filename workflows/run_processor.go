// workflows/run_processor.go
package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/brandlens/brandlens-workflows/internal/config"
	"github.com/brandlens/brandlens-workflows/services"
)

type RunProcessor struct {
	clientService    services.ClientService
	queryRunner      services.QueryRunnerService
	analyticsService services.AnalyticsService
	client           inngestgo.Client
	cfg              *config.Config
}

func NewRunProcessor(
	clientService services.ClientService,
	queryRunner services.QueryRunnerService,
	analyticsService services.AnalyticsService,
	cfg *config.Config,
) *RunProcessor {
	return &RunProcessor{
		clientService:    clientService,
		queryRunner:      queryRunner,
		analyticsService: analyticsService,
		cfg:              cfg,
	}
}

func (p *RunProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// Event types
type RunProcessEvent struct {
	ClientID    string   `json:"client_id"`
	RunType     string   `json:"run_type"`
	Name        string   `json:"name,omitempty"`
	Queries     []string `json:"queries,omitempty"`
	Providers   []string `json:"providers,omitempty"`
	TriggeredBy string   `json:"triggered_by"`
}

func (p *RunProcessor) ProcessRun() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:      "process-run",
			Name:    "Process Query Run - Brand Visibility Pipeline",
			Retries: inngestgo.IntPtr(3),
		},
		inngestgo.EventTrigger("run.process", nil),
		func(ctx context.Context, input inngestgo.Input[RunProcessEvent]) (any, error) {
			clientID, err := uuid.Parse(input.Event.Data.ClientID)
			if err != nil {
				return nil, fmt.Errorf("invalid client ID: %w", err)
			}
			fmt.Printf("[ProcessRun] Starting brand visibility pipeline for client: %s\n", clientID)

			// Step 1: Load client configuration
			details, err := step.Run(ctx, "get-client-details", func(ctx context.Context) (*services.ClientDetails, error) {
				fmt.Printf("[ProcessRun] Step 1: Loading client configuration\n")
				details, err := p.clientService.GetClientDetails(ctx, clientID)
				if err != nil {
					return nil, fmt.Errorf("failed to get client details: %w", err)
				}
				fmt.Printf("[ProcessRun] Loaded client %s with %d competitors and %d predefined queries\n",
					details.Client.Name, len(details.Competitors), len(details.Queries))
				return details, nil
			})
			if err != nil {
				return nil, fmt.Errorf("step 1 failed: %w", err)
			}

			// Step 2: Dispatch queries and store analyzed results
			outcome, err := step.Run(ctx, "execute-query-run", func(ctx context.Context) (*services.RunOutcome, error) {
				fmt.Printf("[ProcessRun] Step 2: Executing queries across providers\n")
				runType := input.Event.Data.RunType
				if runType == "" {
					runType = "predefined"
				}
				outcome, err := p.queryRunner.ExecuteRun(ctx, &services.RunRequest{
					ClientID:  clientID,
					RunType:   runType,
					Name:      input.Event.Data.Name,
					Queries:   input.Event.Data.Queries,
					Providers: input.Event.Data.Providers,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to execute run: %w", err)
				}
				return outcome, nil
			})
			if err != nil {
				return nil, fmt.Errorf("step 2 failed: %w", err)
			}

			// Step 3: Generate the run summary
			summary, err := step.Run(ctx, "generate-run-summary", func(ctx context.Context) (*services.RunSummary, error) {
				fmt.Printf("[ProcessRun] Step 3: Generating run summary\n")
				summary, err := p.analyticsService.GetRunSummary(ctx, outcome.QueryRunID)
				if err != nil {
					return nil, fmt.Errorf("failed to generate run summary: %w", err)
				}
				fmt.Printf("[ProcessRun] Mention rate %.1f%% across %d responses\n",
					summary.OverallMentionRate, summary.TotalResponses)
				return summary, nil
			})
			if err != nil {
				return nil, fmt.Errorf("step 3 failed: %w", err)
			}

			finalResult := map[string]interface{}{
				"client_id":    clientID.String(),
				"client_name":  details.Client.Name,
				"query_run_id": outcome.QueryRunID.String(),
				"status":       outcome.Status,
				"completed":    outcome.Completed,
				"failed":       outcome.Failed,
				"total_cost":   outcome.TotalCost,
				"summary":      summary,
				"completed_at": time.Now().UTC(),
			}

			fmt.Printf("[ProcessRun] ✅ COMPLETED: Run %s for client %s\n", outcome.QueryRunID, details.Client.Name)
			return finalResult, nil
		},
	)
	if err != nil {
		panic(fmt.Errorf("failed to create ProcessRun function: %w", err))
	}
	return fn
}
