// workflows/scheduled_processor.go
package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/services"
)

type ScheduledProcessor struct {
	clientService services.ClientService
	client        inngestgo.Client
}

func NewScheduledProcessor(clientService services.ClientService) *ScheduledProcessor {
	return &ScheduledProcessor{
		clientService: clientService,
	}
}

func (p *ScheduledProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// DailyRunProcessor triggers a predefined run for every active client each day.
func (p *ScheduledProcessor) DailyRunProcessor() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:   "daily-run-processor",
			Name: "Daily Run Processor - Scheduled Brand Tracking",
		},
		inngestgo.CronTrigger("0 2 * * *"), // Every day at 2 AM UTC
		func(ctx context.Context, input inngestgo.Input[any]) (any, error) {
			now := time.Now()

			// Step 1: Get active clients
			clients, err := step.Run(ctx, "get-active-clients", func(ctx context.Context) ([]*models.Client, error) {
				return p.clientService.ListActiveClients(ctx)
			})
			if err != nil {
				return nil, fmt.Errorf("failed to list active clients: %w", err)
			}

			if len(clients) == 0 {
				return map[string]interface{}{
					"execution_date":      now.Format("2006-01-02"),
					"total_clients_found": 0,
					"message":             "No active clients to process",
				}, nil
			}

			// Step 2: Trigger a run per client. Each send is its own idempotent
			// step so a retry only re-sends the ones that did not complete.
			triggered := 0
			for _, client := range clients {
				stepName := fmt.Sprintf("trigger-run-%s", client.ClientID)

				_, err := step.Run(ctx, stepName, func(ctx context.Context) (interface{}, error) {
					evt := inngestgo.Event{
						Name: "run.process",
						Data: map[string]interface{}{
							"client_id":    client.ClientID.String(),
							"run_type":     "predefined",
							"triggered_by": "automatic_scheduler",
						},
					}
					return p.client.Send(ctx, evt)
				})
				if err != nil {
					fmt.Printf("Warning: Failed to send event for client %s: %v\n", client.ClientID, err)
					continue
				}
				triggered++
			}

			return map[string]interface{}{
				"execution_date":      now.Format("2006-01-02"),
				"total_clients_found": len(clients),
				"runs_triggered":      triggered,
			}, nil
		},
	)
	if err != nil {
		panic(fmt.Errorf("failed to create DailyRunProcessor function: %w", err))
	}
	return fn
}
