// services/client_service.go
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/analysis"
	"github.com/brandlens/brandlens-workflows/internal/models"
)

type clientService struct {
	repos *RepositoryManager
}

func NewClientService(repos *RepositoryManager) ClientService {
	return &clientService{repos: repos}
}

// GetClientDetails loads a client with its competitors and predefined queries
// and builds the analyzer used on every response for that client.
func (s *clientService) GetClientDetails(ctx context.Context, clientID uuid.UUID) (*ClientDetails, error) {
	client, err := s.repos.ClientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}

	competitors, err := s.repos.CompetitorRepo.ListActiveByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load competitors: %w", err)
	}

	queries, err := s.repos.PredefinedQueryRepo.ListActiveByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load predefined queries: %w", err)
	}

	brand := analysis.NewBrandProfile(client.BrandName, client.BrandAliases)
	profiles := make([]analysis.CompetitorProfile, 0, len(competitors))
	for _, c := range competitors {
		profiles = append(profiles, analysis.CompetitorProfile{Name: c.Name, Aliases: c.Aliases})
	}
	registry := analysis.NewCompetitorRegistry(profiles)

	return &ClientDetails{
		Client:      client,
		Competitors: competitors,
		Queries:     queries,
		Analyzer:    analysis.NewAnalyzer(brand, registry),
	}, nil
}

func (s *clientService) ListActiveClients(ctx context.Context) ([]*models.Client, error) {
	return s.repos.ClientRepo.ListActive(ctx)
}
