package services

import (
	"context"
	"fmt"

	"github.com/kelsos/recall-rebalance/internal/client"
	"github.com/kelsos/recall-rebalance/internal/logger"
	"github.com/kelsos/recall-rebalance/internal/models"
	"github.com/kelsos/recall-rebalance/internal/registry"
)

// SnapshotService fetches the agent portfolio and turns it into planner holdings
type SnapshotService struct {
	client   *client.APIClient
	registry *registry.Registry
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(client *client.APIClient, reg *registry.Registry) *SnapshotService {
	return &SnapshotService{
		client:   client,
		registry: reg,
	}
}

// FetchPortfolio retrieves the raw portfolio response
func (s *SnapshotService) FetchPortfolio(ctx context.Context) (*models.PortfolioResponse, error) {
	var response models.PortfolioResponse
	if err := s.client.Get(ctx, "/agent/portfolio", &response); err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	if response.Failed() {
		return nil, fmt.Errorf("failed to get portfolio: %s", response.Reason())
	}
	return &response, nil
}

// Fetch retrieves a fresh snapshot. Token order is kept as the API returned it.
func (s *SnapshotService) Fetch(ctx context.Context) (models.Snapshot, error) {
	response, err := s.FetchPortfolio(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}

	holdings := make([]models.Holding, 0, len(response.Tokens))
	for _, token := range response.Tokens {
		holdings = append(holdings, s.toHolding(token))
	}

	logger.Debug("Fetched portfolio with %d tokens, total value %s", len(holdings), response.TotalValue.StringFixed(2))
	return models.Snapshot{Holdings: holdings, TotalValue: response.TotalValue}, nil
}

func (s *SnapshotService) toHolding(token models.PortfolioToken) models.Holding {
	holding := models.Holding{
		Address:   token.Token,
		Amount:    token.Amount,
		Price:     token.Price,
		ChainHint: token.Chain,
		Label:     token.Symbol,
	}
	if token.SpecificChain != "" {
		holding.Network = s.registry.NormalizeNetwork(token.SpecificChain)
	}
	// some rows carry only the value
	if holding.Price.IsZero() && token.Value.IsPositive() && token.Amount.IsPositive() {
		holding.Price = token.Value.Div(token.Amount)
	}
	return holding
}
