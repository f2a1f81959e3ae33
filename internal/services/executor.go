package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kelsos/recall-rebalance/internal/client"
	"github.com/kelsos/recall-rebalance/internal/logger"
	"github.com/kelsos/recall-rebalance/internal/models"
	"github.com/kelsos/recall-rebalance/internal/planner"
	"github.com/kelsos/recall-rebalance/internal/registry"
	"github.com/kelsos/recall-rebalance/internal/utils"
)

const amountPrecision = 8

var ErrNoPrice = errors.New("price unavailable")

// Result is the outcome of submitting one intent.
type Result[T any] struct {
	Intent      T                        `json:"intent"`
	Transaction *models.TradeTransaction `json:"transaction,omitempty"`
	Err         error                    `json:"-"`
	Error       string                   `json:"error,omitempty"`
}

func (r Result[T]) OK() bool {
	return r.Err == nil
}

// BatchOutcome collects one Result per intent, in submission order.
type BatchOutcome[T any] struct {
	Results []Result[T] `json:"results"`
}

func (b BatchOutcome[T]) Succeeded() int {
	n := 0
	for _, r := range b.Results {
		if r.OK() {
			n++
		}
	}
	return n
}

func (b BatchOutcome[T]) Failed() int {
	return len(b.Results) - b.Succeeded()
}

// Errors returns the failures of the batch, or nil.
func (b BatchOutcome[T]) Errors() []error {
	var errs []error
	for _, r := range b.Results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}

// TradeExecutor submits intents to the venue, one at a time with a pause in between.
// A failed intent never stops the rest of its batch.
type TradeExecutor struct {
	client   *client.APIClient
	registry *registry.Registry
	prices   *PriceService
	policy   planner.Policy
	delay    time.Duration
	// OnResult, when set, is called after every submission.
	OnResult func(description string, err error)
}

// NewTradeExecutor creates a new trade executor
func NewTradeExecutor(client *client.APIClient, reg *registry.Registry, prices *PriceService, policy planner.Policy, delay time.Duration) *TradeExecutor {
	return &TradeExecutor{
		client:   client,
		registry: reg,
		prices:   prices,
		policy:   policy,
		delay:    delay,
	}
}

// Execute submits a single trade request
func (e *TradeExecutor) Execute(ctx context.Context, request models.TradeRequest) (*models.TradeTransaction, error) {
	var response models.TradeResponse
	if err := e.client.Post(ctx, "/trade/execute", request, &response); err != nil {
		return nil, fmt.Errorf("failed to execute trade: %w", err)
	}
	if response.Failed() {
		return nil, fmt.Errorf("trade rejected: %s", response.Reason())
	}
	return &response.Transaction, nil
}

// ExecuteConversions swaps each holding in full into the tracked asset
func (e *TradeExecutor) ExecuteConversions(ctx context.Context, intents []models.ConversionIntent) BatchOutcome[models.ConversionIntent] {
	return executeBatch(ctx, e, intents, func(intent models.ConversionIntent) (string, models.TradeRequest, error) {
		description := fmt.Sprintf("%s %s → %s", intent.Amount, intent.SourceSymbol, intent.DestinationSymbol)
		return description, models.TradeRequest{
			FromToken:         intent.SourceAddress,
			ToToken:           intent.DestinationAddress,
			Amount:            intent.Amount.String(),
			FromChain:         e.chain(intent.SourceNetwork),
			ToChain:           e.chain(intent.DestinationNetwork),
			FromSpecificChain: e.registry.APIName(intent.SourceNetwork),
			ToSpecificChain:   e.registry.APIName(intent.DestinationNetwork),
			Reason:            intent.Reason,
		}, nil
	})
}

// ExecuteTrades rebalances through the quote asset on each intent's own network
func (e *TradeExecutor) ExecuteTrades(ctx context.Context, intents []models.TradeIntent) BatchOutcome[models.TradeIntent] {
	return executeBatch(ctx, e, intents, func(intent models.TradeIntent) (string, models.TradeRequest, error) {
		description := fmt.Sprintf("%s %s on %s", intent.Action, e.policy.TargetSymbol, intent.DisplayName)
		request, err := e.rebalanceRequest(ctx, intent)
		return description, request, err
	})
}

func (e *TradeExecutor) rebalanceRequest(ctx context.Context, intent models.TradeIntent) (models.TradeRequest, error) {
	target, ok := e.registry.Address(e.policy.TargetSymbol, intent.Network)
	if !ok {
		return models.TradeRequest{}, fmt.Errorf("%w: %s on %s", planner.ErrUnknownTarget, e.policy.TargetSymbol, intent.Network)
	}
	quote, ok := e.registry.Address(e.policy.QuoteSymbol, intent.Network)
	if !ok {
		return models.TradeRequest{}, fmt.Errorf("%w: %s on %s", planner.ErrUnknownTarget, e.policy.QuoteSymbol, intent.Network)
	}

	from, to, fromSymbol := target, quote, e.policy.TargetSymbol
	if intent.Action == models.ActionBuy {
		from, to, fromSymbol = quote, target, e.policy.QuoteSymbol
	}

	price := e.prices.GetPrice(ctx, from, intent.Network)
	if !price.IsPositive() {
		return models.TradeRequest{}, fmt.Errorf("%w: %s on %s", ErrNoPrice, fromSymbol, intent.Network)
	}
	amount := intent.ValueDelta.Abs().DivRound(price, amountPrecision)

	chain := e.chain(intent.Network)
	specific := e.registry.APIName(intent.Network)
	return models.TradeRequest{
		FromToken:         from,
		ToToken:           to,
		Amount:            amount.String(),
		FromChain:         chain,
		ToChain:           chain,
		FromSpecificChain: specific,
		ToSpecificChain:   specific,
		Reason: fmt.Sprintf("Rebalance: %s %s on %s toward %.0f%%",
			intent.Action, e.policy.TargetSymbol, intent.DisplayName, intent.TargetFraction*100),
	}, nil
}

func (e *TradeExecutor) chain(network string) string {
	if family := e.registry.Family(network); family != "" {
		return family
	}
	return "evm"
}

func (e *TradeExecutor) report(description string, err error) {
	if err != nil {
		logger.Error("Trade failed (%s): %v", description, err)
	} else {
		logger.Info("Trade executed: %s", description)
	}
	if e.OnResult != nil {
		e.OnResult(description, err)
	}
}

func executeBatch[T any](ctx context.Context, e *TradeExecutor, intents []T, build func(T) (string, models.TradeRequest, error)) BatchOutcome[T] {
	outcome := BatchOutcome[T]{Results: make([]Result[T], 0, len(intents))}

	for i, intent := range intents {
		if i > 0 {
			// cancellation shows up on the result below
			_ = utils.Sleep(ctx, e.delay)
		}

		result := Result[T]{Intent: intent}
		if err := ctx.Err(); err != nil {
			result.Err = err
		} else {
			description, request, err := build(intent)
			if err == nil {
				result.Transaction, err = e.Execute(ctx, request)
			}
			result.Err = err
			e.report(description, err)
		}

		if result.Err != nil {
			result.Error = result.Err.Error()
		}
		outcome.Results = append(outcome.Results, result)
	}

	return outcome
}
