package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kelsos/recall-rebalance/internal/client"
	"github.com/kelsos/recall-rebalance/internal/config"
	"github.com/kelsos/recall-rebalance/internal/logger"
	"github.com/kelsos/recall-rebalance/internal/models"
	"github.com/kelsos/recall-rebalance/internal/planner"
	"github.com/kelsos/recall-rebalance/internal/registry"
	"github.com/kelsos/recall-rebalance/internal/utils"
)

// Stage is a step of the rebalance cycle
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageConvert   Stage = "convert"
	StageSettle    Stage = "settle"
	StagePlan      Stage = "plan"
	StageRebalance Stage = "rebalance"
	StageReport    Stage = "report"
	StageComplete  Stage = "complete"
)

// Observer receives progress while a cycle runs. Calls come from the cycle's goroutine.
type Observer interface {
	Stage(stage Stage, progress float64, message string)
	Allocation(distribution planner.Distribution, policy planner.Policy)
	Log(message string)
}

type nopObserver struct{}

func (nopObserver) Stage(Stage, float64, string)                    {}
func (nopObserver) Allocation(planner.Distribution, planner.Policy) {}
func (nopObserver) Log(string)                                      {}

// RunOptions tune a single cycle
type RunOptions struct {
	DryRun   bool
	Observer Observer
}

// RunResult summarizes a full cycle
type RunResult struct {
	RunID              string                    `json:"run_id"`
	DryRun             bool                      `json:"dry_run"`
	InitialValue       decimal.Decimal           `json:"initial_value"`
	FinalValue         decimal.Decimal           `json:"final_value"`
	ValueChange        decimal.Decimal           `json:"value_change"`
	Conversions        []models.ConversionIntent `json:"conversions"`
	ConversionTrades   int                       `json:"conversion_trades"`
	ConversionFailures int                       `json:"conversion_failures"`
	Trades             []models.TradeIntent      `json:"trades"`
	RebalanceTrades    int                       `json:"rebalance_trades"`
	RebalanceFailures  int                       `json:"rebalance_failures"`
	Errors             []string                  `json:"errors,omitempty"`
	FinalDistribution  map[string]float64        `json:"final_distribution"`
	TargetDistribution map[string]float64        `json:"target_distribution"`
	Timestamp          time.Time                 `json:"timestamp"`
}

// NetworkStatus compares one network's current share with its target
type NetworkStatus struct {
	Network         string          `json:"network"`
	DisplayName     string          `json:"display_name"`
	Current         float64         `json:"current"`
	Target          float64         `json:"target"`
	Value           decimal.Decimal `json:"value"`
	WithinThreshold bool            `json:"within_threshold"`
}

// Status is the agent's current standing against its policy
type Status struct {
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	TargetSymbol   string          `json:"target_symbol"`
	TargetAmount   decimal.Decimal `json:"target_amount"`
	TargetValue    decimal.Decimal `json:"target_value"`
	// TargetShare is the tracked asset's share of the whole portfolio.
	TargetShare float64         `json:"target_share"`
	Threshold   float64         `json:"threshold"`
	Networks    []NetworkStatus `json:"networks"`
	// Untracked lists networks that hold the asset but are not in the policy.
	Untracked []NetworkStatus `json:"untracked,omitempty"`
	Unpriced  int             `json:"unpriced"`
	Balanced  bool            `json:"balanced"`
	Timestamp time.Time       `json:"timestamp"`
}

// PortfolioEntry is one holding with its resolved identity
type PortfolioEntry struct {
	Address     string          `json:"address"`
	Symbol      string          `json:"symbol"`
	Label       string          `json:"label,omitempty"`
	Network     string          `json:"network"`
	DisplayName string          `json:"display_name"`
	Family      string          `json:"family"`
	Amount      decimal.Decimal `json:"amount"`
	Price       decimal.Decimal `json:"price"`
	Value       decimal.Decimal `json:"value"`
	Tracked     bool            `json:"tracked"`
}

// Portfolio is the full breakdown of a snapshot
type Portfolio struct {
	TotalValue decimal.Decimal  `json:"total_value"`
	Entries    []PortfolioEntry `json:"entries"`
	Status     Status           `json:"status"`
}

// RebalanceService orchestrates the rebalance cycle
type RebalanceService struct {
	config    *config.Config
	registry  *registry.Registry
	planner   *planner.Planner
	snapshots *SnapshotService
	executor  *TradeExecutor
	now       func() time.Time
}

// NewRebalanceService creates a new rebalance service with all dependencies
func NewRebalanceService(cfg *config.Config, reg *registry.Registry, p *planner.Planner) *RebalanceService {
	apiClient := client.NewAPIClient(cfg)
	prices := NewPriceService(apiClient, reg)

	return &RebalanceService{
		config:    cfg,
		registry:  reg,
		planner:   p,
		snapshots: NewSnapshotService(apiClient, reg),
		executor:  NewTradeExecutor(apiClient, reg, prices, p.Policy(), cfg.TradeDelay),
		now:       time.Now,
	}
}

// Config returns the configuration the service was built with
func (s *RebalanceService) Config() *config.Config {
	return s.config
}

// Planner returns the planner the service plans with
func (s *RebalanceService) Planner() *planner.Planner {
	return s.planner
}

// Plan fetches a snapshot and plans against it without submitting anything
func (s *RebalanceService) Plan(ctx context.Context) (planner.Plan, error) {
	snapshot, err := s.snapshots.Fetch(ctx)
	if err != nil {
		return planner.Plan{}, err
	}
	return s.planner.Plan(snapshot.Holdings)
}

// Run performs a full cycle: convert everything into the tracked asset, then
// rebalance it across networks.
func (s *RebalanceService) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	policy := s.planner.Policy()
	result := &RunResult{
		RunID:              uuid.New().String(),
		DryRun:             opts.DryRun,
		TargetDistribution: targetDistribution(policy),
	}

	s.executor.OnResult = func(description string, err error) {
		if err != nil {
			observer.Log(fmt.Sprintf("❌ %s: %v", description, err))
		} else {
			observer.Log(fmt.Sprintf("✅ %s", description))
		}
	}
	defer func() { s.executor.OnResult = nil }()

	// Step 1: fetch the current portfolio
	observer.Stage(StageFetch, 0.05, "Fetching portfolio...")
	logger.Info("Fetching current portfolio...")
	snapshot, err := s.snapshots.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	initial, err := s.planner.Plan(snapshot.Holdings)
	if err != nil {
		return nil, err
	}
	result.InitialValue = portfolioValue(snapshot, initial)
	observer.Allocation(initial.Distribution, policy)
	logger.Info("Total portfolio value: %s", models.FormatUSD(result.InitialValue))

	// Step 2: convert every other holding into the tracked asset
	result.Conversions = initial.Conversions
	observer.Stage(StageConvert, 0.2, fmt.Sprintf("Converting %d holdings to %s...", len(initial.Conversions), policy.TargetSymbol))
	executed := 0
	if opts.DryRun {
		for _, c := range initial.Conversions {
			observer.Log("📝 " + c.Reason)
		}
	} else if len(initial.Conversions) > 0 {
		outcome := s.executor.ExecuteConversions(ctx, initial.Conversions)
		executed = outcome.Succeeded()
		result.ConversionTrades = executed
		result.ConversionFailures = outcome.Failed()
		result.Errors = appendErrors(result.Errors, outcome.Errors())
	}

	// Step 3: let conversions settle, then refetch
	current := initial
	if executed > 0 {
		observer.Stage(StageSettle, 0.4, "Waiting for conversions to settle...")
		logger.Info("Waiting %s for conversion trades to settle...", s.config.SettleDelay)
		if err := utils.Sleep(ctx, s.config.SettleDelay); err != nil {
			return nil, err
		}
		if snapshot, err = s.snapshots.Fetch(ctx); err != nil {
			return nil, err
		}
		if current, err = s.planner.Plan(snapshot.Holdings); err != nil {
			return nil, err
		}
		observer.Allocation(current.Distribution, policy)
	}

	// Step 4: plan the rebalance
	observer.Stage(StagePlan, 0.55, "Planning rebalance...")
	result.Trades = current.Trades
	if len(current.Trades) == 0 {
		logger.Info("Portfolio already balanced within threshold")
		observer.Log("✅ Already balanced within threshold")
	}

	// Step 5: execute the rebalance
	observer.Stage(StageRebalance, 0.7, fmt.Sprintf("Executing %d rebalance trades...", len(current.Trades)))
	if opts.DryRun {
		for _, t := range current.Trades {
			observer.Log(fmt.Sprintf("📝 %s %s on %s (%s)", t.Action, models.FormatUSD(t.ValueDelta.Abs()), t.DisplayName, policy.TargetSymbol))
		}
	} else if len(current.Trades) > 0 {
		outcome := s.executor.ExecuteTrades(ctx, current.Trades)
		result.RebalanceTrades = outcome.Succeeded()
		result.RebalanceFailures = outcome.Failed()
		result.Errors = appendErrors(result.Errors, outcome.Errors())
	}

	// Step 6: final results
	observer.Stage(StageReport, 0.9, "Fetching final portfolio...")
	final := current
	if !opts.DryRun && (executed > 0 || result.RebalanceTrades > 0) {
		if snapshot, err = s.snapshots.Fetch(ctx); err != nil {
			return nil, err
		}
		if final, err = s.planner.Plan(snapshot.Holdings); err != nil {
			return nil, err
		}
		observer.Allocation(final.Distribution, policy)
	}
	result.FinalValue = portfolioValue(snapshot, final)
	result.ValueChange = result.FinalValue.Sub(result.InitialValue)
	result.FinalDistribution = final.Distribution.Fractions
	result.Timestamp = s.now()

	logger.Info("Portfolio value: %s → %s (%s)", models.FormatUSD(result.InitialValue), models.FormatUSD(result.FinalValue), models.FormatUSD(result.ValueChange))
	observer.Stage(StageComplete, 1.0, "Rebalance completed")
	return result, nil
}

// Status reports the tracked asset's standing against the policy
func (s *RebalanceService) Status(ctx context.Context) (*Status, error) {
	snapshot, err := s.snapshots.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	plan, err := s.planner.Plan(snapshot.Holdings)
	if err != nil {
		return nil, err
	}
	status := s.status(snapshot, plan)
	return &status, nil
}

// Portfolio returns every holding with its resolved identity
func (s *RebalanceService) Portfolio(ctx context.Context) (*Portfolio, error) {
	snapshot, err := s.snapshots.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	plan, err := s.planner.Plan(snapshot.Holdings)
	if err != nil {
		return nil, err
	}

	policy := s.planner.Policy()
	entries := make([]PortfolioEntry, 0, len(plan.Holdings))
	for _, rh := range plan.Holdings {
		entries = append(entries, PortfolioEntry{
			Address:     rh.Holding.Address,
			Symbol:      rh.Symbol,
			Label:       rh.Holding.Label,
			Network:     rh.Network,
			DisplayName: s.registry.DisplayName(rh.Network),
			Family:      s.registry.Family(rh.Network),
			Amount:      rh.Holding.Amount,
			Price:       rh.Holding.Price,
			Value:       rh.Value(),
			Tracked:     strings.EqualFold(rh.Symbol, policy.TargetSymbol),
		})
	}

	return &Portfolio{
		TotalValue: portfolioValue(snapshot, plan),
		Entries:    entries,
		Status:     s.status(snapshot, plan),
	}, nil
}

func (s *RebalanceService) status(snapshot models.Snapshot, plan planner.Plan) Status {
	policy := s.planner.Policy()
	d := plan.Distribution
	status := Status{
		PortfolioValue: portfolioValue(snapshot, plan),
		TargetSymbol:   policy.TargetSymbol,
		TargetAmount:   d.TotalAmount,
		TargetValue:    d.Total,
		Threshold:      policy.Threshold,
		Unpriced:       d.Unpriced,
		Balanced:       len(plan.Trades) == 0,
		Timestamp:      s.now(),
	}
	if status.PortfolioValue.IsPositive() {
		status.TargetShare = d.Total.Div(status.PortfolioValue).InexactFloat64()
	}

	inPolicy := make(map[string]bool, len(policy.Networks))
	for _, n := range policy.Networks {
		inPolicy[n.Network] = true
		current := d.Fraction(n.Network)
		status.Networks = append(status.Networks, NetworkStatus{
			Network:         n.Network,
			DisplayName:     n.DisplayName,
			Current:         current,
			Target:          n.Target,
			Value:           d.Values[n.Network],
			WithinThreshold: withinThreshold(current, n.Target, policy.Threshold),
		})
	}
	for _, network := range d.Networks {
		if inPolicy[network] {
			continue
		}
		status.Untracked = append(status.Untracked, NetworkStatus{
			Network:     network,
			DisplayName: s.registry.DisplayName(network),
			Current:     d.Fraction(network),
			Value:       d.Values[network],
		})
	}
	return status
}

func withinThreshold(current, target, threshold float64) bool {
	drift := current - target
	if drift < 0 {
		drift = -drift
	}
	return drift <= threshold
}

// portfolioValue prefers the venue's own total and falls back to the priced holdings.
func portfolioValue(snapshot models.Snapshot, plan planner.Plan) decimal.Decimal {
	if snapshot.TotalValue.IsPositive() {
		return snapshot.TotalValue
	}
	return plan.PortfolioValue
}

func targetDistribution(policy planner.Policy) map[string]float64 {
	out := make(map[string]float64, len(policy.Networks))
	for _, n := range policy.Networks {
		out[n.Network] = n.Target
	}
	return out
}

func appendErrors(dst []string, errs []error) []string {
	for _, err := range errs {
		dst = append(dst, err.Error())
	}
	return dst
}
