package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kelsos/recall-rebalance/internal/models"
	"github.com/kelsos/recall-rebalance/internal/planner"
	"github.com/kelsos/recall-rebalance/internal/services"
)

// RunMonitor drives a rebalance cycle behind a live terminal view.
// It implements services.Observer.
type RunMonitor struct {
	service *services.RebalanceService
	program *tea.Program
	result  *services.RunResult
	err     error
}

func NewRunMonitor(service *services.RebalanceService) *RunMonitor {
	return &RunMonitor{
		service: service,
	}
}

func (rm *RunMonitor) Start(title string) {
	rm.program = tea.NewProgram(NewModel(title), tea.WithAltScreen())
}

func (rm *RunMonitor) Stage(stage services.Stage, progress float64, message string) {
	rm.send(StageUpdate{Stage: stage, Progress: progress, Message: message})
}

func (rm *RunMonitor) Allocation(distribution planner.Distribution, policy planner.Policy) {
	rm.send(AllocationUpdate{Rows: AllocationRows(distribution, policy)})
}

func (rm *RunMonitor) Log(message string) {
	rm.send(LogMessage{Message: message})
}

func (rm *RunMonitor) send(msg tea.Msg) {
	if rm.program != nil {
		rm.program.Send(msg)
	}
}

// Run executes the cycle in the background and blocks until the user quits.
// Quitting early cancels the cycle.
func (rm *RunMonitor) Run(ctx context.Context, opts services.RunOptions) (*services.RunResult, error) {
	if rm.program == nil {
		rm.Start("Recall Rebalance Monitor")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		opts.Observer = rm
		rm.result, rm.err = rm.service.Run(ctx, opts)
		rm.send(RunFinished{Err: rm.err})
	}()

	if _, err := rm.program.Run(); err != nil {
		cancel()
		<-done
		return rm.result, fmt.Errorf("failed to run TUI: %w", err)
	}

	cancel()
	<-done
	return rm.result, rm.err
}

// AllocationRows pairs every policy network with its share of distribution, then adds
// networks that hold the asset outside the policy.
func AllocationRows(distribution planner.Distribution, policy planner.Policy) []AllocationRow {
	rows := make([]AllocationRow, 0, len(policy.Networks))
	seen := make(map[string]bool, len(policy.Networks))

	for _, n := range policy.Networks {
		seen[n.Network] = true
		current := distribution.Fraction(n.Network)
		drift := current - n.Target
		rows = append(rows, AllocationRow{
			Network:     n.Network,
			DisplayName: n.DisplayName,
			Current:     current,
			Target:      n.Target,
			Value:       models.FormatUSD(distribution.Values[n.Network]),
			Within:      drift <= policy.Threshold && -drift <= policy.Threshold,
		})
	}
	for _, network := range distribution.Networks {
		if seen[network] {
			continue
		}
		rows = append(rows, AllocationRow{
			Network:     network,
			DisplayName: network,
			Current:     distribution.Fraction(network),
			Value:       models.FormatUSD(distribution.Values[network]),
			Within:      false,
		})
	}
	return rows
}
