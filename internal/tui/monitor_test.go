package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/recall-rebalance/internal/planner"
	"github.com/kelsos/recall-rebalance/internal/services"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

func TestAllocationRows(t *testing.T) {
	policy := planner.Policy{
		Threshold: 0.05,
		Networks: []planner.NetworkPolicy{
			{Network: "ethereum", DisplayName: "Ethereum", Target: 0.5},
			{Network: "base", DisplayName: "Base", Target: 0.5},
		},
	}
	distribution := planner.Distribution{
		Fractions: map[string]float64{"ethereum": 0.52, "solana": 0.48},
		Values:    map[string]decimal.Decimal{"ethereum": decimal.NewFromInt(520), "solana": decimal.NewFromInt(480)},
		Networks:  []string{"ethereum", "solana"},
	}

	rows := AllocationRows(distribution, policy)
	require.Len(t, rows, 3)

	assert.Equal(t, "ethereum", rows[0].Network)
	assert.True(t, rows[0].Within)
	assert.Equal(t, "$520.00", rows[0].Value)

	assert.Equal(t, "base", rows[1].Network)
	assert.Zero(t, rows[1].Current)
	assert.False(t, rows[1].Within)

	assert.Equal(t, "solana", rows[2].Network)
	assert.Zero(t, rows[2].Target)
}

func TestModelTracksStageAndLogs(t *testing.T) {
	m := NewModel("Test Monitor")

	m = update(t, m, StageUpdate{Stage: services.StageConvert, Progress: 0.2, Message: "Converting 2 holdings"})
	assert.Equal(t, services.StageConvert, m.stage)
	assert.Equal(t, "Converting 2 holdings", m.message)

	m = update(t, m, LogMessage{Message: "✅ 500 USDC → WBTC"})
	m = update(t, m, LogMessage{Message: "❌ buy WBTC on Base: price unavailable"})
	assert.Equal(t, 1, m.succeeded)
	assert.Equal(t, 1, m.failed)

	for i := 0; i < 20; i++ {
		m = update(t, m, LogMessage{Message: "tick"})
	}
	assert.Len(t, m.logs, maxLogs)

	m = update(t, m, RunFinished{Err: errors.New("boom")})
	assert.True(t, m.done)
	assert.Contains(t, m.logs[len(m.logs)-1], "Run failed: boom")

	view := m.View()
	assert.Contains(t, view, "Test Monitor")
	assert.Contains(t, view, "Run finished")
}

func TestModelQuits(t *testing.T) {
	m := NewModel("Test Monitor")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, "Shutting down...\n", next.View())
}
