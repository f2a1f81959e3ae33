package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/recall-rebalance/internal/services"
)

func TestResultFileName(t *testing.T) {
	ts := time.Date(2025, 7, 8, 9, 10, 11, 0, time.UTC)
	assert.Equal(t, "rebalance_results_20250708_091011.json", ResultFileName(ts))
}

func TestSaveRunResult(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	result := &services.RunResult{
		InitialValue:      decimal.NewFromInt(100),
		FinalValue:        decimal.RequireFromString("101.25"),
		ValueChange:       decimal.RequireFromString("1.25"),
		RebalanceTrades:   2,
		FinalDistribution: map[string]float64{"ethereum": 1},
		Timestamp:         time.Date(2025, 7, 8, 9, 10, 11, 0, time.UTC),
	}

	path, err := SaveRunResult(dir, result)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "rebalance_results_20250708_091011.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var saved map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, "101.25", saved["final_value"])
	assert.Equal(t, float64(2), saved["rebalance_trades"])
	assert.Equal(t, map[string]interface{}{"ethereum": float64(1)}, saved["final_distribution"])
}
