package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelsos/recall-rebalance/internal/services"
)

// ResultFileName returns the file name a run finished at t is saved under
func ResultFileName(t time.Time) string {
	return fmt.Sprintf("rebalance_results_%s.json", t.Format("20060102_150405"))
}

// SaveRunResult writes the result as indented JSON into dir and returns the file path
func SaveRunResult(dir string, result *services.RunResult) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	timestamp := result.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	filePath := filepath.Join(dir, ResultFileName(timestamp))

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run result: %w", err)
	}

	if err := os.WriteFile(filePath, jsonData, 0600); err != nil {
		return "", fmt.Errorf("failed to write results file: %w", err)
	}

	return filePath, nil
}
