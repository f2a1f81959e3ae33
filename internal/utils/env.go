package utils

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/kelsos/recall-rebalance/internal/logger"
)

// LoadEnvironment loads environment variables from .env files in the working
// directory and next to the executable. Variables already set are not overridden.
func LoadEnvironment() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded from current directory: %v", err)
	} else {
		logger.Info("Loaded .env file from current directory")
	}

	execPath, err := os.Executable()
	if err != nil {
		logger.Debug("Could not determine executable path: %v", err)
		return
	}

	execDir := filepath.Dir(execPath)
	if err := godotenv.Load(filepath.Join(execDir, ".env")); err != nil {
		logger.Debug("No .env file loaded from app directory (%s): %v", execDir, err)
	} else {
		logger.Info("Loaded .env file from app directory: %s", execDir)
	}
}
