package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SandboxURL    = "https://api.sandbox.competitions.recall.network"
	ProductionURL = "https://api.competitions.recall.network"
)

// Config holds all application configuration
type Config struct {
	// API settings
	APIKey     string
	BaseURL    string
	Production bool
	Timeout    time.Duration

	// Retry settings, applied to reads only
	MaxRetries int
	RetryDelay time.Duration

	// Execution pacing
	TradeDelay  time.Duration
	SettleDelay time.Duration

	// Policy and registry sources. Empty paths use the built-in defaults.
	PolicyFile   string
	RegistryFile string

	// Policy overrides; nil keeps the policy's own value
	Threshold     *float64
	MinTradeValue *decimal.Decimal

	ResultsDir string
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		MaxRetries:  3,
		RetryDelay:  time.Second,
		TradeDelay:  2 * time.Second,
		SettleDelay: 10 * time.Second,
		ResultsDir:  ".",
	}
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() {
	if key := os.Getenv("RECALL_API_KEY"); key != "" {
		c.APIKey = key
	}

	if production := os.Getenv("RECALL_PRODUCTION"); production != "" {
		if p, err := strconv.ParseBool(production); err == nil {
			c.Production = p
		}
	}

	if url := os.Getenv("RECALL_API_URL"); url != "" {
		c.BaseURL = url
	}

	if policyFile := os.Getenv("REBALANCE_POLICY_FILE"); policyFile != "" {
		c.PolicyFile = policyFile
	}

	if registryFile := os.Getenv("REBALANCE_REGISTRY_FILE"); registryFile != "" {
		c.RegistryFile = registryFile
	}

	if threshold := os.Getenv("REBALANCE_THRESHOLD"); threshold != "" {
		if t, err := strconv.ParseFloat(threshold, 64); err == nil {
			c.Threshold = &t
		}
	}

	if minValue := os.Getenv("REBALANCE_MIN_TRADE_VALUE"); minValue != "" {
		if v, err := decimal.NewFromString(minValue); err == nil {
			c.MinTradeValue = &v
		}
	}

	if delay := os.Getenv("REBALANCE_TRADE_DELAY"); delay != "" {
		if d, err := strconv.Atoi(delay); err == nil {
			c.TradeDelay = time.Duration(d) * time.Millisecond
		}
	}

	if delay := os.Getenv("REBALANCE_SETTLE_DELAY"); delay != "" {
		if d, err := strconv.Atoi(delay); err == nil {
			c.SettleDelay = time.Duration(d) * time.Millisecond
		}
	}

	if retries := os.Getenv("REBALANCE_MAX_RETRIES"); retries != "" {
		if r, err := strconv.Atoi(retries); err == nil {
			c.MaxRetries = r
		}
	}

	if delay := os.Getenv("REBALANCE_RETRY_DELAY"); delay != "" {
		if d, err := strconv.Atoi(delay); err == nil {
			c.RetryDelay = time.Duration(d) * time.Millisecond
		}
	}

	if timeout := os.Getenv("REBALANCE_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			c.Timeout = time.Duration(t) * time.Second
		}
	}

	if resultsDir := os.Getenv("REBALANCE_RESULTS_DIR"); resultsDir != "" {
		c.ResultsDir = resultsDir
	}
}

// SetBaseURL picks the sandbox or production endpoint unless a URL was given explicitly
func (c *Config) SetBaseURL() {
	if c.BaseURL != "" {
		c.BaseURL = strings.TrimRight(c.BaseURL, "/")
		return
	}
	if c.Production {
		c.BaseURL = ProductionURL
	} else {
		c.BaseURL = SandboxURL
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("RECALL_API_KEY is not set")
	}

	if c.BaseURL == "" {
		return fmt.Errorf("API base URL cannot be empty")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %s", c.Timeout)
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must be non-negative, got: %d", c.MaxRetries)
	}

	if c.TradeDelay < 0 || c.SettleDelay < 0 || c.RetryDelay < 0 {
		return fmt.Errorf("delays must be non-negative")
	}

	return nil
}
