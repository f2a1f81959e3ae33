package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/kelsos/recall-rebalance/internal/config"
	"github.com/kelsos/recall-rebalance/internal/logger"
	"github.com/kelsos/recall-rebalance/internal/planner"
	"github.com/kelsos/recall-rebalance/internal/registry"
	"github.com/kelsos/recall-rebalance/internal/report"
	"github.com/kelsos/recall-rebalance/internal/services"
	"github.com/kelsos/recall-rebalance/internal/storage"
	"github.com/kelsos/recall-rebalance/internal/tui"
	"github.com/kelsos/recall-rebalance/internal/utils"
)

type options struct {
	policyFile    string
	registryFile  string
	apiURL        string
	production    bool
	threshold     float64
	minTradeValue string
	style         string
	plain         bool
}

// newService builds the rebalance service from the environment with flag overrides on top.
func newService(cmd *cobra.Command, opts *options) (*services.RebalanceService, error) {
	cfg := config.NewConfig()
	cfg.LoadFromEnvironment()

	flags := cmd.Flags()
	if flags.Changed("policy") {
		cfg.PolicyFile = opts.policyFile
	}
	if flags.Changed("registry") {
		cfg.RegistryFile = opts.registryFile
	}
	if flags.Changed("api-url") {
		cfg.BaseURL = opts.apiURL
	}
	if flags.Changed("production") {
		cfg.Production = opts.production
	}
	if flags.Changed("threshold") {
		cfg.Threshold = &opts.threshold
	}
	if flags.Changed("min-trade-value") {
		minTradeValue, err := decimal.NewFromString(opts.minTradeValue)
		if err != nil {
			return nil, fmt.Errorf("invalid --min-trade-value %q: %w", opts.minTradeValue, err)
		}
		cfg.MinTradeValue = &minTradeValue
	}

	cfg.SetBaseURL()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	reg := registry.Default()
	if cfg.RegistryFile != "" {
		var err error
		if reg, err = registry.LoadFile(cfg.RegistryFile); err != nil {
			return nil, err
		}
	}

	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	p, err := planner.New(reg, policy)
	if err != nil {
		return nil, err
	}

	logger.Debug("Using %s with %d target networks for %s", cfg.BaseURL, len(p.Policy().Networks), p.Policy().TargetSymbol)
	return services.NewRebalanceService(cfg, reg, p), nil
}

func render(opts *options, markdown string) {
	style := opts.style
	if opts.plain {
		style = "notty"
	}
	out, err := report.Render(markdown, style)
	if err != nil {
		logger.Warn("Failed to render report: %v", err)
		out = markdown
	}
	fmt.Print(out)
}

func main() {
	utils.LoadEnvironment()
	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	opts := &options{}
	var (
		dryRun bool
		save   bool
		useTUI bool
	)

	rootCmd := &cobra.Command{
		Use:   "recall-rebalance",
		Short: "Keep a token spread across networks on Recall",
		Long: `recall-rebalance tracks one asset across several networks on the Recall trading venue,
converts stray holdings into it and trades it back towards per-network target allocations.`,
		SilenceUsage: true,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a full convert and rebalance cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newService(cmd, opts)
			if err != nil {
				return err
			}

			var result *services.RunResult
			if useTUI {
				if err := logger.InitFileOnly(); err != nil {
					return err
				}
				monitor := tui.NewRunMonitor(service)
				monitor.Start("Recall Rebalance Monitor")
				result, err = monitor.Run(ctx, services.RunOptions{DryRun: dryRun})
			} else {
				result, err = service.Run(ctx, services.RunOptions{DryRun: dryRun})
			}
			if err != nil {
				return err
			}

			if save {
				path, err := storage.SaveRunResult(service.Config().ResultsDir, result)
				if err != nil {
					logger.Error("Failed to save results: %v", err)
				} else {
					logger.Info("Results saved to %s", path)
				}
			}

			render(opts, report.Run(result))
			return nil
		},
	}
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan without submitting any trades")
	runCmd.Flags().BoolVar(&save, "save", false, "Write the run result to a JSON file")
	runCmd.Flags().BoolVar(&useTUI, "tui", false, "Follow the run in an interactive monitor")

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the conversions and trades a run would make",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newService(cmd, opts)
			if err != nil {
				return err
			}
			plan, err := service.Plan(ctx)
			if err != nil {
				return err
			}
			render(opts, report.Plan(plan, service.Planner().Policy()))
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the tracked asset's allocation against the policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newService(cmd, opts)
			if err != nil {
				return err
			}
			status, err := service.Status(ctx)
			if err != nil {
				return err
			}
			render(opts, report.Status(status))
			return nil
		},
	}

	portfolioCmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Show every holding on the venue",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newService(cmd, opts)
			if err != nil {
				return err
			}
			portfolio, err := service.Portfolio(ctx)
			if err != nil {
				return err
			}
			render(opts, report.Portfolio(portfolio))
			return nil
		},
	}

	// Add flags
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.policyFile, "policy", "p", "", "Path to a policy YAML file (default: built-in policy)")
	flags.StringVarP(&opts.registryFile, "registry", "r", "", "Path to an asset registry YAML file (default: built-in registry)")
	flags.StringVar(&opts.apiURL, "api-url", "", "Override the Recall API base URL")
	flags.BoolVar(&opts.production, "production", false, "Use the production API instead of the sandbox")
	flags.Float64VarP(&opts.threshold, "threshold", "t", 0, "Drift threshold as a fraction, e.g. 0.05")
	flags.StringVar(&opts.minTradeValue, "min-trade-value", "", "Smallest trade worth making, in USD")
	flags.StringVar(&opts.style, "style", "", "glamour style for reports (default: picked from the terminal)")
	flags.BoolVar(&opts.plain, "plain", false, "Print reports without styling")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(portfolioCmd)

	// Execute the root command
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logger.Error("Command failed: %v", err)
	}
	stop()
	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}
