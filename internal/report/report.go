// Package report renders status, portfolio, plan and run summaries as markdown for the terminal.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/kelsos/recall-rebalance/internal/models"
	"github.com/kelsos/recall-rebalance/internal/planner"
	"github.com/kelsos/recall-rebalance/internal/services"
)

const wordWrap = 100

// Render turns markdown into styled terminal output. Style "" picks one from the terminal;
// "notty" gives plain text.
func Render(markdown, style string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(wordWrap)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStylePath(style))
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return out, nil
}

// Status renders the tracked asset's standing against the policy
func Status(status *services.Status) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s status\n\n", status.TargetSymbol)
	fmt.Fprintf(&b, "- **Portfolio value:** %s\n", models.FormatUSD(status.PortfolioValue))
	fmt.Fprintf(&b, "- **%s holdings:** %s (%s)\n", status.TargetSymbol, status.TargetAmount.String(), models.FormatUSD(status.TargetValue))
	fmt.Fprintf(&b, "- **Share of portfolio:** %s\n", percent(status.TargetShare))
	if status.Unpriced > 0 {
		fmt.Fprintf(&b, "- **Unpriced holdings:** %d (left out of the distribution)\n", status.Unpriced)
	}
	fmt.Fprintf(&b, "- **Updated:** %s\n\n", status.Timestamp.Format("2006-01-02 15:04:05"))

	b.WriteString("| Network | Value | Current | Target | |\n")
	b.WriteString("| --- | ---: | ---: | ---: | --- |\n")
	for _, n := range status.Networks {
		mark := "✅"
		if !n.WithinThreshold {
			mark = "⚠️"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", n.DisplayName, models.FormatUSD(n.Value), percent(n.Current), percent(n.Target), mark)
	}
	for _, n := range status.Untracked {
		fmt.Fprintf(&b, "| %s | %s | %s | - | not in policy |\n", n.DisplayName, models.FormatUSD(n.Value), percent(n.Current))
	}

	if status.Balanced {
		fmt.Fprintf(&b, "\nBalanced within %s of target.\n", percent(status.Threshold))
	} else {
		fmt.Fprintf(&b, "\nOut of balance: at least one network drifts more than %s.\n", percent(status.Threshold))
	}
	return b.String()
}

// Portfolio renders every holding, largest value first, with the status summary
func Portfolio(portfolio *services.Portfolio) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Portfolio\n\n**Total value:** %s\n\n", models.FormatUSD(portfolio.TotalValue))

	entries := make([]services.PortfolioEntry, len(portfolio.Entries))
	copy(entries, portfolio.Entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value.GreaterThan(entries[j].Value)
	})

	b.WriteString("| Token | Network | Amount | Value | Share |\n")
	b.WriteString("| --- | --- | ---: | ---: | ---: |\n")
	for _, e := range entries {
		value := "unpriced"
		share := "-"
		if !e.Price.IsZero() {
			value = models.FormatUSD(e.Value)
			if portfolio.TotalValue.IsPositive() {
				share = percent(e.Value.Div(portfolio.TotalValue).InexactFloat64())
			}
		}
		fmt.Fprintf(&b, "| %s | %s (%s) | %s | %s | %s |\n",
			symbolCell(e), e.DisplayName, familyName(e.Family), e.Amount.String(), value, share)
	}

	b.WriteString("\n")
	b.WriteString(Status(&portfolio.Status))
	return b.String()
}

// Plan renders a dry-run plan
func Plan(plan planner.Plan, policy planner.Policy) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Rebalance plan for %s\n\n", policy.TargetSymbol)
	fmt.Fprintf(&b, "**Portfolio value:** %s, **%s value:** %s\n\n",
		models.FormatUSD(plan.PortfolioValue), policy.TargetSymbol, models.FormatUSD(plan.Distribution.Total))

	b.WriteString("## Conversions\n\n")
	if len(plan.Conversions) == 0 {
		b.WriteString("Nothing to convert.\n\n")
	} else {
		b.WriteString("| From | Amount | Value | To |\n")
		b.WriteString("| --- | ---: | ---: | --- |\n")
		for _, c := range plan.Conversions {
			fmt.Fprintf(&b, "| %s on %s | %s | %s | %s on %s |\n",
				c.SourceSymbol, c.SourceNetwork, c.Amount.String(), models.FormatUSD(c.Value), c.DestinationSymbol, c.DestinationNetwork)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Rebalance trades\n\n")
	b.WriteString(tradeTable(plan.Trades, policy))
	if len(plan.Conversions) > 0 && len(plan.Trades) > 0 {
		b.WriteString("\nTrades are planned before conversions settle and will be recomputed on a real run.\n")
	}
	return b.String()
}

// Run renders the outcome of a full cycle
func Run(result *services.RunResult) string {
	var b strings.Builder

	title := "Rebalance run"
	if result.DryRun {
		title = "Rebalance dry run"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- **Portfolio value:** %s → %s (%s)\n",
		models.FormatUSD(result.InitialValue), models.FormatUSD(result.FinalValue), models.FormatUSD(result.ValueChange))
	fmt.Fprintf(&b, "- **Conversions:** %d planned, %d executed, %d failed\n",
		len(result.Conversions), result.ConversionTrades, result.ConversionFailures)
	fmt.Fprintf(&b, "- **Rebalance trades:** %d planned, %d executed, %d failed\n",
		len(result.Trades), result.RebalanceTrades, result.RebalanceFailures)
	fmt.Fprintf(&b, "- **Finished:** %s\n", result.Timestamp.Format("2006-01-02 15:04:05"))
	if result.RunID != "" {
		fmt.Fprintf(&b, "- **Run ID:** %s\n", result.RunID)
	}
	b.WriteString("\n")

	b.WriteString("| Network | Final | Target |\n")
	b.WriteString("| --- | ---: | ---: |\n")
	for _, network := range distributionNetworks(result) {
		target := "-"
		if t, ok := result.TargetDistribution[network]; ok {
			target = percent(t)
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", network, percent(result.FinalDistribution[network]), target)
	}

	if len(result.Errors) > 0 {
		b.WriteString("\n## Failures\n\n")
		for _, e := range result.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}
	return b.String()
}

func tradeTable(trades []models.TradeIntent, policy planner.Policy) string {
	if len(trades) == 0 {
		return fmt.Sprintf("Balanced within %s, no trades needed.\n", percent(policy.Threshold))
	}

	var b strings.Builder
	b.WriteString("| Network | Action | Current | Target | Drift | Value |\n")
	b.WriteString("| --- | --- | ---: | ---: | ---: | ---: |\n")
	for _, t := range trades {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			t.DisplayName, t.Action, percent(t.CurrentFraction), percent(t.TargetFraction), percent(t.Drift), models.FormatUSD(t.ValueDelta.Abs()))
	}
	return b.String()
}

// distributionNetworks lists target networks first, then any others, sorted.
func distributionNetworks(result *services.RunResult) []string {
	var targets, others []string
	for network := range result.TargetDistribution {
		targets = append(targets, network)
	}
	for network := range result.FinalDistribution {
		if _, ok := result.TargetDistribution[network]; !ok {
			others = append(others, network)
		}
	}
	sort.Strings(targets)
	sort.Strings(others)
	return append(targets, others...)
}

func symbolCell(e services.PortfolioEntry) string {
	symbol := e.Symbol
	if e.Label != "" && !strings.EqualFold(e.Label, e.Symbol) {
		symbol = fmt.Sprintf("%s (%s)", e.Symbol, e.Label)
	}
	if e.Tracked {
		symbol = "**" + symbol + "**"
	}
	return symbol
}

func familyName(family string) string {
	switch family {
	case "evm":
		return "EVM"
	case "svm":
		return "Solana VM"
	case "":
		return "unknown"
	default:
		return family
	}
}

func percent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}
