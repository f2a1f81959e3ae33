package planner

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/kelsos/recall-rebalance/internal/models"
)

// PlanTrades emits one intent per policy network whose drift exceeds the threshold
// and whose value delta clears the dust floor. Both must hold. Intents follow policy
// declaration order.
func PlanTrades(fractions map[string]float64, totalValue decimal.Decimal, policy Policy) []models.TradeIntent {
	intents := make([]models.TradeIntent, 0, len(policy.Networks))

	for _, target := range policy.Networks {
		current := fractions[target.Network]
		drift := math.Abs(current - target.Target)
		if drift <= policy.Threshold {
			continue
		}

		delta := totalValue.Mul(decimal.NewFromFloat(target.Target - current))
		if delta.Abs().LessThanOrEqual(policy.MinTradeValue) {
			continue
		}

		action := models.ActionSell
		if delta.IsPositive() {
			action = models.ActionBuy
		}

		displayName := target.DisplayName
		if displayName == "" {
			displayName = target.Network
		}

		intents = append(intents, models.TradeIntent{
			Network:         target.Network,
			DisplayName:     displayName,
			CurrentFraction: current,
			TargetFraction:  target.Target,
			Drift:           drift,
			ValueDelta:      delta,
			Action:          action,
		})
	}

	return intents
}
