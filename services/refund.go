// services/refund.go
package services

import (
	"upvote-club/config"

	"github.com/shopspring/decimal"
)

// RefundFor is the single refund formula used by every deletion path:
// max(0, (required - completed) * price).
func RefundFor(required, completed int, price int64) decimal.Decimal {
	missing := required - completed
	if missing <= 0 || price <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(missing)).Mul(decimal.NewFromInt(price))
}

// RewardPerAction is original_price / actions_required / 2. The other half of
// each action's price is platform margin.
func RewardPerAction(originalPrice int64, required int) decimal.Decimal {
	if required <= 0 || originalPrice <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(originalPrice).
		Div(decimal.NewFromInt(int64(required))).
		Div(decimal.NewFromInt(2)).
		Round(config.BalanceScale)
}
