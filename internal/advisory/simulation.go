package advisory

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/bet-market-engine/internal/model"
)

// PayoutScenario é quanto a casa paga e lucra se o outcome vencer
type PayoutScenario struct {
	OutcomeID   int64           `json:"outcomeId"`
	Title       string          `json:"title"`
	TotalPayout decimal.Decimal `json:"totalPayout"`
	HouseProfit decimal.Decimal `json:"houseProfit"`
	HouseMargin float64         `json:"houseMargin"` // % do pool, 1 casa
	WinningBets int             `json:"winningBets"`
}

// SimulatePayouts calcula, para cada outcome, o resultado da casa caso ele vença.
// Usa os payouts travados das apostas (Liability), nunca a odd corrente.
func SimulatePayouts(sum model.EventSummary) []PayoutScenario {
	pool := sum.TotalStaked
	out := make([]PayoutScenario, 0, len(sum.Outcomes))
	for _, o := range sum.Outcomes {
		profit := pool.Sub(o.Liability)
		sc := PayoutScenario{
			OutcomeID:   o.Outcome.ID,
			Title:       o.Outcome.Title,
			TotalPayout: o.Liability.Round(2),
			HouseProfit: profit.Round(2),
			WinningBets: o.BetCount,
		}
		if pool.IsPositive() {
			sc.HouseMargin, _ = profit.Div(pool).Mul(decimal.NewFromInt(100)).Round(1).Float64()
		}
		out = append(out, sc)
	}
	return out
}
