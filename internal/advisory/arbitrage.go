package advisory

import (
	"fmt"
	"strings"
)

// NominalStake é o total usado para distribuir as stakes de arbitragem
const NominalStake = 100.0

type OutcomeOdds struct {
	Title string  `json:"title"`
	Odds  float64 `json:"odds"`
}

type ArbitrageStake struct {
	Outcome string  `json:"outcome"`
	Stake   float64 `json:"stake"`
	Odds    float64 `json:"odds"`
}

// Arbitrage informa se Σ1/odds < 1. Com arbitragem traz a margem de lucro e a
// divisão das stakes que iguala o payout; sem ela, a margem embutida (Margin).
type Arbitrage struct {
	IsArbitrage  bool             `json:"isArbitrage"`
	InverseSum   float64          `json:"inverseSum"`
	ProfitMargin float64          `json:"profitMargin,omitempty"`
	Stakes       []ArbitrageStake `json:"stakes,omitempty"`
	TotalStake   float64          `json:"totalStake,omitempty"`
	Margin       float64          `json:"margin,omitempty"`
}

// DetectArbitrage exige ao menos dois outcomes, todos com odd > 0
func DetectArbitrage(outcomes []OutcomeOdds) Arbitrage {
	if len(outcomes) < 2 {
		return Arbitrage{}
	}
	var inv float64
	for _, o := range outcomes {
		if o.Odds <= 0 {
			return Arbitrage{}
		}
		inv += 1 / o.Odds
	}

	if inv >= 1 {
		return Arbitrage{InverseSum: inv, Margin: round((inv-1)*100, 2)}
	}

	res := Arbitrage{
		IsArbitrage:  true,
		InverseSum:   inv,
		ProfitMargin: round((1-inv)*100, 2),
		TotalStake:   NominalStake,
	}
	for _, o := range outcomes {
		res.Stakes = append(res.Stakes, ArbitrageStake{
			Outcome: o.Title,
			Stake:   round((NominalStake/o.Odds)/inv, 2),
			Odds:    o.Odds,
		})
	}
	return res
}

// FormatOddsChange mostra a odd nova e, se mudou, a direção e o delta: "2.30 ▲ (+0.20)"
func FormatOddsChange(oldOdds, newOdds float64) string {
	if oldOdds == newOdds {
		return fmt.Sprintf("%.2f", newOdds)
	}
	change := newOdds - oldOdds
	dir := "▼"
	if change > 0 {
		dir = "▲"
	}
	return strings.Join([]string{fmt.Sprintf("%.2f", newOdds), dir, fmt.Sprintf("(%+.2f)", change)}, " ")
}
