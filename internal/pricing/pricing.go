// Package pricing recalcula as odds de um evento a partir do volume apostado.
//
// Cada passada combina a participação de volume de cada outcome com a
// probabilidade implícita da odd atual, normaliza, converte de volta em odd
// com a margem da casa e suaviza contra a odd anterior. O resultado é
// limitado a [MinOdds, MaxOdds] e arredondado a duas casas.
package pricing

import (
	"math"

	"github.com/radieske/bet-market-engine/internal/model"
	"github.com/radieske/bet-market-engine/internal/quote"
)

// Pesos do blend de probabilidade e da suavização
const (
	VolumeWeight  = 0.7
	ImpliedWeight = 0.3

	NewOddsWeight      = 0.7
	PreviousOddsWeight = 0.3
)

// Limites das odds publicadas
const (
	MinOdds = 1.01
	MaxOdds = 50.0
)

// Quote é o preço recalculado de um outcome
type Quote struct {
	OutcomeID    int64
	Title        string
	Probability  float64 // probabilidade normalizada usada na conversão
	RawOdds      float64 // odd antes da suavização
	Odds         float64 // odd final (suavizada, limitada, 2 casas)
	PreviousOdds float64
}

// Params são os parâmetros de mercado usados na conversão probabilidade → odd
type Params struct {
	HouseEdge   float64
	DefaultOdds float64
}

// Probabilities devolve a probabilidade normalizada de cada outcome (mesma ordem).
// Sem volume no mercado todos recebem 1/N.
func Probabilities(outcomes []model.Outcome) []float64 {
	n := len(outcomes)
	probs := make([]float64, n)
	if n == 0 {
		return probs
	}

	var total float64
	volumes := make([]float64, n)
	for i, o := range outcomes {
		volumes[i], _ = o.TotalWagered.Float64()
		total += volumes[i]
	}

	if total <= 0 {
		for i := range probs {
			probs[i] = 1 / float64(n)
		}
		return probs
	}

	var sum float64
	for i, o := range outcomes {
		implied := 0.0
		if o.Odds > 0 {
			implied = quote.ProbabilityFromOdds(o.Odds)
		}
		probs[i] = VolumeWeight*(volumes[i]/total) + ImpliedWeight*implied
		sum += probs[i]
	}
	if sum > 0 {
		for i := range probs {
			probs[i] /= sum
		}
	}
	return probs
}

// Compute produz as novas odds do conjunto de outcomes de um evento. Função pura.
func Compute(outcomes []model.Outcome, p Params) []Quote {
	probs := Probabilities(outcomes)
	quotes := make([]Quote, len(outcomes))
	for i, o := range outcomes {
		raw := quote.OddsFromProbability(probs[i], p.HouseEdge, p.DefaultOdds)
		quotes[i] = Quote{
			OutcomeID:    o.ID,
			Title:        o.Title,
			Probability:  probs[i],
			RawOdds:      raw,
			Odds:         Smooth(raw, o.Odds),
			PreviousOdds: o.Odds,
		}
	}
	return quotes
}

// Smooth aplica a média ponderada com a odd anterior, o clamp e o arredondamento
func Smooth(newOdds, previous float64) float64 {
	s := NewOddsWeight*newOdds + PreviousOddsWeight*previous
	s = math.Max(MinOdds, math.Min(s, MaxOdds))
	return math.Round(s*100) / 100
}
