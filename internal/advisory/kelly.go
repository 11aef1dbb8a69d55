// Package advisory reúne cálculos somente-leitura exibidos ao apostador:
// Kelly, valor esperado, arbitragem e simulação de payouts. Nada aqui
// altera saldo, evento ou aposta.
package advisory

import "math"

// MaxKellyFraction limita a fração do bankroll sugerida
const MaxKellyFraction = 0.25

type Recommendation string

const (
	Recommended    Recommendation = "RECOMMENDED"
	Caution        Recommendation = "CAUTION"
	NotRecommended Recommendation = "NOT_RECOMMENDED"
)

// KellyAdvice é o resultado de Kelly
type KellyAdvice struct {
	Recommendation  Recommendation `json:"recommendation"`
	Confidence      int            `json:"confidence"`
	ExpectedValue   float64        `json:"expectedValue"` // por unidade apostada
	KellyStake      float64        `json:"kellyStake"`
	KellyPercentage float64        `json:"kellyPercentage"`
}

// KellyFraction = (b·p − q)/b com b = odds−1, limitada a [0, MaxKellyFraction]
func KellyFraction(probability, odds float64) float64 {
	if probability <= 0 || odds <= 1 {
		return 0
	}
	b := odds - 1
	f := (b*probability - (1 - probability)) / b
	return math.Max(0, math.Min(f, MaxKellyFraction))
}

// KellyStake é a fração de Kelly aplicada ao bankroll
func KellyStake(probability, odds, bankroll float64) float64 {
	if bankroll <= 0 {
		return 0
	}
	return KellyFraction(probability, odds) * bankroll
}

// ExpectedValue = p·stake·odds − (1−p)·stake
func ExpectedValue(probability, odds, stake float64) float64 {
	return probability*stake*odds - (1-probability)*stake
}

// GetKellyRecommendation combina EV por unidade e stake de Kelly numa recomendação
func GetKellyRecommendation(probability, odds, balance float64) KellyAdvice {
	ev := ExpectedValue(probability, odds, 1)
	stake := KellyStake(probability, odds, balance)

	adv := KellyAdvice{
		ExpectedValue: round(ev, 3),
		KellyStake:    round(stake, 2),
	}
	switch {
	case ev > 0 && stake > 0:
		adv.Recommendation = Recommended
		adv.Confidence = int(math.Min(100, math.Trunc(adv.ExpectedValue*100)))
	case ev > 0:
		adv.Recommendation = Caution
		adv.Confidence = 30
	default:
		adv.Recommendation = NotRecommended
	}
	if balance > 0 {
		adv.KellyPercentage = round(stake/balance*100, 1)
	}
	return adv
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
