// Package quote converte probabilidade em odd decimal e vice-versa.
// Funções puras, sem estado.
package quote

// MaxInflatedProbability é o teto da probabilidade já inflada pela margem da
// casa; impede odds próximas de 1.0 que deixariam o apostador no zero-a-zero.
const MaxInflatedProbability = 0.95

// ProbabilityFromOdds retorna 1/odds. Pré-condição: odds > 0.
func ProbabilityFromOdds(odds float64) float64 {
	return 1.0 / odds
}

// OddsFromProbability aplica a margem da casa e devolve a odd decimal.
// Para probabilidade <= 0 devolve defaultOdds. houseEdge deve estar em [0, 1)
// e não é validado aqui.
func OddsFromProbability(probability, houseEdge, defaultOdds float64) float64 {
	if probability <= 0 {
		return defaultOdds
	}
	adjusted := probability * (1 + houseEdge)
	if adjusted > MaxInflatedProbability {
		adjusted = MaxInflatedProbability
	}
	return 1.0 / adjusted
}
