package pricing

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/bet-market-engine/internal/model"
	"github.com/radieske/bet-market-engine/internal/quote"
)

var defaultParams = Params{HouseEdge: 0.05, DefaultOdds: 2.0}

func outcomes(pairs ...float64) []model.Outcome {
	var out []model.Outcome
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, model.Outcome{
			ID:           int64(i/2 + 1),
			Odds:         pairs[i],
			TotalWagered: decimal.NewFromFloat(pairs[i+1]),
		})
	}
	return out
}

func TestProbabilities_ZeroVolumeIsUniform(t *testing.T) {
	for n := 1; n <= 5; n++ {
		var os []model.Outcome
		for i := 0; i < n; i++ {
			os = append(os, model.Outcome{ID: int64(i), Odds: 1.5 + float64(i)})
		}
		for _, p := range Probabilities(os) {
			assert.InDelta(t, 1/float64(n), p, 1e-12)
		}
	}
}

func TestProbabilities_BlendAndNormalize(t *testing.T) {
	// volume 75/25, odds 2.0/2.0
	probs := Probabilities(outcomes(2.0, 75, 2.0, 25))
	a := VolumeWeight*0.75 + ImpliedWeight*0.5
	b := VolumeWeight*0.25 + ImpliedWeight*0.5
	assert.InDelta(t, a/(a+b), probs[0], 1e-12)
	assert.InDelta(t, b/(a+b), probs[1], 1e-12)
	assert.InDelta(t, 1.0, probs[0]+probs[1], 1e-12)
}

func TestProbabilities_Empty(t *testing.T) {
	assert.Empty(t, Probabilities(nil))
}

func TestCompute_ZeroVolumeTwoWay(t *testing.T) {
	qs := Compute(outcomes(2.0, 0, 2.0, 0), defaultParams)
	require.Len(t, qs, 2)
	// 0.5 * 1.05 -> 1/0.525 ≈ 1.9048; 0.7*1.9048 + 0.3*2.0 ≈ 1.93
	raw := quote.OddsFromProbability(0.5, 0.05, 2.0)
	assert.InDelta(t, raw, qs[0].RawOdds, 1e-12)
	assert.Equal(t, 1.93, qs[0].Odds)
	assert.Equal(t, 2.0, qs[0].PreviousOdds)
	assert.Equal(t, qs[0].Odds, qs[1].Odds)
}

func TestCompute_VolumeShortensFavourite(t *testing.T) {
	qs := Compute(outcomes(2.0, 900, 2.0, 100), defaultParams)
	assert.Less(t, qs[0].Odds, 2.0)
	assert.Greater(t, qs[1].Odds, 2.0)
}

func TestCompute_BoundsAndRounding(t *testing.T) {
	cases := [][]float64{
		{1.01, 1e6, 50, 0},
		{50, 0, 50, 0, 50, 0, 50, 0, 50, 0, 50, 0, 50, 0, 50, 0, 50, 0, 50, 0},
		{1.01, 0, 1.01, 0},
		{3.3, 10, 2.1, 5000, 7.5, 1},
		{1.2, 1, 49.9, 1e7},
	}
	for _, c := range cases {
		for _, q := range Compute(outcomes(c...), defaultParams) {
			assert.GreaterOrEqual(t, q.Odds, MinOdds)
			assert.LessOrEqual(t, q.Odds, MaxOdds)
			assert.InDelta(t, math.Round(q.Odds*100)/100, q.Odds, 1e-12)
		}
	}
}

func TestCompute_ManyOutcomesHitCeiling(t *testing.T) {
	// 100 outcomes sem volume, odds já no teto: 1/(0.01*1.05) ≈ 95 → clamp 50
	var os []model.Outcome
	for i := 0; i < 100; i++ {
		os = append(os, model.Outcome{ID: int64(i), Odds: 50})
	}
	for _, q := range Compute(os, defaultParams) {
		assert.Equal(t, MaxOdds, q.Odds)
	}
}

func TestCompute_StableWithoutNewBets(t *testing.T) {
	os := outcomes(2.4, 300, 1.7, 500)
	for i := 0; i < 50; i++ {
		for j, q := range Compute(os, defaultParams) {
			os[j].Odds = q.Odds
		}
	}
	fixed := []float64{os[0].Odds, os[1].Odds}
	for j, q := range Compute(os, defaultParams) {
		assert.InDelta(t, fixed[j], q.Odds, 0.011, "ponto fixo módulo arredondamento")
	}
}

func TestSmooth(t *testing.T) {
	assert.Equal(t, 2.3, Smooth(2.5, 1.833333))
	assert.Equal(t, MinOdds, Smooth(0.5, 1.0))
	assert.Equal(t, MaxOdds, Smooth(100, 80))
}
