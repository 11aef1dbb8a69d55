package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/radieske/bet-market-engine/internal/model"
	"github.com/radieske/bet-market-engine/internal/pricing"
)

// Market agrupa os coletores dos engines de aposta, preço e liquidação.
// Os métodos têm a forma dos callbacks OnX dos engines.
type Market struct {
	betsPlaced    prometheus.Counter
	stakeAmount   prometheus.Histogram
	betsRejected  *prometheus.CounterVec
	settlements   prometheus.Counter
	settledBets   *prometheus.CounterVec
	houseProfit   prometheus.Gauge
	recalcs       prometheus.Counter
	recalcLatency prometheus.Histogram
	batchEvents   *prometheus.CounterVec
	consumed      prometheus.Counter
	triggered     prometheus.Counter
	errorsBy      *prometheus.CounterVec
}

// NewMarket cria e registra os coletores com o prefixo informado (ex: "betting")
func NewMarket(reg prometheus.Registerer, prefix string) *Market {
	m := &Market{
		betsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_bets_placed_total", Help: "apostas aceitas",
		}),
		stakeAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: prefix + "_bet_stake_amount", Help: "valor apostado por aposta",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 5000, 10000},
		}),
		betsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_bets_rejected_total", Help: "apostas rejeitadas por motivo",
		}, []string{"reason"}),
		settlements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_events_settled_total", Help: "eventos liquidados",
		}),
		settledBets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_settled_bets_total", Help: "apostas liquidadas por resultado",
		}, []string{"result"}),
		houseProfit: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "_last_settlement_house_profit", Help: "lucro da casa na última liquidação",
		}),
		recalcs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_odds_recalculations_total", Help: "recálculos de odds concluídos",
		}),
		recalcLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: prefix + "_odds_recalculation_seconds", Help: "duração de um recálculo",
			Buckets: prometheus.DefBuckets,
		}),
		batchEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_batch_events_total", Help: "eventos processados nas passadas em lote",
		}, []string{"result"}),
		consumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_messages_consumed_total", Help: "mensagens kafka consumidas",
		}),
		triggered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_bet_triggered_recalculations_total", Help: "recálculos disparados por apostas consumidas",
		}),
		errorsBy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_errors_total", Help: "erros por estágio",
		}, []string{"stage"}),
	}
	reg.MustRegister(m.betsPlaced, m.stakeAmount, m.betsRejected, m.settlements, m.settledBets,
		m.houseProfit, m.recalcs, m.recalcLatency, m.batchEvents, m.consumed, m.triggered, m.errorsBy)
	return m
}

func (m *Market) BetPlaced(amount float64) {
	m.betsPlaced.Inc()
	m.stakeAmount.Observe(amount)
}

func (m *Market) BetRejected(reason string) { m.betsRejected.WithLabelValues(reason).Inc() }

func (m *Market) Settled(r model.SettlementReport) {
	m.settlements.Inc()
	m.settledBets.WithLabelValues("won").Add(float64(r.WinningCount))
	m.settledBets.WithLabelValues("lost").Add(float64(r.LosingCount))
	m.houseProfit.Set(r.HouseProfit.InexactFloat64())
}

func (m *Market) Recalculated(_ int64, d time.Duration) {
	m.recalcs.Inc()
	m.recalcLatency.Observe(d.Seconds())
}

func (m *Market) Batch(res pricing.BatchResult, _ time.Duration) {
	m.batchEvents.WithLabelValues("updated").Add(float64(res.Updated))
	m.batchEvents.WithLabelValues("failed").Add(float64(res.Failed))
}

func (m *Market) Consumed() { m.consumed.Inc() }

// Triggered conta recálculos bem-sucedidos vindos do consumer de bet_placed
func (m *Market) Triggered() { m.triggered.Inc() }

func (m *Market) Error(stage string) { m.errorsBy.WithLabelValues(stage).Inc() }
