package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/bet-market-engine/internal/pricing"
)

// BatchRecalculator é o lado do pricing.Engine usado pelo agendador
type BatchRecalculator interface {
	RecalculateAllOpenEvents(ctx context.Context) (pricing.BatchResult, error)
}

// Scheduler dispara a recalculação em lote a cada Interval,
// independente do serviço que atende requisições.
type Scheduler struct {
	Log      *zap.Logger
	Engine   BatchRecalculator
	Interval time.Duration

	OnBatch func(res pricing.BatchResult, d time.Duration) // métricas
	OnError func(string)                                   // métricas
}

// Run executa uma passada imediata e depois uma por tick, até ctx ser cancelado
func (s *Scheduler) Run(ctx context.Context) error {
	s.tick(ctx)

	t := time.NewTicker(s.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	start := time.Now()
	res, err := s.Engine.RecalculateAllOpenEvents(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.Log.Warn("batch recalculation failed", zap.Error(err))
		if s.OnError != nil {
			s.OnError("batch")
		}
		return
	}
	if s.OnBatch != nil {
		s.OnBatch(res, time.Since(start))
	}
	s.Log.Info("batch recalculation done",
		zap.Int("updated", res.Updated),
		zap.Int("failed", res.Failed),
		zap.Duration("took", time.Since(start)))
}
