package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/bet-market-engine/internal/model"
	"github.com/radieske/bet-market-engine/internal/pricing"
	sharedkafka "github.com/radieske/bet-market-engine/internal/shared/kafka"
	"github.com/radieske/bet-market-engine/pkg/contracts/events"
)

// EventRecalculator é o lado do pricing.Engine usado pelo consumer
type EventRecalculator interface {
	RecalculateOdds(ctx context.Context, eventID int64) ([]pricing.Quote, error)
}

// Processor consome bet_placed e reprecifica o evento afetado logo após a aposta,
// sem esperar o próximo tick do agendador.
type Processor struct {
	Log    *zap.Logger
	Reader sharedkafka.MessageReader
	Engine EventRecalculator

	OnConsumed     func()       // métricas (counter++)
	OnRecalculated func()       // métricas
	OnError        func(string) // métricas por fase
}

// Run inicia o loop principal de consumo
func (p *Processor) Run(ctx context.Context) error {
	for {
		_, value, err := sharedkafka.ReadNext(ctx, p.Reader)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var ev events.BetPlaced
		if err := json.Unmarshal(value, &ev); err != nil || ev.EventID == 0 {
			p.Log.Warn("invalid bet_placed message", zap.Error(err))
			p.fail("decode")
			continue
		}

		_, err = p.Engine.RecalculateOdds(ctx, ev.EventID)
		switch {
		case err == nil:
			if p.OnRecalculated != nil {
				p.OnRecalculated()
			}
		case errors.Is(err, model.ErrEventNotOpen), errors.Is(err, model.ErrEventNotFound):
			// evento já ao vivo ou liquidado: odds congeladas
			p.Log.Debug("skip recalculation", zap.Int64("event_id", ev.EventID), zap.Error(err))
		default:
			p.Log.Warn("recalculate after bet failed", zap.Int64("event_id", ev.EventID), zap.Error(err))
			p.fail("recalc")
		}
	}
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
