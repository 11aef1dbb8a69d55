package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/bet-market-engine/internal/model"
	"github.com/radieske/bet-market-engine/internal/shared/config"
	"github.com/radieske/bet-market-engine/internal/store"
	"github.com/radieske/bet-market-engine/pkg/contracts/events"
)

// Publisher distribui as odds recalculadas (cache Redis, Pub/Sub, Kafka)
type Publisher interface {
	PublishOdds(ctx context.Context, u events.OddsUpdate) error
}

type Engine struct {
	store  store.Store
	params Params
	log    *zap.Logger
	pubs   []Publisher

	// Callbacks para métricas
	OnRecalculated func(eventID int64, d time.Duration)
	OnError        func(stage string)
}

func NewEngine(st store.Store, m config.Market, log *zap.Logger, pubs ...Publisher) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:  st,
		params: Params{HouseEdge: m.HouseEdge, DefaultOdds: m.DefaultOdds},
		log:    log,
		pubs:   pubs,
	}
}

// RecalculateOdds faz uma passada de preço sobre um evento UPCOMING.
// Lê o evento sob lock e grava todas as odds na mesma transação, de modo que
// uma liquidação ou um início de evento concorrente nunca veja odds reescritas.
// Evento inexistente, fora de UPCOMING ou sem outcomes devolve erro sem alterar nada.
func (e *Engine) RecalculateOdds(ctx context.Context, eventID int64) ([]Quote, error) {
	start := time.Now()

	var (
		ev     model.Event
		quotes []Quote
	)
	err := e.store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		ev, err = tx.LockEvent(ctx, eventID)
		if errors.Is(err, store.ErrNotFound) {
			return model.ErrEventNotFound
		}
		if err != nil {
			e.fail("load")
			return fmt.Errorf("load event %d: %w", eventID, err)
		}
		if ev.Status != model.EventUpcoming {
			return model.ErrEventNotOpen
		}
		if len(ev.Outcomes) == 0 {
			return model.ErrNoOutcomes
		}

		quotes = Compute(ev.Outcomes, e.params)
		for _, q := range quotes {
			err := tx.UpdateOutcomeOdds(ctx, q.OutcomeID, q.Odds)
			if errors.Is(err, store.ErrNotFound) {
				// o UPDATE só casa com outcomes de evento UPCOMING
				return model.ErrEventNotOpen
			}
			if err != nil {
				e.fail("persist")
				return fmt.Errorf("persist odds outcome %d: %w", q.OutcomeID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, ev, quotes)

	if e.OnRecalculated != nil {
		e.OnRecalculated(eventID, time.Since(start))
	}
	e.log.Debug("odds recalculated", zap.Int64("event_id", eventID), zap.Int("outcomes", len(quotes)))
	return quotes, nil
}

// BatchResult resume uma passada sobre todos os eventos abertos
type BatchResult struct {
	Updated int
	Failed  int
}

// RecalculateAllOpenEvents aplica RecalculateOdds a cada evento UPCOMING.
// Falha em um evento é registrada e não interrompe os demais.
func (e *Engine) RecalculateAllOpenEvents(ctx context.Context) (BatchResult, error) {
	var res BatchResult
	evs, err := e.store.ListEventsByStatus(ctx, model.EventUpcoming)
	if err != nil {
		e.fail("list")
		return res, fmt.Errorf("list upcoming events: %w", err)
	}

	for _, ev := range evs {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if _, err := e.RecalculateOdds(ctx, ev.ID); err != nil {
			res.Failed++
			e.log.Warn("recalculate odds failed", zap.Int64("event_id", ev.ID), zap.Error(err))
			continue
		}
		res.Updated++
	}
	return res, nil
}

// publish é best-effort: as odds já estão no banco
func (e *Engine) publish(ctx context.Context, ev model.Event, quotes []Quote) {
	if len(e.pubs) == 0 {
		return
	}
	u := toUpdate(ev, quotes)
	for _, p := range e.pubs {
		if err := p.PublishOdds(ctx, u); err != nil {
			e.fail("publish")
			e.log.Warn("publish odds failed", zap.Int64("event_id", ev.ID), zap.Error(err))
		}
	}
}

func toUpdate(ev model.Event, quotes []Quote) events.OddsUpdate {
	u := events.OddsUpdate{
		EventID:   ev.ID,
		Title:     ev.Title,
		UpdatedAt: time.Now().UTC(),
		Source:    "recalc",
	}
	for i, q := range quotes {
		u.Outcomes = append(u.Outcomes, events.OutcomeOdds{
			OutcomeID:    q.OutcomeID,
			Title:        q.Title,
			Odds:         q.Odds,
			PreviousOdds: q.PreviousOdds,
			TotalWagered: ev.Outcomes[i].TotalWagered.StringFixed(2),
		})
	}
	return u
}

// SnapshotUpdate monta o payload publicado a partir do estado atual do evento
func SnapshotUpdate(ev model.Event, source string) events.OddsUpdate {
	u := events.OddsUpdate{EventID: ev.ID, Title: ev.Title, UpdatedAt: time.Now().UTC(), Source: source}
	for _, o := range ev.Outcomes {
		u.Outcomes = append(u.Outcomes, events.OutcomeOdds{
			OutcomeID:    o.ID,
			Title:        o.Title,
			Odds:         o.Odds,
			PreviousOdds: o.Odds,
			TotalWagered: o.TotalWagered.StringFixed(2),
		})
	}
	return u
}

func (e *Engine) fail(stage string) {
	if e.OnError != nil {
		e.OnError(stage)
	}
}
