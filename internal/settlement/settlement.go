// Package settlement liquida um evento: declara o outcome vencedor, encerra
// o evento, resolve todas as apostas pendentes e paga os vencedores.
// Tudo numa única transação; um evento nunca fica parcialmente liquidado.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/bet-market-engine/internal/ledger"
	"github.com/radieske/bet-market-engine/internal/model"
	"github.com/radieske/bet-market-engine/internal/store"
	"github.com/radieske/bet-market-engine/pkg/contracts/events"
)

// Publisher recebe o resumo de cada liquidação confirmada
type Publisher interface {
	PublishEventSettled(ctx context.Context, e events.EventSettled) error
}

type Engine struct {
	store  store.Store
	ledger *ledger.Ledger
	log    *zap.Logger
	publ   Publisher

	// locks listrados por id de evento dentro do processo; entre processos
	// vale o FOR UPDATE. Eventos distintos podem dividir a mesma faixa.
	locks [lockStripes]sync.Mutex

	OnSettled func(r model.SettlementReport)
}

func NewEngine(st store.Store, l *ledger.Ledger, log *zap.Logger, p Publisher) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if l == nil {
		l = ledger.New()
	}
	return &Engine{store: st, ledger: l, log: log, publ: p}
}

const lockStripes = 64

func (e *Engine) eventLock(id int64) *sync.Mutex {
	return &e.locks[uint64(id)%lockStripes]
}

// SettleEvent declara winningOutcomeID vencedor. O evento precisa estar
// UPCOMING ou LIVE; uma segunda chamada devolve ErrEventAlreadySettled.
// Apostas vencedoras recebem o payout travado na colocação.
func (e *Engine) SettleEvent(ctx context.Context, eventID, winningOutcomeID int64) (model.SettlementReport, error) {
	lk := e.eventLock(eventID)
	lk.Lock()
	defer lk.Unlock()

	var rep model.SettlementReport
	err := e.store.WithTx(ctx, func(tx store.Tx) error {
		ev, err := tx.LockEvent(ctx, eventID)
		if errors.Is(err, store.ErrNotFound) {
			return model.ErrEventNotFound
		}
		if err != nil {
			return err
		}
		if _, ok := ev.Outcome(winningOutcomeID); !ok {
			return model.ErrOutcomeNotFound
		}
		if !ev.Status.Settleable() {
			return model.ErrEventAlreadySettled
		}

		if err := tx.ResolveOutcomes(ctx, eventID, winningOutcomeID); err != nil {
			return err
		}
		if err := tx.UpdateEventStatus(ctx, eventID, model.EventFinished); err != nil {
			return err
		}

		bets, err := tx.ListBetsForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		rep, err = e.resolveBets(ctx, tx, bets, winningOutcomeID)
		if err != nil {
			return err
		}
		rep.EventID = eventID
		rep.WinningOutcomeID = winningOutcomeID
		return nil
	})
	if err != nil {
		return model.SettlementReport{}, err
	}

	e.log.Info("event settled",
		zap.Int64("event_id", eventID),
		zap.Int64("winning_outcome_id", winningOutcomeID),
		zap.Int("winning_bets", rep.WinningCount),
		zap.Int("losing_bets", rep.LosingCount),
		zap.String("total_paid", rep.TotalPaid.StringFixed(2)),
		zap.String("house_profit", rep.HouseProfit.StringFixed(2)),
	)
	if e.OnSettled != nil {
		e.OnSettled(rep)
	}
	e.publish(ctx, rep)
	return rep, nil
}

// resolveBets transiciona cada aposta pendente e acumula o relatório.
// Os totais consideram todas as apostas do evento.
func (e *Engine) resolveBets(ctx context.Context, tx store.Tx, bets []model.Bet, winner int64) (model.SettlementReport, error) {
	rep := model.SettlementReport{
		TotalStaked:     decimal.Zero,
		TotalPaid:       decimal.Zero,
		TotalLostStakes: decimal.Zero,
	}
	for _, b := range bets {
		rep.TotalStaked = rep.TotalStaked.Add(b.Amount)
		if b.Status != model.BetPending {
			continue
		}
		if b.OutcomeID == winner {
			if err := tx.UpdateBetStatus(ctx, b.ID, model.BetWon); err != nil {
				return rep, err
			}
			if _, err := e.ledger.Credit(ctx, tx, b.UserID, b.PotentialPayout, ledger.PayoutRef(b.ID)); err != nil {
				return rep, fmt.Errorf("credit payout bet %d: %w", b.ID, err)
			}
			rep.WinningCount++
			rep.TotalPaid = rep.TotalPaid.Add(b.PotentialPayout)
			continue
		}
		if err := tx.UpdateBetStatus(ctx, b.ID, model.BetLost); err != nil {
			return rep, err
		}
		rep.LosingCount++
		rep.TotalLostStakes = rep.TotalLostStakes.Add(b.Amount)
	}
	rep.HouseProfit = rep.TotalStaked.Sub(rep.TotalPaid)
	return rep, nil
}

func (e *Engine) publish(ctx context.Context, r model.SettlementReport) {
	if e.publ == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	err := e.publ.PublishEventSettled(pctx, events.EventSettled{
		EventID:          r.EventID,
		WinningOutcomeID: r.WinningOutcomeID,
		WinningCount:     r.WinningCount,
		LosingCount:      r.LosingCount,
		TotalPaid:        r.TotalPaid.StringFixed(2),
		TotalLostStakes:  r.TotalLostStakes.StringFixed(2),
		HouseProfit:      r.HouseProfit.StringFixed(2),
		Ts:               time.Now().UTC(),
	})
	if err != nil {
		e.log.Warn("publish event_settled failed", zap.Int64("event_id", r.EventID), zap.Error(err))
	}
}
