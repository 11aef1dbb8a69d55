// Package betting implementa a colocação de apostas e a administração de
// eventos e usuários sobre o store transacional.
package betting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/bet-market-engine/internal/ledger"
	"github.com/radieske/bet-market-engine/internal/model"
	"github.com/radieske/bet-market-engine/internal/shared/config"
	"github.com/radieske/bet-market-engine/internal/store"
	"github.com/radieske/bet-market-engine/pkg/contracts/events"
)

// Publisher recebe as apostas confirmadas (Kafka em produção)
type Publisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
}

type Service struct {
	store  store.Store
	ledger *ledger.Ledger
	market config.Market
	log    *zap.Logger
	publ   Publisher

	// Callbacks para métricas
	OnPlaced   func(amount float64)
	OnRejected func(reason string)
}

func NewService(st store.Store, l *ledger.Ledger, m config.Market, log *zap.Logger, p Publisher) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if l == nil {
		l = ledger.New()
	}
	return &Service{store: st, ledger: l, market: m, log: log, publ: p}
}

// PlaceBet valida as pré-condições na ordem (valor, usuário, evento, outcome, saldo)
// e, numa única transação, cria a aposta com a odd corrente travada, debita o
// saldo e soma o volume do outcome.
func (s *Service) PlaceBet(ctx context.Context, userID, eventID, outcomeID int64, amount decimal.Decimal) (model.Bet, error) {
	if err := s.validAmount(amount); err != nil {
		s.rejected(err)
		return model.Bet{}, err
	}

	var bet model.Bet
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return mapNotFound(err, model.ErrUserNotFound)
		}

		// evento antes do usuário: mesma ordem de locks da liquidação
		ev, err := tx.LockEvent(ctx, eventID)
		if err != nil {
			return mapNotFound(err, model.ErrEventNotFound)
		}
		if ev.Status != model.EventUpcoming {
			return model.ErrEventNotOpen
		}
		out, ok := ev.Outcome(outcomeID)
		if !ok {
			return model.ErrOutcomeNotFound
		}
		if u.Balance.LessThan(amount) {
			return model.ErrInsufficientFunds
		}

		bet = model.Bet{
			UserID:          userID,
			EventID:         eventID,
			OutcomeID:       outcomeID,
			Amount:          amount,
			Odds:            out.Odds,
			PotentialPayout: Payout(amount, out.Odds),
			Status:          model.BetPending,
		}
		if err := tx.InsertBet(ctx, &bet); err != nil {
			return err
		}
		if _, err := s.ledger.Debit(ctx, tx, userID, amount, ledger.BetRef(bet.ID)); err != nil {
			return err
		}
		return tx.AddOutcomeVolume(ctx, outcomeID, amount)
	})
	if err != nil {
		s.rejected(err)
		return model.Bet{}, err
	}

	s.log.Info("bet placed",
		zap.Int64("bet_id", bet.ID),
		zap.Int64("user_id", userID),
		zap.Int64("event_id", eventID),
		zap.Int64("outcome_id", outcomeID),
		zap.String("amount", bet.Amount.StringFixed(2)),
		zap.Float64("odds", bet.Odds),
	)
	if s.OnPlaced != nil {
		f, _ := amount.Float64()
		s.OnPlaced(f)
	}
	s.publish(ctx, bet)
	return bet, nil
}

// Payout = stake × odd travada, arredondado a centavos
func Payout(amount decimal.Decimal, odds float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(odds)).Round(2)
}

func (s *Service) validAmount(amount decimal.Decimal) error {
	minBet := decimal.NewFromFloat(s.market.MinBet)
	maxBet := decimal.NewFromFloat(s.market.MaxBet)
	if !amount.IsPositive() || amount.LessThan(minBet) || amount.GreaterThan(maxBet) {
		return fmt.Errorf("%w: must be between %s and %s", model.ErrInvalidAmount, minBet, maxBet)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: at most 2 decimal places", model.ErrInvalidAmount)
	}
	return nil
}

// publish é best-effort: a aposta já está confirmada no banco
func (s *Service) publish(ctx context.Context, b model.Bet) {
	if s.publ == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	err := s.publ.PublishBetPlaced(pctx, events.BetPlaced{
		BetID:           b.ID,
		UserID:          b.UserID,
		EventID:         b.EventID,
		OutcomeID:       b.OutcomeID,
		Amount:          b.Amount.StringFixed(2),
		Odds:            b.Odds,
		PotentialPayout: b.PotentialPayout.StringFixed(2),
	})
	if err != nil {
		s.log.Warn("publish bet_placed failed", zap.Int64("bet_id", b.ID), zap.Error(err))
	}
}

func (s *Service) rejected(err error) {
	if s.OnRejected == nil {
		return
	}
	s.OnRejected(reason(err))
}

func reason(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, model.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, model.ErrEventNotFound):
		return "event_not_found"
	case errors.Is(err, model.ErrEventNotOpen):
		return "event_not_open"
	case errors.Is(err, model.ErrOutcomeNotFound):
		return "outcome_not_found"
	case errors.Is(err, model.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, store.ErrConflict):
		return "conflict"
	}
	return "internal"
}

func mapNotFound(err, domainErr error) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainErr
	}
	return err
}
