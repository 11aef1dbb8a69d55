package betting

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/bet-market-engine/internal/model"
	"github.com/radieske/bet-market-engine/internal/store"
)

// RegisterUser cria o usuário com o saldo inicial configurado.
// Se o id já existe devolve o registro atual sem alterá-lo.
func (s *Service) RegisterUser(ctx context.Context, u model.User) (model.User, bool, error) {
	existing, err := s.store.GetUser(ctx, u.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return model.User{}, false, err
	}

	u.Balance = decimal.NewFromFloat(s.market.InitialBalance).Round(2)
	u.IsActive = true
	if err := s.store.InsertUser(ctx, &u); err != nil {
		// corrida com outro registro do mesmo id
		if again, gerr := s.store.GetUser(ctx, u.ID); gerr == nil {
			return again, false, nil
		}
		return model.User{}, false, err
	}
	s.log.Info("user registered", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	return u, true, nil
}

func (s *Service) GetUser(ctx context.Context, userID int64) (model.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return model.User{}, mapNotFound(err, model.ErrUserNotFound)
	}
	return u, nil
}

// UserBets devolve o histórico do usuário, mais recentes primeiro
func (s *Service) UserBets(ctx context.Context, userID int64) ([]model.Bet, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListBetsByUser(ctx, userID)
}

// UserStats resume o histórico; ganhos vêm do payout travado das apostas WON
func (s *Service) UserStats(ctx context.Context, userID int64) (model.UserStats, error) {
	bets, err := s.UserBets(ctx, userID)
	if err != nil {
		return model.UserStats{}, err
	}
	st := model.UserStats{TotalStaked: decimal.Zero, TotalWon: decimal.Zero}
	for _, b := range bets {
		st.TotalBets++
		st.TotalStaked = st.TotalStaked.Add(b.Amount)
		switch b.Status {
		case model.BetPending:
			st.Pending++
		case model.BetWon:
			st.Won++
			st.TotalWon = st.TotalWon.Add(b.PotentialPayout)
		case model.BetLost:
			st.Lost++
		}
	}
	st.Profit = st.TotalWon.Sub(st.TotalStaked)
	return st, nil
}

// AdjustBalance aplica um ajuste administrativo via ledger; o saldo nunca fica negativo
func (s *Service) AdjustBalance(ctx context.Context, userID int64, delta decimal.Decimal) (model.User, error) {
	if delta.IsZero() || !delta.Equal(delta.Round(2)) {
		return model.User{}, model.ErrInvalidAmount
	}
	var entry model.LedgerEntry
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		entry, err = s.ledger.Adjust(ctx, tx, userID, delta)
		return err
	})
	if err != nil {
		return model.User{}, err
	}
	s.log.Info("balance adjusted",
		zap.Int64("user_id", userID),
		zap.String("delta", delta.StringFixed(2)),
		zap.String("balance", entry.BalanceAfter.StringFixed(2)),
		zap.String("ref", entry.Reference),
	)
	return s.GetUser(ctx, userID)
}

func (s *Service) HouseStats(ctx context.Context) (model.HouseStats, error) {
	return s.store.HouseStats(ctx)
}
