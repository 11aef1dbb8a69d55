package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/bet-market-engine/internal/model"
	"github.com/radieske/bet-market-engine/internal/store"
)

const betColumns = `id, user_id, event_id, outcome_id, amount, odds, potential_payout, status, created_at, updated_at`

func (q *queries) InsertBet(ctx context.Context, b *model.Bet) error {
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	if b.Status == "" {
		b.Status = model.BetPending
	}
	err := q.queryRow(ctx,
		`INSERT INTO bets(user_id, event_id, outcome_id, amount, odds, potential_payout, status, created_at, updated_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
		b.UserID, b.EventID, b.OutcomeID, b.Amount.StringFixed(2), b.Odds, b.PotentialPayout.StringFixed(2),
		string(b.Status), b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("insert bet user %d: %w", b.UserID, q.d.wrap(err))
	}
	return nil
}

func (q *queries) ListBetsByEvent(ctx context.Context, eventID int64) ([]model.Bet, error) {
	return q.listBets(ctx, `SELECT `+betColumns+` FROM bets WHERE event_id=$1 ORDER BY id`, eventID)
}

// ListBetsForUpdate trava as apostas do evento durante a liquidação
func (q *queries) ListBetsForUpdate(ctx context.Context, eventID int64) ([]model.Bet, error) {
	return q.listBets(ctx, `SELECT `+betColumns+` FROM bets WHERE event_id=$1 ORDER BY id`+q.d.lockClause, eventID)
}

func (q *queries) ListBetsByUser(ctx context.Context, userID int64) ([]model.Bet, error) {
	return q.listBets(ctx, `SELECT `+betColumns+` FROM bets WHERE user_id=$1 ORDER BY id DESC`, userID)
}

func (q *queries) listBets(ctx context.Context, query string, arg int64) ([]model.Bet, error) {
	rows, err := q.query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Bet
	for rows.Next() {
		var b model.Bet
		var status string
		if err := rows.Scan(&b.ID, &b.UserID, &b.EventID, &b.OutcomeID, &b.Amount, &b.Odds, &b.PotentialPayout,
			&status, scanTime(&b.CreatedAt), scanTime(&b.UpdatedAt)); err != nil {
			return nil, err
		}
		b.Status = model.BetStatus(status)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (q *queries) UpdateBetStatus(ctx context.Context, betID int64, status model.BetStatus) error {
	res, err := q.exec(ctx, `UPDATE bets SET status=$1, updated_at=$2 WHERE id=$3`, string(status), time.Now().UTC(), betID)
	if err != nil {
		return fmt.Errorf("update bet %d status: %w", betID, err)
	}
	return mustAffect(res, "bet", betID)
}

// HouseStats agrega usuários e apostas; pagamentos usam o payout travado das apostas WON
func (q *queries) HouseStats(ctx context.Context) (model.HouseStats, error) {
	var s model.HouseStats
	if err := q.queryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN balance > 0 THEN 1 ELSE 0 END), 0) FROM users`,
	).Scan(&s.TotalUsers, &s.ActiveUsers); err != nil {
		return s, q.d.wrap(err)
	}

	var staked, paid decimal.Decimal
	if err := q.queryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(amount), 0),
		        COALESCE(SUM(CASE WHEN status=$1 THEN potential_payout ELSE 0 END), 0)
		 FROM bets`, string(model.BetWon),
	).Scan(&s.TotalBets, &staked, &paid); err != nil {
		return s, q.d.wrap(err)
	}

	s.TotalStaked = staked.Round(2)
	s.TotalPaid = paid.Round(2)
	s.HouseProfit = s.TotalStaked.Sub(s.TotalPaid)
	if s.TotalStaked.IsPositive() {
		s.MarginPct, _ = s.HouseProfit.Div(s.TotalStaked).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	}
	return s, nil
}

func mustAffect(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, store.ErrNotFound)
	}
	return nil
}
