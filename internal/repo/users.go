package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/bet-market-engine/internal/model"
)

const userColumns = `id, username, first_name, last_name, balance, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Balance, &u.IsActive,
		scanTime(&u.CreatedAt), scanTime(&u.UpdatedAt))
	return u, err
}

func (q *queries) GetUser(ctx context.Context, id int64) (model.User, error) {
	u, err := scanUser(q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if err != nil {
		return model.User{}, q.d.wrap(notFound(err))
	}
	return u, nil
}

// LockUser lê o usuário com lock pessimista na linha (Postgres)
func (q *queries) LockUser(ctx context.Context, id int64) (model.User, error) {
	u, err := scanUser(q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`+q.d.lockClause, id))
	if err != nil {
		return model.User{}, q.d.wrap(notFound(err))
	}
	return u, nil
}

func (q *queries) InsertUser(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if _, err := q.exec(ctx,
		`INSERT INTO users(id, username, first_name, last_name, balance, is_active, created_at, updated_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8)`,
		u.ID, u.Username, u.FirstName, u.LastName, u.Balance.StringFixed(2), u.IsActive, u.CreatedAt, u.UpdatedAt); err != nil {
		return fmt.Errorf("insert user %d: %w", u.ID, err)
	}
	return nil
}

func (q *queries) UpdateUserBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	if _, err := q.exec(ctx, `UPDATE users SET balance=$1, updated_at=$2 WHERE id=$3`,
		balance.StringFixed(2), time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update balance user %d: %w", id, err)
	}
	return nil
}

func (q *queries) InsertLedgerEntry(ctx context.Context, e *model.LedgerEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	err := q.queryRow(ctx,
		`INSERT INTO ledger_entries(user_id, operation, amount, balance_after, reference, created_at)
		 VALUES($1,$2,$3,$4,$5,$6) RETURNING id`,
		e.UserID, string(e.Operation), e.Amount.StringFixed(2), e.BalanceAfter.StringFixed(2), e.Reference, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert ledger entry user %d: %w", e.UserID, q.d.wrap(err))
	}
	return nil
}

func (q *queries) ListLedgerEntries(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	rows, err := q.query(ctx,
		`SELECT id, user_id, operation, amount, balance_after, reference, created_at
		 FROM ledger_entries WHERE user_id=$1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		var op string
		if err := rows.Scan(&e.ID, &e.UserID, &op, &e.Amount, &e.BalanceAfter, &e.Reference, scanTime(&e.CreatedAt)); err != nil {
			return nil, err
		}
		e.Operation = model.LedgerOperation(op)
		out = append(out, e)
	}
	return out, rows.Err()
}
