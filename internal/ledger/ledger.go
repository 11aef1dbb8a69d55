// Package ledger concentra toda mutação de saldo. Cada débito ou crédito é
// lido sob lock, decidido e gravado dentro da transação do chamador, junto
// com uma linha de auditoria em ledger_entries.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/radieske/bet-market-engine/internal/model"
	"github.com/radieske/bet-market-engine/internal/store"
)

// Ledger opera sobre uma store.Tx já aberta
type Ledger struct{}

func New() *Ledger { return &Ledger{} }

// Debit retira amount do saldo; sem saldo suficiente nada é alterado
func (l *Ledger) Debit(ctx context.Context, tx store.Tx, userID int64, amount decimal.Decimal, ref string) (model.LedgerEntry, error) {
	if !amount.IsPositive() {
		return model.LedgerEntry{}, model.ErrInvalidAmount
	}
	u, err := lockUser(ctx, tx, userID)
	if err != nil {
		return model.LedgerEntry{}, err
	}
	if u.Balance.LessThan(amount) {
		return model.LedgerEntry{}, model.ErrInsufficientFunds
	}
	return apply(ctx, tx, u, model.OpDebit, amount, u.Balance.Sub(amount), ref)
}

// Credit soma amount ao saldo (payout ou ajuste); amount zero é aceito e registrado
func (l *Ledger) Credit(ctx context.Context, tx store.Tx, userID int64, amount decimal.Decimal, ref string) (model.LedgerEntry, error) {
	if amount.IsNegative() {
		return model.LedgerEntry{}, model.ErrInvalidAmount
	}
	u, err := lockUser(ctx, tx, userID)
	if err != nil {
		return model.LedgerEntry{}, err
	}
	return apply(ctx, tx, u, model.OpCredit, amount, u.Balance.Add(amount), ref)
}

// Adjust aplica um delta administrativo; negativo vira débito e nunca deixa saldo < 0
func (l *Ledger) Adjust(ctx context.Context, tx store.Tx, userID int64, delta decimal.Decimal) (model.LedgerEntry, error) {
	ref := AdminRef()
	if delta.IsNegative() {
		return l.Debit(ctx, tx, userID, delta.Neg(), ref)
	}
	return l.Credit(ctx, tx, userID, delta, ref)
}

func lockUser(ctx context.Context, tx store.Tx, userID int64) (model.User, error) {
	u, err := tx.LockUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("lock user %d: %w", userID, err)
	}
	return u, nil
}

func apply(ctx context.Context, tx store.Tx, u model.User, op model.LedgerOperation, amount, newBalance decimal.Decimal, ref string) (model.LedgerEntry, error) {
	if err := tx.UpdateUserBalance(ctx, u.ID, newBalance); err != nil {
		return model.LedgerEntry{}, err
	}
	entry := model.LedgerEntry{
		UserID:       u.ID,
		Operation:    op,
		Amount:       amount,
		BalanceAfter: newBalance,
		Reference:    ref,
	}
	if err := tx.InsertLedgerEntry(ctx, &entry); err != nil {
		return model.LedgerEntry{}, err
	}
	return entry, nil
}

func BetRef(betID int64) string    { return fmt.Sprintf("bet:%d", betID) }
func PayoutRef(betID int64) string { return fmt.Sprintf("payout:%d", betID) }
func AdminRef() string             { return "admin:" + uuid.NewString() }
