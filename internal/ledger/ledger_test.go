package ledger_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/bet-market-engine/internal/ledger"
	"github.com/radieske/bet-market-engine/internal/model"
	"github.com/radieske/bet-market-engine/internal/repo"
	"github.com/radieske/bet-market-engine/internal/shared/db"
	"github.com/radieske/bet-market-engine/internal/store"
)

func setup(t *testing.T, balance int64) *repo.Repo {
	t.Helper()
	conn, err := db.ConnectSQLite(":memory:")
	require.NoError(t, err)
	r := repo.New(conn, repo.SQLite)
	require.NoError(t, r.Migrate(context.Background()))
	t.Cleanup(func() { r.Close() })
	require.NoError(t, r.InsertUser(context.Background(), &model.User{ID: 1, Balance: decimal.NewFromInt(balance), IsActive: true}))
	return r
}

func balanceOf(t *testing.T, r *repo.Repo) decimal.Decimal {
	t.Helper()
	u, err := r.GetUser(context.Background(), 1)
	require.NoError(t, err)
	return u.Balance
}

func TestDebit(t *testing.T) {
	r := setup(t, 100)
	l := ledger.New()
	ctx := context.Background()

	var entry model.LedgerEntry
	err := r.WithTx(ctx, func(tx store.Tx) error {
		var err error
		entry, err = l.Debit(ctx, tx, 1, decimal.NewFromInt(40), ledger.BetRef(7))
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, model.OpDebit, entry.Operation)
	assert.Equal(t, "bet:7", entry.Reference)
	assert.True(t, entry.BalanceAfter.Equal(decimal.NewFromInt(60)))
	assert.True(t, balanceOf(t, r).Equal(decimal.NewFromInt(60)))
}

func TestDebit_InsufficientFundsMutatesNothing(t *testing.T) {
	r := setup(t, 30)
	l := ledger.New()
	ctx := context.Background()

	err := r.WithTx(ctx, func(tx store.Tx) error {
		_, err := l.Debit(ctx, tx, 1, decimal.NewFromInt(31), "x")
		return err
	})
	assert.ErrorIs(t, err, model.ErrInsufficientFunds)
	assert.True(t, balanceOf(t, r).Equal(decimal.NewFromInt(30)))

	entries, err := r.ListLedgerEntries(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDebit_ExactBalance(t *testing.T) {
	r := setup(t, 30)
	l := ledger.New()
	ctx := context.Background()

	require.NoError(t, r.WithTx(ctx, func(tx store.Tx) error {
		_, err := l.Debit(ctx, tx, 1, decimal.NewFromInt(30), "x")
		return err
	}))
	assert.True(t, balanceOf(t, r).IsZero())
}

func TestDebit_InvalidAmount(t *testing.T) {
	r := setup(t, 30)
	l := ledger.New()
	ctx := context.Background()

	for _, amt := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		err := r.WithTx(ctx, func(tx store.Tx) error {
			_, err := l.Debit(ctx, tx, 1, amt, "x")
			return err
		})
		assert.ErrorIs(t, err, model.ErrInvalidAmount)
	}
}

func TestCredit(t *testing.T) {
	r := setup(t, 10)
	l := ledger.New()
	ctx := context.Background()

	require.NoError(t, r.WithTx(ctx, func(tx store.Tx) error {
		_, err := l.Credit(ctx, tx, 1, decimal.RequireFromString("200.50"), ledger.PayoutRef(3))
		return err
	}))
	assert.Equal(t, "210.50", balanceOf(t, r).StringFixed(2))

	entries, err := r.ListLedgerEntries(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.OpCredit, entries[0].Operation)
	assert.Equal(t, "payout:3", entries[0].Reference)
}

func TestCredit_UnknownUser(t *testing.T) {
	r := setup(t, 10)
	l := ledger.New()
	ctx := context.Background()

	err := r.WithTx(ctx, func(tx store.Tx) error {
		_, err := l.Credit(ctx, tx, 99, decimal.NewFromInt(1), "x")
		return err
	})
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestAdjust(t *testing.T) {
	r := setup(t, 100)
	l := ledger.New()
	ctx := context.Background()

	adjust := func(delta int64) error {
		return r.WithTx(ctx, func(tx store.Tx) error {
			_, err := l.Adjust(ctx, tx, 1, decimal.NewFromInt(delta))
			return err
		})
	}

	require.NoError(t, adjust(50))
	require.NoError(t, adjust(-120))
	assert.True(t, balanceOf(t, r).Equal(decimal.NewFromInt(30)))

	assert.ErrorIs(t, adjust(-31), model.ErrInsufficientFunds)
	assert.True(t, balanceOf(t, r).Equal(decimal.NewFromInt(30)))

	entries, err := r.ListLedgerEntries(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, strings.HasPrefix(entries[0].Reference, "admin:"))
}
