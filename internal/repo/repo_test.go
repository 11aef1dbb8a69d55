package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/bet-market-engine/internal/model"
	"github.com/radieske/bet-market-engine/internal/repo"
	"github.com/radieske/bet-market-engine/internal/shared/db"
	"github.com/radieske/bet-market-engine/internal/store"
)

func newRepo(t *testing.T) *repo.Repo {
	t.Helper()
	conn, err := db.ConnectSQLite(":memory:")
	require.NoError(t, err)
	r := repo.New(conn, repo.SQLite)
	require.NoError(t, r.Migrate(context.Background()))
	t.Cleanup(func() { r.Close() })
	return r
}

func seedEvent(t *testing.T, r *repo.Repo, odds ...float64) model.Event {
	t.Helper()
	ctx := context.Background()
	e := model.Event{Title: "Final", StartTime: time.Now().Add(time.Hour), CreatedBy: 1}
	require.NoError(t, r.InsertEvent(ctx, &e))
	for i, o := range odds {
		out := model.Outcome{EventID: e.ID, Title: string(rune('A' + i)), Odds: o}
		require.NoError(t, r.InsertOutcome(ctx, &out))
	}
	got, err := r.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	return got
}

func TestRepo_UserRoundTrip(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	u := model.User{ID: 42, Username: "ana", Balance: decimal.NewFromInt(1000), IsActive: true}
	require.NoError(t, r.InsertUser(ctx, &u))

	got, err := r.GetUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "ana", got.Username)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(1000)))
	assert.True(t, got.IsActive)
	assert.False(t, got.CreatedAt.IsZero())

	require.NoError(t, r.UpdateUserBalance(ctx, 42, decimal.RequireFromString("975.50")))
	got, err = r.LockUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "975.5", got.Balance.String())
}

func TestRepo_GetUserNotFound(t *testing.T) {
	r := newRepo(t)
	_, err := r.GetUser(context.Background(), 7)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRepo_EventWithOutcomes(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	e := seedEvent(t, r, 2.0, 3.5)

	assert.Equal(t, model.EventUpcoming, e.Status)
	require.Len(t, e.Outcomes, 2)
	assert.Equal(t, 3.5, e.Outcomes[1].Odds)
	assert.True(t, e.Outcomes[0].TotalWagered.IsZero())
	assert.Equal(t, model.Undetermined, e.Outcomes[0].Resolution)

	require.NoError(t, r.AddOutcomeVolume(ctx, e.Outcomes[0].ID, decimal.NewFromInt(100)))
	require.NoError(t, r.AddOutcomeVolume(ctx, e.Outcomes[0].ID, decimal.RequireFromString("25.25")))
	require.NoError(t, r.UpdateOutcomeOdds(ctx, e.Outcomes[1].ID, 2.8))

	outs, err := r.ListOutcomes(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "125.25", outs[0].TotalWagered.StringFixed(2))
	assert.Equal(t, 2.8, outs[1].Odds)

	assert.ErrorIs(t, r.UpdateOutcomeOdds(ctx, 9999, 2.0), store.ErrNotFound)
}

func TestRepo_OutcomeVolumeKeepsCents(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	e := seedEvent(t, r, 2.0, 2.0)

	require.NoError(t, r.AddOutcomeVolume(ctx, e.Outcomes[0].ID, decimal.RequireFromString("10.10")))
	require.NoError(t, r.AddOutcomeVolume(ctx, e.Outcomes[0].ID, decimal.RequireFromString("10.20")))

	outs, err := r.ListOutcomes(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, outs[0].TotalWagered.Equal(decimal.RequireFromString("20.30")), outs[0].TotalWagered.String())

	assert.ErrorIs(t, r.AddOutcomeVolume(ctx, 9999, decimal.NewFromInt(1)), store.ErrNotFound)
}

func TestRepo_UpdateOutcomeOddsOnlyWhileUpcoming(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	live := seedEvent(t, r, 2.0, 2.0)
	finished := seedEvent(t, r, 1.5, 3.0)
	require.NoError(t, r.UpdateEventStatus(ctx, live.ID, model.EventLive))
	require.NoError(t, r.UpdateEventStatus(ctx, finished.ID, model.EventFinished))

	assert.ErrorIs(t, r.UpdateOutcomeOdds(ctx, live.Outcomes[0].ID, 1.7), store.ErrNotFound)
	assert.ErrorIs(t, r.UpdateOutcomeOdds(ctx, finished.Outcomes[1].ID, 2.5), store.ErrNotFound)

	got, err := r.GetEvent(ctx, finished.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.Outcomes[1].Odds)
}

func TestRepo_ListEventsByStatus(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	a := seedEvent(t, r, 2.0, 2.0)
	b := seedEvent(t, r, 1.5, 3.0)
	seedEvent(t, r, 1.9, 2.1)
	require.NoError(t, r.UpdateEventStatus(ctx, b.ID, model.EventLive))

	upcoming, err := r.ListEventsByStatus(ctx, model.EventUpcoming)
	require.NoError(t, err)
	assert.Len(t, upcoming, 2)

	active, err := r.ListEventsByStatus(ctx, model.EventUpcoming, model.EventLive)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, a.ID, active[0].ID)
	for _, e := range active {
		assert.Len(t, e.Outcomes, 2)
	}
}

func TestRepo_ResolveOutcomes(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	e := seedEvent(t, r, 2.0, 3.0, 4.0)

	require.NoError(t, r.ResolveOutcomes(ctx, e.ID, e.Outcomes[1].ID))
	outs, err := r.ListOutcomes(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Losing, outs[0].Resolution)
	assert.Equal(t, model.Winning, outs[1].Resolution)
	assert.Equal(t, model.Losing, outs[2].Resolution)
}

func TestRepo_BetsAndHouseStats(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	e := seedEvent(t, r, 2.0, 3.0)
	require.NoError(t, r.InsertUser(ctx, &model.User{ID: 1, Balance: decimal.NewFromInt(500)}))
	require.NoError(t, r.InsertUser(ctx, &model.User{ID: 2, Balance: decimal.Zero}))

	b1 := model.Bet{UserID: 1, EventID: e.ID, OutcomeID: e.Outcomes[0].ID,
		Amount: decimal.NewFromInt(100), Odds: 2.0, PotentialPayout: decimal.NewFromInt(200)}
	b2 := model.Bet{UserID: 1, EventID: e.ID, OutcomeID: e.Outcomes[1].ID,
		Amount: decimal.NewFromInt(50), Odds: 3.0, PotentialPayout: decimal.NewFromInt(150)}
	require.NoError(t, r.InsertBet(ctx, &b1))
	require.NoError(t, r.InsertBet(ctx, &b2))
	assert.NotZero(t, b1.ID)

	require.NoError(t, r.UpdateBetStatus(ctx, b1.ID, model.BetWon))
	require.NoError(t, r.UpdateBetStatus(ctx, b2.ID, model.BetLost))

	bets, err := r.ListBetsByEvent(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, bets, 2)
	assert.Equal(t, model.BetWon, bets[0].Status)
	assert.Equal(t, 2.0, bets[0].Odds)

	byUser, err := r.ListBetsByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	assert.Equal(t, b2.ID, byUser[0].ID, "mais recente primeiro")

	s, err := r.HouseStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, s.TotalUsers)
	assert.EqualValues(t, 1, s.ActiveUsers)
	assert.EqualValues(t, 2, s.TotalBets)
	assert.Equal(t, "150.00", s.TotalStaked.StringFixed(2))
	assert.Equal(t, "200.00", s.TotalPaid.StringFixed(2))
	assert.Equal(t, "-50.00", s.HouseProfit.StringFixed(2))
	assert.InDelta(t, -33.33, s.MarginPct, 0.001)
}

func TestRepo_WithTxRollsBackOnError(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	require.NoError(t, r.InsertUser(ctx, &model.User{ID: 1, Balance: decimal.NewFromInt(100)}))

	boom := errors.New("boom")
	err := r.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.UpdateUserBalance(ctx, 1, decimal.NewFromInt(10)); err != nil {
			return err
		}
		if err := tx.InsertLedgerEntry(ctx, &model.LedgerEntry{UserID: 1, Operation: model.OpDebit,
			Amount: decimal.NewFromInt(90), BalanceAfter: decimal.NewFromInt(10)}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	u, err := r.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.True(t, u.Balance.Equal(decimal.NewFromInt(100)))
	entries, err := r.ListLedgerEntries(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRepo_WithTxCommits(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	require.NoError(t, r.InsertUser(ctx, &model.User{ID: 1, Balance: decimal.NewFromInt(100)}))

	require.NoError(t, r.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.UpdateUserBalance(ctx, 1, decimal.NewFromInt(60)); err != nil {
			return err
		}
		return tx.InsertLedgerEntry(ctx, &model.LedgerEntry{UserID: 1, Operation: model.OpDebit,
			Amount: decimal.NewFromInt(40), BalanceAfter: decimal.NewFromInt(60), Reference: "bet:1"})
	}))

	entries, err := r.ListLedgerEntries(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.OpDebit, entries[0].Operation)
	assert.Equal(t, "bet:1", entries[0].Reference)
	assert.True(t, entries[0].BalanceAfter.Equal(decimal.NewFromInt(60)))
}

func TestDialectFor(t *testing.T) {
	d, err := repo.DialectFor("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name)

	_, err = repo.DialectFor("mysql")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	r, err := repo.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	defer r.Close()
	require.NoError(t, r.Ping(ctx))
	// schema já aplicado
	require.NoError(t, r.InsertUser(ctx, &model.User{ID: 5, Balance: decimal.NewFromInt(1)}))

	_, err = repo.Open(ctx, "mysql", "x")
	assert.Error(t, err)
}
