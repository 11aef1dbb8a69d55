package betting_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/bet-market-engine/internal/betting"
	"github.com/radieske/bet-market-engine/internal/model"
	"github.com/radieske/bet-market-engine/internal/repo"
	"github.com/radieske/bet-market-engine/internal/shared/config"
	"github.com/radieske/bet-market-engine/internal/shared/db"
	"github.com/radieske/bet-market-engine/internal/store"
	"github.com/radieske/bet-market-engine/pkg/contracts/events"
)

type fakePublisher struct {
	sent []events.BetPlaced
	err  error
}

func (f *fakePublisher) PublishBetPlaced(_ context.Context, e events.BetPlaced) error {
	f.sent = append(f.sent, e)
	return f.err
}

type fixture struct {
	repo  *repo.Repo
	svc   *betting.Service
	publ  *fakePublisher
	event model.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	conn, err := db.ConnectSQLite(":memory:")
	require.NoError(t, err)
	r := repo.New(conn, repo.SQLite)
	require.NoError(t, r.Migrate(ctx))
	t.Cleanup(func() { r.Close() })

	p := &fakePublisher{}
	svc := betting.NewService(r, nil, config.DefaultMarket(), nil, p)

	_, created, err := svc.RegisterUser(ctx, model.User{ID: 1, Username: "ana"})
	require.NoError(t, err)
	require.True(t, created)

	ev, err := svc.CreateEvent(ctx, betting.NewEvent{
		Title:     "Flamengo x Palmeiras",
		StartTime: time.Now().Add(time.Hour),
		CreatedBy: 99,
		Outcomes:  []betting.NewOutcome{{Title: "Flamengo", Odds: 2.0}, {Title: "Empate", Odds: 3.2}, {Title: "Palmeiras", Odds: 3.5}},
	})
	require.NoError(t, err)
	return &fixture{repo: r, svc: svc, publ: p, event: ev}
}

func (f *fixture) snapshot(t *testing.T) (decimal.Decimal, []model.Outcome, int) {
	t.Helper()
	ctx := context.Background()
	u, err := f.repo.GetUser(ctx, 1)
	require.NoError(t, err)
	outs, err := f.repo.ListOutcomes(ctx, f.event.ID)
	require.NoError(t, err)
	bets, err := f.repo.ListBetsByEvent(ctx, f.event.ID)
	require.NoError(t, err)
	return u.Balance, outs, len(bets)
}

func TestPlaceBet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	out := f.event.Outcomes[1]

	bet, err := f.svc.PlaceBet(ctx, 1, f.event.ID, out.ID, decimal.NewFromInt(100))
	require.NoError(t, err)

	assert.NotZero(t, bet.ID)
	assert.Equal(t, model.BetPending, bet.Status)
	assert.Equal(t, 3.2, bet.Odds)
	assert.Equal(t, "320.00", bet.PotentialPayout.StringFixed(2))

	balance, outs, n := f.snapshot(t)
	assert.Equal(t, "900.00", balance.StringFixed(2))
	assert.Equal(t, 1, n)
	assert.Equal(t, "100.00", outs[1].TotalWagered.StringFixed(2))
	assert.True(t, outs[0].TotalWagered.IsZero())

	entries, err := f.repo.ListLedgerEntries(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.OpDebit, entries[0].Operation)

	require.Len(t, f.publ.sent, 1)
	assert.Equal(t, bet.ID, f.publ.sent[0].BetID)
	assert.Equal(t, "320.00", f.publ.sent[0].PotentialPayout)
}

func TestPlaceBet_LockedOddsSurviveRepricing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	out := f.event.Outcomes[0]

	bet, err := f.svc.PlaceBet(ctx, 1, f.event.ID, out.ID, decimal.NewFromInt(50))
	require.NoError(t, err)
	require.NoError(t, f.repo.UpdateOutcomeOdds(ctx, out.ID, 1.4))

	bets, err := f.repo.ListBetsByEvent(ctx, f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, bet.Odds, bets[0].Odds)
	assert.Equal(t, "100.00", bets[0].PotentialPayout.StringFixed(2))
}

func TestPlaceBet_InsufficientFundsMutatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.AdjustBalance(ctx, 1, decimal.NewFromInt(-950))
	require.NoError(t, err)

	before, outsBefore, nBefore := f.snapshot(t)
	_, err = f.svc.PlaceBet(ctx, 1, f.event.ID, f.event.Outcomes[0].ID, decimal.NewFromInt(51))
	assert.ErrorIs(t, err, model.ErrInsufficientFunds)

	after, outsAfter, nAfter := f.snapshot(t)
	assert.True(t, before.Equal(after))
	assert.Equal(t, nBefore, nAfter)
	for i := range outsBefore {
		assert.True(t, outsBefore[i].TotalWagered.Equal(outsAfter[i].TotalWagered))
	}
	assert.Empty(t, f.publ.sent)
}

func TestPlaceBet_PreconditionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	evID := f.event.ID
	outID := f.event.Outcomes[0].ID

	other, err := f.svc.CreateEvent(ctx, betting.NewEvent{
		Title:    "Outro",
		Outcomes: []betting.NewOutcome{{Title: "A", Odds: 1.8}, {Title: "B", Odds: 2.1}},
	})
	require.NoError(t, err)
	live, err := f.svc.CreateEvent(ctx, betting.NewEvent{
		Title:    "Ao vivo",
		Outcomes: []betting.NewOutcome{{Title: "A", Odds: 1.8}, {Title: "B", Odds: 2.1}},
	})
	require.NoError(t, err)
	_, err = f.svc.StartEvent(ctx, live.ID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		user    int64
		event   int64
		outcome int64
		amount  decimal.Decimal
		want    error
	}{
		{"below min", 1, evID, outID, decimal.NewFromInt(5), model.ErrInvalidAmount},
		{"above max", 1, evID, outID, decimal.NewFromInt(10001), model.ErrInvalidAmount},
		{"invalid amount wins over unknown user", 404, 404, 404, decimal.NewFromInt(1), model.ErrInvalidAmount},
		{"fractional cents", 1, evID, outID, decimal.RequireFromString("10.001"), model.ErrInvalidAmount},
		{"unknown user", 404, evID, outID, decimal.NewFromInt(10), model.ErrUserNotFound},
		{"unknown user wins over unknown event", 404, 404, outID, decimal.NewFromInt(10), model.ErrUserNotFound},
		{"unknown event", 1, 404, outID, decimal.NewFromInt(10), model.ErrEventNotFound},
		{"event not open", 1, live.ID, live.Outcomes[0].ID, decimal.NewFromInt(10), model.ErrEventNotOpen},
		{"outcome of another event", 1, evID, other.Outcomes[0].ID, decimal.NewFromInt(10), model.ErrOutcomeNotFound},
		{"insufficient funds", 1, evID, outID, decimal.NewFromInt(5000), model.ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.PlaceBet(ctx, tt.user, tt.event, tt.outcome, tt.amount)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	balance, _, n := f.snapshot(t)
	assert.Equal(t, "1000.00", balance.StringFixed(2))
	assert.Zero(t, n)
}

func TestPlaceBet_PublishFailureDoesNotFailBet(t *testing.T) {
	f := newFixture(t)
	f.publ.err = errors.New("broker down")

	bet, err := f.svc.PlaceBet(context.Background(), 1, f.event.ID, f.event.Outcomes[0].ID, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.NotZero(t, bet.ID)
}

func TestPlaceBet_MetricsCallbacks(t *testing.T) {
	f := newFixture(t)
	var placed []float64
	var rejected []string
	f.svc.OnPlaced = func(a float64) { placed = append(placed, a) }
	f.svc.OnRejected = func(r string) { rejected = append(rejected, r) }

	ctx := context.Background()
	_, err := f.svc.PlaceBet(ctx, 1, f.event.ID, f.event.Outcomes[0].ID, decimal.NewFromInt(20))
	require.NoError(t, err)
	_, _ = f.svc.PlaceBet(ctx, 1, f.event.ID, 12345, decimal.NewFromInt(20))

	assert.Equal(t, []float64{20}, placed)
	assert.Equal(t, []string{"outcome_not_found"}, rejected)
}

// volumeFailStore faz AddOutcomeVolume falhar depois que o débito já foi aplicado
type volumeFailStore struct {
	store.Store
}

func (s volumeFailStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error { return fn(volumeFailTx{tx}) })
}

type volumeFailTx struct {
	store.Tx
}

func (volumeFailTx) AddOutcomeVolume(context.Context, int64, decimal.Decimal) error {
	return errors.New("disk full")
}

func TestPlaceBet_FailureAfterDebitRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	out := f.event.Outcomes[0]

	var reasons []string
	svc := betting.NewService(volumeFailStore{f.repo}, nil, config.DefaultMarket(), nil, f.publ)
	svc.OnRejected = func(r string) { reasons = append(reasons, r) }

	_, err := svc.PlaceBet(ctx, 1, f.event.ID, out.ID, decimal.NewFromInt(100))
	require.Error(t, err)
	assert.Equal(t, []string{"internal"}, reasons)

	bal, outs, n := f.snapshot(t)
	assert.Equal(t, "1000.00", bal.StringFixed(2))
	assert.Zero(t, n)
	assert.True(t, outs[0].TotalWagered.IsZero())

	entries, err := f.repo.ListLedgerEntries(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, f.publ.sent)
}
