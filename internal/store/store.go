// Package store define o contrato transacional consumido pelo núcleo.
// A escolha de driver (Postgres, SQLite) fica inteiramente no adaptador.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/radieske/bet-market-engine/internal/model"
)

// ErrConflict indica que a transação não pôde ser confirmada (ex: conflito de
// serialização). Nada foi aplicado e a operação pode ser repetida.
var ErrConflict = errors.New("store conflict")

// ErrNotFound é devolvido pelas leituras por id quando a linha não existe
var ErrNotFound = errors.New("not found")

// Queries é o conjunto de operações disponível dentro e fora de uma transação
type Queries interface {
	// Usuários
	GetUser(ctx context.Context, id int64) (model.User, error)
	LockUser(ctx context.Context, id int64) (model.User, error) // SELECT ... FOR UPDATE quando suportado
	InsertUser(ctx context.Context, u *model.User) error
	UpdateUserBalance(ctx context.Context, id int64, balance decimal.Decimal) error
	InsertLedgerEntry(ctx context.Context, e *model.LedgerEntry) error
	ListLedgerEntries(ctx context.Context, userID int64) ([]model.LedgerEntry, error)

	// Eventos e outcomes
	GetEvent(ctx context.Context, id int64) (model.Event, error) // inclui Outcomes
	LockEvent(ctx context.Context, id int64) (model.Event, error)
	ListEventsByStatus(ctx context.Context, statuses ...model.EventStatus) ([]model.Event, error)
	InsertEvent(ctx context.Context, e *model.Event) error
	UpdateEventStatus(ctx context.Context, id int64, status model.EventStatus) error
	InsertOutcome(ctx context.Context, o *model.Outcome) error
	ListOutcomes(ctx context.Context, eventID int64) ([]model.Outcome, error)
	AddOutcomeVolume(ctx context.Context, outcomeID int64, amount decimal.Decimal) error
	UpdateOutcomeOdds(ctx context.Context, outcomeID int64, odds float64) error
	ResolveOutcomes(ctx context.Context, eventID, winningOutcomeID int64) error

	// Apostas
	InsertBet(ctx context.Context, b *model.Bet) error
	ListBetsByEvent(ctx context.Context, eventID int64) ([]model.Bet, error)
	ListBetsForUpdate(ctx context.Context, eventID int64) ([]model.Bet, error)
	ListBetsByUser(ctx context.Context, userID int64) ([]model.Bet, error)
	UpdateBetStatus(ctx context.Context, betID int64, status model.BetStatus) error

	// Estatísticas
	HouseStats(ctx context.Context) (model.HouseStats, error)
}

// Tx é uma unidade atômica: tudo o que for feito nela confirma junto ou nada
type Tx interface {
	Queries
}

// Store é o repositório completo com suporte a transações
type Store interface {
	Queries
	// WithTx executa fn numa transação; erro em fn faz rollback total
	WithTx(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
	Close() error
}
