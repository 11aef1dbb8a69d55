package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventStatus representa o ciclo de vida de um evento
type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventLive      EventStatus = "live"
	EventFinished  EventStatus = "finished"
	EventCancelled EventStatus = "cancelled"
)

// Settleable indica se o evento ainda pode ter um vencedor declarado
func (s EventStatus) Settleable() bool {
	return s == EventUpcoming || s == EventLive
}

// Resolution é o resultado de um outcome após a liquidação
type Resolution string

const (
	Undetermined Resolution = "undetermined"
	Winning      Resolution = "winning"
	Losing       Resolution = "losing"
)

// BetStatus representa o estado de uma aposta
type BetStatus string

const (
	BetPending   BetStatus = "pending"
	BetWon       BetStatus = "won"
	BetLost      BetStatus = "lost"
	BetCancelled BetStatus = "cancelled"
)

// Event é um evento agendado com seus outcomes (o evento é dono dos outcomes)
type Event struct {
	ID          int64
	Title       string
	Description string
	StartTime   time.Time
	EndTime     *time.Time
	Status      EventStatus
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Outcomes []Outcome
}

// Outcome busca um outcome do evento pelo id
func (e *Event) Outcome(id int64) (Outcome, bool) {
	for _, o := range e.Outcomes {
		if o.ID == id {
			return o, true
		}
	}
	return Outcome{}, false
}

// Outcome é um resultado possível de um evento
type Outcome struct {
	ID           int64
	EventID      int64
	Title        string
	Odds         float64
	TotalWagered decimal.Decimal
	Resolution   Resolution
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Bet guarda a odd travada no momento da aposta; o payout potencial nunca é recalculado
type Bet struct {
	ID              int64
	UserID          int64
	EventID         int64
	OutcomeID       int64
	Amount          decimal.Decimal
	Odds            float64
	PotentialPayout decimal.Decimal
	Status          BetStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// User é o apostador; ID é o id do usuário na plataforma de chat
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	Balance   decimal.Decimal
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LedgerOperation identifica o tipo de movimentação de saldo
type LedgerOperation string

const (
	OpDebit  LedgerOperation = "DEBIT"
	OpCredit LedgerOperation = "CREDIT"
)

// LedgerEntry registra cada mutação de saldo para auditoria
type LedgerEntry struct {
	ID           int64
	UserID       int64
	Operation    LedgerOperation
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	Reference    string
	CreatedAt    time.Time
}

// SettlementReport são estatísticas derivadas de uma liquidação (não persistidas)
type SettlementReport struct {
	EventID          int64
	WinningOutcomeID int64
	WinningCount     int
	LosingCount      int
	TotalStaked      decimal.Decimal
	TotalPaid        decimal.Decimal
	TotalLostStakes  decimal.Decimal
	HouseProfit      decimal.Decimal
}

// HouseStats é o resumo global exibido para administradores
type HouseStats struct {
	TotalUsers  int64
	ActiveUsers int64
	TotalBets   int64
	TotalStaked decimal.Decimal
	TotalPaid   decimal.Decimal
	HouseProfit decimal.Decimal
	MarginPct   float64
}

// UserStats resume o histórico de apostas de um usuário
type UserStats struct {
	TotalBets   int
	Pending     int
	Won         int
	Lost        int
	TotalStaked decimal.Decimal
	TotalWon    decimal.Decimal
	Profit      decimal.Decimal
}

// OutcomeSummary agrega as apostas de um outcome
type OutcomeSummary struct {
	Outcome  Outcome
	BetCount int
	Staked   decimal.Decimal
	// Liability é quanto a casa paga se este outcome vencer (payouts travados)
	Liability decimal.Decimal
}

// EventSummary agrega as apostas de um evento por outcome
type EventSummary struct {
	Event       Event
	TotalBets   int
	TotalStaked decimal.Decimal
	Outcomes    []OutcomeSummary
}
