package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type PlaceBetRequest struct {
	UserID    int64           `json:"userId"`
	EventID   int64           `json:"eventId"`
	OutcomeID int64           `json:"outcomeId"`
	Amount    decimal.Decimal `json:"amount"` // aceita "10.50" ou 10.5
}

type RegisterUserRequest struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type OutcomeRequest struct {
	Title string  `json:"title"`
	Odds  float64 `json:"odds"`
}

type CreateEventRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	StartTime   *time.Time       `json:"startTime,omitempty"` // default: agora + 24h
	Outcomes    []OutcomeRequest `json:"outcomes"`
}

type SettleRequest struct {
	OutcomeID int64 `json:"outcomeId"`
}

type BalanceRequest struct {
	Delta decimal.Decimal `json:"delta"` // positivo credita, negativo debita
}

// KellyRequest usa o saldo do usuário quando UserID é informado
type KellyRequest struct {
	Probability float64 `json:"probability"`
	Odds        float64 `json:"odds"`
	Balance     float64 `json:"balance"`
	UserID      int64   `json:"userId,omitempty"`
}

// ArbitrageRequest analisa as odds correntes do evento ou uma lista avulsa
type ArbitrageRequest struct {
	EventID  int64            `json:"eventId,omitempty"`
	Outcomes []OutcomeRequest `json:"outcomes,omitempty"`
}
