package events

// Evento publicado após o commit de uma aposta
type BetPlaced struct {
	BetID           int64   `json:"bet_id"`
	UserID          int64   `json:"user_id"`
	EventID         int64   `json:"event_id"`
	OutcomeID       int64   `json:"outcome_id"`
	Amount          string  `json:"amount"`
	Odds            float64 `json:"odds"` // odd travada na criação
	PotentialPayout string  `json:"potential_payout"`
	TsUnixMs        int64   `json:"ts_unix_ms"`
}
