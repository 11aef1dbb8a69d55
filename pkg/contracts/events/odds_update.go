package events

import "time"

// Evento publicado no tópico "odds_updated" e no canal de broadcast do Redis
type OutcomeOdds struct {
	OutcomeID    int64   `json:"outcome_id"`
	Title        string  `json:"title"`
	Odds         float64 `json:"odds"`
	PreviousOdds float64 `json:"previous_odds"`
	TotalWagered string  `json:"total_wagered"`
}

type OddsUpdate struct {
	EventID   int64         `json:"event_id"`
	Title     string        `json:"title"`
	Outcomes  []OutcomeOdds `json:"outcomes"`
	UpdatedAt time.Time     `json:"updated_at"`
	Source    string        `json:"source"` // "recalc" | "store"
}
