package events

import "time"

// Evento emitido após a liquidação de um evento
type EventSettled struct {
	EventID          int64     `json:"event_id"`
	WinningOutcomeID int64     `json:"winning_outcome_id"`
	WinningCount     int       `json:"winning_count"`
	LosingCount      int       `json:"losing_count"`
	TotalPaid        string    `json:"total_paid"`
	TotalLostStakes  string    `json:"total_lost_stakes"`
	HouseProfit      string    `json:"house_profit"`
	Ts               time.Time `json:"ts"`
}
