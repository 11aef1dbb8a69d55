package ws

import "github.com/radieske/bet-market-engine/pkg/contracts/events"

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// EventID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type    string `json:"type"`
	EventID int64  `json:"eventId"`
}

// ServerMsg é o envelope enviado aos clientes
type ServerMsg struct {
	Type    string             `json:"type"` // odds | pong | ack
	EventID int64              `json:"eventId,omitempty"`
	Payload *events.OddsUpdate `json:"payload,omitempty"`
}
