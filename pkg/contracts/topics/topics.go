package topics

const (
	// Bets
	BetPlaced    = "bet_placed"
	EventSettled = "event_settled"

	// Odds
	OddsUpdated = "odds_updated"

	// Redis Pub/Sub consumido pelo hub WebSocket
	OddsBroadcastChannel = "odds_updates_broadcast"
)
