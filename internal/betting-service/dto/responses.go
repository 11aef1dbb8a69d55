package dto

import (
	"time"

	"github.com/radieske/bet-market-engine/internal/model"
)

type BetResponse struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"userId"`
	EventID         int64     `json:"eventId"`
	OutcomeID       int64     `json:"outcomeId"`
	Amount          string    `json:"amount"`
	Odds            float64   `json:"odds"`
	PotentialPayout string    `json:"potentialPayout"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

func FromBet(b model.Bet) BetResponse {
	return BetResponse{
		ID:              b.ID,
		UserID:          b.UserID,
		EventID:         b.EventID,
		OutcomeID:       b.OutcomeID,
		Amount:          b.Amount.StringFixed(2),
		Odds:            b.Odds,
		PotentialPayout: b.PotentialPayout.StringFixed(2),
		Status:          string(b.Status),
		CreatedAt:       b.CreatedAt,
	}
}

func FromBets(bs []model.Bet) []BetResponse {
	out := make([]BetResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, FromBet(b))
	}
	return out
}

type OutcomeResponse struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Odds         float64 `json:"odds"`
	TotalWagered string  `json:"totalWagered"`
	Resolution   string  `json:"resolution"`
}

type EventResponse struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Status      string            `json:"status"`
	StartTime   time.Time         `json:"startTime"`
	EndTime     *time.Time        `json:"endTime,omitempty"`
	Outcomes    []OutcomeResponse `json:"outcomes"`
}

func FromEvent(e model.Event) EventResponse {
	r := EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Status:      string(e.Status),
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Outcomes:    make([]OutcomeResponse, 0, len(e.Outcomes)),
	}
	for _, o := range e.Outcomes {
		r.Outcomes = append(r.Outcomes, OutcomeResponse{
			ID:           o.ID,
			Title:        o.Title,
			Odds:         o.Odds,
			TotalWagered: o.TotalWagered.StringFixed(2),
			Resolution:   string(o.Resolution),
		})
	}
	return r
}

func FromEvents(es []model.Event) []EventResponse {
	out := make([]EventResponse, 0, len(es))
	for _, e := range es {
		out = append(out, FromEvent(e))
	}
	return out
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Balance   string `json:"balance"`
}

func FromUser(u model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Balance:   u.Balance.StringFixed(2),
	}
}

type UserStatsResponse struct {
	TotalBets   int    `json:"totalBets"`
	Pending     int    `json:"pending"`
	Won         int    `json:"won"`
	Lost        int    `json:"lost"`
	TotalStaked string `json:"totalStaked"`
	TotalWon    string `json:"totalWon"`
	Profit      string `json:"profit"`
}

func FromUserStats(s model.UserStats) UserStatsResponse {
	return UserStatsResponse{
		TotalBets:   s.TotalBets,
		Pending:     s.Pending,
		Won:         s.Won,
		Lost:        s.Lost,
		TotalStaked: s.TotalStaked.StringFixed(2),
		TotalWon:    s.TotalWon.StringFixed(2),
		Profit:      s.Profit.StringFixed(2),
	}
}

type HouseStatsResponse struct {
	TotalUsers  int64   `json:"totalUsers"`
	ActiveUsers int64   `json:"activeUsers"`
	TotalBets   int64   `json:"totalBets"`
	TotalStaked string  `json:"totalStaked"`
	TotalPaid   string  `json:"totalPaid"`
	HouseProfit string  `json:"houseProfit"`
	MarginPct   float64 `json:"marginPct"`
}

func FromHouseStats(s model.HouseStats) HouseStatsResponse {
	return HouseStatsResponse{
		TotalUsers:  s.TotalUsers,
		ActiveUsers: s.ActiveUsers,
		TotalBets:   s.TotalBets,
		TotalStaked: s.TotalStaked.StringFixed(2),
		TotalPaid:   s.TotalPaid.StringFixed(2),
		HouseProfit: s.HouseProfit.StringFixed(2),
		MarginPct:   s.MarginPct,
	}
}

type SettlementResponse struct {
	EventID          int64  `json:"eventId"`
	WinningOutcomeID int64  `json:"winningOutcomeId"`
	WinningCount     int    `json:"winningCount"`
	LosingCount      int    `json:"losingCount"`
	TotalStaked      string `json:"totalStaked"`
	TotalPaid        string `json:"totalPaid"`
	TotalLostStakes  string `json:"totalLostStakes"`
	HouseProfit      string `json:"houseProfit"`
}

func FromSettlement(r model.SettlementReport) SettlementResponse {
	return SettlementResponse{
		EventID:          r.EventID,
		WinningOutcomeID: r.WinningOutcomeID,
		WinningCount:     r.WinningCount,
		LosingCount:      r.LosingCount,
		TotalStaked:      r.TotalStaked.StringFixed(2),
		TotalPaid:        r.TotalPaid.StringFixed(2),
		TotalLostStakes:  r.TotalLostStakes.StringFixed(2),
		HouseProfit:      r.HouseProfit.StringFixed(2),
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type QuoteResponse struct {
	OutcomeID    int64   `json:"outcomeId"`
	Title        string  `json:"title"`
	Probability  float64 `json:"probability"`
	Odds         float64 `json:"odds"`
	PreviousOdds float64 `json:"previousOdds"`
	Change       string  `json:"change"` // ex: "2.30 ▲ (+0.20)"
}
