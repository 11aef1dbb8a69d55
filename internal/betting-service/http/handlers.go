package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/bet-market-engine/internal/advisory"
	"github.com/radieske/bet-market-engine/internal/betting"
	"github.com/radieske/bet-market-engine/internal/betting-service/dto"
	"github.com/radieske/bet-market-engine/internal/model"
	"github.com/radieske/bet-market-engine/internal/pricing"
)

func (a *API) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if !decode(w, r, &req) {
		return
	}
	bet, err := a.Betting.PlaceBet(r.Context(), req.UserID, req.EventID, req.OutcomeID, req.Amount)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	// o volume do outcome mudou
	a.invalidate(r.Context(), req.EventID)
	writeJSON(w, http.StatusCreated, dto.FromBet(bet))
}

func (a *API) registerUser(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterUserRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	u, created, err := a.Betting.RegisterUser(r.Context(), model.User{
		ID:        req.ID,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, dto.FromUser(u))
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := a.Betting.GetUser(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromUser(u))
}

func (a *API) userBets(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	bets, err := a.Betting.UserBets(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromBets(bets))
}

func (a *API) userStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	st, err := a.Betting.UserStats(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromUserStats(st))
}

func (a *API) listEvents(w http.ResponseWriter, r *http.Request) {
	evs, err := a.Betting.ListActiveEvents(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromEvents(evs))
}

func (a *API) getEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ev, err := a.Betting.GetEvent(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromEvent(ev))
}

// getOdds lê do cache e, num miss, monta a partir do banco e repõe o cache
func (a *API) getOdds(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if a.Cache != nil {
		u, hit, err := a.Cache.GetOdds(r.Context(), id)
		if err != nil {
			a.Log.Warn("odds cache read failed", zap.Int64("event_id", id), zap.Error(err))
		}
		if hit {
			writeJSON(w, http.StatusOK, u)
			return
		}
	}

	ev, err := a.Betting.GetEvent(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	u := pricing.SnapshotUpdate(ev, "store")
	if a.Cache != nil {
		if err := a.Cache.SetOdds(r.Context(), u); err != nil {
			a.Log.Warn("odds cache write failed", zap.Int64("event_id", id), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) createEvent(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEventRequest
	if !decode(w, r, &req) {
		return
	}
	in := betting.NewEvent{
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   callerFrom(r.Context()),
	}
	if req.StartTime != nil {
		in.StartTime = *req.StartTime
	}
	for _, o := range req.Outcomes {
		in.Outcomes = append(in.Outcomes, betting.NewOutcome{Title: o.Title, Odds: o.Odds})
	}
	ev, err := a.Betting.CreateEvent(r.Context(), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.FromEvent(ev))
}

func (a *API) startEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ev, err := a.Betting.StartEvent(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.invalidate(r.Context(), id)
	writeJSON(w, http.StatusOK, dto.FromEvent(ev))
}

func (a *API) settleEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.SettleRequest
	if !decode(w, r, &req) {
		return
	}
	rep, err := a.Settlement.SettleEvent(r.Context(), id, req.OutcomeID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.invalidate(r.Context(), id)
	writeJSON(w, http.StatusOK, dto.FromSettlement(rep))
}

func (a *API) recalculate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	quotes, err := a.Pricing.RecalculateOdds(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]dto.QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, dto.QuoteResponse{
			OutcomeID:    q.OutcomeID,
			Title:        q.Title,
			Probability:  q.Probability,
			Odds:         q.Odds,
			PreviousOdds: q.PreviousOdds,
			Change:       advisory.FormatOddsChange(q.PreviousOdds, q.Odds),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) simulation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sum, err := a.Betting.EventSummary(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, advisory.SimulatePayouts(sum))
}

func (a *API) houseStats(w http.ResponseWriter, r *http.Request) {
	st, err := a.Betting.HouseStats(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromHouseStats(st))
}

func (a *API) adjustBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.BalanceRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := a.Betting.AdjustBalance(r.Context(), id, req.Delta)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Log.Info("admin balance adjustment",
		zap.Int64("user_id", id),
		zap.String("delta", req.Delta.StringFixed(2)),
		zap.Int64("admin_id", callerFrom(r.Context())))
	writeJSON(w, http.StatusOK, dto.FromUser(u))
}

func (a *API) kelly(w http.ResponseWriter, r *http.Request) {
	var req dto.KellyRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Probability <= 0 || req.Probability > 1 || req.Odds <= 1 {
		writeError(w, http.StatusBadRequest, "probability must be in (0,1] and odds > 1")
		return
	}
	balance := req.Balance
	if req.UserID != 0 {
		u, err := a.Betting.GetUser(r.Context(), req.UserID)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		balance = u.Balance.InexactFloat64()
	}
	writeJSON(w, http.StatusOK, advisory.GetKellyRecommendation(req.Probability, req.Odds, balance))
}

func (a *API) arbitrage(w http.ResponseWriter, r *http.Request) {
	var req dto.ArbitrageRequest
	if !decode(w, r, &req) {
		return
	}
	var outs []advisory.OutcomeOdds
	if req.EventID != 0 {
		ev, err := a.Betting.GetEvent(r.Context(), req.EventID)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		for _, o := range ev.Outcomes {
			outs = append(outs, advisory.OutcomeOdds{Title: o.Title, Odds: o.Odds})
		}
	} else {
		for _, o := range req.Outcomes {
			outs = append(outs, advisory.OutcomeOdds{Title: o.Title, Odds: o.Odds})
		}
	}
	writeJSON(w, http.StatusOK, advisory.DetectArbitrage(outs))
}
