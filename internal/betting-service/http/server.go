package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/bet-market-engine/internal/betting"
	"github.com/radieske/bet-market-engine/internal/betting-service/dto"
	"github.com/radieske/bet-market-engine/internal/model"
	"github.com/radieske/bet-market-engine/internal/pricing"
	"github.com/radieske/bet-market-engine/internal/settlement"
	"github.com/radieske/bet-market-engine/internal/store"
	"github.com/radieske/bet-market-engine/pkg/contracts/events"
)

// HeaderUserID identifica quem chama as rotas administrativas
const HeaderUserID = "X-User-ID"

// OddsCache é o cache de odds correntes (Redis em produção)
type OddsCache interface {
	GetOdds(ctx context.Context, eventID int64) (events.OddsUpdate, bool, error)
	SetOdds(ctx context.Context, u events.OddsUpdate) error
	Invalidate(ctx context.Context, eventID int64) error
}

// API expõe os engines de aposta, preço e liquidação via REST
type API struct {
	Log        *zap.Logger
	Betting    *betting.Service
	Pricing    *pricing.Engine
	Settlement *settlement.Engine
	Cache      OddsCache    // opcional
	WS         http.Handler // opcional: stream de odds

	// IsAdmin libera as rotas administrativas; nil deixa as rotas abertas
	IsAdmin func(userID int64) bool
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(withCORS)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/bets", a.placeBet)

		r.Post("/users", a.registerUser)
		r.Get("/users/{id}", a.getUser)
		r.Get("/users/{id}/bets", a.userBets)
		r.Get("/users/{id}/stats", a.userStats)

		r.Get("/events", a.listEvents)
		r.Get("/events/{id}", a.getEvent)
		r.Get("/events/{id}/odds", a.getOdds)

		r.Post("/advisory/kelly", a.kelly)
		r.Post("/advisory/arbitrage", a.arbitrage)

		r.Group(func(r chi.Router) {
			r.Use(a.requireAdmin)
			r.Post("/events", a.createEvent)
			r.Post("/events/{id}/start", a.startEvent)
			r.Post("/events/{id}/settle", a.settleEvent)
			r.Post("/events/{id}/recalculate", a.recalculate)
			r.Get("/events/{id}/simulation", a.simulation)
			r.Get("/stats", a.houseStats)
			r.Post("/admin/users/{id}/balance", a.adjustBalance)
		})
	})

	if a.WS != nil {
		r.Handle("/ws", a.WS)
	}
	return r
}

func (a *API) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.IsAdmin == nil {
			next.ServeHTTP(w, r)
			return
		}
		id, err := strconv.ParseInt(r.Header.Get(HeaderUserID), 10, 64)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "missing or invalid "+HeaderUserID)
			return
		}
		if !a.IsAdmin(id) {
			writeError(w, http.StatusForbidden, "admin only")
			return
		}
		next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), id)))
	})
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+HeaderUserID)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

type callerKey struct{}

func withCaller(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, callerKey{}, id)
}

func callerFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(callerKey{}).(int64)
	return id
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

// fail traduz os erros de domínio em status HTTP
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.Log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}
	if errors.Is(err, store.ErrConflict) {
		w.Header().Set("Retry-After", "1")
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeError(w, status, msg)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidAmount), errors.Is(err, model.ErrInvalidOutcomes):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUserNotFound), errors.Is(err, model.ErrEventNotFound),
		errors.Is(err, model.ErrOutcomeNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrEventNotOpen), errors.Is(err, model.ErrEventAlreadySettled),
		errors.Is(err, model.ErrNoOutcomes):
		return http.StatusConflict
	case errors.Is(err, model.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrConflict):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// invalidate descarta a odd em cache após mudanças de estado do evento
func (a *API) invalidate(ctx context.Context, eventID int64) {
	if a.Cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 500*time.Millisecond)
	defer cancel()
	if err := a.Cache.Invalidate(ctx, eventID); err != nil {
		a.Log.Warn("odds cache invalidate failed", zap.Int64("event_id", eventID), zap.Error(err))
	}
}
