package betting

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/bet-market-engine/internal/model"
	"github.com/radieske/bet-market-engine/internal/store"
)

type NewOutcome struct {
	Title string
	Odds  float64
}

type NewEvent struct {
	Title       string
	Description string
	StartTime   time.Time
	CreatedBy   int64
	Outcomes    []NewOutcome
}

// CreateEvent cria o evento (UPCOMING) e seus outcomes na mesma transação.
// Exige ao menos dois outcomes, cada um com título e odd > 1.
func (s *Service) CreateEvent(ctx context.Context, in NewEvent) (model.Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Event{}, fmt.Errorf("%w: title required", model.ErrInvalidOutcomes)
	}
	if len(in.Outcomes) < 2 {
		return model.Event{}, fmt.Errorf("%w: at least 2 outcomes required", model.ErrInvalidOutcomes)
	}
	for _, o := range in.Outcomes {
		if strings.TrimSpace(o.Title) == "" || !(o.Odds > 1.0) || math.IsInf(o.Odds, 0) {
			return model.Event{}, fmt.Errorf("%w: %q odds=%v", model.ErrInvalidOutcomes, o.Title, o.Odds)
		}
	}
	start := in.StartTime
	if start.IsZero() {
		start = time.Now().Add(24 * time.Hour)
	}

	ev := model.Event{
		Title:       title,
		Description: in.Description,
		StartTime:   start.UTC(),
		Status:      model.EventUpcoming,
		CreatedBy:   in.CreatedBy,
	}
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.InsertEvent(ctx, &ev); err != nil {
			return err
		}
		for _, o := range in.Outcomes {
			out := model.Outcome{
				EventID:      ev.ID,
				Title:        strings.TrimSpace(o.Title),
				Odds:         math.Round(o.Odds*100) / 100,
				TotalWagered: decimal.Zero,
				Resolution:   model.Undetermined,
			}
			if err := tx.InsertOutcome(ctx, &out); err != nil {
				return err
			}
			ev.Outcomes = append(ev.Outcomes, out)
		}
		return nil
	})
	if err != nil {
		return model.Event{}, err
	}

	s.log.Info("event created", zap.Int64("event_id", ev.ID), zap.String("title", ev.Title), zap.Int("outcomes", len(ev.Outcomes)))
	return ev, nil
}

// StartEvent move UPCOMING → LIVE; apenas informativo, fecha as apostas
func (s *Service) StartEvent(ctx context.Context, eventID int64) (model.Event, error) {
	var ev model.Event
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		ev, err = tx.LockEvent(ctx, eventID)
		if err != nil {
			return mapNotFound(err, model.ErrEventNotFound)
		}
		if ev.Status != model.EventUpcoming {
			return model.ErrEventNotOpen
		}
		ev.Status = model.EventLive
		return tx.UpdateEventStatus(ctx, eventID, model.EventLive)
	})
	if err != nil {
		return model.Event{}, err
	}
	s.log.Info("event started", zap.Int64("event_id", eventID))
	return ev, nil
}

// ListActiveEvents devolve os eventos UPCOMING e LIVE com seus outcomes
func (s *Service) ListActiveEvents(ctx context.Context) ([]model.Event, error) {
	return s.store.ListEventsByStatus(ctx, model.EventUpcoming, model.EventLive)
}

func (s *Service) GetEvent(ctx context.Context, eventID int64) (model.Event, error) {
	ev, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return model.Event{}, mapNotFound(err, model.ErrEventNotFound)
	}
	return ev, nil
}

// EventSummary agrega as apostas por outcome usando somente os dados travados das apostas
func (s *Service) EventSummary(ctx context.Context, eventID int64) (model.EventSummary, error) {
	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return model.EventSummary{}, err
	}
	bets, err := s.store.ListBetsByEvent(ctx, eventID)
	if err != nil {
		return model.EventSummary{}, err
	}

	idx := make(map[int64]int, len(ev.Outcomes))
	sum := model.EventSummary{Event: ev, TotalStaked: decimal.Zero}
	for i, o := range ev.Outcomes {
		idx[o.ID] = i
		sum.Outcomes = append(sum.Outcomes, model.OutcomeSummary{Outcome: o, Staked: decimal.Zero, Liability: decimal.Zero})
	}
	for _, b := range bets {
		sum.TotalBets++
		sum.TotalStaked = sum.TotalStaked.Add(b.Amount)
		i, ok := idx[b.OutcomeID]
		if !ok {
			continue
		}
		agg := &sum.Outcomes[i]
		agg.BetCount++
		agg.Staked = agg.Staked.Add(b.Amount)
		agg.Liability = agg.Liability.Add(b.PotentialPayout)
	}
	return sum, nil
}
