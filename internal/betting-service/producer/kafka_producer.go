package producer

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	sharedkafka "github.com/radieske/bet-market-engine/internal/shared/kafka"
	"github.com/radieske/bet-market-engine/pkg/contracts/events"
)

// KafkaPublisher publica os eventos de domínio, um writer por tópico.
// A chave é sempre o id do evento esportivo, preservando a ordem por evento.
type KafkaPublisher struct {
	BetPlaced    sharedkafka.MessageWriter
	EventSettled sharedkafka.MessageWriter
	OddsUpdated  sharedkafka.MessageWriter
}

func NewKafkaPublisher(betPlaced, eventSettled, oddsUpdated sharedkafka.MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{BetPlaced: betPlaced, EventSettled: eventSettled, OddsUpdated: oddsUpdated}
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	return write(ctx, p.BetPlaced, e.EventID, e)
}

func (p *KafkaPublisher) PublishEventSettled(ctx context.Context, e events.EventSettled) error {
	if e.Ts.IsZero() {
		e.Ts = time.Now().UTC()
	}
	return write(ctx, p.EventSettled, e.EventID, e)
}

func (p *KafkaPublisher) PublishOdds(ctx context.Context, u events.OddsUpdate) error {
	return write(ctx, p.OddsUpdated, u.EventID, u)
}

func write(ctx context.Context, w sharedkafka.MessageWriter, eventID int64, v any) error {
	if w == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return sharedkafka.WriteJSON(ctx, w, strconv.FormatInt(eventID, 10), b)
}
