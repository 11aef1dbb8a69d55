package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/bet-market-engine/pkg/contracts/events"
)

// OddsCache guarda a última cotação de cada evento no Redis e a difunde no
// canal Pub/Sub consumido pelo hub WebSocket.
type OddsCache struct {
	R       *redis.Client
	TTL     time.Duration
	Channel string
}

func New(r *redis.Client, ttl time.Duration, channel string) *OddsCache {
	return &OddsCache{R: r, TTL: ttl, Channel: channel}
}

func keyEvent(eventID int64) string { return "odds:current:" + strconv.FormatInt(eventID, 10) }

// GetOdds devolve (update, true) quando há cotação em cache
func (c *OddsCache) GetOdds(ctx context.Context, eventID int64) (events.OddsUpdate, bool, error) {
	var u events.OddsUpdate
	b, err := c.R.Get(ctx, keyEvent(eventID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return u, false, nil
	}
	if err != nil {
		return u, false, err
	}
	if err := json.Unmarshal(b, &u); err != nil {
		return u, false, err
	}
	return u, true, nil
}

func (c *OddsCache) SetOdds(ctx context.Context, u events.OddsUpdate) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, keyEvent(u.EventID), b, c.TTL).Err()
}

// Invalidate remove a cotação (ex: evento liquidado)
func (c *OddsCache) Invalidate(ctx context.Context, eventID int64) error {
	return c.R.Del(ctx, keyEvent(eventID)).Err()
}

// PublishOdds grava o cache e publica no canal de broadcast
func (c *OddsCache) PublishOdds(ctx context.Context, u events.OddsUpdate) error {
	if err := c.SetOdds(ctx, u); err != nil {
		return err
	}
	if c.Channel == "" {
		return nil
	}
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.R.Publish(ctx, c.Channel, b).Err()
}
