package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/bet-market-engine/pkg/contracts/events"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn) ServerMsg {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m ServerMsg
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func newServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(zap.NewNop(), func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)
	return hub, srv
}

func TestHub_SubscribeAndBroadcast(t *testing.T) {
	hub, srv := newServer(t)
	a := dial(t, srv)
	b := dial(t, srv)

	require.NoError(t, a.WriteJSON(ClientMsg{Type: "subscribe", EventID: 1}))
	assert.Equal(t, "ack", readMsg(t, a).Type)
	require.NoError(t, b.WriteJSON(ClientMsg{Type: "subscribe", EventID: 2}))
	assert.Equal(t, "ack", readMsg(t, b).Type)
	assert.Equal(t, 1, hub.Subscribers(1))

	hub.Broadcast(events.OddsUpdate{EventID: 1, Outcomes: []events.OutcomeOdds{{OutcomeID: 3, Odds: 1.9}}})
	m := readMsg(t, a)
	assert.Equal(t, "odds", m.Type)
	require.NotNil(t, m.Payload)
	assert.Equal(t, 1.9, m.Payload.Outcomes[0].Odds)

	// b não recebe o evento 1
	require.NoError(t, b.WriteJSON(ClientMsg{Type: "ping"}))
	assert.Equal(t, "pong", readMsg(t, b).Type)
}

func TestHub_UnsubscribeAndDisconnect(t *testing.T) {
	hub, srv := newServer(t)
	a := dial(t, srv)

	require.NoError(t, a.WriteJSON(ClientMsg{Type: "subscribe", EventID: 5}))
	readMsg(t, a)
	require.NoError(t, a.WriteJSON(ClientMsg{Type: "unsubscribe", EventID: 5}))
	readMsg(t, a)
	assert.Zero(t, hub.Subscribers(5))

	require.NoError(t, a.WriteJSON(ClientMsg{Type: "subscribe", EventID: 6}))
	readMsg(t, a)
	a.Close()
	assert.Eventually(t, func() bool { return hub.Subscribers(6) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestRedisSubscriberFeedsHub(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	hub, srv := newServer(t)
	conn := dial(t, srv)
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", EventID: 9}))
	readMsg(t, conn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartRedisSubscriber(ctx, rdb, "odds_updates_broadcast", hub, zap.NewNop())

	payload, err := json.Marshal(events.OddsUpdate{EventID: 9, Title: "x"})
	require.NoError(t, err)
	// a inscrição no Redis é assíncrona: republica até o cliente receber
	require.Eventually(t, func() bool {
		return rdb.Publish(ctx, "odds_updates_broadcast", payload).Val() > 0
	}, 2*time.Second, 20*time.Millisecond)

	m := readMsg(t, conn)
	assert.Equal(t, "odds", m.Type)
	assert.Equal(t, int64(9), m.EventID)
}
