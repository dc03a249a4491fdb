package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"runhub/internal/domain"
	"runhub/internal/observability"
	"runhub/internal/security"
)

func fakeClient(h *Hub, buf int) *Client {
	return &Client{hub: h, send: make(chan []byte, buf), logger: zap.NewNop()}
}

func TestHubBroadcast(t *testing.T) {
	m := observability.NewMetrics("ws_test")
	h := NewHub(m, zap.NewNop())
	a, b := fakeClient(h, 4), fakeClient(h, 4)
	h.Register(a)
	h.Register(b)

	h.PublishNotificationsUpdate(context.Background(), domain.NotificationEvent{
		Notification: &domain.PopulatedNotification{ID: "n1", User: "bob"},
		Type:         domain.NotificationAdded,
	})

	for _, c := range []*Client{a, b} {
		var env Envelope
		require.NoError(t, json.Unmarshal(<-c.send, &env))
		assert.Equal(t, domain.EventNotificationsUpdate, env.Event)

		var ev domain.NotificationEvent
		require.NoError(t, json.Unmarshal(env.Data, &ev))
		assert.Equal(t, domain.NotificationAdded, ev.Type)
		assert.Equal(t, "bob", ev.Notification.User)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ConnectedClients))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues(domain.EventNotificationsUpdate, "local")))
}

func TestHubDropsSlowClients(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	slow, fast := fakeClient(h, 1), fakeClient(h, 8)
	h.Register(slow)
	h.Register(fast)

	h.Broadcast([]byte(`{}`))
	h.Broadcast([]byte(`{}`))

	assert.Equal(t, 1, h.ClientCount())
	<-slow.send
	_, open := <-slow.send
	assert.False(t, open, "slow client's queue is closed")

	h.Unregister(slow)
	h.Unregister(fast)
	h.Unregister(fast)
	assert.Equal(t, 0, h.ClientCount())
}

func TestHandlerDeliversEvents(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	srv := httptest.NewServer(MakeHandler(h, nil, HandlerConfig{}, zap.NewNop()))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	h.PublishConversationUpdate(context.Background(), &domain.PopulatedConversation{ID: "c1"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, domain.EventConversationUpdate, env.Event)
	assert.JSONEq(t, `"c1"`, string(mustField(t, env.Data, "_id")))

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHandlerAuth(t *testing.T) {
	tokens := security.NewTokenService("secret", time.Hour)
	h := NewHub(nil, zap.NewNop())
	srv := httptest.NewServer(MakeHandler(h, tokens, HandlerConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
		RequireAuth:    true,
	}, zap.NewNop()))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	hdr := http.Header{"Origin": {"http://evil.example"}}
	_, resp, err = websocket.DefaultDialer.Dial(url, hdr)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	tok, err := tokens.CreateForCaller(domain.Caller{UserID: domain.NewID(), Username: "alice"})
	require.NoError(t, err)
	hdr = http.Header{
		"Origin":        {"http://localhost:3000"},
		"Authorization": {"Bearer " + tok},
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, hdr)
	require.NoError(t, err)
	conn.Close()
}

func TestRelayFallsBackToLocal(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	m := observability.NewMetrics("relay_test")
	h := NewHub(m, zap.NewNop())
	c := fakeClient(h, 16)
	h.Register(c)
	relay := NewRedisRelay(rdb, "runhub:test", h, m, zap.NewNop())

	for i := 0; i < 6; i++ {
		relay.PublishConversationUpdate(context.Background(), &domain.PopulatedConversation{ID: "c1"})
	}

	assert.Len(t, c.send, 6, "every event reaches local clients")
	assert.Equal(t, gobreaker.StateOpen, relay.State())
	assert.Equal(t, 6.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues(domain.EventConversationUpdate, "local")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues(domain.EventConversationUpdate, "redis")))
}

func TestRelayDeliverSkipsOwnFrames(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	c := fakeClient(h, 4)
	h.Register(c)
	relay := NewRedisRelay(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), "ch", h, nil, zap.NewNop())

	own, _ := json.Marshal(relayFrame{Origin: relay.origin, Envelope: Envelope{Event: "conversationUpdate", Data: json.RawMessage(`{}`)}})
	relay.deliver(own)
	assert.Len(t, c.send, 0)

	foreign, _ := json.Marshal(relayFrame{Origin: "other", Envelope: Envelope{Event: "notificationsUpdate", Data: json.RawMessage(`{"type":"add"}`)}})
	relay.deliver(foreign)
	require.Len(t, c.send, 1)

	var env Envelope
	require.NoError(t, json.Unmarshal(<-c.send, &env))
	assert.Equal(t, "notificationsUpdate", env.Event)
	assert.JSONEq(t, `{"type":"add"}`, string(env.Data))

	relay.deliver([]byte("not json"))
	assert.Len(t, c.send, 0)
}

func mustField(t *testing.T, raw json.RawMessage, field string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	return m[field]
}
