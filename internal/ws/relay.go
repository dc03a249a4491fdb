package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"runhub/internal/domain"
	"runhub/internal/observability"
)

const publishTimeout = 2 * time.Second

// relayFrame is what travels over Redis. Origin lets an instance skip its
// own frames, which it already delivered locally.
type relayFrame struct {
	Origin string `json:"origin"`
	Envelope
}

// RedisRelay fans events out to every server instance through a Redis
// channel. Local clients are always served directly; Redis only carries the
// event to other instances. While the breaker is open other instances miss
// events, which fire-and-forget delivery tolerates.
type RedisRelay struct {
	rdb     *redis.Client
	channel string
	origin  string
	hub     *Hub
	breaker *gobreaker.CircuitBreaker
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewRedisRelay(
	rdb *redis.Client,
	channel string,
	hub *Hub,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *RedisRelay {
	r := &RedisRelay{
		rdb:     rdb,
		channel: channel,
		origin:  uuid.NewString(),
		hub:     hub,
		metrics: metrics,
		logger:  logger,
	}
	r.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-relay",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return r
}

// State reports the breaker state.
func (r *RedisRelay) State() gobreaker.State {
	return r.breaker.State()
}

func (r *RedisRelay) PublishConversationUpdate(ctx context.Context, conv *domain.PopulatedConversation) {
	r.publish(ctx, domain.EventConversationUpdate, conv)
}

func (r *RedisRelay) PublishNotificationsUpdate(ctx context.Context, ev domain.NotificationEvent) {
	r.publish(ctx, domain.EventNotificationsUpdate, ev)
}

func (r *RedisRelay) publish(ctx context.Context, event string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		r.logger.Error("encode event", zap.String("event", event), zap.Error(err))
		return
	}
	env := Envelope{Event: event, Data: raw}
	local, err := json.Marshal(env)
	if err != nil {
		r.logger.Error("encode event", zap.String("event", event), zap.Error(err))
		return
	}
	r.hub.Broadcast(local)
	r.metrics.EventPublished(event, "local")

	payload, err := json.Marshal(relayFrame{Origin: r.origin, Envelope: env})
	if err != nil {
		r.logger.Error("encode relay frame", zap.String("event", event), zap.Error(err))
		return
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	_, err = r.breaker.Execute(func() (any, error) {
		return nil, r.rdb.Publish(pctx, r.channel, payload).Err()
	})
	if err != nil {
		r.logger.Warn("relay publish failed",
			zap.String("event", event),
			zap.String("channel", r.channel),
			zap.Error(err))
		return
	}
	r.metrics.EventPublished(event, "redis")
}

// Run relays frames published by other instances into the local hub until
// ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	r.logger.Info("redis relay subscribed", zap.String("channel", r.channel))

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errors.New("redis subscription closed")
			}
			r.deliver([]byte(msg.Payload))
		}
	}
}

func (r *RedisRelay) deliver(payload []byte) {
	var f relayFrame
	if err := json.Unmarshal(payload, &f); err != nil {
		r.logger.Warn("decode relay frame", zap.Error(err))
		return
	}
	if f.Origin == r.origin || f.Event == "" {
		return
	}
	frame, err := json.Marshal(f.Envelope)
	if err != nil {
		r.logger.Warn("encode relayed event", zap.Error(err))
		return
	}
	r.hub.Broadcast(frame)
}
