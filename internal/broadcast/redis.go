package broadcast

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"attendify/internal/events"
)

const redisChannel = "attendify:broadcast"

// RedisBus distributes envelopes across API instances over Redis
// Pub/Sub. Every instance subscribes to one channel and feeds received
// payloads into its local hub, so a mutation committed on any process
// reaches sessions connected to all of them.
type RedisBus struct {
	local  *Hub
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisBus(rdb *redis.Client, logger ...*zap.Logger) *RedisBus {
	l := zap.L().Named("broadcast.redis")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("broadcast.redis")
	}
	return &RedisBus{
		local:  NewHub(logger...),
		rdb:    rdb,
		logger: l,
	}
}

func (b *RedisBus) Join(s *Session)  { b.local.Join(s) }
func (b *RedisBus) Leave(s *Session) { b.local.Leave(s) }

// Publish hands the envelope to Redis. Local sessions receive it through
// the subscription like everyone else, which keeps delivery order
// identical on every instance.
func (b *RedisBus) Publish(ctx context.Context, env events.Envelope) error {
	data, ok := env.Marshal()
	if !ok {
		return nil
	}
	return b.rdb.Publish(ctx, redisChannel, data).Err()
}

// Run subscribes and forwards until ctx is cancelled.
func (b *RedisBus) Run(ctx context.Context) {
	sub := b.rdb.Subscribe(ctx, redisChannel)
	defer func() {
		_ = sub.Close()
	}()

	ch := sub.Channel()
	for {
		select {
		case msg := <-ch:
			if msg == nil {
				return
			}
			b.local.publishRaw([]byte(msg.Payload))
		case <-ctx.Done():
			return
		}
	}
}

func (b *RedisBus) Close() {
	b.local.Close()
}
