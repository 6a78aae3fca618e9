package broadcast

import (
	"context"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"attendify/internal/events"
	"attendify/internal/shared/contextutil"
)

const BroadcastTopic = "attendify.broadcast.v1"

// KafkaBus distributes envelopes through a Kafka topic. Messages are
// keyed by entity row, so events about the same row land on the same
// partition and keep their publish order. Each instance consumes with
// its own group id: every instance sees every event, and a fresh group
// starts at the log tail, so late-started instances get no backlog replay.
type KafkaBus struct {
	local  *Hub
	writer *kafka.Writer
	reader *kafka.Reader
	logger *zap.Logger
}

func NewKafkaBus(brokers []string, logger ...*zap.Logger) *KafkaBus {
	l := zap.L().Named("broadcast.kafka")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("broadcast.kafka")
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    BroadcastTopic,
		Balancer: &kafka.Hash{},
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       BroadcastTopic,
		GroupID:     "attendify-broadcast-" + uuid.NewString(),
		StartOffset: kafka.LastOffset,
	})

	return &KafkaBus{
		local:  NewHub(logger...),
		writer: writer,
		reader: reader,
		logger: l,
	}
}

func (b *KafkaBus) Join(s *Session)  { b.local.Join(s) }
func (b *KafkaBus) Leave(s *Session) { b.local.Leave(s) }

func (b *KafkaBus) Publish(ctx context.Context, env events.Envelope) error {
	data, ok := env.Marshal()
	if !ok {
		return nil
	}
	msg := kafka.Message{
		Key:   []byte(env.Key),
		Value: data,
	}
	// Carry the originating request id so a message can be traced back
	// to the HTTP mutation that produced it.
	if rid := contextutil.GetRequestID(ctx); rid != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "request_id", Value: []byte(rid)})
	}
	return b.writer.WriteMessages(ctx, msg)
}

// Run consumes and forwards until ctx is cancelled.
func (b *KafkaBus) Run(ctx context.Context) {
	for {
		msg, err := b.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Error("read broadcast message failed", zap.Error(err))
			return
		}
		b.local.publishRaw(msg.Value)
	}
}

func (b *KafkaBus) Close() {
	if err := b.writer.Close(); err != nil {
		b.logger.Error("close kafka writer failed", zap.Error(err))
	}
	if err := b.reader.Close(); err != nil {
		b.logger.Error("close kafka reader failed", zap.Error(err))
	}
	b.local.Close()
}
