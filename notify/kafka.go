package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaDispatcher publishes events as JSON keyed by customer id so every event
// for a customer lands on the same partition.
type KafkaDispatcher struct {
	writer messageWriter
	topic  string
}

func NewKafkaDispatcher(brokers []string, topic string) (*KafkaDispatcher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka dispatcher requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka dispatcher requires a topic")
	}
	return &KafkaDispatcher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topic: topic,
	}, nil
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, event Event) error {
	payload, err := event.payload()
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	return d.writer.WriteMessages(ctx, kafka.Message{
		Topic: d.topic,
		Key:   []byte(event.CustomerID.String()),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
