package kafka_client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/sentichat/internal/models"
)

// EventPublisher publishes AnalysisEvents to Kafka. Delivery is
// asynchronous; failed deliveries are logged from the events loop.
type EventPublisher struct {
	producer *kafka.Producer
	topic    string
	done     chan struct{}
}

func NewEventPublisher(cfg KafkaConfig) (*EventPublisher, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...",
		slog.String("broker", cfg.Broker),
		slog.String("topic", cfg.Topic))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":   cfg.Broker,
		"client.id":           cfg.ClientID,
		"security.protocol":   "PLAINTEXT",
		"api.version.request": "true",
		"enable.idempotence":  true,
		"acks":                "all",
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	ep := &EventPublisher{
		producer: p,
		topic:    cfg.Topic,
		done:     make(chan struct{}),
	}
	go ep.watchDeliveries()

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return ep, nil
}

func (ep *EventPublisher) watchDeliveries() {
	defer close(ep.done)

	for e := range ep.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				slog.Warn("[KafkaClient] Event delivery failed",
					slog.String("key", string(ev.Key)),
					slog.String("error", ev.TopicPartition.Error.Error()))
			}
		case kafka.Error:
			slog.Warn("[KafkaClient] Producer error",
				slog.String("error", ev.Error()))
		}
	}
}

func (ep *EventPublisher) Publish(ctx context.Context, event models.AnalysisEvent) error {
	msg, err := NewEventMessage(ep.topic, event)
	if err != nil {
		return err
	}

	for i := 0; i < MAX_RETRIES; i++ {
		err = ep.producer.Produce(msg, nil)
		if err == nil {
			break
		}

		slog.WarnContext(ctx, "[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(RETRY_DELAY):
		}
	}
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to produce event after %d attempts: %w", MAX_RETRIES, err)
	}

	slog.DebugContext(ctx, "[KafkaClient] Published analysis event",
		slog.String("topic", ep.topic),
		slog.String("event_id", event.EventID))
	return nil
}

// Flush blocks until every queued event is delivered or ctx is done.
func (ep *EventPublisher) Flush(ctx context.Context) error {
	for {
		remaining := ep.producer.Flush(int(FLUSH_POLL_INTERVAL.Milliseconds()))
		if remaining == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("[KafkaClient] %d events still queued: %w", remaining, ctx.Err())
		default:
		}
	}
}

func (ep *EventPublisher) Close() {
	slog.Info("[KafkaClient] Shutting down Kafka producer...")
	if remaining := ep.producer.Flush(int(FLUSH_TIMEOUT.Milliseconds())); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	ep.producer.Close()
	<-ep.done
	slog.Info("[KafkaClient] Kafka producer shut down")
}

// NewEventMessage builds the Kafka message for event, keyed by event ID.
func NewEventMessage(topic string, event models.AnalysisEvent) (*kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] failed to marshal event: %w", err)
	}

	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.EventID),
		Value:          payload,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}, nil
}
