// Package kafka publishes engine events to a Kafka topic, keyed by
// connection so one connection's events stay ordered.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"palika/internal/domain"
	"palika/internal/port"
)

type kafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaNotifier creates a Kafka-backed Notifier.
func NewKafkaNotifier(brokers []string, topic string) (port.Notifier, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating Kafka producer: %w", err)
	}
	return &kafkaNotifier{producer: producer, topic: topic}, nil
}

func (n *kafkaNotifier) Publish(_ context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafkaNotifier.Publish marshal: %w", err)
	}
	_, _, err = n.producer.SendMessage(&sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(event.ConnectionID.String()),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("kafkaNotifier.Publish send: %w", err)
	}
	return nil
}

// Close flushes and shuts down the underlying producer.
func (n *kafkaNotifier) Close() error {
	return n.producer.Close()
}
