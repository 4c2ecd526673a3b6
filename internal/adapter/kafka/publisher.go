// Package kafka publishes ingestion run summaries to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/tapsafe/sdwis-ingest/internal/pipeline"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes one message per finished run, keyed by run ID.
// It implements pipeline.SummarySink.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewPublisher creates a producer for topic on brokers.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, topic: topic, logger: logger}
}

// Publish serializes the summary and writes it synchronously.
func (p *Publisher) Publish(ctx context.Context, summary pipeline.RunSummary) error {
	msg, err := serializeSummary(summary)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish run summary: %w", err)
	}
	p.logger.Info("run summary published", "topic", p.topic, "run_id", summary.RunID)
	return nil
}

// Close flushes and closes the producer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeSummary marshals a RunSummary into a Kafka message.
func serializeSummary(summary pipeline.RunSummary) (kafkago.Message, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize run summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(summary.RunID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "finished_at", Value: []byte(summary.FinishedAt.Format(time.RFC3339))},
			{Key: "failed", Value: []byte(strconv.FormatBool(summary.Failed()))},
		},
	}, nil
}
