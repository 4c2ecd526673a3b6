//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	kafkaadapter "github.com/tapsafe/sdwis-ingest/internal/adapter/kafka"
	"github.com/tapsafe/sdwis-ingest/internal/pipeline"
)

const testSummaryTopic = "test-ingest-runs"

func TestPublisherRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSummaryTopic)

	publisher := kafkaadapter.NewPublisher([]string{broker}, testSummaryTopic, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	finished := time.Date(2026, time.March, 2, 4, 30, 0, 0, time.UTC)
	summary := pipeline.RunSummary{
		RunID:      "run-1",
		StartedAt:  finished.Add(-time.Hour),
		FinishedAt: finished,
		SkipTo:     3,
		Steps: []pipeline.StepResult{
			{Number: 3, Table: "water_systems", Status: pipeline.StepCompleted, Read: 10, Succeeded: 9, Rejected: 1},
		},
	}
	require.NoError(t, publisher.Publish(ctx, summary))

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testSummaryTopic,
		Partition: 0,
		MaxBytes:  10e6,
	})
	t.Cleanup(func() { _ = reader.Close() })

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)

	assert.Equal(t, "run-1", string(msg.Key))
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "2026-03-02T04:30:00Z", headers["finished_at"])
	assert.Equal(t, "false", headers["failed"])

	var got pipeline.RunSummary
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, summary.RunID, got.RunID)
	assert.Equal(t, summary.Steps, got.Steps)
	assert.True(t, summary.FinishedAt.Equal(got.FinishedAt))
}
