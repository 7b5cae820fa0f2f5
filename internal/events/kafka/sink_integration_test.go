//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"agricert/internal/events"
	"agricert/internal/events/kafka"
	"agricert/pkg/testutil/containers"
)

func TestSinkPublishesEnvelope(t *testing.T) {
	broker := containers.NewKafkaContainer(t).Broker
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	const topic = "agricert.domain-events.test"

	sink, err := kafka.NewSink(ctx, []string{broker}, topic)
	require.NoError(t, err)
	t.Cleanup(sink.Close)

	occurred := time.Now().UTC().Truncate(time.Second)
	env := events.Envelope{
		EventType:  "certificate_issued",
		Data:       map[string]any{"certificate_number": "AGC-2026-ABCDEF123456"},
		OccurredAt: occurred,
	}
	require.NoError(t, sink.Publish(ctx, env))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.Len(t, records, 1)

	assert.Equal(t, "certificate_issued", string(records[0].Key))

	var got events.Envelope
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, env.EventType, got.EventType)
	assert.Equal(t, "AGC-2026-ABCDEF123456", got.Data["certificate_number"])
	assert.True(t, got.OccurredAt.Equal(occurred))
}

func TestNewSinkToleratesExistingTopic(t *testing.T) {
	broker := containers.NewKafkaContainer(t).Broker
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	const topic = "agricert.domain-events.existing"

	first, err := kafka.NewSink(ctx, []string{broker}, topic)
	require.NoError(t, err)
	first.Close()

	second, err := kafka.NewSink(ctx, []string{broker}, topic)
	require.NoError(t, err)
	second.Close()
}
