//go:build integration

package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/randi412-cooperh/RetailCrimeFhe/internal/notify"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/testutil/containers"
)

func TestKafkaPublisher(t *testing.T) {
	ctx := context.Background()
	rp := containers.NewRedpandaContainer(t)

	const topic = "rcf.notifications.test"

	publisher, err := notify.NewKafkaPublisher([]string{rp.Broker}, topic)
	require.NoError(t, err)
	t.Cleanup(publisher.Close)

	events := []notify.Event{
		{
			Kind:       notify.KindIncidentRecorded,
			Timestamp:  time.Now().UTC().Truncate(time.Millisecond),
			IncidentID: 1,
		},
		{
			Kind:        notify.KindAnalysisRequested,
			Timestamp:   time.Now().UTC().Truncate(time.Millisecond),
			RequestID:   "req-kafka-1",
			RequestKind: domain.KindPattern,
		},
	}
	for _, event := range events {
		require.NoError(t, publisher.Emit(ctx, event))
	}

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	received := map[notify.Kind]notify.Event{}
	deadline := time.Now().Add(30 * time.Second)
	for len(received) < len(events) && time.Now().Before(deadline) {
		pollCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		fetches := consumer.PollFetches(pollCtx)
		cancel()
		fetches.EachRecord(func(record *kgo.Record) {
			var event notify.Event
			require.NoError(t, json.Unmarshal(record.Value, &event))
			// Records are keyed by kind for per-kind partition ordering.
			require.Equal(t, string(event.Kind), string(record.Key))
			received[event.Kind] = event
		})
	}

	require.Len(t, received, len(events))
	require.EqualValues(t, 1, received[notify.KindIncidentRecorded].IncidentID)
	require.Equal(t, domain.RequestID("req-kafka-1"), received[notify.KindAnalysisRequested].RequestID)
	require.Equal(t, domain.KindPattern, received[notify.KindAnalysisRequested].RequestKind)
}
