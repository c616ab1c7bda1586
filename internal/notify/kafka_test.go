package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/ride-dispatch/internal/domain"
)

// fakeWriter records written messages. When gate is non-nil, WriteMessages
// blocks until the gate is closed, simulating a slow broker.
type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	gate   chan struct{}
	called chan struct{}
	once   sync.Once
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.called != nil {
		w.once.Do(func() { close(w.called) })
	}
	if w.gate != nil {
		<-w.gate
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) messages() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.msgs...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestKafkaNotifier_PublishesOnClose(t *testing.T) {
	writer := &fakeWriter{}
	n := newKafkaNotifierWithWriter(writer, testLogger())
	ctx := context.Background()

	riderID := uuid.New()
	require.NoError(t, n.Notify(ctx, riderID, domain.RoleRider, "offer_received", map[string]any{"final_price": 7500.0}))
	require.NoError(t, n.Broadcast(ctx, domain.RoleAdmin, "booking_created", nil))
	require.NoError(t, n.Close())

	msgs := writer.messages()
	require.Len(t, msgs, 2)

	assert.Equal(t, riderID.String(), string(msgs[0].Key), "targeted events key on the recipient")
	var e Event
	require.NoError(t, json.Unmarshal(msgs[0].Value, &e))
	assert.Equal(t, "offer_received", e.Name)
	assert.Equal(t, domain.RoleRider, e.Audience)
	assert.Equal(t, 7500.0, e.Payload["final_price"])

	assert.Equal(t, "admin", string(msgs[1].Key), "broadcasts key on the audience role")
}

func TestKafkaNotifier_DropsWhenQueueFull(t *testing.T) {
	writer := &fakeWriter{
		gate:   make(chan struct{}),
		called: make(chan struct{}),
	}
	n := newKafkaNotifierWithWriter(writer, testLogger())
	ctx := context.Background()

	// Park the drain goroutine inside the writer, then fill the queue.
	require.NoError(t, n.Broadcast(ctx, domain.RoleAdmin, "first", nil))
	select {
	case <-writer.called:
	case <-time.After(time.Second):
		t.Fatal("drain goroutine never reached the writer")
	}
	for i := 0; i < cap(n.queue); i++ {
		require.NoError(t, n.Broadcast(ctx, domain.RoleAdmin, "queued", nil))
	}
	require.NoError(t, n.Broadcast(ctx, domain.RoleAdmin, "overflow", nil))

	close(writer.gate)
	require.NoError(t, n.Close())

	names := make(map[string]int)
	for _, m := range writer.messages() {
		var e Event
		require.NoError(t, json.Unmarshal(m.Value, &e))
		names[e.Name]++
	}
	assert.Equal(t, 1, names["first"])
	assert.Equal(t, cap(n.queue), names["queued"])
	assert.Zero(t, names["overflow"], "events past the queue bound are dropped, not delivered late")
}

func TestKafkaNotifier_CloseIsIdempotent(t *testing.T) {
	n := newKafkaNotifierWithWriter(&fakeWriter{}, testLogger())

	require.NoError(t, n.Close())
	require.NoError(t, n.Close())
}

func TestKafkaNotifier_NotifyAfterCloseIsDropped(t *testing.T) {
	writer := &fakeWriter{}
	n := newKafkaNotifierWithWriter(writer, testLogger())
	ctx := context.Background()

	require.NoError(t, n.Close())

	require.NoError(t, n.Notify(ctx, uuid.New(), domain.RoleRider, "offer_received", nil))
	require.NoError(t, n.Broadcast(ctx, domain.RoleAdmin, "booking_created", nil))

	assert.Empty(t, writer.messages(), "a closed notifier drops instead of panicking")
}
