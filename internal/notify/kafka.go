package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/pkordes/ride-dispatch/internal/domain"
)

// messageWriter is the slice of *kafka.Writer the notifier uses.
// Tests substitute a recording fake.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaNotifier publishes notification events to a Kafka topic through a
// bounded in-memory queue drained by a single background goroutine. The queue
// keeps publication off the request path: a slow or dead broker delays
// nothing, and when the queue is full new events are dropped with a warning
// rather than blocking a booking mutation.
type KafkaNotifier struct {
	writer messageWriter
	topic  string
	log    *slog.Logger

	queue  chan Event
	done   chan struct{}
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

// NewKafkaNotifier builds a notifier publishing to topic via the given
// brokers and starts its drain goroutine. Close flushes and stops it.
func NewKafkaNotifier(brokers []string, topic string, log *slog.Logger) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	n := &KafkaNotifier{
		writer: writer,
		topic:  topic,
		log:    log,
		queue:  make(chan Event, 256),
		done:   make(chan struct{}),
	}
	go n.drain()
	return n
}

// newKafkaNotifierWithWriter is the constructor tests use to inject a fake writer.
func newKafkaNotifierWithWriter(w messageWriter, log *slog.Logger) *KafkaNotifier {
	n := &KafkaNotifier{
		writer: w,
		log:    log,
		queue:  make(chan Event, 256),
		done:   make(chan struct{}),
	}
	go n.drain()
	return n
}

// Notify enqueues an event for a single principal. Never blocks.
func (n *KafkaNotifier) Notify(_ context.Context, targetID uuid.UUID, audience domain.Role, event string, payload map[string]any) error {
	n.enqueue(Event{
		Name:      event,
		TargetID:  targetID.String(),
		Audience:  audience,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

// Broadcast enqueues an event for every principal of a role. Never blocks.
func (n *KafkaNotifier) Broadcast(_ context.Context, audience domain.Role, event string, payload map[string]any) error {
	n.enqueue(Event{
		Name:      event,
		Audience:  audience,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

// Close stops accepting events, drains what is queued, and waits for the
// background goroutine to finish.
func (n *KafkaNotifier) Close() error {
	n.once.Do(func() {
		n.mu.Lock()
		n.closed = true
		n.mu.Unlock()
		close(n.queue)
	})
	<-n.done
	if c, ok := n.writer.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// enqueue adds the event to the queue, dropping it when the queue is full or
// the notifier is already closed. The read lock against Close's write lock
// keeps the send from racing the channel close.
func (n *KafkaNotifier) enqueue(e Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		n.log.Warn("notifier closed, dropping event", "event", e.Name)
		return
	}
	select {
	case n.queue <- e:
	default:
		n.log.Warn("notification queue full, dropping event",
			"event", e.Name, "audience", string(e.Audience))
	}
}

// drain publishes queued events until the queue is closed. Delivery errors
// are logged and the event is abandoned: at-most-once, by contract.
func (n *KafkaNotifier) drain() {
	defer close(n.done)
	for e := range n.queue {
		value, err := json.Marshal(e)
		if err != nil {
			n.log.Error("marshal notification", "event", e.Name, "error", err)
			continue
		}
		key := e.TargetID
		if key == "" {
			key = string(e.Audience)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = n.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(key),
			Value: value,
			Time:  e.Timestamp,
		})
		cancel()
		if err != nil {
			n.log.Warn("publish notification", "event", e.Name, "error", err)
		}
	}
}

var _ Notifier = (*KafkaNotifier)(nil)
