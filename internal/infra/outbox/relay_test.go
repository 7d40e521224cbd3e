package outbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	batch  []Event
	sent   []int64
	failed map[int64]string
	err    error
}

func (s *fakeStore) LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := s.batch
	s.batch = nil
	return out, nil
}

func (s *fakeStore) MarkSent(ctx context.Context, ids []int64) error {
	s.sent = append(s.sent, ids...)
	return nil
}

func (s *fakeStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	if s.failed == nil {
		s.failed = map[int64]string{}
	}
	s.failed[id] = errMsg
	return nil
}

type fakeProducer struct {
	msgs   []kafka.Message
	failOn string
}

func (p *fakeProducer) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		if string(m.Key) == p.failOn {
			return errors.New("broker down")
		}
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRelayTick_DispatchesAndMarks(t *testing.T) {
	store := &fakeStore{batch: []Event{
		{ID: 1, AggregateType: "order", AggregateID: "10", Type: "order.created", Payload: []byte(`{}`), Traceparent: "00-abc-def-01"},
		{ID: 2, AggregateType: "order", AggregateID: "11", Type: "order.created", Payload: []byte(`{}`)},
	}}
	prod := &fakeProducer{failOn: "11"}
	relay := NewRelay(discardLogger(), store, NewDispatcher(discardLogger(), prod, "shop.orders"), "test", time.Second)

	n, err := relay.Tick(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{1}, store.sent)
	assert.Contains(t, store.failed[2], "broker down")

	require.Len(t, prod.msgs, 1)
	msg := prod.msgs[0]
	assert.Equal(t, "shop.orders", msg.Topic)
	assert.Equal(t, "10", string(msg.Key))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "order.created", headers["event_type"])
	assert.Equal(t, "00-abc-def-01", headers[TraceparentHeader])
}

func TestRelayTick_Empty(t *testing.T) {
	store := &fakeStore{}
	relay := NewRelay(discardLogger(), store, NewDispatcher(discardLogger(), &fakeProducer{}, "t"), "test", 0)

	n, err := relay.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, store.sent)
}

func TestRelayTick_LockError(t *testing.T) {
	store := &fakeStore{err: errors.New("db gone")}
	relay := NewRelay(discardLogger(), store, NewDispatcher(discardLogger(), &fakeProducer{}, "t"), "test", 0)

	_, err := relay.Tick(context.Background())
	require.Error(t, err)
}

func TestRelayRun_StopsOnCancel(t *testing.T) {
	store := &fakeStore{}
	relay := NewRelay(discardLogger(), store, NewDispatcher(discardLogger(), &fakeProducer{}, "t"), "test", 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}

// LockBatch の途中で止まる store
type blockingStore struct {
	fakeStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *blockingStore) LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]Event, error) {
	s.once.Do(func() { close(s.entered) })
	<-s.release
	return nil, nil
}

func TestRelayRun_WaitsForInFlightTick(t *testing.T) {
	store := &blockingStore{entered: make(chan struct{}), release: make(chan struct{})}
	relay := NewRelay(discardLogger(), store, NewDispatcher(discardLogger(), &fakeProducer{}, "t"), "test", 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	select {
	case <-store.entered:
	case <-time.After(time.Second):
		t.Fatal("tick did not start")
	}
	cancel()

	// Tick が終わるまで Run は戻らない（呼び出し側はその後に接続を閉じる）
	select {
	case <-done:
		t.Fatal("relay returned during tick")
	case <-time.After(50 * time.Millisecond):
	}

	close(store.release)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestTraceparentFrom_NoSpan(t *testing.T) {
	assert.Equal(t, "", TraceparentFrom(context.Background()))
}
