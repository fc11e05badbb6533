package events

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockReader struct {
	messages chan kafka.Message
	errs     chan error

	mu        sync.Mutex
	committed []int64
	closed    bool
}

func newMockReader() *mockReader {
	return &mockReader{
		messages: make(chan kafka.Message, 10),
		errs:     make(chan error, 10),
	}
}

func (r *mockReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case err := <-r.errs:
		return kafka.Message{}, err
	case msg, ok := <-r.messages:
		if !ok {
			return kafka.Message{}, io.EOF
		}
		return msg, nil
	}
}

func (r *mockReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *mockReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *mockReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

type countingRefresher struct {
	calls atomic.Int32
	err   error
	// failures, when set, is how many calls fail with err before succeeding
	failures int32
}

func (r *countingRefresher) Refresh(context.Context) (int, error) {
	n := r.calls.Add(1)
	if r.err != nil && (r.failures == 0 || n <= r.failures) {
		return 0, r.err
	}
	return 3, nil
}

func notificationFor(key string) []byte {
	return []byte(`{"Records":[{"eventName":"s3:ObjectCreated:Put","s3":{"bucket":{"name":"photomap"},"object":{"key":"` + key + `"}}}]}`)
}

func TestConsumerRefreshesOnRelevantMessages(t *testing.T) {
	reader := newMockReader()
	refresher := &countingRefresher{}
	c := newConsumer(reader, refresher, "snapshots/locations.json", zap.NewNop())

	reader.messages <- kafka.Message{Offset: 1, Value: notificationFor("snapshots%2Flocations.json")}
	reader.messages <- kafka.Message{Offset: 2, Value: notificationFor("raw_data/other.json")}
	reader.messages <- kafka.Message{Offset: 3, Value: []byte("refresh")}
	close(reader.messages)

	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, int32(2), refresher.calls.Load())
	assert.Equal(t, []int64{1, 2, 3}, reader.commits(), "ignored messages are committed too")
	assert.True(t, reader.closed)
}

func TestConsumerStopsOnCancel(t *testing.T) {
	reader := newMockReader()
	refresher := &countingRefresher{err: assert.AnError}
	c := newConsumer(reader, refresher, "snapshots/locations.json", zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	reader.messages <- kafka.Message{Offset: 7, Value: []byte(`{}`)}
	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
	assert.True(t, reader.closed)
}

func TestConsumerBacksOffOnReadErrors(t *testing.T) {
	reader := newMockReader()
	refresher := &countingRefresher{}
	c := newConsumer(reader, refresher, "snapshots/locations.json", zap.NewNop())
	c.backoff = time.Millisecond

	reader.errs <- errors.New("broker unavailable")
	reader.messages <- kafka.Message{Offset: 1, Value: []byte("refresh")}
	close(reader.messages)

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, int32(1), refresher.calls.Load())
}

func TestConsumerRetriesFailedRefreshBeforeCommit(t *testing.T) {
	tests := []struct {
		name        string
		refresher   *countingRefresher
		wantCalls   int32
		wantCommits []int64
	}{
		{
			name:        "second attempt succeeds",
			refresher:   &countingRefresher{err: assert.AnError, failures: 1},
			wantCalls:   2,
			wantCommits: []int64{4},
		},
		{
			name:        "both attempts fail",
			refresher:   &countingRefresher{err: assert.AnError},
			wantCalls:   2,
			wantCommits: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := newMockReader()
			c := newConsumer(reader, tt.refresher, "snapshots/locations.json", zap.NewNop())
			c.backoff = time.Millisecond

			reader.messages <- kafka.Message{Offset: 4, Value: notificationFor("snapshots/locations.json")}
			close(reader.messages)

			require.NoError(t, c.Run(context.Background()))
			assert.Equal(t, tt.wantCalls, tt.refresher.calls.Load())
			assert.Equal(t, tt.wantCommits, reader.commits())
		})
	}
}
