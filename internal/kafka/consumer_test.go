package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader hands out queued messages, then blocks like a real reader on an idle topic.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.queue) > 0 {
		m := f.queue[0]
		f.queue = f.queue[1:]
		f.mu.Unlock()
		return m, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeReader) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeReader) commits() []kafka.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]kafka.Message(nil), f.committed...)
}

func msg(partition int, offset int64) kafka.Message {
	return kafka.Message{Topic: "t", Partition: partition, Offset: offset}
}

func offsetsOf(msgs []kafka.Message, partition int) []int64 {
	var out []int64
	for _, m := range msgs {
		if m.Partition == partition {
			out = append(out, m.Offset)
		}
	}
	return out
}

func TestConsumer_KeepsPartitionOrderAndCommitsAll(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{
		msg(0, 1), msg(1, 1), msg(0, 2), msg(1, 2), msg(0, 3), msg(1, 3),
	}}
	c := newConsumer(r, 0, time.Millisecond)

	var mu sync.Mutex
	var seen []kafka.Message
	h := func(_ context.Context, m kafka.Message) error {
		mu.Lock()
		seen = append(seen, m)
		mu.Unlock()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx, h) }()

	require.Eventually(t, func() bool { return len(r.commits()) == 6 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	for _, p := range []int{0, 1} {
		assert.Equal(t, []int64{1, 2, 3}, offsetsOf(seen, p))
		assert.Equal(t, []int64{1, 2, 3}, offsetsOf(r.commits(), p))
	}
	assert.True(t, r.closed)
}

func TestConsumer_StopsWithoutCommittingPastFailure(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{msg(0, 9), msg(0, 10), msg(0, 11)}}
	c := newConsumer(r, 2, time.Millisecond)

	var mu sync.Mutex
	attempts := map[int64]int{}
	h := func(_ context.Context, m kafka.Message) error {
		mu.Lock()
		defer mu.Unlock()
		attempts[m.Offset]++
		if m.Offset == 10 {
			return errors.New("downstream unavailable")
		}
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- c.Start(context.Background(), h) }()

	var err error
	select {
	case err = <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after a permanent failure")
	}
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offset 10")
	assert.Contains(t, err.Error(), "downstream unavailable")

	assert.Equal(t, []int64{9}, offsetsOf(r.commits(), 0))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts[10], "one try plus two retries")
	assert.Zero(t, attempts[11], "later offsets of the partition are not handled")
	assert.True(t, r.closed)
}

func TestConsumer_RetriesTransientFailure(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{msg(0, 1), msg(0, 2)}}
	c := newConsumer(r, 3, time.Millisecond)

	var mu sync.Mutex
	failures := 2
	h := func(_ context.Context, m kafka.Message) error {
		mu.Lock()
		defer mu.Unlock()
		if m.Offset == 1 && failures > 0 {
			failures--
			return errors.New("flaky")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx, h) }()

	require.Eventually(t, func() bool { return len(r.commits()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []int64{1, 2}, offsetsOf(r.commits(), 0))
}

func TestConsumer_FetchErrorIsReturned(t *testing.T) {
	c := newConsumer(&failingReader{}, 0, time.Millisecond)
	err := c.Start(context.Background(), func(context.Context, kafka.Message) error { return nil })
	require.ErrorIs(t, err, errBroker)
}

var errBroker = errors.New("broker down")

type failingReader struct{ fakeReader }

func (*failingReader) FetchMessage(context.Context) (kafka.Message, error) {
	return kafka.Message{}, errBroker
}
