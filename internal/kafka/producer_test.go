package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestProducer_FlushesOnClose(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 8)

	// queued before the loop starts, so Close must still flush them
	p.Publish([]byte("user:1"), []byte(`{"a":1}`), kafka.Header{Key: "x-event-type", Value: []byte("EntityCreated")})
	p.Publish([]byte("user:2"), []byte(`{"a":2}`))

	p.Start(context.Background())
	p.Close()
	p.Close()
	p.WaitClosed()

	w.mu.Lock()
	defer w.mu.Unlock()
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "user:1", string(w.msgs[0].Key))
	assert.Equal(t, "x-event-type", w.msgs[0].Headers[0].Key)
	assert.Equal(t, "user:2", string(w.msgs[1].Key))
	assert.True(t, w.closed)
}

func TestProducer_DropsWhenFull(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 1)

	p.Publish([]byte("a"), nil)
	p.Publish([]byte("b"), nil)

	p.Start(context.Background())
	p.Close()
	p.WaitClosed()

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "a", string(w.msgs[0].Key))
}

func TestProducer_StopsOnContextCancel(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 1)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()
	p.WaitClosed()
	assert.True(t, w.closed)
}

func TestUnwrapPayload(t *testing.T) {
	type payload struct {
		ID int64 `json:"id"`
	}
	got, err := UnwrapPayload[payload](json.RawMessage(`{"id":9}`))
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.ID)

	_, err = UnwrapPayload[payload](json.RawMessage(`[`))
	assert.Error(t, err)
}
