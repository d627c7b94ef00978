package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Handler returns nil only when the message was processed and its offset may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer runs one worker per partition, so messages of a partition are
// handled and committed strictly in offset order. A message that still fails
// after Retries attempts stops the consumer with its offset uncommitted, to be
// redelivered on the next start.
type Consumer struct {
	r       messageReader
	Retries int
	Backoff time.Duration
}

func NewConsumer(brokers []string, group, topic string, retries int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	return newConsumer(r, retries, 200*time.Millisecond)
}

func newConsumer(r messageReader, retries int, backoff time.Duration) *Consumer {
	if retries < 0 {
		retries = 0
	}
	return &Consumer{r: r, Retries: retries, Backoff: backoff}
}

// Start blocks until ctx is cancelled (returns nil), the reader fails, or a
// message exhausts its retries.
func (c *Consumer) Start(parent context.Context, h Handler) error {
	defer c.r.Close()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var wg sync.WaitGroup
	lanes := map[int]chan kafka.Message{}
	failed := make(chan error, 1)
	defer func() {
		for _, lane := range lanes {
			close(lane)
		}
		wg.Wait()
	}()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			return c.exitErr(parent, failed, err)
		}

		lane, ok := lanes[m.Partition]
		if !ok {
			lane = make(chan kafka.Message, 64)
			lanes[m.Partition] = lane
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.work(ctx, cancel, lane, h, failed)
			}()
		}

		select {
		case lane <- m:
		case <-ctx.Done():
			return c.exitErr(parent, failed, ctx.Err())
		}
	}
}

func (c *Consumer) exitErr(parent context.Context, failed <-chan error, err error) error {
	select {
	case e := <-failed:
		return e
	default:
	}
	if parent.Err() != nil {
		return nil
	}
	return err
}

// work handles one partition. On a permanent failure it reports the error,
// cancels the consumer and stops, leaving later offsets uncommitted.
func (c *Consumer) work(ctx context.Context, cancel context.CancelFunc, lane <-chan kafka.Message, h Handler, failed chan<- error) {
	for m := range lane {
		if ctx.Err() != nil {
			return
		}
		if err := c.process(ctx, m, h); err != nil {
			if ctx.Err() != nil {
				return
			}
			select {
			case failed <- err:
			default:
			}
			cancel()
			return
		}
	}
}

func (c *Consumer) process(ctx context.Context, m kafka.Message, h Handler) error {
	var err error
	for attempt := 0; attempt <= c.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.Backoff * time.Duration(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err = h(ctx, m); err == nil {
			if err := c.r.CommitMessages(ctx, m); err != nil {
				return fmt.Errorf("commit partition %d offset %d: %w", m.Partition, m.Offset, err)
			}
			return nil
		}
		if errors.Is(err, context.Canceled) {
			return err
		}
		log.Warn().Err(err).
			Int("partition", m.Partition).
			Int64("offset", m.Offset).
			Int("attempt", attempt+1).
			Msg("handler failed")
	}
	return fmt.Errorf("partition %d offset %d: %w", m.Partition, m.Offset, err)
}
