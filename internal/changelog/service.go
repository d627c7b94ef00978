// Package changelog turns entity change events into an audit log.
package changelog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-freelance-orders/internal/kafka"
	"github.com/ariefcatur/go-freelance-orders/internal/market"
	"github.com/ariefcatur/go-freelance-orders/internal/redisx"
)

type Service struct {
	Redis       *redis.Client // optional, enables dedup by event id
	Log         zerolog.Logger
	ServiceName string
}

// HandleEntityChanged is installed as the consumer handler. Messages that are
// not entity change events are skipped and committed.
func (s *Service) HandleEntityChanged(ctx context.Context, m kafkago.Message) error {
	var env market.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	switch env.EventType {
	case market.EventEntityCreated, market.EventEntityUpdated, market.EventEntityDeleted:
	default:
		return nil
	}

	if s.Redis != nil {
		key := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
		fresh, err := s.Redis.SetNX(ctx, key, "1", redisx.TTLDedup).Result()
		if err != nil {
			return fmt.Errorf("dedup: %w", err)
		}
		if !fresh {
			return nil
		}
	}

	p, err := kafkax.UnwrapPayload[market.EntityChangedPayload](env.Payload)
	if err != nil {
		return err
	}

	ev := s.Log.Info().
		Str("event_id", env.EventID).
		Str("event_type", env.EventType).
		Str("entity", p.Entity).
		Int64("id", p.ID).
		Str("producer", env.Producer).
		Time("occurred_at", env.OccurredAt)
	if env.TraceID != "" {
		ev = ev.Str("trace_id", env.TraceID)
	}
	if len(p.Row) > 0 {
		ev = ev.RawJSON("row", p.Row)
	}
	ev.Msg("entity changed")
	return nil
}
