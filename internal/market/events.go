package market

import (
	"encoding/json"
	"strconv"
	"time"
)

const (
	EventEntityCreated = "EntityCreated"
	EventEntityUpdated = "EntityUpdated"
	EventEntityDeleted = "EntityDeleted"
)

const (
	EntityUser  = "user"
	EntityOrder = "order"
	EntityOffer = "offer"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // entity:id
	Payload       json.RawMessage `json:"payload"`
}

// EntityChangedPayload carries the row after the change. Row is empty for deletes.
type EntityChangedPayload struct {
	Entity string          `json:"entity"`
	ID     int64           `json:"id"`
	Row    json.RawMessage `json:"row,omitempty"`
}

// EntityKey is "entity:id"; used as the partition key and correlation id.
func EntityKey(entity string, id int64) string {
	return entity + ":" + strconv.FormatInt(id, 10)
}
