package redisx

import "time"

const (
	// Item cache: item:{entity}:{id} -> JSON body served by GET /{entity}s/{id}
	KeyItem = "item:%s:%d"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLItemCache = 5 * time.Minute
	TTLDedup     = 48 * time.Hour
)
