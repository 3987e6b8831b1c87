package redisx

import "time"

const (
	// Book read-through cache: book:{book_id} -> JSON book
	KeyBook = "book:%s"

	// Dedup for event consumers: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLBookCache = 5 * time.Minute
	TTLDedup     = 48 * time.Hour
)
