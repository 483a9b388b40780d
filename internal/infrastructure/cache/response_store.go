// Package cache holds short-lived request state shared between HTTP requests.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotReserved is returned when completing or releasing a key that holds
// no reservation.
var ErrNotReserved = errors.New("idempotency key is not reserved")

// StoredResponse is the recorded outcome of a request replayed for a
// repeated idempotency key.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// ResponseStore records responses by idempotency key.
//
// Reserve atomically claims key. When the key is new it returns reserved=true
// and the caller must later Complete or Release it. When the key is taken it
// returns the stored response, or nil while the first request is in flight.
type ResponseStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (existing *StoredResponse, reserved bool, err error)
	Complete(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error
	Release(ctx context.Context, key string) error
	Close() error
}
