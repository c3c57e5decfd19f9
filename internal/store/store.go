// Package store provides key-value persistence for cached procedures, the
// folder tree and the session record.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/raphaelgruber/procview/internal/metrics"
)

// Keys of the records the client persists.
const (
	KeyRecent = "openedProcedures"
	KeyFolder = "foldersProcedures"
	KeyUser   = "user"

	// KeyLegacyUserProcedures is only ever removed, on logout.
	KeyLegacyUserProcedures = "userProcedures"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates no value is stored under the key.
	ErrNotFound = errors.New("key not found")

	// ErrClosed indicates the store was used after Close.
	ErrClosed = errors.New("store closed")
)

// Store is a string-keyed blob store. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
	Close() error
}

// GetJSON decodes the JSON value stored under key into v.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON stores v under key as JSON.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}

// Instrumented records the timing of every call to the wrapped store.
type Instrumented struct {
	Store
	metrics *metrics.Collector
}

// WithMetrics wraps s so its operations are timed by mc.
func WithMetrics(s Store, mc *metrics.Collector) *Instrumented {
	return &Instrumented{Store: s, metrics: mc}
}

func (s *Instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := s.Store.Get(ctx, key)

	// A miss is an answer, not a failure.
	failed := err
	if errors.Is(err, ErrNotFound) {
		failed = nil
	}
	s.metrics.Observe(metrics.OpStoreGet, start, &failed)
	return data, err
}

func (s *Instrumented) Set(ctx context.Context, key string, value []byte) (err error) {
	defer s.metrics.Observe(metrics.OpStoreSet, time.Now(), &err)
	return s.Store.Set(ctx, key, value)
}

func (s *Instrumented) Remove(ctx context.Context, key string) (err error) {
	defer s.metrics.Observe(metrics.OpStoreRemove, time.Now(), &err)
	return s.Store.Remove(ctx, key)
}
