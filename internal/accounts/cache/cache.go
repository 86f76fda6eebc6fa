// Package cache is the derived, non-authoritative copy of user reads. Every
// entry can be dropped at any time without losing data.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCorrupt is returned when a stored entry cannot be decoded.
var ErrCorrupt = errors.New("cache: corrupt entry")

// Cache is a JSON key-value cache with per-namespace version counters.
type Cache interface {
	// Get decodes the entry at key into dest and reports whether it existed.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value as JSON under key for ttl.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Version returns the current version of namespace, zero if never bumped.
	Version(ctx context.Context, namespace string) (int64, error)

	// Bump increments the version of namespace, orphaning every key built
	// from an older version.
	Bump(ctx context.Context, namespace string) error

	Ping(ctx context.Context) error
}

// Nop is a Cache that stores nothing. Every read is a miss.
type Nop struct{}

var _ Cache = Nop{}

func (Nop) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (Nop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Nop) Delete(context.Context, ...string) error               { return nil }
func (Nop) Version(context.Context, string) (int64, error)        { return 0, nil }
func (Nop) Bump(context.Context, string) error                    { return nil }
func (Nop) Ping(context.Context) error                            { return nil }
