package cache

import (
	"context"
	"time"
)

// ListCache stores rendered list payloads (active items, trash view, recent
// audit rows) so the read endpoints skip the database between mutations.
// Every mutation invalidates the keys it touches.
type ListCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Well-known keys.
const (
	KeyActiveItems = "gudang:items:active"
	KeyTrashView   = "gudang:trash:all"
	KeyAuditRecent = "gudang:audit:recent"
	KeyUnits       = "gudang:units"
)

type Noop struct{}

func (Noop) Get(_ context.Context, _ string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }

func (Noop) Invalidate(_ context.Context, _ ...string) error { return nil }
