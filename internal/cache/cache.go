package cache

import (
	"context"
	"time"
)

// BytesCache is the minimal cache surface the services need. Implementations
// must treat a miss as (nil, false, nil), not as an error.
type BytesCache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
