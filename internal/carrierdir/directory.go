package carrierdir

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ReefCultures/RateBox/internal/cache"
	"github.com/ReefCultures/RateBox/internal/integrations/rateprovider"
	"github.com/pkg/errors"
)

// ErrNoCarriersConfigured means the provider reported zero enabled carrier
// accounts (or the listing call failed). This is an operator problem, not a
// customer one, and must not be swallowed by callers.
var ErrNoCarriersConfigured = errors.New("no carriers configured")

const cacheKey = "carrierdir:ids"

// Directory resolves which carrier accounts rate-shopping requests are
// scoped to. The resolved list is cached for TTL; an explicit override list
// always wins. The cache backend is injected so tests control expiry and
// multiple configurations do not cross-contaminate.
type Directory struct {
	provider rateprovider.Client
	cache    cache.BytesCache
	ttl      time.Duration
	override []string
}

func New(provider rateprovider.Client, c cache.BytesCache, ttl time.Duration, override []string) *Directory {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Directory{provider: provider, cache: c, ttl: ttl, override: override}
}

func (d *Directory) CarrierIDs(ctx context.Context) ([]string, error) {
	if len(d.override) > 0 {
		ids := append([]string(nil), d.override...)
		d.put(ctx, ids)
		return ids, nil
	}

	if ids, ok := d.get(ctx); ok {
		return ids, nil
	}

	accounts, err := d.provider.ListCarriers(ctx)
	if err != nil {
		return nil, errors.Wrap(ErrNoCarriersConfigured, err.Error())
	}

	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		if a.Enabled {
			ids = append(ids, a.ID)
		}
	}
	if len(ids) == 0 {
		return nil, ErrNoCarriersConfigured
	}

	d.put(ctx, ids)
	return ids, nil
}

// Cache misses and failures degrade to a provider refetch, never to an
// error.
func (d *Directory) get(ctx context.Context) ([]string, bool) {
	if d.cache == nil {
		return nil, false
	}
	b, ok, err := d.cache.Get(ctx, cacheKey)
	if err != nil || !ok {
		return nil, false
	}
	var ids []string
	if json.Unmarshal(b, &ids) != nil || len(ids) == 0 {
		return nil, false
	}
	return ids, true
}

func (d *Directory) put(ctx context.Context, ids []string) {
	if d.cache == nil {
		return
	}
	b, _ := json.Marshal(ids)
	_ = d.cache.Set(ctx, cacheKey, b, d.ttl)
}
