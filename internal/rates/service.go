package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ReefCultures/RateBox/internal/broker/messages"
	"github.com/ReefCultures/RateBox/internal/cache"
	"github.com/ReefCultures/RateBox/internal/integrations/rateprovider"
	"github.com/ReefCultures/RateBox/internal/models"
	"github.com/pkg/errors"
)

type Repository interface {
	CreateQuote(ctx context.Context, in models.RateQuoteCreateInput) (*models.RateQuote, error)
	GetQuoteByKey(ctx context.Context, key string) (*models.RateQuote, error)
	RedeemQuote(ctx context.Context, key string, now time.Time) (*models.RateQuote, error)
}

type Directory interface {
	CarrierIDs(ctx context.Context) ([]string, error)
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

type QuoteInput struct {
	ShipTo models.Address
	Parcel models.Parcel
}

type QuoteResult struct {
	QuoteKey  string
	Rates     []models.Rate
	CappedAt  int
	ExpiresAt time.Time
}

type Service struct {
	provider rateprovider.Client
	dir      Directory
	repo     Repository
	cache    cache.BytesCache
	producer Producer
	rl       RateLimiter

	origin            models.Address
	quoteTTL          time.Duration
	quoteCacheTTL     time.Duration
	createdTopic      string
	providerPerMinute int64
}

func New(provider rateprovider.Client, dir Directory, repo Repository, origin models.Address, quoteTTL time.Duration) *Service {
	if quoteTTL <= 0 {
		quoteTTL = 15 * time.Minute
	}
	return &Service{
		provider: provider,
		dir:      dir,
		repo:     repo,
		origin:   origin,
		quoteTTL: quoteTTL,
	}
}

func (s *Service) WithQuoteCache(c cache.BytesCache, ttl time.Duration) *Service {
	s.cache = c
	s.quoteCacheTTL = ttl
	return s
}

func (s *Service) WithProducer(p Producer, createdTopic string) *Service {
	s.producer = p
	s.createdTopic = createdTopic
	return s
}

func (s *Service) WithRateLimiter(rl RateLimiter, perMinute int64) *Service {
	s.rl = rl
	s.providerPerMinute = perMinute
	return s
}

// Quote runs the full pipeline: validate, resolve carriers, rate-shop,
// sanitize, filter, bucket, dedupe, cap, persist, publish. Validation runs
// before any network call. No retries anywhere: a single provider failure
// propagates to the caller as is.
func (s *Service) Quote(ctx context.Context, in QuoteInput) (*QuoteResult, error) {
	if err := validateAddress(s.origin, "origin"); err != nil {
		return nil, err
	}
	if err := validateAddress(in.ShipTo, "destination"); err != nil {
		return nil, err
	}
	if err := validateParcel(in.Parcel); err != nil {
		return nil, err
	}

	s.throttleProvider(ctx)

	carrierIDs, err := s.dir.CarrierIDs(ctx)
	if err != nil {
		return nil, err
	}

	offers, err := s.provider.GetRates(ctx, rateprovider.RateRequest{
		CarrierIDs: carrierIDs,
		ShipFrom:   s.origin,
		ShipTo:     in.ShipTo,
		Parcel:     in.Parcel,
	})
	if err != nil {
		return nil, err
	}

	ranked := Normalize(Sanitize(offers))
	if len(ranked) == 0 {
		return nil, ErrNoRatesAvailable
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.quoteTTL)
	res := &QuoteResult{Rates: ranked, CappedAt: MaxRates, ExpiresAt: expiresAt}

	if s.repo != nil {
		q, err := s.repo.CreateQuote(ctx, models.RateQuoteCreateInput{
			ShipTo:    in.ShipTo,
			Parcel:    in.Parcel,
			Rates:     ranked,
			ExpiresAt: expiresAt,
		})
		if err != nil {
			return nil, errors.Wrap(err, "persist quote")
		}
		res.QuoteKey = q.QuoteKey
		s.cacheQuote(ctx, q)
		s.publishCreated(ctx, q)
	}

	return res, nil
}

// GetQuote returns a persisted, still-active quote by key.
func (s *Service) GetQuote(ctx context.Context, key string) (*models.RateQuote, error) {
	if key == "" {
		return nil, ErrQuoteNotFound
	}

	if s.cache != nil && s.quoteCacheTTL > 0 {
		if b, ok, err := s.cache.Get(ctx, quoteKey(key)); err == nil && ok {
			var q models.RateQuote
			if json.Unmarshal(b, &q) == nil && usable(&q, time.Now().UTC()) {
				return &q, nil
			}
		}
	}

	q, err := s.repo.GetQuoteByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if q == nil || !usable(q, time.Now().UTC()) {
		return nil, ErrQuoteNotFound
	}
	s.cacheQuote(ctx, q)
	return q, nil
}

// RedeemQuote flips an active quote to REDEEMED exactly once. Concurrent
// redeems are resolved by the repository's conditional update.
func (s *Service) RedeemQuote(ctx context.Context, key string) (*models.RateQuote, error) {
	if key == "" {
		return nil, ErrQuoteNotFound
	}
	q, err := s.repo.RedeemQuote(ctx, key, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuoteNotFound
	}
	s.cacheQuote(ctx, q)
	return q, nil
}

// ApplyExpiredEvent refreshes the cached copy of a quote the sweeper just
// expired, so reads stop serving the stale ACTIVE row.
func (s *Service) ApplyExpiredEvent(ctx context.Context, msg messages.QuoteExpired) error {
	if msg.QuoteKey == "" {
		return errors.New("quote_key is required")
	}
	if s.cache == nil || s.quoteCacheTTL <= 0 {
		return nil
	}
	q, err := s.repo.GetQuoteByKey(ctx, msg.QuoteKey)
	if err != nil || q == nil {
		return err
	}
	s.cacheQuote(ctx, q)
	return nil
}

func (s *Service) throttleProvider(ctx context.Context) {
	if s.rl == nil || s.providerPerMinute <= 0 {
		return
	}
	now := time.Now().UTC()
	minuteKey := fmt.Sprintf("rl:rateprovider:%s", now.Format("200601021504"))
	// The counter must not outlive its minute: TTL runs to the end of the
	// window plus a little slack for clock drift between processes.
	ttl := now.Truncate(time.Minute).Add(time.Minute).Sub(now) + 5*time.Second
	allowed, n, err := s.rl.Allow(ctx, minuteKey, s.providerPerMinute, ttl)
	if err != nil {
		slog.Warn("rate limiter unavailable", "error", err.Error())
		return
	}
	if !allowed {
		// Over the provider budget for this minute: slow the caller a bit
		// instead of failing the quote.
		slog.Warn("provider rate limit exceeded", "count", n)
		time.Sleep(500 * time.Millisecond)
	}
}

func (s *Service) cacheQuote(ctx context.Context, q *models.RateQuote) {
	if s.cache == nil || s.quoteCacheTTL <= 0 {
		return
	}
	b, _ := json.Marshal(q)
	_ = s.cache.Set(ctx, quoteKey(q.QuoteKey), b, s.quoteCacheTTL)
}

// Publishing is best-effort: the storefront still gets its rates when the
// broker is down.
func (s *Service) publishCreated(ctx context.Context, q *models.RateQuote) {
	if s.producer == nil || s.createdTopic == "" {
		return
	}
	var cheapest int64
	if len(q.Rates) > 0 {
		cheapest = q.Rates[0].AmountCents
	}
	msg := messages.QuoteCreated{
		QuoteKey:       q.QuoteKey,
		DestinationZip: q.ShipTo.PostalCode,
		RateCount:      len(q.Rates),
		CheapestCents:  cheapest,
		CreatedAt:      q.CreatedAt,
		ExpiresAt:      q.ExpiresAt,
	}
	b, _ := json.Marshal(msg)
	if err := s.producer.Publish(ctx, s.createdTopic, []byte(q.QuoteKey), b); err != nil {
		slog.Warn("publish quote.created", "quote_key", q.QuoteKey, "error", err.Error())
	}
}

func usable(q *models.RateQuote, now time.Time) bool {
	return q.Status == models.QuoteStatusActive && q.ExpiresAt.After(now)
}

func quoteKey(key string) string {
	return fmt.Sprintf("quote:%s:current", key)
}
