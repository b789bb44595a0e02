package pgquotes

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ReefCultures/RateBox/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

func (s *Storage) CreateQuote(ctx context.Context, in models.RateQuoteCreateInput) (*models.RateQuote, error) {
	now := time.Now().UTC()
	key := uuid.NewString()

	shipTo, err := json.Marshal(in.ShipTo)
	if err != nil {
		return nil, errors.Wrap(err, "marshal ship_to")
	}
	parcel, err := json.Marshal(in.Parcel)
	if err != nil {
		return nil, errors.Wrap(err, "marshal parcel")
	}
	rates, err := json.Marshal(in.Rates)
	if err != nil {
		return nil, errors.Wrap(err, "marshal rates")
	}

	var id uint64
	err = s.db.QueryRow(ctx, `
INSERT INTO rate_quotes (
  quote_key, status, ship_to, parcel, rates, expires_at, created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
RETURNING id
`, key, models.QuoteStatusActive, shipTo, parcel, rates, in.ExpiresAt.UTC(), now).Scan(&id)
	if err != nil {
		return nil, errors.Wrap(err, "insert quote")
	}

	return &models.RateQuote{
		ID:        id,
		QuoteKey:  key,
		Status:    models.QuoteStatusActive,
		ShipTo:    in.ShipTo,
		Parcel:    in.Parcel,
		Rates:     in.Rates,
		ExpiresAt: in.ExpiresAt.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetQuoteByKey returns nil (no error) when the key is unknown; the service
// decides what "not found" means for its caller.
func (s *Storage) GetQuoteByKey(ctx context.Context, key string) (*models.RateQuote, error) {
	row := s.db.QueryRow(ctx, `
SELECT id, quote_key, status, ship_to, parcel, rates, expires_at, created_at, updated_at
FROM rate_quotes
WHERE quote_key = $1
`, key)

	q, err := scanQuote(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "select quote")
	}
	return q, nil
}

// RedeemQuote marks an ACTIVE, unexpired quote REDEEMED. The conditional
// UPDATE makes concurrent redeems settle to exactly one winner; losers get
// (nil, nil).
func (s *Storage) RedeemQuote(ctx context.Context, key string, now time.Time) (*models.RateQuote, error) {
	row := s.db.QueryRow(ctx, `
UPDATE rate_quotes
SET status = $3, updated_at = now()
WHERE quote_key = $1
  AND status = $2
  AND expires_at > $4
RETURNING id, quote_key, status, ship_to, parcel, rates, expires_at, created_at, updated_at
`, key, models.QuoteStatusActive, models.QuoteStatusRedeemed, now.UTC())

	q, err := scanQuote(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "redeem quote")
	}
	return q, nil
}

// ExpireDueQuotes flips a batch of overdue ACTIVE quotes to EXPIRED and
// returns them. FOR UPDATE SKIP LOCKED keeps concurrent sweepers off each
// other's batches.
func (s *Storage) ExpireDueQuotes(ctx context.Context, now time.Time, limit int) ([]*models.RateQuote, error) {
	if limit <= 0 {
		limit = 100
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
SELECT id, quote_key, status, ship_to, parcel, rates, expires_at, created_at, updated_at
FROM rate_quotes
WHERE status = $1
  AND expires_at <= $2
ORDER BY expires_at ASC
LIMIT $3
FOR UPDATE SKIP LOCKED
`, models.QuoteStatusActive, now.UTC(), limit)
	if err != nil {
		return nil, errors.Wrap(err, "select due quotes")
	}

	var picked []*models.RateQuote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "scan due quote")
		}
		picked = append(picked, q)
	}
	if rows.Err() != nil {
		rows.Close()
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	rows.Close()

	for _, q := range picked {
		_, err := tx.Exec(ctx, `UPDATE rate_quotes SET status = $2, updated_at = now() WHERE id = $1`,
			q.ID, models.QuoteStatusExpired)
		if err != nil {
			return nil, errors.Wrap(err, "expire quote")
		}
		q.Status = models.QuoteStatusExpired
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}
	return picked, nil
}

func scanQuote(row pgx.Row) (*models.RateQuote, error) {
	var q models.RateQuote
	var shipTo, parcel, rates []byte
	if err := row.Scan(
		&q.ID, &q.QuoteKey, &q.Status,
		&shipTo, &parcel, &rates,
		&q.ExpiresAt, &q.CreatedAt, &q.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(shipTo, &q.ShipTo); err != nil {
		return nil, errors.Wrap(err, "unmarshal ship_to")
	}
	if err := json.Unmarshal(parcel, &q.Parcel); err != nil {
		return nil, errors.Wrap(err, "unmarshal parcel")
	}
	if err := json.Unmarshal(rates, &q.Rates); err != nil {
		return nil, errors.Wrap(err, "unmarshal rates")
	}
	return &q, nil
}
