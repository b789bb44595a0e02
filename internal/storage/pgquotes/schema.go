package pgquotes

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS rate_quotes (
  id BIGSERIAL PRIMARY KEY,
  quote_key UUID NOT NULL,
  status TEXT NOT NULL,
  ship_to JSONB NOT NULL,
  parcel JSONB NOT NULL,
  rates JSONB NOT NULL,
  expires_at TIMESTAMPTZ NOT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL,
  UNIQUE (quote_key)
)`,
		// The sweeper scans by expiry; only ACTIVE rows matter to it.
		`CREATE INDEX IF NOT EXISTS idx_rate_quotes_expires_at ON rate_quotes(expires_at) WHERE status = 'ACTIVE'`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
