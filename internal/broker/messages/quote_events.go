package messages

import "time"

// QuoteCreated is published by the API after a quote is persisted. The ops
// dashboard consumes it for conversion and margin reporting.
type QuoteCreated struct {
	QuoteKey       string    `json:"quote_key"`
	DestinationZip string    `json:"destination_zip,omitempty"`
	RateCount      int       `json:"rate_count"`
	CheapestCents  int64     `json:"cheapest_cents,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// QuoteExpired is published by the quote-worker once the sweeper flips a
// stale quote to EXPIRED.
type QuoteExpired struct {
	QuoteKey  string    `json:"quote_key"`
	ExpiredAt time.Time `json:"expired_at"`
}
