package models

import "time"

const (
	QuoteStatusActive   = "ACTIVE"
	QuoteStatusRedeemed = "REDEEMED"
	QuoteStatusExpired  = "EXPIRED"
)

// RateQuote is a persisted rate-shopping result, redeemable at checkout
// until ExpiresAt.
type RateQuote struct {
	ID        uint64
	QuoteKey  string
	Status    string
	ShipTo    Address
	Parcel    Parcel
	Rates     []Rate
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RateQuoteCreateInput struct {
	ShipTo    Address
	Parcel    Parcel
	Rates     []Rate
	ExpiresAt time.Time
}
