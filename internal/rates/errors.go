package rates

import "github.com/pkg/errors"

var (
	// ErrInvalidAddress: origin or destination is missing required fields.
	// Recoverable by the caller fixing the input.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidParcel: weight or a dimension is not a positive finite number.
	ErrInvalidParcel = errors.New("invalid parcel")

	// ErrNoRatesAvailable: the provider answered but the pipeline produced
	// zero rows. Distinct from a provider failure; it means this destination
	// and parcel have no fast-service coverage.
	ErrNoRatesAvailable = errors.New("no rates available")

	// ErrQuoteNotFound: unknown, expired, or already redeemed quote key.
	ErrQuoteNotFound = errors.New("quote not found")
)
