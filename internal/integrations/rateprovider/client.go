package rateprovider

import (
	"context"
	"fmt"

	"github.com/ReefCultures/RateBox/internal/models"
)

// CarrierAccount is one carrier account connected at the rate provider.
type CarrierAccount struct {
	ID           string
	Code         string
	FriendlyName string
	Enabled      bool
}

// Offer is a raw rate as the provider quoted it: money still in provider
// units (decimal dollars). Conversion to integer cents happens in the
// normalization pipeline so malformed amounts can be dropped there.
type Offer struct {
	RateID                string
	CarrierName           string
	ServiceType           string
	ServiceCode           string
	Amount                float64
	Currency              string
	DeliveryDays          *int
	EstimatedDeliveryDate *string
}

type RateRequest struct {
	CarrierIDs []string
	ShipFrom   models.Address
	ShipTo     models.Address
	Parcel     models.Parcel
}

type Client interface {
	ListCarriers(ctx context.Context) ([]CarrierAccount, error)
	GetRates(ctx context.Context, req RateRequest) ([]Offer, error)
}

// ProviderError carries the upstream message for a non-success provider
// response. Never retried; surfaces straight to the caller.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("rate provider http %d: %s", e.StatusCode, e.Message)
}
