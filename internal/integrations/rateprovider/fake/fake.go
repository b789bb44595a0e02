package fake

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/ReefCultures/RateBox/internal/integrations/rateprovider"
)

// FakeClient is a deterministic stand-in for the real rate provider, used in
// dev setups and tests. Prices vary with the destination postal code so two
// different addresses do not quote identically.
type FakeClient struct{}

func New() *FakeClient { return &FakeClient{} }

func (f *FakeClient) ListCarriers(ctx context.Context) ([]rateprovider.CarrierAccount, error) {
	return []rateprovider.CarrierAccount{
		{ID: "se-ups", Code: "ups", FriendlyName: "UPS", Enabled: true},
		{ID: "se-usps", Code: "usps", FriendlyName: "USPS", Enabled: true},
	}, nil
}

func (f *FakeClient) GetRates(ctx context.Context, req rateprovider.RateRequest) ([]rateprovider.Offer, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(req.ShipTo.PostalCode))
	jitter := float64(h.Sum32()%700) / 100

	one := 1
	two := 2
	three := 3

	return []rateprovider.Offer{
		{
			RateID:       fakeID("nda", req.ShipTo.PostalCode),
			CarrierName:  "UPS",
			ServiceType:  "UPS Next Day Air",
			ServiceCode:  "ups_next_day_air",
			Amount:       42.50 + jitter,
			Currency:     "usd",
			DeliveryDays: &one,
		},
		{
			RateID:       fakeID("2da", req.ShipTo.PostalCode),
			CarrierName:  "UPS",
			ServiceType:  "UPS 2nd Day Air",
			ServiceCode:  "ups_2nd_day_air",
			Amount:       21.10 + jitter,
			Currency:     "usd",
			DeliveryDays: &two,
		},
		{
			RateID:       fakeID("pme", req.ShipTo.PostalCode),
			CarrierName:  "USPS",
			ServiceType:  "Priority Mail Express",
			ServiceCode:  "usps_priority_mail_express",
			Amount:       28.75 + jitter,
			Currency:     "usd",
			DeliveryDays: &one,
		},
		{
			RateID:       fakeID("pm", req.ShipTo.PostalCode),
			CarrierName:  "USPS",
			ServiceType:  "Priority Mail",
			ServiceCode:  "usps_priority_mail",
			Amount:       10.40 + jitter,
			Currency:     "usd",
			DeliveryDays: &three,
		},
		{
			RateID:       fakeID("gnd", req.ShipTo.PostalCode),
			CarrierName:  "UPS",
			ServiceType:  "UPS Ground",
			ServiceCode:  "ups_ground",
			Amount:       8.20 + jitter,
			Currency:     "usd",
			DeliveryDays: nil,
		},
	}, nil
}

func fakeID(suffix, zip string) string {
	return fmt.Sprintf("fake-rate-%s-%s", zip, suffix)
}
