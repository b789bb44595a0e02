package rates

import (
	"fmt"
	"math"
	"testing"

	"github.com/ReefCultures/RateBox/internal/integrations/rateprovider"
	"github.com/ReefCultures/RateBox/internal/models"
	"github.com/stretchr/testify/require"
)

func TestSanitize_DropsBadAmounts(t *testing.T) {
	offers := []rateprovider.Offer{
		{RateID: "ok", Amount: 12.34},
		{RateID: "nan", Amount: math.NaN()},
		{RateID: "inf", Amount: math.Inf(1)},
		{RateID: "neg", Amount: -0.01},
		{RateID: "zero", Amount: 0},
	}
	out := Sanitize(offers)
	require.Len(t, out, 2)
	require.Equal(t, "ok", out[0].RateID)
	require.Equal(t, int64(1234), out[0].AmountCents)
	require.Equal(t, "zero", out[1].RateID)
	require.Equal(t, int64(0), out[1].AmountCents)
}

func TestSanitize_DefaultsCurrency(t *testing.T) {
	out := Sanitize([]rateprovider.Offer{{RateID: "a", Amount: 1}})
	require.Equal(t, "usd", out[0].Currency)

	out = Sanitize([]rateprovider.Offer{{RateID: "b", Amount: 1, Currency: "cad"}})
	require.Equal(t, "cad", out[0].Currency)
}

func TestSanitize_RoundsToCents(t *testing.T) {
	out := Sanitize([]rateprovider.Offer{{RateID: "a", Amount: 19.999}})
	require.Equal(t, int64(2000), out[0].AmountCents)
}

func TestNormalize_MixedProviderOffers(t *testing.T) {
	one := 1
	in := Sanitize([]rateprovider.Offer{
		{RateID: "r1", CarrierName: "UPS", ServiceType: "UPS Next Day Air", ServiceCode: "ups_next_day_air", Amount: 45, DeliveryDays: &one},
		{RateID: "r2", CarrierName: "UPS", ServiceType: "UPS Next Day Air Saver", ServiceCode: "ups_next_day_air_saver", Amount: 40, DeliveryDays: &one},
		{RateID: "r3", CarrierName: "USPS", ServiceType: "Priority Mail", ServiceCode: "usps_priority_mail", Amount: 12},
		{RateID: "r4", CarrierName: "UPS", ServiceType: "UPS Ground", ServiceCode: "ups_ground", Amount: 8},
	})

	out := Normalize(in)
	require.Len(t, out, 2)

	// Cheapest UPS overnight survives; ground is filtered; USPS with no
	// delivery estimate and no speedy text defaults to 3day.
	require.Equal(t, "r2", out[0].RateID)
	require.Equal(t, int64(4000), out[0].AmountCents)
	require.Equal(t, models.BucketOvernight, SpeedBucketFor(out[0]))

	require.Equal(t, "r3", out[1].RateID)
	require.Equal(t, models.BucketThreeDay, SpeedBucketFor(out[1]))
}

func TestNormalize_UnderscoredCodesWithoutDeliveryDays(t *testing.T) {
	// No numeric estimates and no display names: classification rides
	// entirely on the underscored service codes.
	in := Sanitize([]rateprovider.Offer{
		{RateID: "a", CarrierName: "UPS", ServiceCode: "next_day_air", Amount: 45},
		{RateID: "b", CarrierName: "UPS", ServiceCode: "next_day_air_saver", Amount: 40},
		{RateID: "c", CarrierName: "USPS", ServiceCode: "priority_mail", Amount: 12},
		{RateID: "d", CarrierName: "UPS", ServiceCode: "ground", Amount: 8},
	})

	out := Normalize(in)
	require.Len(t, out, 2)

	require.Equal(t, "b", out[0].RateID)
	require.Equal(t, int64(4000), out[0].AmountCents)
	require.Equal(t, models.BucketOvernight, SpeedBucketFor(out[0]))

	require.Equal(t, "c", out[1].RateID)
	require.Equal(t, int64(1200), out[1].AmountCents)
	require.Equal(t, models.BucketThreeDay, SpeedBucketFor(out[1]))
}

func TestNormalize_OnePerCarrierBucket(t *testing.T) {
	one, two := 1, 2
	in := []models.Rate{
		{RateID: "a", CarrierName: "UPS", ServiceCode: "ups_next_day_air", AmountCents: 4500, DeliveryDays: &one},
		{RateID: "b", CarrierName: "ups", ServiceCode: "ups_next_day_air_saver", AmountCents: 4000, DeliveryDays: &one},
		{RateID: "c", CarrierName: "UPS", ServiceCode: "ups_2nd_day_air", AmountCents: 2000, DeliveryDays: &two},
		{RateID: "d", CarrierName: "USPS", ServiceCode: "usps_priority_mail_express", AmountCents: 2800, DeliveryDays: &one},
	}
	out := Normalize(in)

	seen := map[string]struct{}{}
	for _, r := range out {
		key := fmt.Sprintf("%s|%s", r.CarrierName, SpeedBucketFor(r))
		_, dup := seen[key]
		require.False(t, dup, "duplicate (carrier, bucket): %s", key)
		seen[key] = struct{}{}
	}
	require.Len(t, out, 3)

	// Carrier name casing does not split the group.
	require.Equal(t, "b", out[1].RateID)
}

func TestNormalize_Ordering(t *testing.T) {
	one, two, three := 1, 2, 3
	in := []models.Rate{
		{RateID: "slow", CarrierName: "USPS", ServiceCode: "usps_priority_mail", AmountCents: 1000, DeliveryDays: &three},
		{RateID: "mid", CarrierName: "UPS", ServiceCode: "ups_2nd_day_air", AmountCents: 2000, DeliveryDays: &two},
		{RateID: "fast-exp", CarrierName: "USPS", ServiceCode: "usps_priority_mail_express", AmountCents: 2900, DeliveryDays: &one},
		{RateID: "fast", CarrierName: "UPS", ServiceCode: "ups_next_day_air", AmountCents: 4100, DeliveryDays: &one},
	}
	out := Normalize(in)
	require.Len(t, out, 4)

	// Bucket order first, price ascending within a bucket.
	require.Equal(t, []string{"fast-exp", "fast", "mid", "slow"}, ids(out))

	lastRank, lastCents := -1, int64(-1)
	for _, r := range out {
		rank := SpeedBucketFor(r).Rank()
		if rank != lastRank {
			lastRank, lastCents = rank, r.AmountCents
			continue
		}
		require.GreaterOrEqual(t, r.AmountCents, lastCents)
		lastCents = r.AmountCents
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	one := 1
	in := []models.Rate{
		{RateID: "a", CarrierName: "UPS", ServiceCode: "ups_next_day_air", AmountCents: 4500, DeliveryDays: &one},
		{RateID: "b", CarrierName: "UPS", ServiceCode: "ups_next_day_air_saver", AmountCents: 4000, DeliveryDays: &one},
		{RateID: "c", CarrierName: "USPS", ServiceCode: "usps_priority_mail", AmountCents: 1200},
	}
	once := Normalize(in)
	twice := Normalize(once)
	require.Equal(t, once, twice)
}

func TestNormalize_CapsAtMaxRates(t *testing.T) {
	var in []models.Rate
	one := 1
	// 12 distinct carriers, all overnight: dedupe keeps all, cap trims.
	for i := 0; i < 12; i++ {
		in = append(in, models.Rate{
			RateID:       fmt.Sprintf("r%d", i),
			CarrierName:  fmt.Sprintf("UPS-%d", i),
			ServiceType:  "Next Day Air",
			ServiceCode:  fmt.Sprintf("custom_%d", i),
			AmountCents:  int64(1000 + i),
			DeliveryDays: &one,
		})
	}
	out := Normalize(in)
	require.Len(t, out, MaxRates)
	// Cheapest survive the cut.
	require.Equal(t, int64(1000), out[0].AmountCents)
	require.Equal(t, int64(1007), out[len(out)-1].AmountCents)
}

func TestNormalize_DeterministicOnPriceTies(t *testing.T) {
	one := 1
	in := []models.Rate{
		{RateID: "z", CarrierName: "UPS", ServiceCode: "ups_next_day_air", AmountCents: 4000, DeliveryDays: &one},
		{RateID: "a", CarrierName: "USPS", ServiceCode: "usps_priority_mail_express", AmountCents: 4000, DeliveryDays: &one},
	}
	first := Normalize(in)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, Normalize(in))
	}
	require.Equal(t, []string{"a", "z"}, ids(first))
}

func ids(rs []models.Rate) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.RateID)
	}
	return out
}
