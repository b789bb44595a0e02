package rates

import (
	"math"
	"sort"
	"strings"

	"github.com/ReefCultures/RateBox/internal/integrations/rateprovider"
	"github.com/ReefCultures/RateBox/internal/models"
)

// MaxRates caps the final list. The legacy handlers disagreed between 6 and
// 8; 8 is the canonical value now.
const MaxRates = 8

// Sanitize converts provider offers into domain rates, converting decimal
// dollars to integer cents. Offers whose amount is not a finite non-negative
// number are dropped here, before any filtering.
func Sanitize(offers []rateprovider.Offer) []models.Rate {
	out := make([]models.Rate, 0, len(offers))
	for _, o := range offers {
		if math.IsNaN(o.Amount) || math.IsInf(o.Amount, 0) || o.Amount < 0 {
			continue
		}
		currency := o.Currency
		if currency == "" {
			currency = "usd"
		}
		out = append(out, models.Rate{
			RateID:                o.RateID,
			CarrierName:           o.CarrierName,
			ServiceType:           o.ServiceType,
			ServiceCode:           o.ServiceCode,
			AmountCents:           int64(math.Round(o.Amount * 100)),
			Currency:              currency,
			DeliveryDays:          o.DeliveryDays,
			EstimatedDeliveryDate: o.EstimatedDeliveryDate,
		})
	}
	return out
}

type carrierBucket struct {
	carrier string
	bucket  models.SpeedBucket
}

// Normalize runs the allow-list filter and the dedupe/rank reduction: at most
// one rate per (carrier, bucket), cheapest wins, ordered bucket-then-price.
// Deterministic for identical input, and idempotent.
func Normalize(in []models.Rate) []models.Rate {
	best := make(map[carrierBucket]models.Rate)
	for _, r := range in {
		if !IsAllowedService(r) {
			continue
		}
		key := carrierBucket{
			carrier: strings.ToLower(r.CarrierName),
			bucket:  SpeedBucketFor(r),
		}
		cur, ok := best[key]
		if !ok || r.AmountCents < cur.AmountCents {
			best[key] = r
		}
	}

	out := make([]models.Rate, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		bi, bj := SpeedBucketFor(out[i]).Rank(), SpeedBucketFor(out[j]).Rank()
		if bi != bj {
			return bi < bj
		}
		if out[i].AmountCents != out[j].AmountCents {
			return out[i].AmountCents < out[j].AmountCents
		}
		// Price ties are rare; break them stably so the order never flaps.
		return out[i].RateID < out[j].RateID
	})

	if len(out) > MaxRates {
		out = out[:MaxRates]
	}
	return out
}
