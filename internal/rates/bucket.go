package rates

import (
	"github.com/ReefCultures/RateBox/internal/models"
)

var overnightKeywords = []string{"next day", "next-day", "overnight"}

var twoDayKeywords = []string{"2nd", "2 day", "2-day", "second day"}

// SpeedBucketFor classifies a rate's delivery speed. DeliveryDays is an
// inclusive upper bound: exactly 2 days is 2day, not 3day. Without a numeric
// estimate the service text decides, defaulting to 3day.
func SpeedBucketFor(r models.Rate) models.SpeedBucket {
	if r.DeliveryDays != nil {
		switch {
		case *r.DeliveryDays <= 1:
			return models.BucketOvernight
		case *r.DeliveryDays <= 2:
			return models.BucketTwoDay
		default:
			return models.BucketThreeDay
		}
	}

	text := serviceText(r)
	if containsAny(text, overnightKeywords) {
		return models.BucketOvernight
	}
	if containsAny(text, twoDayKeywords) {
		return models.BucketTwoDay
	}
	return models.BucketThreeDay
}
