package rates

import (
	"testing"

	"github.com/ReefCultures/RateBox/internal/models"
	"github.com/stretchr/testify/require"
)

func days(n int) *int { return &n }

func TestSpeedBucketFor_DeliveryDays(t *testing.T) {
	cases := []struct {
		days int
		want models.SpeedBucket
	}{
		{0, models.BucketOvernight},
		{1, models.BucketOvernight},
		{2, models.BucketTwoDay}, // inclusive upper bound: exactly 2 is 2day
		{3, models.BucketThreeDay},
		{7, models.BucketThreeDay},
	}
	for _, tc := range cases {
		got := SpeedBucketFor(models.Rate{DeliveryDays: days(tc.days)})
		require.Equal(t, tc.want, got, "deliveryDays=%d", tc.days)
	}
}

func TestSpeedBucketFor_TextFallback(t *testing.T) {
	cases := []struct {
		name string
		rate models.Rate
		want models.SpeedBucket
	}{
		{"overnight keyword", models.Rate{ServiceType: "Priority Overnight"}, models.BucketOvernight},
		{"next day keyword", models.Rate{ServiceType: "Next Day Air Saver"}, models.BucketOvernight},
		{"2nd keyword", models.Rate{ServiceType: "2nd Day Air"}, models.BucketTwoDay},
		{"second day keyword", models.Rate{ServiceType: "Second Day Delivery"}, models.BucketTwoDay},
		{"no keyword defaults to 3day", models.Rate{ServiceType: "Priority Mail"}, models.BucketThreeDay},
		{"empty defaults to 3day", models.Rate{}, models.BucketThreeDay},
		{"underscored overnight code", models.Rate{ServiceCode: "ups_next_day_air_saver"}, models.BucketOvernight},
		{"underscored 2nd day code", models.Rate{ServiceCode: "ups_2nd_day_air"}, models.BucketTwoDay},
		{"underscored slow code", models.Rate{ServiceCode: "usps_priority_mail"}, models.BucketThreeDay},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, SpeedBucketFor(tc.rate))
		})
	}
}

func TestSpeedBucketFor_DaysBeatText(t *testing.T) {
	// Numeric estimate wins over contradictory text.
	r := models.Rate{ServiceType: "Next Day Air", DeliveryDays: days(3)}
	require.Equal(t, models.BucketThreeDay, SpeedBucketFor(r))
}

func TestSpeedBucket_Rank(t *testing.T) {
	require.Less(t, models.BucketOvernight.Rank(), models.BucketTwoDay.Rank())
	require.Less(t, models.BucketTwoDay.Rank(), models.BucketThreeDay.Rank())
}
