package models

// SpeedBucket is a coarse delivery-time class derived from a rate's delivery
// estimate. It is computed on every pass and never stored.
type SpeedBucket string

const (
	BucketOvernight SpeedBucket = "overnight"
	BucketTwoDay    SpeedBucket = "2day"
	BucketThreeDay  SpeedBucket = "3day"
)

// Rank orders buckets fastest-first. Unknown buckets sort last.
func (b SpeedBucket) Rank() int {
	switch b {
	case BucketOvernight:
		return 0
	case BucketTwoDay:
		return 1
	case BucketThreeDay:
		return 2
	}
	return 3
}

// Rate is a priced shipping offer for one origin/destination/parcel combo.
// AmountCents is the monetary unit of truth; offers that cannot be expressed
// as a non-negative integer amount of cents are dropped before filtering.
type Rate struct {
	RateID                string  `json:"rateId"`
	CarrierName           string  `json:"carrierName"`
	ServiceType           string  `json:"serviceType"`
	ServiceCode           string  `json:"serviceCode"`
	AmountCents           int64   `json:"amountCents"`
	Currency              string  `json:"currency"`
	DeliveryDays          *int    `json:"deliveryDays,omitempty"`
	EstimatedDeliveryDate *string `json:"estimatedDeliveryDate,omitempty"`
}

// Address is a shipping address. State is a 2-letter code for US addresses.
type Address struct {
	Name       string `json:"name,omitempty"`
	Street1    string `json:"street1"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Parcel dimensions: weight in ounces, sides in inches.
type Parcel struct {
	WeightOz float64 `json:"weightOz"`
	LengthIn float64 `json:"lengthIn"`
	WidthIn  float64 `json:"widthIn"`
	HeightIn float64 `json:"heightIn"`
}
