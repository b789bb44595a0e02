package rates

import (
	"math"
	"strings"

	"github.com/ReefCultures/RateBox/internal/models"
	"github.com/pkg/errors"
)

func validateAddress(a models.Address, label string) error {
	if strings.TrimSpace(a.Street1) == "" {
		return errors.Wrapf(ErrInvalidAddress, "%s street1 is required", label)
	}
	if strings.TrimSpace(a.City) == "" {
		return errors.Wrapf(ErrInvalidAddress, "%s city is required", label)
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		return errors.Wrapf(ErrInvalidAddress, "%s postal code is required", label)
	}
	country := strings.ToUpper(strings.TrimSpace(a.Country))
	if country == "" || country == "US" {
		if len(strings.TrimSpace(a.State)) != 2 {
			return errors.Wrapf(ErrInvalidAddress, "%s state must be a 2-letter code", label)
		}
	}
	return nil
}

func validateParcel(p models.Parcel) error {
	dims := map[string]float64{
		"weight_oz": p.WeightOz,
		"length_in": p.LengthIn,
		"width_in":  p.WidthIn,
		"height_in": p.HeightIn,
	}
	for name, v := range dims {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return errors.Wrapf(ErrInvalidParcel, "%s must be a positive number", name)
		}
	}
	return nil
}
