package shipengine

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ReefCultures/RateBox/internal/integrations/rateprovider"
	"github.com/ReefCultures/RateBox/internal/models"
	"github.com/pkg/errors"
)

type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "https://api.shipengine.com"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type carriersResp struct {
	Carriers []struct {
		CarrierID             string `json:"carrier_id"`
		CarrierCode           string `json:"carrier_code"`
		FriendlyName          string `json:"friendly_name"`
		DisabledByBillingPlan bool   `json:"disabled_by_billing_plan"`
	} `json:"carriers"`
}

func (c *Client) ListCarriers(ctx context.Context) ([]rateprovider.CarrierAccount, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/carriers", nil)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}
	req.Header.Set("API-Key", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, providerError(resp)
	}

	var r carriersResp
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, errors.Wrap(err, "decode carriers")
	}

	out := make([]rateprovider.CarrierAccount, 0, len(r.Carriers))
	for _, ca := range r.Carriers {
		out = append(out, rateprovider.CarrierAccount{
			ID:           ca.CarrierID,
			Code:         ca.CarrierCode,
			FriendlyName: ca.FriendlyName,
			Enabled:      !ca.DisabledByBillingPlan,
		})
	}
	return out, nil
}

type ratesReq struct {
	RateOptions struct {
		CarrierIDs []string `json:"carrier_ids"`
	} `json:"rate_options"`
	Shipment struct {
		ShipFrom seAddress   `json:"ship_from"`
		ShipTo   seAddress   `json:"ship_to"`
		Packages []sePackage `json:"packages"`
	} `json:"shipment"`
}

type seAddress struct {
	Name          string `json:"name,omitempty"`
	AddressLine1  string `json:"address_line1"`
	AddressLine2  string `json:"address_line2,omitempty"`
	CityLocality  string `json:"city_locality"`
	StateProvince string `json:"state_province"`
	PostalCode    string `json:"postal_code"`
	CountryCode   string `json:"country_code"`
	Phone         string `json:"phone,omitempty"`
}

type sePackage struct {
	Weight struct {
		Value float64 `json:"value"`
		Unit  string  `json:"unit"`
	} `json:"weight"`
	Dimensions struct {
		Unit   string  `json:"unit"`
		Length float64 `json:"length"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	} `json:"dimensions"`
}

type ratesResp struct {
	RateResponse struct {
		Rates []struct {
			RateID              string `json:"rate_id"`
			CarrierFriendlyName string `json:"carrier_friendly_name"`
			ServiceType         string `json:"service_type"`
			ServiceCode         string `json:"service_code"`
			ShippingAmount      struct {
				Currency string  `json:"currency"`
				Amount   float64 `json:"amount"`
			} `json:"shipping_amount"`
			DeliveryDays          *int   `json:"delivery_days"`
			EstimatedDeliveryDate string `json:"estimated_delivery_date"`
		} `json:"rates"`
	} `json:"rate_response"`
}

func (c *Client) GetRates(ctx context.Context, rreq rateprovider.RateRequest) ([]rateprovider.Offer, error) {
	var body ratesReq
	body.RateOptions.CarrierIDs = rreq.CarrierIDs
	body.Shipment.ShipFrom = toSEAddress(rreq.ShipFrom)
	body.Shipment.ShipTo = toSEAddress(rreq.ShipTo)

	var pkg sePackage
	pkg.Weight.Value = rreq.Parcel.WeightOz
	pkg.Weight.Unit = "ounce"
	pkg.Dimensions.Unit = "inch"
	pkg.Dimensions.Length = rreq.Parcel.LengthIn
	pkg.Dimensions.Width = rreq.Parcel.WidthIn
	pkg.Dimensions.Height = rreq.Parcel.HeightIn
	body.Shipment.Packages = []sePackage{pkg}

	b, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "marshal rates request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/rates", bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}
	req.Header.Set("API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, providerError(resp)
	}

	var r ratesResp
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, errors.Wrap(err, "decode rates")
	}

	out := make([]rateprovider.Offer, 0, len(r.RateResponse.Rates))
	for _, rr := range r.RateResponse.Rates {
		var edd *string
		if rr.EstimatedDeliveryDate != "" {
			s := rr.EstimatedDeliveryDate
			edd = &s
		}
		out = append(out, rateprovider.Offer{
			RateID:                rr.RateID,
			CarrierName:           rr.CarrierFriendlyName,
			ServiceType:           rr.ServiceType,
			ServiceCode:           rr.ServiceCode,
			Amount:                rr.ShippingAmount.Amount,
			Currency:              rr.ShippingAmount.Currency,
			DeliveryDays:          rr.DeliveryDays,
			EstimatedDeliveryDate: edd,
		})
	}
	return out, nil
}

func toSEAddress(a models.Address) seAddress {
	country := a.Country
	if country == "" {
		country = "US"
	}
	return seAddress{
		Name:          a.Name,
		AddressLine1:  a.Street1,
		AddressLine2:  a.Street2,
		CityLocality:  a.City,
		StateProvince: a.State,
		PostalCode:    a.PostalCode,
		CountryCode:   country,
		Phone:         a.Phone,
	}
}

// providerError extracts the upstream message so operators see what the
// provider actually said, not just a status code.
func providerError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))

	var e struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &e) == nil && len(e.Errors) > 0 && e.Errors[0].Message != "" {
		msg = e.Errors[0].Message
	}
	return &rateprovider.ProviderError{StatusCode: resp.StatusCode, Message: msg}
}
