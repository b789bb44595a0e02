package rates_api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ReefCultures/RateBox/internal/carrierdir"
	"github.com/ReefCultures/RateBox/internal/integrations/rateprovider"
	"github.com/ReefCultures/RateBox/internal/models"
	"github.com/ReefCultures/RateBox/internal/rates"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

type Service interface {
	Quote(ctx context.Context, in rates.QuoteInput) (*rates.QuoteResult, error)
	GetQuote(ctx context.Context, key string) (*models.RateQuote, error)
	RedeemQuote(ctx context.Context, key string) (*models.RateQuote, error)
}

type Directory interface {
	CarrierIDs(ctx context.Context) ([]string, error)
}

type RatesAPI struct {
	svc Service
	dir Directory
}

func New(svc Service, dir Directory) *RatesAPI {
	return &RatesAPI{svc: svc, dir: dir}
}

func (a *RatesAPI) Register(r chi.Router) {
	r.Post("/v1/rates", a.handleQuote)
	r.Get("/v1/quotes/{key}", a.handleGetQuote)
	r.Post("/v1/quotes/{key}/redeem", a.handleRedeemQuote)
	r.Get("/v1/carriers", a.handleListCarriers)
}

type quoteRequest struct {
	ShipTo  models.Address `json:"shipTo"`
	Package models.Parcel  `json:"package"`
}

type quoteResponse struct {
	QuoteKey  string        `json:"quoteKey,omitempty"`
	Rates     []models.Rate `json:"rates"`
	CappedAt  int           `json:"cappedAt"`
	ExpiresAt string        `json:"expiresAt,omitempty"`
}

func (a *RatesAPI) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	res, err := a.svc.Quote(r.Context(), rates.QuoteInput{ShipTo: req.ShipTo, Parcel: req.Package})
	if err != nil {
		writeMappedError(w, err)
		return
	}

	resp := quoteResponse{
		QuoteKey: res.QuoteKey,
		Rates:    res.Rates,
		CappedAt: res.CappedAt,
	}
	if !res.ExpiresAt.IsZero() {
		resp.ExpiresAt = res.ExpiresAt.Format(timeLayout)
	}
	writeJSON(w, http.StatusOK, resp)
}

type quoteView struct {
	QuoteKey  string         `json:"quoteKey"`
	Status    string         `json:"status"`
	ShipTo    models.Address `json:"shipTo"`
	Package   models.Parcel  `json:"package"`
	Rates     []models.Rate  `json:"rates"`
	ExpiresAt string         `json:"expiresAt"`
	CreatedAt string         `json:"createdAt"`
}

func (a *RatesAPI) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	q, err := a.svc.GetQuote(r.Context(), key)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteView(q))
}

func (a *RatesAPI) handleRedeemQuote(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	q, err := a.svc.RedeemQuote(r.Context(), key)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteView(q))
}

func (a *RatesAPI) handleListCarriers(w http.ResponseWriter, r *http.Request) {
	ids, err := a.dir.CarrierIDs(r.Context())
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"carrierIds": ids})
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func toQuoteView(q *models.RateQuote) quoteView {
	return quoteView{
		QuoteKey:  q.QuoteKey,
		Status:    q.Status,
		ShipTo:    q.ShipTo,
		Package:   q.Parcel,
		Rates:     q.Rates,
		ExpiresAt: q.ExpiresAt.UTC().Format(timeLayout),
		CreatedAt: q.CreatedAt.UTC().Format(timeLayout),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeErrorJSON(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

// writeMappedError translates the service error taxonomy into HTTP statuses.
// Nothing is logged-and-swallowed; the caller always sees what went wrong.
func writeMappedError(w http.ResponseWriter, err error) {
	var pe *rateprovider.ProviderError
	switch {
	case errors.Is(err, rates.ErrInvalidAddress), errors.Is(err, rates.ErrInvalidParcel):
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, carrierdir.ErrNoCarriersConfigured):
		writeErrorJSON(w, http.StatusServiceUnavailable, "no_carriers_configured", err.Error())
	case errors.Is(err, rates.ErrNoRatesAvailable):
		writeErrorJSON(w, http.StatusUnprocessableEntity, "no_rates_available",
			"no fast shipping services cover this destination and package")
	case errors.Is(err, rates.ErrQuoteNotFound):
		writeErrorJSON(w, http.StatusNotFound, "quote_not_found", "quote not found or no longer active")
	case errors.As(err, &pe):
		writeErrorJSON(w, http.StatusBadGateway, "rate_provider_error", pe.Message)
	default:
		writeErrorJSON(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
