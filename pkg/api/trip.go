package api

import "github.com/shopspring/decimal"

type CreateTripRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency,omitempty"`
}

type CreateTripResponse struct {
	Trip *Trip `json:"trip"`
}

type GetTripRequest struct {
	TripID string `json:"tripId"`
}

type GetTripResponse struct {
	Trip *Trip `json:"trip"`
}

// JoinTripRequest adds the caller to the trip with the given join code.
type JoinTripRequest struct {
	Code string `json:"code"`
}

type JoinTripResponse struct {
	Trip *Trip `json:"trip"`
}

type ListMyTripsRequest struct{}

type ListMyTripsResponse struct {
	Trips []TripSummary `json:"trips"`
}

type SetCurrencyRequest struct {
	TripID   string `json:"tripId"`
	Currency string `json:"currency"`
}

type SetCurrencyResponse struct {
	Trip *Trip `json:"trip"`
}

// SetRateRequest sets the display conversion rate; zero clears it.
type SetRateRequest struct {
	TripID string          `json:"tripId"`
	Rate   decimal.Decimal `json:"rate"`
}

type SetRateResponse struct {
	Trip *Trip `json:"trip"`
}

type AddNoteRequest struct {
	TripID string `json:"tripId"`
	Text   string `json:"text"`
}

type AddNoteResponse struct {
	Note *Note `json:"note"`
}
