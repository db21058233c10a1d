package models

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Trip is a shared expense pool.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string

	// Name is the human-readable trip name (e.g., "Thailand 2026").
	Name string

	// Code is the unique join code other accounts use to find the trip.
	Code string

	// Currency is the display currency code (e.g., "THB").
	Currency string

	// Rate converts Currency into the reference currency for display.
	// Zero means unset.
	Rate decimal.Decimal

	// CreatorID is the account that created the trip. It is always the first member.
	CreatorID string

	// Members are the account ids taking part in the trip.
	Members []string

	// Expenses are the committed expenses in insertion order.
	Expenses []Expense

	// Notes are informational entries in insertion order.
	Notes []Note

	// CreatedAt is the Unix timestamp when the trip was created.
	CreatedAt int64
}

// HasMember reports whether accountID is a member of the trip.
func (t *Trip) HasMember(accountID string) bool {
	if t == nil {
		return false
	}
	return slices.Contains(t.Members, accountID)
}

// HasRate reports whether a display conversion rate is configured.
func (t *Trip) HasRate() bool {
	return t != nil && t.Rate.IsPositive()
}

// TripSummary is the listing shape of a trip.
type TripSummary struct {
	ID        string
	Name      string
	Code      string
	Currency  string
	CreatedAt int64
}

// Note is a free-text entry pinned to a trip.
type Note struct {
	ID         int64
	TripID     string
	AuthorName string
	Text       string
	CreatedAt  int64
}

// DefaultCurrency is used when a trip is created without one.
const DefaultCurrency = "THB"
