package models

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Category classifies an expense.
type Category string

const (
	CategoryFood      Category = "FOOD"
	CategoryAlcohol   Category = "ALCOHOL"
	CategoryTransport Category = "TRANSPORT"
	CategoryShop      Category = "SHOP"
	CategoryFun       Category = "FUN"
	CategoryHome      Category = "HOME"
	CategoryRepayment Category = "REPAYMENT"
	CategoryOther     Category = "OTHER"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryAlcohol,
	CategoryTransport,
	CategoryShop,
	CategoryFun,
	CategoryHome,
	CategoryRepayment,
	CategoryOther,
}

// ParseCategory maps a stored or user-supplied code to a Category.
// Unknown and empty codes become CategoryOther.
func ParseCategory(code string) Category {
	c := Category(strings.ToUpper(strings.TrimSpace(code)))
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return CategoryOther
}

// IsRepayment reports whether the category records a debt transfer rather than spending.
func (c Category) IsRepayment() bool {
	return c == CategoryRepayment
}

// SplitMap maps an account (or master) id to the share it owes for one expense.
type SplitMap map[string]decimal.Decimal

// Sum returns the total of all shares.
func (s SplitMap) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, share := range s {
		total = total.Add(share)
	}
	return total
}

// IDs returns the split keys in ascending order.
func (s SplitMap) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy of the split.
func (s SplitMap) Clone() SplitMap {
	if s == nil {
		return nil
	}
	out := make(SplitMap, len(s))
	for id, share := range s {
		out[id] = share
	}
	return out
}

// Expense is one committed payment within a trip.
type Expense struct {
	// ID is assigned by the store.
	ID int64

	// TripID is the owning trip.
	TripID string

	// PayerID is the account that physically paid.
	PayerID string

	// Amount is the positive amount paid.
	Amount decimal.Decimal

	// Description is free text (e.g., "Dinner").
	Description string

	// Category classifies the expense. REPAYMENT has exactly one split entry
	// (the recipient) and does not count as spending.
	Category Category

	// Split maps each responsible account to the share it owes.
	// For ordinary expenses it sums to Amount within a small tolerance;
	// treats (FUN) may put the whole amount on the payer.
	Split SplitMap

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// RepaymentTarget returns the recipient of a repayment expense.
func (e Expense) RepaymentTarget() (string, bool) {
	if !e.Category.IsRepayment() || len(e.Split) == 0 {
		return "", false
	}
	return e.Split.IDs()[0], true
}
