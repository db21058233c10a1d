package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Draft is an expense under interactive construction.
// It is converted into an Expense on confirmation or discarded.
type Draft struct {
	// ID is the unique identifier for the draft (UUID format).
	ID string

	// TripID is the trip the expense will be committed to.
	TripID string

	// PayerID is the account entering the expense.
	PayerID string

	Amount      decimal.Decimal
	Description string
	Category    Category

	// Selected marks which master accounts share the expense.
	Selected map[string]bool

	// CreatedAt is the Unix timestamp used for expiry.
	CreatedAt int64
}

// SelectedIDs returns the ids currently included, in ascending order.
func (d *Draft) SelectedIDs() []string {
	ids := make([]string, 0, len(d.Selected))
	for id, on := range d.Selected {
		if on {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Toggle flips the inclusion of id and returns the new state.
func (d *Draft) Toggle(id string) bool {
	if d.Selected == nil {
		d.Selected = make(map[string]bool)
	}
	d.Selected[id] = !d.Selected[id]
	return d.Selected[id]
}
