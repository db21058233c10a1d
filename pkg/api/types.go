package api

import "github.com/shopspring/decimal"

// Account is a person known to the ledger.
type Account struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	LinkedTo  string `json:"linkedTo,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// Member is one account taking part in a trip.
type Member struct {
	AccountID string `json:"accountId"`
	Name      string `json:"name"`
	// MasterID is the household the member's money is booked to.
	MasterID string `json:"masterId"`
}

// Trip is the full view of a trip without its expenses.
type Trip struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	Currency  string          `json:"currency"`
	Rate      decimal.Decimal `json:"rate"`
	CreatorID string          `json:"creatorId"`
	Members   []Member        `json:"members"`
	Notes     []Note          `json:"notes"`
	CreatedAt int64           `json:"createdAt"`
}

// TripSummary is the listing shape of a trip.
type TripSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Currency  string `json:"currency"`
	CreatedAt int64  `json:"createdAt"`
}

type Note struct {
	ID         int64  `json:"id"`
	AuthorName string `json:"authorName"`
	Text       string `json:"text"`
	CreatedAt  int64  `json:"createdAt"`
}

// Expense is one committed payment.
type Expense struct {
	ID          int64                      `json:"id"`
	TripID      string                     `json:"tripId"`
	PayerID     string                     `json:"payerId"`
	PayerName   string                     `json:"payerName"`
	Amount      decimal.Decimal            `json:"amount"`
	Description string                     `json:"description"`
	Category    string                     `json:"category"`
	Split       map[string]decimal.Decimal `json:"split"`
	CreatedAt   int64                      `json:"createdAt"`
}

// BalanceLine is the net position of one household.
// Positive balances are owed money, negative balances owe money.
type BalanceLine struct {
	MasterID  string          `json:"masterId"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	TotalPaid decimal.Decimal `json:"totalPaid"`
	// Converted is Balance in the reference currency, set when the trip has a rate.
	Converted *decimal.Decimal `json:"converted,omitempty"`
}

// Transfer is one payment that settles debts.
type Transfer struct {
	FromID    string           `json:"fromId"`
	FromName  string           `json:"fromName"`
	ToID      string           `json:"toId"`
	ToName    string           `json:"toName"`
	Amount    decimal.Decimal  `json:"amount"`
	Converted *decimal.Decimal `json:"converted,omitempty"`
}

type RepaymentEvent struct {
	CounterpartyID   string          `json:"counterpartyId"`
	CounterpartyName string          `json:"counterpartyName"`
	Amount           decimal.Decimal `json:"amount"`
	CreatedAt        int64           `json:"createdAt"`
}

// DraftParticipant is one household that may share a drafted expense.
type DraftParticipant struct {
	MasterID string `json:"masterId"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// Draft is an expense under construction.
type Draft struct {
	ID           string             `json:"id"`
	TripID       string             `json:"tripId"`
	PayerID      string             `json:"payerId"`
	Amount       decimal.Decimal    `json:"amount"`
	Description  string             `json:"description"`
	Category     string             `json:"category"`
	Participants []DraftParticipant `json:"participants"`
	ExpiresAt    int64              `json:"expiresAt"`
}
