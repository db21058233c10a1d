package api

import "github.com/shopspring/decimal"

// AddExpenseRequest records an expense.
// Split, when set, maps account IDs to shares. Otherwise the amount is
// divided equally between ParticipantIDs, or between every household of
// the trip when ParticipantIDs is empty too.
type AddExpenseRequest struct {
	TripID         string                     `json:"tripId"`
	PayerID        string                     `json:"payerId,omitempty"`
	Amount         decimal.Decimal            `json:"amount"`
	Description    string                     `json:"description"`
	Category       string                     `json:"category"`
	Split          map[string]decimal.Decimal `json:"split,omitempty"`
	ParticipantIDs []string                   `json:"participantIds,omitempty"`
}

type AddExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	TripID    string `json:"tripId"`
	ExpenseID int64  `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

// ListExpensesRequest lists expenses newest first. Limit <= 0 means all.
type ListExpensesRequest struct {
	TripID string `json:"tripId"`
	Limit  int    `json:"limit,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

// RecordRepaymentRequest records the caller paying back ToID.
type RecordRepaymentRequest struct {
	TripID string          `json:"tripId"`
	ToID   string          `json:"toId"`
	Amount decimal.Decimal `json:"amount"`
}

type RecordRepaymentResponse struct {
	Expense *Expense `json:"expense"`
}

// GetRepaymentHintRequest asks how much the caller's household owes ToID's.
type GetRepaymentHintRequest struct {
	TripID string `json:"tripId"`
	ToID   string `json:"toId"`
}

type GetRepaymentHintResponse struct {
	Owed decimal.Decimal `json:"owed"`
}

type SpinRouletteRequest struct {
	TripID string `json:"tripId"`
}

// SpinRouletteResponse names the household that pays the next round.
type SpinRouletteResponse struct {
	MasterID string `json:"masterId"`
	Name     string `json:"name"`
}

// RecordTreatRequest books an amount the caller's household paid for everyone.
type RecordTreatRequest struct {
	TripID      string          `json:"tripId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

type RecordTreatResponse struct {
	Expense *Expense `json:"expense"`
}

type GetBalancesRequest struct {
	TripID string `json:"tripId"`
}

type GetBalancesResponse struct {
	Currency   string          `json:"currency"`
	Rate       decimal.Decimal `json:"rate"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
	Balances   []BalanceLine   `json:"balances"`
	Transfers  []Transfer      `json:"transfers"`
	Settled    bool            `json:"settled"`
}

type GetMyStatsRequest struct {
	TripID string `json:"tripId"`
}

type GetMyStatsResponse struct {
	TotalShare decimal.Decimal            `json:"totalShare"`
	ByCategory map[string]decimal.Decimal `json:"byCategory"`
	Repaid     []RepaymentEvent           `json:"repaid"`
	Received   []RepaymentEvent           `json:"received"`
}
