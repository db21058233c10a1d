package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitopus/internal/models"
)

// BalanceSheet is the aggregated state of one trip.
type BalanceSheet struct {
	// Balances holds one net balance per master.
	// Positive = owed money, Negative = owes money.
	Balances map[string]decimal.Decimal

	// TotalSpent sums every non-repayment expense.
	TotalSpent decimal.Decimal

	// TotalPaid is what each master physically paid, repayments included.
	TotalPaid map[string]decimal.Decimal
}

// foldExpenses threads acc through fn for every expense.
func foldExpenses[T any](expenses []models.Expense, acc T, fn func(T, models.Expense) T) T {
	for _, e := range expenses {
		acc = fn(acc, e)
	}
	return acc
}

// ComputeBalances aggregates every expense of trip into one balance per master.
//
// Algorithm:
// - Every member resolves to a master; masters start at zero
// - Payer's master is credited with the full amount
// - Each split entry's master is debited with its share
// - Masters outside the trip are ignored on both sides
// - Repayments move balances but are not counted as spending
//
// A nil trip yields an empty sheet.
func ComputeBalances(trip *models.Trip, links LinkMap) BalanceSheet {
	sheet := BalanceSheet{
		Balances:   make(map[string]decimal.Decimal),
		TotalSpent: decimal.Zero,
		TotalPaid:  make(map[string]decimal.Decimal),
	}
	if trip == nil {
		return sheet
	}

	for _, master := range Masters(trip.Members, links) {
		sheet.Balances[master] = decimal.Zero
		sheet.TotalPaid[master] = decimal.Zero
	}

	return foldExpenses(trip.Expenses, sheet, func(s BalanceSheet, e models.Expense) BalanceSheet {
		if !e.Category.IsRepayment() {
			s.TotalSpent = s.TotalSpent.Add(e.Amount)
		}

		payer := ResolveMaster(e.PayerID, links)
		if bal, ok := s.Balances[payer]; ok {
			s.Balances[payer] = bal.Add(e.Amount)
			s.TotalPaid[payer] = s.TotalPaid[payer].Add(e.Amount)
		}

		for accountID, share := range e.Split {
			consumer := ResolveMaster(accountID, links)
			if bal, ok := s.Balances[consumer]; ok {
				s.Balances[consumer] = bal.Sub(share)
			}
		}
		return s
	})
}
