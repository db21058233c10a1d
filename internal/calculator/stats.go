package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitopus/internal/models"
)

// RepaymentEvent is one repayment seen from a single master's side.
type RepaymentEvent struct {
	Counterparty string // Master on the other end
	Amount       decimal.Decimal
	CreatedAt    int64
}

// UserStats is one account's view of a trip.
type UserStats struct {
	// TotalShare is everything the account's household consumed.
	TotalShare decimal.Decimal

	// ByCategory breaks TotalShare down per category.
	ByCategory map[models.Category]decimal.Decimal

	// Repaid lists repayments the household sent.
	Repaid []RepaymentEvent

	// Received lists repayments the household got.
	Received []RepaymentEvent
}

// MyStats projects trip onto the household of accountID.
// Shares are attributed through ResolveMaster, so a split keyed by a linked
// account counts for its master. Repayments never add to TotalShare.
func MyStats(trip *models.Trip, accountID string, links LinkMap) UserStats {
	stats := UserStats{
		TotalShare: decimal.Zero,
		ByCategory: make(map[models.Category]decimal.Decimal),
	}
	if trip == nil {
		return stats
	}
	me := ResolveMaster(accountID, links)

	return foldExpenses(trip.Expenses, stats, func(s UserStats, e models.Expense) UserStats {
		if e.Category.IsRepayment() {
			target, ok := e.RepaymentTarget()
			if !ok {
				return s
			}
			payer := ResolveMaster(e.PayerID, links)
			recipient := ResolveMaster(target, links)
			switch me {
			case payer:
				s.Repaid = append(s.Repaid, RepaymentEvent{Counterparty: recipient, Amount: e.Amount, CreatedAt: e.CreatedAt})
			case recipient:
				s.Received = append(s.Received, RepaymentEvent{Counterparty: payer, Amount: e.Amount, CreatedAt: e.CreatedAt})
			}
			return s
		}

		mine := decimal.Zero
		for id, share := range e.Split {
			if ResolveMaster(id, links) == me {
				mine = mine.Add(share)
			}
		}
		if mine.IsZero() {
			return s
		}
		s.TotalShare = s.TotalShare.Add(mine)
		s.ByCategory[e.Category] = s.ByCategory[e.Category].Add(mine)
		return s
	})
}
