package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SettleEpsilon is the magnitude below which a balance counts as settled.
var SettleEpsilon = decimal.New(1, -2)

// Transfer is one payment that moves money from a debtor to a creditor.
type Transfer struct {
	From   string // Master who owes
	To     string // Master who is owed
	Amount decimal.Decimal
}

type position struct {
	id     string
	amount decimal.Decimal
}

// Simplify reduces net balances to a short list of transfers that settles them.
//
// Greedy matching: the largest remaining debtor pays the largest remaining
// creditor min(debt, credit); a side is done once its remainder drops below
// SettleEpsilon. Ties are broken by id so the result is deterministic.
// At most len(debtors)+len(creditors)-1 transfers are produced.
func Simplify(balances map[string]decimal.Decimal) []Transfer {
	var creditors, debtors []position
	negEpsilon := SettleEpsilon.Neg()
	for id, bal := range balances {
		switch {
		case bal.GreaterThan(SettleEpsilon):
			creditors = append(creditors, position{id: id, amount: bal})
		case bal.LessThan(negEpsilon):
			debtors = append(debtors, position{id: id, amount: bal.Neg()})
		}
	}
	sortPositions(creditors)
	sortPositions(debtors)

	transfers := make([]Transfer, 0)
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := decimal.Min(debtor.amount, creditor.amount)
		transfers = append(transfers, Transfer{
			From:   debtor.id,
			To:     creditor.id,
			Amount: amount,
		})

		debtor.amount = debtor.amount.Sub(amount)
		creditor.amount = creditor.amount.Sub(amount)

		if debtor.amount.LessThan(SettleEpsilon) {
			i++
		}
		if creditor.amount.LessThan(SettleEpsilon) {
			j++
		}
	}
	return transfers
}

func sortPositions(ps []position) {
	sort.Slice(ps, func(a, b int) bool {
		if c := ps[a].amount.Cmp(ps[b].amount); c != 0 {
			return c > 0
		}
		return ps[a].id < ps[b].id
	})
}

// Apply returns a copy of balances with every transfer executed:
// the debtor's balance rises and the creditor's falls.
func Apply(balances map[string]decimal.Decimal, transfers []Transfer) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(balances))
	for id, bal := range balances {
		out[id] = bal
	}
	for _, t := range transfers {
		out[t.From] = out[t.From].Add(t.Amount)
		out[t.To] = out[t.To].Sub(t.Amount)
	}
	return out
}

// OwedBetween returns what from must pay to according to transfers.
func OwedBetween(transfers []Transfer, from, to string) decimal.Decimal {
	total := decimal.Zero
	for _, t := range transfers {
		if t.From == from && t.To == to {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// IsSettled reports whether every balance is within SettleEpsilon of zero.
func IsSettled(balances map[string]decimal.Decimal) bool {
	for _, bal := range balances {
		if bal.Abs().GreaterThan(SettleEpsilon) {
			return false
		}
	}
	return true
}
