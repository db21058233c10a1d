package calculator

import (
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitopus/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func expense(payer, amount string, cat models.Category, split map[string]string) models.Expense {
	sm := make(models.SplitMap, len(split))
	for id, share := range split {
		sm[id] = d(share)
	}
	return models.Expense{PayerID: payer, Amount: d(amount), Category: cat, Split: sm}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

func sumBalances(balances map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b)
	}
	return total
}

func TestComputeBalances_TwoMembers(t *testing.T) {
	trip := &models.Trip{
		Members: []string{"A", "B"},
		Expenses: []models.Expense{
			expense("A", "100", models.CategoryFood, map[string]string{"A": "50", "B": "50"}),
		},
	}

	sheet := ComputeBalances(trip, nil)

	require.Len(t, sheet.Balances, 2)
	assertDecimal(t, "50", sheet.Balances["A"])
	assertDecimal(t, "-50", sheet.Balances["B"])
	assertDecimal(t, "100", sheet.TotalSpent)
	assertDecimal(t, "100", sheet.TotalPaid["A"])
	assertDecimal(t, "0", sheet.TotalPaid["B"])

	transfers := Simplify(sheet.Balances)
	require.Len(t, transfers, 1)
	assert.Equal(t, "B", transfers[0].From)
	assert.Equal(t, "A", transfers[0].To)
	assertDecimal(t, "50", transfers[0].Amount)
}

func TestComputeBalances_ThreeMembersZeroSum(t *testing.T) {
	trip := &models.Trip{
		Members: []string{"A", "B", "C"},
		Expenses: []models.Expense{
			expense("A", "90", models.CategoryFood, map[string]string{"A": "30", "B": "30", "C": "30"}),
			expense("B", "60", models.CategoryTransport, map[string]string{"A": "20", "B": "20", "C": "20"}),
		},
	}

	sheet := ComputeBalances(trip, nil)

	// A: +90 -30 -20, B: +60 -30 -20, C: -30 -20
	assertDecimal(t, "40", sheet.Balances["A"])
	assertDecimal(t, "10", sheet.Balances["B"])
	assertDecimal(t, "-50", sheet.Balances["C"])
	assertDecimal(t, "0", sumBalances(sheet.Balances))
	assertDecimal(t, "150", sheet.TotalSpent)

	transfers := Simplify(sheet.Balances)
	assert.LessOrEqual(t, len(transfers), 2)
	assert.True(t, IsSettled(Apply(sheet.Balances, transfers)))
}

func TestComputeBalances_RepaymentNotSpent(t *testing.T) {
	trip := &models.Trip{
		Members: []string{"A", "B"},
		Expenses: []models.Expense{
			expense("B", "20", models.CategoryRepayment, map[string]string{"A": "20"}),
		},
	}

	sheet := ComputeBalances(trip, nil)

	assert.True(t, sheet.TotalSpent.IsZero())
	assertDecimal(t, "20", sheet.Balances["B"])
	assertDecimal(t, "-20", sheet.Balances["A"])
	assertDecimal(t, "20", sheet.TotalPaid["B"])
}

func TestComputeBalances_LinkedAccountResolvesToMaster(t *testing.T) {
	links := LinkMap{"X": "M"}
	viaChild := &models.Trip{
		Members: []string{"M", "X", "P"},
		Expenses: []models.Expense{
			expense("P", "60", models.CategoryFood, map[string]string{"X": "30", "P": "30"}),
		},
	}
	direct := &models.Trip{
		Members: []string{"M", "P"},
		Expenses: []models.Expense{
			expense("P", "60", models.CategoryFood, map[string]string{"M": "30", "P": "30"}),
		},
	}

	got := ComputeBalances(viaChild, links)
	want := ComputeBalances(direct, links)

	require.Len(t, got.Balances, 2)
	_, hasChild := got.Balances["X"]
	assert.False(t, hasChild, "linked account must not get its own bucket")
	for id, bal := range want.Balances {
		assert.Truef(t, bal.Equal(got.Balances[id]), "balance %s: want %s, got %s", id, bal, got.Balances[id])
	}
	assertDecimal(t, "-30", got.Balances["M"])
}

func TestComputeBalances_LinkedPayerCreditsMaster(t *testing.T) {
	trip := &models.Trip{
		Members: []string{"M", "X", "P"},
		Expenses: []models.Expense{
			expense("X", "40", models.CategoryShop, map[string]string{"M": "20", "P": "20"}),
		},
	}

	sheet := ComputeBalances(trip, LinkMap{"X": "M"})

	assertDecimal(t, "20", sheet.Balances["M"])
	assertDecimal(t, "40", sheet.TotalPaid["M"])
	assertDecimal(t, "-20", sheet.Balances["P"])
}

func TestComputeBalances_UnknownAccountsIgnored(t *testing.T) {
	trip := &models.Trip{
		Members: []string{"A", "B"},
		Expenses: []models.Expense{
			expense("A", "30", models.CategoryFood, map[string]string{"A": "10", "B": "10", "ghost": "10"}),
			expense("stranger", "50", models.CategoryFood, map[string]string{"A": "25", "B": "25"}),
		},
	}

	sheet := ComputeBalances(trip, nil)

	require.Len(t, sheet.Balances, 2)
	assertDecimal(t, "-5", sheet.Balances["A"])  // +30 -10 -25
	assertDecimal(t, "-35", sheet.Balances["B"]) // -10 -25
	assertDecimal(t, "80", sheet.TotalSpent)
	_, ok := sheet.TotalPaid["stranger"]
	assert.False(t, ok)
}

func TestComputeBalances_NilTrip(t *testing.T) {
	sheet := ComputeBalances(nil, LinkMap{"X": "M"})

	assert.Empty(t, sheet.Balances)
	assert.Empty(t, sheet.TotalPaid)
	assert.True(t, sheet.TotalSpent.IsZero())
	assert.Empty(t, Simplify(sheet.Balances))
}

func TestComputeBalances_DoesNotMutateInput(t *testing.T) {
	trip := &models.Trip{
		Members: []string{"A", "B"},
		Expenses: []models.Expense{
			expense("A", "10", models.CategoryFood, map[string]string{"A": "5", "B": "5"}),
		},
	}

	_ = ComputeBalances(trip, nil)

	assert.Equal(t, []string{"A", "B"}, trip.Members)
	assertDecimal(t, "5", trip.Expenses[0].Split["B"])
}

func randomTrip(r *rand.Rand, members []string, n int) *models.Trip {
	trip := &models.Trip{Members: members}
	for range n {
		payer := members[r.IntN(len(members))]
		var ids []string
		for _, m := range members {
			if r.IntN(3) > 0 {
				ids = append(ids, m)
			}
		}
		if len(ids) == 0 {
			ids = []string{payer}
		}
		amount := decimal.New(int64(r.IntN(100000)+1), -2)
		split, _ := EqualSplit(amount, ids)
		cat := models.Categories[r.IntN(len(models.Categories))]
		if cat == models.CategoryRepayment {
			cat = models.CategoryOther
		}
		trip.Expenses = append(trip.Expenses, models.Expense{PayerID: payer, Amount: amount, Category: cat, Split: split})
	}
	return trip
}

func TestComputeBalances_Properties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	members := []string{"ann", "ben", "cat", "dan", "eve"}

	for i := range 50 {
		trip := randomTrip(r, members, 1+r.IntN(30))
		sheet := ComputeBalances(trip, nil)

		assert.Truef(t, sumBalances(sheet.Balances).Abs().LessThanOrEqual(SettleEpsilon),
			"run %d: balances do not sum to zero: %s", i, sumBalances(sheet.Balances))

		shuffled := *trip
		shuffled.Expenses = append([]models.Expense(nil), trip.Expenses...)
		r.Shuffle(len(shuffled.Expenses), func(a, b int) {
			shuffled.Expenses[a], shuffled.Expenses[b] = shuffled.Expenses[b], shuffled.Expenses[a]
		})
		again := ComputeBalances(&shuffled, nil)
		for id, bal := range sheet.Balances {
			assert.Truef(t, bal.Equal(again.Balances[id]), "run %d: order changed balance of %s", i, id)
		}
		assert.True(t, sheet.TotalSpent.Equal(again.TotalSpent))
	}
}
