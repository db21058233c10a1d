package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitopus/internal/models"
)

func TestMyStats(t *testing.T) {
	links := LinkMap{"X": "M"}
	trip := &models.Trip{
		Members: []string{"M", "X", "P"},
		Expenses: []models.Expense{
			expense("P", "60", models.CategoryFood, map[string]string{"M": "30", "P": "30"}),
			expense("M", "40", models.CategoryAlcohol, map[string]string{"X": "20", "P": "20"}),
			expense("P", "15", models.CategoryFood, map[string]string{"X": "15"}),
			expense("P", "25", models.CategoryFun, map[string]string{"P": "25"}),
			{PayerID: "X", Amount: d("50"), Category: models.CategoryRepayment, Split: models.SplitMap{"P": d("50")}, CreatedAt: 10},
			{PayerID: "P", Amount: d("5"), Category: models.CategoryRepayment, Split: models.SplitMap{"M": d("5")}, CreatedAt: 20},
		},
	}

	stats := MyStats(trip, "X", links)

	assertDecimal(t, "65", stats.TotalShare)
	assertDecimal(t, "45", stats.ByCategory[models.CategoryFood])
	assertDecimal(t, "20", stats.ByCategory[models.CategoryAlcohol])
	_, hasFun := stats.ByCategory[models.CategoryFun]
	assert.False(t, hasFun)
	_, hasRepayment := stats.ByCategory[models.CategoryRepayment]
	assert.False(t, hasRepayment)

	require.Len(t, stats.Repaid, 1)
	assert.Equal(t, "P", stats.Repaid[0].Counterparty)
	assertDecimal(t, "50", stats.Repaid[0].Amount)
	assert.Equal(t, int64(10), stats.Repaid[0].CreatedAt)

	require.Len(t, stats.Received, 1)
	assert.Equal(t, "P", stats.Received[0].Counterparty)
	assertDecimal(t, "5", stats.Received[0].Amount)
}

func TestMyStats_MasterAndChildSeeSameView(t *testing.T) {
	links := LinkMap{"X": "M"}
	trip := &models.Trip{
		Members: []string{"M", "X", "P"},
		Expenses: []models.Expense{
			expense("P", "60", models.CategoryFood, map[string]string{"X": "10", "M": "20", "P": "30"}),
		},
	}

	master := MyStats(trip, "M", links)
	child := MyStats(trip, "X", links)

	assertDecimal(t, "30", master.TotalShare)
	assert.True(t, master.TotalShare.Equal(child.TotalShare))
	assert.True(t, master.ByCategory[models.CategoryFood].Equal(child.ByCategory[models.CategoryFood]))
}

func TestMyStats_NilTrip(t *testing.T) {
	stats := MyStats(nil, "A", nil)
	assert.True(t, stats.TotalShare.IsZero())
	assert.Empty(t, stats.ByCategory)
	assert.Empty(t, stats.Repaid)
	assert.Empty(t, stats.Received)
}
