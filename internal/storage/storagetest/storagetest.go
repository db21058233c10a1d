// Package storagetest holds the behavioural contract every storage.Store
// implementation must satisfy.
package storagetest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitopus/internal/models"
	"github.com/mmynk/splitopus/internal/storage"
)

// Factory returns a fresh, empty store. The store is closed by the suite.
type Factory func(t *testing.T) storage.Store

// Run executes the contract suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Store)
	}{
		{"Accounts", testAccounts},
		{"Links", testLinks},
		{"LinkedNames", testLinkedNames},
		{"CreateTrip", testCreateTrip},
		{"TripCodes", testTripCodes},
		{"Members", testMembers},
		{"TripSettings", testTripSettings},
		{"Expenses", testExpenses},
		{"Notes", testNotes},
		{"Drafts", testDrafts},
		{"DeleteTripCascades", testDeleteTripCascades},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { s.Close() })
			tt.fn(t, s)
		})
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustAccount(t *testing.T, s storage.Store, id, name string) {
	t.Helper()
	require.NoError(t, s.UpsertAccount(context.Background(), &models.Account{ID: id, Name: name}))
}

func mustTrip(t *testing.T, s storage.Store, creator, name string) *models.Trip {
	t.Helper()
	trip := &models.Trip{Name: name, CreatorID: creator}
	require.NoError(t, s.CreateTrip(context.Background(), trip))
	return trip
}

func testAccounts(t *testing.T, s storage.Store) {
	ctx := context.Background()

	_, err := s.GetAccount(ctx, "100")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	mustAccount(t, s, "100", "Ann")
	got, err := s.GetAccount(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)
	assert.False(t, got.IsLinked())
	assert.NotZero(t, got.CreatedAt)

	mustAccount(t, s, "100", "Annie")
	got, err = s.GetAccount(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, "Annie", got.Name)
}

func testLinks(t *testing.T, s storage.Store) {
	ctx := context.Background()
	mustAccount(t, s, "m", "Master")
	mustAccount(t, s, "c", "Child")
	mustAccount(t, s, "o", "Other")

	links, err := s.LinkMap(ctx)
	require.NoError(t, err)
	assert.Empty(t, links)

	require.NoError(t, s.LinkAccount(ctx, "c", "m"))

	child, err := s.GetAccount(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "m", child.LinkedTo)

	links, err = s.LinkMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"c": "m"}, links)

	linked, err := s.ListLinked(ctx, "m")
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, "c", linked[0].ID)

	// Re-linking a name refresh keeps the link
	mustAccount(t, s, "c", "Kid")
	child, err = s.GetAccount(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "m", child.LinkedTo)

	t.Run("rejects nesting", func(t *testing.T) {
		assert.ErrorIs(t, s.LinkAccount(ctx, "o", "c"), storage.ErrInvalidLink)
		assert.ErrorIs(t, s.LinkAccount(ctx, "m", "o"), storage.ErrInvalidLink)
		assert.ErrorIs(t, s.LinkAccount(ctx, "o", "o"), storage.ErrInvalidLink)
	})

	t.Run("unknown accounts", func(t *testing.T) {
		assert.ErrorIs(t, s.LinkAccount(ctx, "ghost", "m"), storage.ErrNotFound)
		assert.ErrorIs(t, s.LinkAccount(ctx, "o", "ghost"), storage.ErrNotFound)
	})
}

func testLinkedNames(t *testing.T, s storage.Store) {
	ctx := context.Background()
	mustAccount(t, s, "m", "Ann")
	mustAccount(t, s, "c1", "Bob")
	mustAccount(t, s, "c2", "Cid")
	require.NoError(t, s.LinkAccount(ctx, "c1", "m"))
	require.NoError(t, s.LinkAccount(ctx, "c2", "m"))

	names, err := s.LinkedNames(ctx, "m", nil)
	require.NoError(t, err)
	assert.Equal(t, "Ann + Bob + Cid", names)

	names, err = s.LinkedNames(ctx, "m", []string{"m", "c2"})
	require.NoError(t, err)
	assert.Equal(t, "Ann + Cid", names)

	names, err = s.LinkedNames(ctx, "ghost", nil)
	require.NoError(t, err)
	assert.Equal(t, storage.UnknownName, names)
}

func testCreateTrip(t *testing.T, s storage.Store) {
	ctx := context.Background()
	trip := mustTrip(t, s, "100", "Thailand")

	assert.NotEmpty(t, trip.ID)
	assert.Len(t, trip.Code, 6)
	assert.Equal(t, models.DefaultCurrency, trip.Currency)
	assert.NotZero(t, trip.CreatedAt)

	got, err := s.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, "Thailand", got.Name)
	assert.Equal(t, trip.Code, got.Code)
	assert.Equal(t, "100", got.CreatorID)
	assert.Equal(t, []string{"100"}, got.Members)
	assert.True(t, got.Rate.IsZero())
	assert.Empty(t, got.Expenses)
	assert.Empty(t, got.Notes)

	_, err = s.GetTrip(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	trips, err := s.ListTripsForAccount(ctx, "100")
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, trip.ID, trips[0].ID)

	trips, err = s.ListTripsForAccount(ctx, "200")
	require.NoError(t, err)
	assert.Empty(t, trips)
}

func testTripCodes(t *testing.T, s storage.Store) {
	ctx := context.Background()
	trip := &models.Trip{Name: "Fixed", CreatorID: "1", Code: "abc123"}
	require.NoError(t, s.CreateTrip(ctx, trip))
	assert.Equal(t, "ABC123", trip.Code)

	id, err := s.GetTripIDByCode(ctx, " abc123")
	require.NoError(t, err)
	assert.Equal(t, trip.ID, id)

	_, err = s.GetTripIDByCode(ctx, "ZZZZZZ")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	dup := &models.Trip{Name: "Dup", CreatorID: "1", Code: "ABC123"}
	assert.ErrorIs(t, s.CreateTrip(ctx, dup), storage.ErrAlreadyExists)

	seen := map[string]bool{trip.Code: true}
	for range 20 {
		tr := mustTrip(t, s, "1", "Many")
		assert.False(t, seen[tr.Code], "duplicate code %s", tr.Code)
		seen[tr.Code] = true
	}
}

func testMembers(t *testing.T, s storage.Store) {
	ctx := context.Background()
	trip := mustTrip(t, s, "a", "Members")

	require.NoError(t, s.AddTripMember(ctx, trip.ID, "b"))
	require.NoError(t, s.AddTripMember(ctx, trip.ID, "c"))
	require.NoError(t, s.AddTripMember(ctx, trip.ID, "b"))

	got, err := s.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got.Members)

	assert.ErrorIs(t, s.AddTripMember(ctx, "missing", "b"), storage.ErrNotFound)

	trips, err := s.ListTripsForAccount(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, trips, 1)
}

func testTripSettings(t *testing.T, s storage.Store) {
	ctx := context.Background()
	trip := mustTrip(t, s, "a", "Settings")

	require.NoError(t, s.UpdateTripCurrency(ctx, trip.ID, "VND"))
	require.NoError(t, s.UpdateTripRate(ctx, trip.ID, dec("0.0036")))

	got, err := s.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, "VND", got.Currency)
	assert.True(t, got.Rate.Equal(dec("0.0036")), "rate %s", got.Rate)
	assert.True(t, got.HasRate())

	assert.ErrorIs(t, s.UpdateTripCurrency(ctx, "missing", "USD"), storage.ErrNotFound)
	assert.ErrorIs(t, s.UpdateTripRate(ctx, "missing", dec("1")), storage.ErrNotFound)
}

func testExpenses(t *testing.T, s storage.Store) {
	ctx := context.Background()
	trip := mustTrip(t, s, "a", "Expenses")
	require.NoError(t, s.AddTripMember(ctx, trip.ID, "b"))

	first := &models.Expense{
		TripID:      trip.ID,
		PayerID:     "a",
		Amount:      dec("100.10"),
		Description: "Dinner",
		Category:    models.CategoryFood,
		Split:       models.SplitMap{"a": dec("50.05"), "b": dec("50.05")},
		CreatedAt:   1000,
	}
	second := &models.Expense{
		TripID:      trip.ID,
		PayerID:     "b",
		Amount:      dec("20"),
		Description: "Payback",
		Category:    models.CategoryRepayment,
		Split:       models.SplitMap{"a": dec("20")},
		CreatedAt:   2000,
	}
	require.NoError(t, s.AddExpense(ctx, first))
	require.NoError(t, s.AddExpense(ctx, second))
	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := s.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, got.Expenses, 2)
	e := got.Expenses[0]
	assert.Equal(t, first.ID, e.ID)
	assert.Equal(t, "a", e.PayerID)
	assert.True(t, e.Amount.Equal(dec("100.10")), "amount %s", e.Amount)
	assert.Equal(t, "Dinner", e.Description)
	assert.Equal(t, models.CategoryFood, e.Category)
	assert.Equal(t, int64(1000), e.CreatedAt)
	require.Len(t, e.Split, 2)
	assert.True(t, e.Split["b"].Equal(dec("50.05")))
	assert.Equal(t, models.CategoryRepayment, got.Expenses[1].Category)

	listed, err := s.ListExpenses(ctx, trip.ID, 0)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID, "newest first")

	listed, err = s.ListExpenses(ctx, trip.ID, 1)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	_, err = s.ListExpenses(ctx, "missing", 0)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.DeleteExpense(ctx, trip.ID, first.ID))
	assert.ErrorIs(t, s.DeleteExpense(ctx, trip.ID, first.ID), storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteExpense(ctx, "other", second.ID), storage.ErrNotFound)

	got, err = s.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Len(t, got.Expenses, 1)
}

func testNotes(t *testing.T, s storage.Store) {
	ctx := context.Background()
	trip := mustTrip(t, s, "a", "Notes")

	note := &models.Note{TripID: trip.ID, AuthorName: "Ann", Text: "Hotel is prepaid"}
	require.NoError(t, s.AddNote(ctx, note))
	assert.NotZero(t, note.ID)
	assert.NotZero(t, note.CreatedAt)

	got, err := s.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "Ann", got.Notes[0].AuthorName)
	assert.Equal(t, "Hotel is prepaid", got.Notes[0].Text)
}

func testDrafts(t *testing.T, s storage.Store) {
	ctx := context.Background()
	trip := mustTrip(t, s, "a", "Drafts")

	draft := &models.Draft{
		ID:          "d1",
		TripID:      trip.ID,
		PayerID:     "a",
		Amount:      dec("45.50"),
		Description: "Taxi",
		Category:    models.CategoryOther,
		Selected:    map[string]bool{"a": true, "b": true},
		CreatedAt:   100,
	}
	require.NoError(t, s.SaveDraft(ctx, draft))

	draft.Category = models.CategoryTransport
	draft.Toggle("b")
	require.NoError(t, s.SaveDraft(ctx, draft))

	got, err := s.GetDraft(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryTransport, got.Category)
	assert.True(t, got.Amount.Equal(dec("45.50")))
	assert.Equal(t, []string{"a"}, got.SelectedIDs())
	assert.Equal(t, int64(100), got.CreatedAt)

	require.NoError(t, s.SaveDraft(ctx, &models.Draft{ID: "d2", TripID: trip.ID, PayerID: "a", Amount: dec("1"), CreatedAt: 500}))

	n, err := s.DeleteDraftsBefore(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.GetDraft(ctx, "d1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.DeleteDraft(ctx, "d2"))
	assert.ErrorIs(t, s.DeleteDraft(ctx, "d2"), storage.ErrNotFound)
}

func testDeleteTripCascades(t *testing.T, s storage.Store) {
	ctx := context.Background()
	trip := mustTrip(t, s, "a", "Doomed")
	require.NoError(t, s.AddTripMember(ctx, trip.ID, "b"))
	require.NoError(t, s.AddExpense(ctx, &models.Expense{
		TripID: trip.ID, PayerID: "a", Amount: dec("10"), Category: models.CategoryFood,
		Split: models.SplitMap{"a": dec("5"), "b": dec("5")},
	}))
	require.NoError(t, s.AddNote(ctx, &models.Note{TripID: trip.ID, AuthorName: "Ann", Text: "bye"}))
	require.NoError(t, s.SaveDraft(ctx, &models.Draft{ID: "dd", TripID: trip.ID, PayerID: "a", Amount: dec("3")}))

	require.NoError(t, s.DeleteTrip(ctx, trip.ID))

	_, err := s.GetTrip(ctx, trip.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetDraft(ctx, "dd")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	trips, err := s.ListTripsForAccount(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, trips)

	assert.ErrorIs(t, s.DeleteTrip(ctx, trip.ID), storage.ErrNotFound)
}
