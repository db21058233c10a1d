// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitopus/internal/models"
)

// Store defines the ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
//
// Lookups of missing records return ErrNotFound.
type Store interface {
	// UpsertAccount inserts the account or refreshes its display name.
	// An existing link is left untouched.
	UpsertAccount(ctx context.Context, account *models.Account) error

	// GetAccount retrieves an account by its ID.
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)

	// LinkAccount makes masterID the master of childID.
	// Returns ErrInvalidLink if the link would break the depth-1 forest.
	LinkAccount(ctx context.Context, childID, masterID string) error

	// ListLinked returns the accounts linked to masterID, oldest first.
	ListLinked(ctx context.Context, masterID string) ([]models.Account, error)

	// LinkMap returns every link relation as child ID -> master ID.
	LinkMap(ctx context.Context) (map[string]string, error)

	// LinkedNames returns the display name of a household, e.g. "Ann + Bob".
	// Linked accounts are only named when their ID is in filter; a nil
	// filter names all of them.
	LinkedNames(ctx context.Context, masterID string, filter []string) (string, error)

	// CreateTrip persists a new trip and adds its creator as first member.
	// ID, Code, Currency and CreatedAt are populated by the store when empty.
	CreateTrip(ctx context.Context, trip *models.Trip) error

	// GetTrip retrieves a trip with its members, expenses and notes,
	// read as one consistent snapshot.
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)

	// GetTripIDByCode resolves a join code to a trip ID.
	GetTripIDByCode(ctx context.Context, code string) (string, error)

	// AddTripMember adds accountID to the trip. Adding a member twice is a no-op.
	AddTripMember(ctx context.Context, tripID, accountID string) error

	// ListTripsForAccount returns the trips accountID is a member of, newest first.
	ListTripsForAccount(ctx context.Context, accountID string) ([]models.TripSummary, error)

	UpdateTripCurrency(ctx context.Context, tripID, currency string) error
	UpdateTripRate(ctx context.Context, tripID string, rate decimal.Decimal) error

	// DeleteTrip removes a trip with its members, expenses, notes and drafts.
	DeleteTrip(ctx context.Context, tripID string) error

	// AddExpense persists an expense. ID and CreatedAt are populated by the store.
	AddExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes one expense of a trip.
	DeleteExpense(ctx context.Context, tripID string, expenseID int64) error

	// ListExpenses returns up to limit expenses of a trip, newest first.
	// A limit <= 0 returns all of them.
	ListExpenses(ctx context.Context, tripID string, limit int) ([]models.Expense, error)

	// AddNote persists a note. ID and CreatedAt are populated by the store.
	AddNote(ctx context.Context, note *models.Note) error

	// SaveDraft inserts or replaces a draft.
	SaveDraft(ctx context.Context, draft *models.Draft) error

	GetDraft(ctx context.Context, draftID string) (*models.Draft, error)
	DeleteDraft(ctx context.Context, draftID string) error

	// DeleteDraftsBefore removes drafts created before cutoff (Unix seconds)
	// and returns how many were removed.
	DeleteDraftsBefore(ctx context.Context, cutoff int64) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
