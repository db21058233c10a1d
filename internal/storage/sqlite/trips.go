package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitopus/internal/models"
	"github.com/mmynk/splitopus/internal/storage"
)

// CreateTrip persists a new trip and makes its creator the first member.
func (s *SQLiteStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	// Generate IDs if not set
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if trip.CreatedAt == 0 {
		trip.CreatedAt = time.Now().Unix()
	}
	if trip.Currency == "" {
		trip.Currency = models.DefaultCurrency
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	code, err := uniqueTripCode(ctx, tx, trip.Code)
	if err != nil {
		return err
	}
	trip.Code = code

	_, err = tx.ExecContext(ctx,
		"INSERT INTO trips (id, code, name, currency, rate, creator_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		trip.ID, trip.Code, trip.Name, trip.Currency, trip.Rate, trip.CreatorID, trip.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO trip_members (trip_id, account_id) VALUES (?, ?)",
		trip.ID, trip.CreatorID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	trip.Members = []string{trip.CreatorID}
	return nil
}

// uniqueTripCode returns want if it is free, otherwise a fresh random code.
func uniqueTripCode(ctx context.Context, tx *sql.Tx, want string) (string, error) {
	code := storage.NormalizeTripCode(want)
	for range storage.MaxTripCodeAttempts {
		if code == "" {
			code = storage.NewTripCode()
		}
		var taken int
		err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM trips WHERE code = ?", code).Scan(&taken)
		if err != nil {
			return "", fmt.Errorf("failed to check trip code: %w", err)
		}
		if taken == 0 {
			return code, nil
		}
		if want != "" {
			return "", fmt.Errorf("trip code %s: %w", code, storage.ErrAlreadyExists)
		}
		code = ""
	}
	return "", fmt.Errorf("failed to generate a free trip code after %d attempts", storage.MaxTripCodeAttempts)
}

// GetTrip retrieves a trip by ID, including members, expenses and notes.
func (s *SQLiteStore) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	trip := &models.Trip{}
	err = tx.QueryRowContext(ctx,
		"SELECT id, code, name, currency, rate, creator_id, created_at FROM trips WHERE id = ?",
		tripID,
	).Scan(&trip.ID, &trip.Code, &trip.Name, &trip.Currency, &trip.Rate, &trip.CreatorID, &trip.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	// Get members in join order
	rows, err := tx.QueryContext(ctx,
		"SELECT account_id FROM trip_members WHERE trip_id = ? ORDER BY seq",
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get trip members: %w", err)
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan trip member: %w", err)
		}
		trip.Members = append(trip.Members, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trip members: %w", err)
	}

	trip.Expenses, err = queryExpenses(ctx, tx,
		"SELECT "+expenseColumns+" FROM expenses WHERE trip_id = ? ORDER BY id",
		tripID,
	)
	if err != nil {
		return nil, err
	}

	// Get notes
	noteRows, err := tx.QueryContext(ctx,
		"SELECT id, trip_id, author_name, text, created_at FROM notes WHERE trip_id = ? ORDER BY id",
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get notes: %w", err)
	}
	defer noteRows.Close()

	for noteRows.Next() {
		var n models.Note
		if err := noteRows.Scan(&n.ID, &n.TripID, &n.AuthorName, &n.Text, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		trip.Notes = append(trip.Notes, n)
	}
	if err := noteRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	return trip, nil
}

// GetTripIDByCode resolves a join code to a trip ID.
func (s *SQLiteStore) GetTripIDByCode(ctx context.Context, code string) (string, error) {
	code = storage.NormalizeTripCode(code)

	var id string
	err := s.db.QueryRowContext(ctx, "SELECT id FROM trips WHERE code = ?", code).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("trip code %s: %w", code, storage.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get trip by code: %w", err)
	}
	return id, nil
}

// AddTripMember adds an account to a trip. Existing members are left as is.
func (s *SQLiteStore) AddTripMember(ctx context.Context, tripID, accountID string) error {
	if err := s.tripExists(ctx, tripID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO trip_members (trip_id, account_id) VALUES (?, ?) ON CONFLICT(trip_id, account_id) DO NOTHING",
		tripID, accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to add trip member: %w", err)
	}
	return nil
}

func (s *SQLiteStore) tripExists(ctx context.Context, tripID string) error {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trips WHERE id = ?", tripID).Scan(&n); err != nil {
		return fmt.Errorf("failed to check trip: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
	}
	return nil
}

// ListTripsForAccount returns the trips an account belongs to, newest first.
func (s *SQLiteStore) ListTripsForAccount(ctx context.Context, accountID string) ([]models.TripSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.code, t.currency, t.created_at
		FROM trips t
		JOIN trip_members tm ON t.id = tm.trip_id
		WHERE tm.account_id = ?
		ORDER BY t.created_at DESC, tm.seq DESC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	trips := []models.TripSummary{}
	for rows.Next() {
		var t models.TripSummary
		if err := rows.Scan(&t.ID, &t.Name, &t.Code, &t.Currency, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trips: %w", err)
	}
	return trips, nil
}

// UpdateTripCurrency sets the display currency of a trip.
func (s *SQLiteStore) UpdateTripCurrency(ctx context.Context, tripID, currency string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE trips SET currency = ? WHERE id = ?", currency, tripID)
	if err != nil {
		return fmt.Errorf("failed to update trip currency: %w", err)
	}
	return rowsAffected(res, "trip", tripID)
}

// UpdateTripRate sets the display conversion rate of a trip.
func (s *SQLiteStore) UpdateTripRate(ctx context.Context, tripID string, rate decimal.Decimal) error {
	res, err := s.db.ExecContext(ctx, "UPDATE trips SET rate = ? WHERE id = ?", rate, tripID)
	if err != nil {
		return fmt.Errorf("failed to update trip rate: %w", err)
	}
	return rowsAffected(res, "trip", tripID)
}

// DeleteTrip deletes a trip. Members, expenses, notes and drafts cascade.
func (s *SQLiteStore) DeleteTrip(ctx context.Context, tripID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trips WHERE id = ?", tripID)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	return rowsAffected(res, "trip", tripID)
}
