package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitopus/internal/models"
	"github.com/mmynk/splitopus/internal/storage"
)

func (s *PostgresStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if trip.CreatedAt == 0 {
		trip.CreatedAt = time.Now().Unix()
	}
	if trip.Currency == "" {
		trip.Currency = models.DefaultCurrency
	}

	want := storage.NormalizeTripCode(trip.Code)
	for attempt := 0; attempt < storage.MaxTripCodeAttempts; attempt++ {
		code := want
		if code == "" {
			code = storage.NewTripCode()
		}

		err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, `
				INSERT INTO trips (id, code, name, currency, rate, creator_id, created_at)
				VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)`,
				trip.ID, code, trip.Name, trip.Currency, trip.Rate.String(), trip.CreatorID, trip.CreatedAt,
			)
			if err != nil {
				return err
			}
			_, err = tx.Exec(ctx,
				"INSERT INTO trip_members (trip_id, account_id) VALUES ($1, $2)",
				trip.ID, trip.CreatorID,
			)
			return err
		})
		switch {
		case err == nil:
			trip.Code = code
			trip.Members = []string{trip.CreatorID}
			return nil
		case isUniqueViolation(err) && want != "":
			return fmt.Errorf("trip code %s: %w", code, storage.ErrAlreadyExists)
		case isUniqueViolation(err):
			continue
		default:
			return fmt.Errorf("failed to insert trip: %w", err)
		}
	}
	return fmt.Errorf("failed to generate a free trip code after %d attempts", storage.MaxTripCodeAttempts)
}

// GetTrip reads the trip inside one repeatable-read transaction.
func (s *PostgresStore) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	var trip *models.Trip
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

	err := pgx.BeginTxFunc(ctx, s.pool, opts, func(tx pgx.Tx) error {
		t := &models.Trip{}
		var rate string
		err := tx.QueryRow(ctx,
			"SELECT id, code, name, currency, rate::text, creator_id, created_at FROM trips WHERE id = $1",
			tripID,
		).Scan(&t.ID, &t.Code, &t.Name, &t.Currency, &rate, &t.CreatorID, &t.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get trip: %w", err)
		}
		if t.Rate, err = parseDecimal(rate); err != nil {
			return err
		}

		rows, err := tx.Query(ctx,
			"SELECT account_id FROM trip_members WHERE trip_id = $1 ORDER BY seq", tripID)
		if err != nil {
			return fmt.Errorf("failed to get trip members: %w", err)
		}
		t.Members, err = pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return fmt.Errorf("failed to scan trip members: %w", err)
		}

		t.Expenses, err = queryExpenses(ctx, tx,
			"SELECT "+expenseColumns+" FROM expenses WHERE trip_id = $1 ORDER BY id", tripID)
		if err != nil {
			return err
		}

		noteRows, err := tx.Query(ctx,
			"SELECT id, trip_id, author_name, text, created_at FROM notes WHERE trip_id = $1 ORDER BY id", tripID)
		if err != nil {
			return fmt.Errorf("failed to get notes: %w", err)
		}
		t.Notes, err = pgx.CollectRows(noteRows, func(row pgx.CollectableRow) (models.Note, error) {
			var n models.Note
			err := row.Scan(&n.ID, &n.TripID, &n.AuthorName, &n.Text, &n.CreatedAt)
			return n, err
		})
		if err != nil {
			return fmt.Errorf("failed to scan notes: %w", err)
		}

		trip = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trip, nil
}

func (s *PostgresStore) GetTripIDByCode(ctx context.Context, code string) (string, error) {
	code = storage.NormalizeTripCode(code)

	var id string
	err := s.pool.QueryRow(ctx, "SELECT id FROM trips WHERE code = $1", code).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("trip code %s: %w", code, storage.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get trip by code: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) AddTripMember(ctx context.Context, tripID, accountID string) error {
	if err := s.tripExists(ctx, tripID); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx,
		"INSERT INTO trip_members (trip_id, account_id) VALUES ($1, $2) ON CONFLICT (trip_id, account_id) DO NOTHING",
		tripID, accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to add trip member: %w", err)
	}
	return nil
}

func (s *PostgresStore) tripExists(ctx context.Context, tripID string) error {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM trips WHERE id = $1)", tripID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check trip: %w", err)
	}
	if !exists {
		return fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) ListTripsForAccount(ctx context.Context, accountID string) ([]models.TripSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT t.id, t.name, t.code, t.currency, t.created_at
		FROM trips t
		JOIN trip_members tm ON t.id = tm.trip_id
		WHERE tm.account_id = $1
		ORDER BY t.created_at DESC, tm.seq DESC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}

	trips, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.TripSummary, error) {
		var t models.TripSummary
		err := row.Scan(&t.ID, &t.Name, &t.Code, &t.Currency, &t.CreatedAt)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan trips: %w", err)
	}
	return trips, nil
}

func (s *PostgresStore) UpdateTripCurrency(ctx context.Context, tripID, currency string) error {
	tag, err := s.pool.Exec(ctx, "UPDATE trips SET currency = $1 WHERE id = $2", currency, tripID)
	if err != nil {
		return fmt.Errorf("failed to update trip currency: %w", err)
	}
	return affected(tag, "trip", tripID)
}

func (s *PostgresStore) UpdateTripRate(ctx context.Context, tripID string, rate decimal.Decimal) error {
	tag, err := s.pool.Exec(ctx, "UPDATE trips SET rate = $1::numeric WHERE id = $2", rate.String(), tripID)
	if err != nil {
		return fmt.Errorf("failed to update trip rate: %w", err)
	}
	return affected(tag, "trip", tripID)
}

func (s *PostgresStore) DeleteTrip(ctx context.Context, tripID string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM trips WHERE id = $1", tripID)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	return affected(tag, "trip", tripID)
}
