package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/mmynk/splitopus/internal/models"
	"github.com/mmynk/splitopus/internal/storage"
)

const expenseColumns = "id, trip_id, payer_id, amount, description, category, split_json, created_at"

// AddExpense persists an expense and assigns its ID.
func (s *SQLiteStore) AddExpense(ctx context.Context, expense *models.Expense) error {
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	splitJSON, err := storage.EncodeSplit(expense.Split)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (trip_id, payer_id, amount, description, category, split_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.TripID, expense.PayerID, expense.Amount, expense.Description,
		string(expense.Category), splitJSON, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	expense.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read expense id: %w", err)
	}
	return nil
}

// DeleteExpense removes one expense of a trip.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, tripID string, expenseID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM expenses WHERE id = ? AND trip_id = ?",
		expenseID, tripID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return rowsAffected(res, "expense", strconv.FormatInt(expenseID, 10))
}

// ListExpenses returns expenses of a trip, newest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, tripID string, limit int) ([]models.Expense, error) {
	if err := s.tripExists(ctx, tripID); err != nil {
		return nil, err
	}

	// SQLite treats a negative LIMIT as unbounded
	if limit <= 0 {
		limit = -1
	}
	return queryExpenses(ctx, s.db,
		"SELECT "+expenseColumns+" FROM expenses WHERE trip_id = ? ORDER BY created_at DESC, id DESC LIMIT ?",
		tripID, limit,
	)
}

func queryExpenses(ctx context.Context, q querier, query string, args ...any) ([]models.Expense, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		var (
			e         models.Expense
			category  string
			splitJSON string
		)
		if err := rows.Scan(&e.ID, &e.TripID, &e.PayerID, &e.Amount, &e.Description,
			&category, &splitJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}

		e.Category = models.ParseCategory(category)
		split, ok := storage.DecodeSplit(splitJSON)
		if !ok {
			slog.Warn("Malformed expense split, treating as empty",
				"expense_id", e.ID,
				"trip_id", e.TripID,
			)
		}
		e.Split = split
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// AddNote persists a note and assigns its ID.
func (s *SQLiteStore) AddNote(ctx context.Context, note *models.Note) error {
	if note.CreatedAt == 0 {
		note.CreatedAt = time.Now().Unix()
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO notes (trip_id, author_name, text, created_at) VALUES (?, ?, ?, ?)",
		note.TripID, note.AuthorName, note.Text, note.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}

	note.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read note id: %w", err)
	}
	return nil
}
