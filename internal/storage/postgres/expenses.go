package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/mmynk/splitopus/internal/models"
	"github.com/mmynk/splitopus/internal/storage"
)

const expenseColumns = "id, trip_id, payer_id, amount::text, description, category, split_json, created_at"

func (s *PostgresStore) AddExpense(ctx context.Context, expense *models.Expense) error {
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	splitJSON, err := storage.EncodeSplit(expense.Split)
	if err != nil {
		return err
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO expenses (trip_id, payer_id, amount, description, category, split_json, created_at)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7)
		RETURNING id`,
		expense.TripID, expense.PayerID, expense.Amount.String(), expense.Description,
		string(expense.Category), splitJSON, expense.CreatedAt,
	).Scan(&expense.ID)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteExpense(ctx context.Context, tripID string, expenseID int64) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM expenses WHERE id = $1 AND trip_id = $2", expenseID, tripID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return affected(tag, "expense", strconv.FormatInt(expenseID, 10))
}

func (s *PostgresStore) ListExpenses(ctx context.Context, tripID string, limit int) ([]models.Expense, error) {
	if err := s.tripExists(ctx, tripID); err != nil {
		return nil, err
	}

	// LIMIT NULL is unbounded
	var lim *int64
	if limit > 0 {
		l := int64(limit)
		lim = &l
	}
	return queryExpenses(ctx, s.pool,
		"SELECT "+expenseColumns+" FROM expenses WHERE trip_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2",
		tripID, lim,
	)
}

func queryExpenses(ctx context.Context, q querier, query string, args ...any) ([]models.Expense, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		var (
			e         models.Expense
			amount    string
			category  string
			splitJSON string
		)
		if err := rows.Scan(&e.ID, &e.TripID, &e.PayerID, &amount, &e.Description,
			&category, &splitJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if e.Amount, err = parseDecimal(amount); err != nil {
			return nil, err
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

func (s *PostgresStore) AddNote(ctx context.Context, note *models.Note) error {
	if note.CreatedAt == 0 {
		note.CreatedAt = time.Now().Unix()
	}

	err := s.pool.QueryRow(ctx,
		"INSERT INTO notes (trip_id, author_name, text, created_at) VALUES ($1, $2, $3, $4) RETURNING id",
		note.TripID, note.AuthorName, note.Text, note.CreatedAt,
	).Scan(&note.ID)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}
