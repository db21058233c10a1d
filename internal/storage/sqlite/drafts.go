package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/splitopus/internal/models"
	"github.com/mmynk/splitopus/internal/storage"
)

// SaveDraft inserts or replaces a draft.
func (s *SQLiteStore) SaveDraft(ctx context.Context, draft *models.Draft) error {
	if draft.CreatedAt == 0 {
		draft.CreatedAt = time.Now().Unix()
	}

	selected, err := storage.EncodeSelected(draft.Selected)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO drafts (id, trip_id, payer_id, amount, description, category, selected_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			amount = excluded.amount,
			description = excluded.description,
			category = excluded.category,
			selected_json = excluded.selected_json`,
		draft.ID, draft.TripID, draft.PayerID, draft.Amount, draft.Description,
		string(draft.Category), selected, draft.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// GetDraft retrieves a draft by ID.
func (s *SQLiteStore) GetDraft(ctx context.Context, draftID string) (*models.Draft, error) {
	draft := &models.Draft{}
	var category, selected string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, trip_id, payer_id, amount, description, category, selected_json, created_at
		FROM drafts WHERE id = ?`,
		draftID,
	).Scan(&draft.ID, &draft.TripID, &draft.PayerID, &draft.Amount, &draft.Description,
		&category, &selected, &draft.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("draft %s: %w", draftID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	draft.Category = models.ParseCategory(category)
	draft.Selected, err = storage.DecodeSelected(selected)
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// DeleteDraft removes a draft.
func (s *SQLiteStore) DeleteDraft(ctx context.Context, draftID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM drafts WHERE id = ?", draftID)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return rowsAffected(res, "draft", draftID)
}

// DeleteDraftsBefore removes drafts created before cutoff.
func (s *SQLiteStore) DeleteDraftsBefore(ctx context.Context, cutoff int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM drafts WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired drafts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}
