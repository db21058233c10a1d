package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mmynk/splitopus/internal/models"
	"github.com/mmynk/splitopus/internal/storage"
)

func (s *PostgresStore) SaveDraft(ctx context.Context, draft *models.Draft) error {
	if draft.CreatedAt == 0 {
		draft.CreatedAt = time.Now().Unix()
	}

	selected, err := storage.EncodeSelected(draft.Selected)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO drafts (id, trip_id, payer_id, amount, description, category, selected_json, created_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			amount = EXCLUDED.amount,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			selected_json = EXCLUDED.selected_json`,
		draft.ID, draft.TripID, draft.PayerID, draft.Amount.String(), draft.Description,
		string(draft.Category), selected, draft.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetDraft(ctx context.Context, draftID string) (*models.Draft, error) {
	draft := &models.Draft{}
	var amount, category, selected string

	err := s.pool.QueryRow(ctx, `
		SELECT id, trip_id, payer_id, amount::text, description, category, selected_json, created_at
		FROM drafts WHERE id = $1`,
		draftID,
	).Scan(&draft.ID, &draft.TripID, &draft.PayerID, &amount, &draft.Description,
		&category, &selected, &draft.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("draft %s: %w", draftID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	if draft.Amount, err = parseDecimal(amount); err != nil {
		return nil, err
	}
	draft.Category = models.ParseCategory(category)
	draft.Selected, err = storage.DecodeSelected(selected)
	if err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *PostgresStore) DeleteDraft(ctx context.Context, draftID string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM drafts WHERE id = $1", draftID)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return affected(tag, "draft", draftID)
}

func (s *PostgresStore) DeleteDraftsBefore(ctx context.Context, cutoff int64) (int64, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM drafts WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired drafts: %w", err)
	}
	return tag.RowsAffected(), nil
}
