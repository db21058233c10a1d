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

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *PostgresStore) UpsertAccount(ctx context.Context, account *models.Account) error {
	if account.CreatedAt == 0 {
		account.CreatedAt = time.Now().Unix()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (id, name, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
		account.ID, account.Name, account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	return getAccount(ctx, s.pool, accountID)
}

func getAccount(ctx context.Context, q querier, accountID string) (*models.Account, error) {
	account := &models.Account{}
	var linkedTo *string

	err := q.QueryRow(ctx,
		"SELECT id, name, linked_to, created_at FROM accounts WHERE id = $1",
		accountID,
	).Scan(&account.ID, &account.Name, &linkedTo, &account.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", accountID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if linkedTo != nil {
		account.LinkedTo = *linkedTo
	}
	return account, nil
}

func (s *PostgresStore) LinkAccount(ctx context.Context, childID, masterID string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		// Lock both rows so concurrent links cannot nest households
		if _, err := tx.Exec(ctx,
			"SELECT 1 FROM accounts WHERE id IN ($1, $2) FOR UPDATE", childID, masterID,
		); err != nil {
			return fmt.Errorf("failed to lock accounts: %w", err)
		}
		child, err := getAccount(ctx, tx, childID)
		if err != nil {
			return err
		}
		master, err := getAccount(ctx, tx, masterID)
		if err != nil {
			return err
		}

		var hasLinks bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM accounts WHERE linked_to = $1)", childID,
		).Scan(&hasLinks); err != nil {
			return fmt.Errorf("failed to count linked accounts: %w", err)
		}

		if err := storage.ValidateLink(child, master, hasLinks); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			"UPDATE accounts SET linked_to = $1 WHERE id = $2", masterID, childID,
		); err != nil {
			return fmt.Errorf("failed to link account: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) ListLinked(ctx context.Context, masterID string) ([]models.Account, error) {
	return listLinked(ctx, s.pool, masterID)
}

func listLinked(ctx context.Context, q querier, masterID string) ([]models.Account, error) {
	rows, err := q.Query(ctx,
		"SELECT id, name, created_at FROM accounts WHERE linked_to = $1 ORDER BY created_at, id",
		masterID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list linked accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a := models.Account{LinkedTo: masterID}
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

func (s *PostgresStore) LinkMap(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, linked_to FROM accounts WHERE linked_to IS NOT NULL AND linked_to <> ''",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get link relations: %w", err)
	}
	defer rows.Close()

	links := make(map[string]string)
	for rows.Next() {
		var child, master string
		if err := rows.Scan(&child, &master); err != nil {
			return nil, fmt.Errorf("failed to scan link relation: %w", err)
		}
		links[child] = master
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating link relations: %w", err)
	}
	return links, nil
}

func (s *PostgresStore) LinkedNames(ctx context.Context, masterID string, filter []string) (string, error) {
	masterName := storage.UnknownName
	master, err := getAccount(ctx, s.pool, masterID)
	switch {
	case err == nil:
		masterName = master.Name
	case !errors.Is(err, storage.ErrNotFound):
		return "", err
	}

	linked, err := listLinked(ctx, s.pool, masterID)
	if err != nil {
		return "", err
	}
	return storage.FormatLinkedNames(masterName, linked, filter), nil
}
