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

// UpsertAccount inserts the account or updates its display name.
func (s *SQLiteStore) UpsertAccount(ctx context.Context, account *models.Account) error {
	if account.CreatedAt == 0 {
		account.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		account.ID, account.Name, account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}
	return nil
}

// GetAccount retrieves an account by its ID.
func (s *SQLiteStore) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	return getAccount(ctx, s.db, accountID)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func getAccount(ctx context.Context, q querier, accountID string) (*models.Account, error) {
	account := &models.Account{}
	var linkedTo sql.NullString

	err := q.QueryRowContext(ctx,
		"SELECT id, name, linked_to, created_at FROM accounts WHERE id = ?",
		accountID,
	).Scan(&account.ID, &account.Name, &linkedTo, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", accountID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	account.LinkedTo = linkedTo.String
	return account, nil
}

// LinkAccount makes masterID the master of childID.
func (s *SQLiteStore) LinkAccount(ctx context.Context, childID, masterID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	child, err := getAccount(ctx, tx, childID)
	if err != nil {
		return err
	}
	master, err := getAccount(ctx, tx, masterID)
	if err != nil {
		return err
	}

	var linkedCount int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM accounts WHERE linked_to = ?", childID,
	).Scan(&linkedCount); err != nil {
		return fmt.Errorf("failed to count linked accounts: %w", err)
	}

	if err := storage.ValidateLink(child, master, linkedCount > 0); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE accounts SET linked_to = ? WHERE id = ?", masterID, childID,
	); err != nil {
		return fmt.Errorf("failed to link account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListLinked returns the accounts linked to masterID.
func (s *SQLiteStore) ListLinked(ctx context.Context, masterID string) ([]models.Account, error) {
	return listLinked(ctx, s.db, masterID)
}

func listLinked(ctx context.Context, q querier, masterID string) ([]models.Account, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, name, created_at FROM accounts WHERE linked_to = ? ORDER BY created_at, id",
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

// LinkMap returns every link relation as child ID -> master ID.
func (s *SQLiteStore) LinkMap(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, linked_to FROM accounts WHERE linked_to IS NOT NULL AND linked_to != ''",
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

// LinkedNames returns "Master + Child" for the household of masterID.
func (s *SQLiteStore) LinkedNames(ctx context.Context, masterID string, filter []string) (string, error) {
	masterName := storage.UnknownName
	master, err := getAccount(ctx, s.db, masterID)
	switch {
	case err == nil:
		masterName = master.Name
	case !errors.Is(err, storage.ErrNotFound):
		return "", err
	}

	linked, err := listLinked(ctx, s.db, masterID)
	if err != nil {
		return "", err
	}
	return storage.FormatLinkedNames(masterName, linked, filter), nil
}
