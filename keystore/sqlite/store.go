// Package sqlite provides the SQLite-backed wallet keystore.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/interverse/verse-go/internal/platform/storage/sqlitemigrate"
	"github.com/interverse/verse-go/keystore"
	"github.com/interverse/verse-go/keystore/sqlite/migrations"
)

// Store persists wallets in one SQLite database file.
type Store struct {
	sqlDB *sql.DB
	clock func() time.Time
	newID func() string
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a wallet keystore at the provided path, creating the schema on
// first use.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("keystore path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{
		sqlDB: sqlDB,
		clock: time.Now,
		newID: func() string { return ulid.Make().String() },
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Put inserts the wallet or replaces the record sharing its address. The
// original row id and creation time survive replacement.
func (s *Store) Put(ctx context.Context, wallet keystore.StoredWallet) (keystore.StoredWallet, error) {
	if err := ctx.Err(); err != nil {
		return keystore.StoredWallet{}, err
	}
	if s == nil || s.sqlDB == nil {
		return keystore.StoredWallet{}, fmt.Errorf("keystore is not configured")
	}
	wallet.Address = strings.TrimSpace(wallet.Address)
	if wallet.Address == "" {
		return keystore.StoredWallet{}, fmt.Errorf("wallet address is required")
	}

	now := s.clock().UTC()
	existing, err := s.Get(ctx, wallet.Address)
	switch {
	case err == nil:
		wallet.ID = existing.ID
		wallet.CreatedAt = existing.CreatedAt
	case errors.Is(err, keystore.ErrNotFound):
		wallet.ID = s.newID()
		wallet.CreatedAt = now
	default:
		return keystore.StoredWallet{}, err
	}
	wallet.UpdatedAt = now

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO wallets (id, address, label, balance, public_key, sealed_key, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(address) DO UPDATE SET
    label = excluded.label,
    balance = excluded.balance,
    public_key = excluded.public_key,
    sealed_key = excluded.sealed_key,
    updated_at = excluded.updated_at
`,
		wallet.ID,
		wallet.Address,
		wallet.Label,
		wallet.Balance,
		wallet.PublicKey,
		wallet.SealedKey,
		toMillis(wallet.CreatedAt),
		toMillis(wallet.UpdatedAt),
	)
	if err != nil {
		return keystore.StoredWallet{}, fmt.Errorf("put wallet %s: %w", wallet.Address, err)
	}
	return wallet, nil
}

// Get loads one wallet by address.
func (s *Store) Get(ctx context.Context, address string) (keystore.StoredWallet, error) {
	if err := ctx.Err(); err != nil {
		return keystore.StoredWallet{}, err
	}
	if s == nil || s.sqlDB == nil {
		return keystore.StoredWallet{}, fmt.Errorf("keystore is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, address, label, balance, public_key, sealed_key, created_at, updated_at
FROM wallets WHERE address = ?
`, strings.TrimSpace(address))
	return scanWallet(row)
}

// List returns every stored wallet, oldest first.
func (s *Store) List(ctx context.Context) ([]keystore.StoredWallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("keystore is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, address, label, balance, public_key, sealed_key, created_at, updated_at
FROM wallets ORDER BY created_at ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []keystore.StoredWallet
	for rows.Next() {
		wallet, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, wallet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallets: %w", err)
	}
	return wallets, nil
}

// UpdateBalance records the last balance the ledger reported for the
// address.
func (s *Store) UpdateBalance(ctx context.Context, address string, balance float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("keystore is not configured")
	}

	result, err := s.sqlDB.ExecContext(ctx,
		"UPDATE wallets SET balance = ?, updated_at = ? WHERE address = ?",
		balance, toMillis(s.clock()), strings.TrimSpace(address),
	)
	if err != nil {
		return fmt.Errorf("update wallet balance %s: %w", address, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update wallet balance %s: %w", address, err)
	}
	if affected == 0 {
		return keystore.ErrNotFound
	}
	return nil
}

// Delete removes one wallet by address.
func (s *Store) Delete(ctx context.Context, address string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("keystore is not configured")
	}

	result, err := s.sqlDB.ExecContext(ctx, "DELETE FROM wallets WHERE address = ?", strings.TrimSpace(address))
	if err != nil {
		return fmt.Errorf("delete wallet %s: %w", address, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete wallet %s: %w", address, err)
	}
	if affected == 0 {
		return keystore.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWallet(row rowScanner) (keystore.StoredWallet, error) {
	var (
		wallet    keystore.StoredWallet
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&wallet.ID,
		&wallet.Address,
		&wallet.Label,
		&wallet.Balance,
		&wallet.PublicKey,
		&wallet.SealedKey,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return keystore.StoredWallet{}, keystore.ErrNotFound
		}
		return keystore.StoredWallet{}, fmt.Errorf("scan wallet row: %w", err)
	}
	wallet.CreatedAt = fromMillis(createdAt)
	wallet.UpdatedAt = fromMillis(updatedAt)
	return wallet, nil
}
