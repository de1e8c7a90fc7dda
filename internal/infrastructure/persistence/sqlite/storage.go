// Package sqlite persists session storage items in a sqlite table.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/pkg/database"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the session storage schema
func Migrate(ctx context.Context, db *database.DB, logger *zap.Logger) error {
	return database.NewMigrator(db, logger).Run(ctx, migrations, "migrations")
}

var _ port.Storage = (*Storage)(nil)

// Storage is a port.Storage backed by the session_items table
type Storage struct {
	db     *database.DB
	logger *zap.Logger
}

// NewStorage creates a storage on a migrated database
func NewStorage(db *database.DB, logger *zap.Logger) *Storage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Storage{db: db, logger: logger}
}

// GetItem returns the stored value. Query errors are logged and read as absent.
func (s *Storage) GetItem(key string) (string, bool) {
	var value string
	err := s.db.QueryRowContext(context.Background(),
		"SELECT value FROM session_items WHERE key = ?", key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		s.logger.Error("Failed to read session item", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return value, true
}

func (s *Storage) SetItem(key, value string) error {
	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO session_items (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set session item %s: %w", key, err)
	}
	return nil
}

func (s *Storage) RemoveItem(key string) error {
	if _, err := s.db.ExecContext(context.Background(), "DELETE FROM session_items WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to remove session item %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Clear() error {
	return s.db.WithTransaction(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM session_items"); err != nil {
			return fmt.Errorf("failed to clear session items: %w", err)
		}
		return nil
	})
}
