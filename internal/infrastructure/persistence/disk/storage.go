// Package disk persists session storage items as files with diskv.
package disk

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/peterbourgon/diskv/v3"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
)

var _ port.Storage = (*Storage)(nil)

// Storage is a port.Storage keeping one file per key under a base directory
type Storage struct {
	d      *diskv.Diskv
	logger *zap.Logger
}

// New creates a storage rooted at basePath
func New(basePath string, logger *zap.Logger) (*Storage, error) {
	if basePath == "" {
		return nil, errors.New("storage path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Storage{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			Transform:    func(string) []string { return []string{} },
			CacheSizeMax: 64 * 1024,
		}),
		logger: logger,
	}, nil
}

// GetItem returns the stored value. Read errors other than a missing key are logged.
func (s *Storage) GetItem(key string) (string, bool) {
	val, err := s.d.Read(key)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("Failed to read session item", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return string(val), true
}

func (s *Storage) SetItem(key, value string) error {
	if err := s.d.Write(key, []byte(value)); err != nil {
		return fmt.Errorf("failed to set session item %s: %w", key, err)
	}
	return nil
}

func (s *Storage) RemoveItem(key string) error {
	if !s.d.Has(key) {
		return nil
	}
	if err := s.d.Erase(key); err != nil {
		return fmt.Errorf("failed to remove session item %s: %w", key, err)
	}
	return nil
}

// Clear erases every key. The base directory is recreated.
func (s *Storage) Clear() error {
	if err := s.d.EraseAll(); err != nil {
		return fmt.Errorf("failed to clear session items: %w", err)
	}
	if err := os.MkdirAll(s.d.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to recreate storage directory: %w", err)
	}
	return nil
}
