// Package jsonfile stores each ledger as one indented JSON file per key.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/event"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/storage"
)

// Store persists ledgers as <dir>/<key>.json.
type Store struct {
	dir   string
	codec event.Codec
}

// Open prepares dir for ledger files, creating it when missing.
func Open(dir string, codec event.Codec) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("data dir is required")
	}
	cleanDir := filepath.Clean(dir)
	if err := os.MkdirAll(cleanDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: cleanDir, codec: codec}, nil
}

// Dir returns the directory holding ledger files.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key string) (string, error) {
	if err := storage.ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// LoadLedger reads and decodes the ledger for key.
func (s *Store) LoadLedger(ctx context.Context, key string) (event.Ledger, error) {
	data, err := s.read(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return event.Ledger{}, nil
	}
	if err != nil {
		return nil, err
	}
	ledger, err := s.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode ledger %s: %w", key, err)
	}
	return ledger, nil
}

// SaveLedger writes the ledger to a temporary file and renames it over the
// previous one.
func (s *Store) SaveLedger(ctx context.Context, key string, ledger event.Ledger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("storage is not configured")
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}
	data, err := s.codec.Encode(ledger)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write ledger %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync ledger %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close ledger %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace ledger %s: %w", key, err)
	}
	return nil
}

// DumpLedger returns the file contents exactly as stored.
func (s *Store) DumpLedger(ctx context.Context, key string) ([]byte, error) {
	return s.read(ctx, key)
}

func (s *Store) read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("read ledger %s: %w", key, err)
	}
	return data, nil
}

var _ storage.LedgerStore = (*Store)(nil)
