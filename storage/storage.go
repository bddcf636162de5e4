// Package storage is the persistent key/value adapter behind the stores.
// Values are opaque JSON documents addressed by string keys.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	KeyNotes    = "notes"
	KeyFolders  = "folders"
	KeyDarkMode = "darkMode"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendBolt     = "bolt"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

var (
	ErrQuotaExceeded  = errors.New("storage quota exceeded")
	ErrUnknownBackend = errors.New("unknown storage backend")
	ErrClosed         = errors.New("storage closed")
)

type Store interface {
	// Get returns ok=false when key has never been written.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

type Options struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	DatabaseURL string `yaml:"database_url"`
	// QuotaBytes caps the total size of stored values for the memory and file
	// backends. Zero means unlimited.
	QuotaBytes int64 `yaml:"quota_bytes"`
}

func (o Options) Validate() error {
	switch o.Backend {
	case BackendMemory:
		return nil
	case BackendFile, BackendBolt, BackendSQLite:
		if o.Path == "" {
			return fmt.Errorf("%s backend requires a path", o.Backend)
		}
		return nil
	case BackendPostgres:
		if o.DatabaseURL == "" {
			return fmt.Errorf("postgres backend requires a database url")
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, o.Backend)
	}
}

// Open builds the backend named by opts. SQL backends are migrated first.
func Open(ctx context.Context, opts Options) (Store, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryStore(opts.QuotaBytes), nil
	case BackendFile:
		s, err := OpenFileStore(opts.Path, opts.QuotaBytes)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendBolt:
		s, err := OpenBoltStore(opts.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o700); err != nil {
			return nil, err
		}
		if err := Migrate(BackendSQLite, opts.Path); err != nil {
			return nil, err
		}
		s, err := OpenSQLiteStore(ctx, opts.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		if err := Migrate(BackendPostgres, opts.DatabaseURL); err != nil {
			return nil, err
		}
		s, err := OpenPostgresStore(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func checkQuota(quota, used, old, next int64) error {
	if quota <= 0 {
		return nil
	}
	if used-old+next > quota {
		return fmt.Errorf("%w: %d bytes would exceed %d", ErrQuotaExceeded, used-old+next, quota)
	}
	return nil
}
