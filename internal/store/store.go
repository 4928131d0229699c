package store

import (
	"context"
	"fmt"

	"github.com/roach88/donorlog/internal/donation"
)

// Kind names a storage backend.
type Kind string

const (
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
)

// ValidKinds lists the accepted backend names.
var ValidKinds = []Kind{KindFile, KindSQLite}

// Backend loads and rewrites the complete record set.
type Backend interface {
	// LoadAll returns every stored record in stored order.
	LoadAll(ctx context.Context) ([]donation.Record, error)

	// SaveAll replaces the stored set with records, in the given order.
	SaveAll(ctx context.Context, records []donation.Record) error

	// Init prepares empty storage if none exists. Existing records are kept.
	Init(ctx context.Context) error

	// Path returns the storage location.
	Path() string

	// Close releases any handle held by the backend.
	Close() error
}

// Open returns the backend of the given kind rooted at path.
func Open(kind Kind, path string) (Backend, error) {
	if path == "" {
		return nil, fmt.Errorf("open store: empty path")
	}
	switch kind {
	case KindFile, "":
		return NewFileStore(path), nil
	case KindSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("open store: unknown backend %q (want one of %v)", kind, ValidKinds)
	}
}

// ParseKind validates a backend name.
func ParseKind(s string) (Kind, error) {
	for _, k := range ValidKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown backend %q (want one of %v)", s, ValidKinds)
}

// checkContext returns ctx.Err() if ctx is already done.
func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
