package store

import (
	"errors"
	"fmt"

	"productcatalog/service"
)

// ErrDuplicate is returned when inserting a record whose id is already stored.
var ErrDuplicate = errors.New("duplicate id")

// Backend is a storage collaborator for every aggregate.
type Backend interface {
	service.Backend
	Close() error
}

// NewStore constructs a Backend by kind: "memory", "file", "sqlite" or "postgres".
// location is the file path for file and sqlite stores, the DSN for postgres, and
// ignored for memory.
func NewStore(kind, location string) (Backend, error) {
	switch kind {
	case "memory", "mem":
		return NewInMemoryStore(), nil
	case "file":
		if location == "" {
			return nil, fmt.Errorf("file path required for file store")
		}
		return NewFileStore(location)
	case "sqlite":
		if location == "" {
			return nil, fmt.Errorf("database path required for sqlite store")
		}
		return OpenSQLite(location)
	case "postgres", "pg":
		if location == "" {
			return nil, fmt.Errorf("dsn required for postgres store")
		}
		return OpenPostgres(location)
	default:
		return nil, fmt.Errorf("unknown store kind: %s", kind)
	}
}
