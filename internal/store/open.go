package store

import (
	"context"
	"fmt"
	"log/slog"
)

// Drivers accepted by Open.
const (
	DriverSQLite  = "sqlite"
	DriverSurreal = "surreal"
	DriverMemory  = "memory"
)

// Options selects and configures a store backend.
type Options struct {
	Driver  string
	Path    string // sqlite
	Surreal SurrealConfig
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (Store, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		return OpenSQLite(ctx, opts.Path)
	case DriverSurreal:
		return OpenSurreal(ctx, opts.Surreal, logger)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
