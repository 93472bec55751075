// Package archive persists run artifacts to a flat keyed store. Backends
// share one interface so runs can land on local disk or an S3-compatible
// bucket without the caller knowing which.
package archive

import (
	"context"
	"fmt"

	"github.com/jadaunkg/horizon/internal/config"
	"github.com/jadaunkg/horizon/internal/core"
)

// Storage is a flat key/value artifact store
type Storage interface {
	// Write stores data at the given path, creating parents as needed
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths under the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data at the given path
	Delete(ctx context.Context, path string) error

	// Exists reports whether data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}

// Open constructs the backend named by the configuration
func Open(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "localfs":
		return NewLocal(cfg.Path)
	case "s3":
		return NewS3(cfg.S3)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown storage type: %s", cfg.Type))
	}
}
