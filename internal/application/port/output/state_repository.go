package output

import (
	"context"
	"errors"
)

// ErrStateNotFound is returned by StateRepository.Load when no record exists under the name
var ErrStateNotFound = errors.New("state record not found")

// StateRepository persists the wizard record as one named, opaque blob.
// Encoding and validation belong to the caller; implementations only store bytes.
type StateRepository interface {
	// Load returns the stored record or ErrStateNotFound
	Load(ctx context.Context, name string) ([]byte, error)

	// Save replaces the stored record atomically
	Save(ctx context.Context, name string, data []byte) error
}
