package diagnosis

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no record matches the lookup key.
var ErrNotFound = errors.New("diagnosis not found")

// Repository port. Implementations must convert the storage-engine
// identifier to a string on every record crossing this boundary.
type Repository interface {
	Insert(ctx context.Context, rec *Record) (string, error)
	FindByFrontendID(ctx context.Context, frontendID string) (*Record, error)
	FindByUserID(ctx context.Context, userID string) ([]*Record, error)
}
