package worker

import (
	"context"

	"github.com/raoulx24/backup-warden/internal/location"
)

// Retention is invoked for a location after each successful daily copy.
// *retention.Engine satisfies it.
type Retention interface {
	Apply(ctx context.Context, loc location.Location) ([]string, error)
}
