package fs

import (
	"context"
	"fmt"
	"time"
)

// retryBase is the first backoff delay; tests shrink it.
var retryBase = 100 * time.Millisecond

const maxRetries = 5

// retry runs fn with exponential backoff while it fails with a transient error.
func retry(ctx context.Context, opName string, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if !isTransient(err) {
			return fmt.Errorf("%s: %w", opName, err)
		}

		if attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBase * (1 << (attempt - 1))):
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", opName, maxRetries, lastErr)
}
