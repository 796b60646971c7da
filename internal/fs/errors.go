package fs

import (
	"errors"
	"syscall"
)

// errSourceChanged reports that a file was modified while it was being copied.
var errSourceChanged = errors.New("source changed during copy")

// isTransient decides whether an operation should retry or fail immediately.
func isTransient(err error) bool {
	if errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, errSourceChanged) {
		return true
	}
	return false
}
