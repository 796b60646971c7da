package worker

import (
	"time"

	"github.com/google/uuid"

	"github.com/raoulx24/backup-warden/internal/snapshot"
)

// Job represents one backup or snapshot cycle requested by the control loop.
type Job struct {
	ID   string
	Kind snapshot.Kind
	// At stamps the cycle; every location in the cycle shares it.
	At time.Time
}

// NewJob stamps a job with a fresh cycle id.
func NewJob(kind snapshot.Kind, at time.Time) Job {
	return Job{ID: uuid.NewString(), Kind: kind, At: at}
}
