// Package schedule decides when a monthly snapshot is due.
package schedule

import (
	"time"

	"github.com/robfig/cron/v3"
)

// LastDayOfMonth is a cron.Schedule that fires at local midnight on the last
// calendar day of every month.
type LastDayOfMonth struct{}

// Next returns the first last-day-of-month midnight strictly after t.
func (LastDayOfMonth) Next(t time.Time) time.Time {
	// Day 0 of the following month normalizes to the last day of this one.
	c := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
	if c.After(t) {
		return c
	}
	return time.Date(t.Year(), t.Month()+2, 0, 0, 0, 0, 0, t.Location())
}

// IsLastDayOfMonth reports whether the day after d falls in another month.
func IsLastDayOfMonth(d time.Time) bool {
	return d.AddDate(0, 0, 1).Month() != d.Month()
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Parse turns a config value into a schedule. The empty string selects
// LastDayOfMonth; anything else must be a standard five-field cron spec.
func Parse(spec string) (cron.Schedule, error) {
	if spec == "" {
		return LastDayOfMonth{}, nil
	}
	return cron.ParseStandard(spec)
}

// Scheduler fires a schedule at most once per activation. It is not safe for
// concurrent use; the control loop owns it.
type Scheduler struct {
	sched cron.Schedule
	next  time.Time
}

// NewScheduler primes the scheduler so an activation earlier on the current
// day still counts as due.
func NewScheduler(sched cron.Schedule, now time.Time) *Scheduler {
	return &Scheduler{
		sched: sched,
		next:  sched.Next(StartOfDay(now).Add(-time.Nanosecond)),
	}
}

// Due reports whether the pending activation has been reached.
func (s *Scheduler) Due(now time.Time) bool {
	return !now.Before(s.next)
}

// Done records that the activation was handled at now and arms the next one.
func (s *Scheduler) Done(now time.Time) {
	s.next = s.sched.Next(now)
}

// Next is the pending activation time.
func (s *Scheduler) Next() time.Time {
	return s.next
}
