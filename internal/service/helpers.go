package service

import (
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Clock is injected wherever a decision depends on the current time.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

const MinScheduleLead = 5 * time.Minute

// EarliestSchedule is the first instant a post may be scheduled for.
func EarliestSchedule(now time.Time) time.Time {
	return now.Add(MinScheduleLead)
}

func newID() (string, error) {
	return gonanoid.New()
}
