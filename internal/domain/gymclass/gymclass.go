// Package gymclass is the booking service's read model of a class. Classes
// are owned by the class catalogue; this service only consults them.
package gymclass

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PublicationState controls member visibility of a class.
type PublicationState string

const (
	StateDraft     PublicationState = "draft"
	StatePublished PublicationState = "published"
	StateScheduled PublicationState = "scheduled"
)

// IsValid returns true if the state is recognized.
func (s PublicationState) IsValid() bool {
	switch s {
	case StateDraft, StatePublished, StateScheduled:
		return true
	}
	return false
}

// Clock is a time of day.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "15:04" or "15:04:05".
func ParseClock(s string) (Clock, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return Clock{}, fmt.Errorf("invalid class start time %q", s)
}

// String formats the clock as HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On returns the instant the clock reads on the given calendar date in loc.
func (c Clock) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, loc)
}

// Class is a recurring gym class as seen by the booking engine.
type Class struct {
	ID          uuid.UUID
	Name        string
	Instructor  string
	StartTime   Clock
	DaysOfWeek  []time.Weekday
	MaxCapacity int
	State       PublicationState
	PublishDate *time.Time
	EndDate     *time.Time
}

// IsBookableOn reports whether members may book the class on the calendar
// date. Draft classes never are. A scheduled class becomes bookable from the
// day its publish instant falls on in loc. Nothing is bookable on or after
// the end date.
func (c *Class) IsBookableOn(date time.Time, loc *time.Location) bool {
	switch c.State {
	case StatePublished:
	case StateScheduled:
		if c.PublishDate == nil || calendarDate(c.PublishDate.In(loc)).After(calendarDate(date)) {
			return false
		}
	default:
		return false
	}
	if c.EndDate != nil && !calendarDate(date).Before(calendarDate(*c.EndDate)) {
		return false
	}
	return true
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Availability resolves class identifiers. Implementations return an
// apperr NOT_FOUND error for unknown classes.
type Availability interface {
	Get(ctx context.Context, id uuid.UUID) (*Class, error)
}
