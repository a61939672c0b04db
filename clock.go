package studybot

import (
	"fmt"
	"time"
)

// boundaryHour is the local hour at which the active study day changes.
const boundaryHour = 6

const studyDayLayout = "2006-01-02"

// DefaultLocation returns the boundary timezone. Taiwan has no DST, so the
// fixed-offset fallback is equivalent when tzdata is unavailable.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		return time.FixedZone("UTC+8", 8*60*60)
	}
	return loc
}

// Clock maps instants to study days and boundary instants. All methods are
// pure; the only state is the boundary timezone.
type Clock struct {
	loc *time.Location
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = DefaultLocation()
	}
	return Clock{loc: loc}
}

func (c Clock) Location() *time.Location {
	return c.loc
}

// StudyDayOf returns the study day an instant belongs to: the local calendar
// date after shifting back by the boundary hour.
func (c Clock) StudyDayOf(t time.Time) StudyDay {
	shifted := t.In(c.loc).Add(-boundaryHour * time.Hour)
	return StudyDay(shifted.Format(studyDayLayout))
}

// NextBoundaryAfter returns the first 06:00 local instant strictly after t.
func (c Clock) NextBoundaryAfter(t time.Time) time.Time {
	local := t.In(c.loc)
	b := time.Date(local.Year(), local.Month(), local.Day(), boundaryHour, 0, 0, 0, c.loc)
	if !local.Before(b) {
		b = b.AddDate(0, 0, 1)
	}
	return b
}

// BoundaryOnOrBefore returns the most recent 06:00 local instant at or
// before t.
func (c Clock) BoundaryOnOrBefore(t time.Time) time.Time {
	local := t.In(c.loc)
	b := time.Date(local.Year(), local.Month(), local.Day(), boundaryHour, 0, 0, 0, c.loc)
	if local.Before(b) {
		b = b.AddDate(0, 0, -1)
	}
	return b
}

// BoundariesBetween returns every boundary instant b with after < b <= until,
// in ascending order. Empty when no boundary lies in the interval.
func (c Clock) BoundariesBetween(after, until time.Time) []time.Time {
	var bs []time.Time
	for b := c.NextBoundaryAfter(after); !b.After(until); b = c.NextBoundaryAfter(b) {
		bs = append(bs, b)
	}
	return bs
}

// PriorStudyDay returns the study day that a boundary instant closes out.
func (c Clock) PriorStudyDay(boundary time.Time) StudyDay {
	return c.StudyDayOf(boundary.Add(-time.Second))
}

// WeekStartStudyDay returns the Monday on or before t's local calendar date.
func (c Clock) WeekStartStudyDay(t time.Time) StudyDay {
	local := t.In(c.loc)
	wd := (int(local.Weekday()) + 6) % 7 // Monday=0
	monday := local.AddDate(0, 0, -wd)
	return StudyDay(monday.Format(studyDayLayout))
}

// ParseStudyDay validates a YYYY-MM-DD string.
func ParseStudyDay(s string) (StudyDay, error) {
	if _, err := time.Parse(studyDayLayout, s); err != nil {
		return "", fmt.Errorf("%w: malformed study day %q", ErrInvalidArgument, s)
	}
	return StudyDay(s), nil
}

// AddDays shifts a study day by n calendar days. Panics on a malformed
// receiver; parse untrusted input with ParseStudyDay first.
func (d StudyDay) AddDays(n int) StudyDay {
	t, err := time.Parse(studyDayLayout, string(d))
	if err != nil {
		panic("malformed study day: " + string(d))
	}
	return StudyDay(t.AddDate(0, 0, n).Format(studyDayLayout))
}
