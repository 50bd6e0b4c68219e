package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// Window is a half-open range of absolute instants covering one or more
// whole calendar days in the organization's timezone.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// OrgTime converts calendar dates to absolute instants using the
// organization's fixed UTC offset. All caller-facing date parameters are
// normalized through it before touching the store.
type OrgTime struct {
	loc *time.Location
}

// NewOrgTime builds an OrgTime for a fixed offset in minutes east of UTC
func NewOrgTime(offsetMinutes int) *OrgTime {
	name := fmt.Sprintf("UTC%+03d:%02d", offsetMinutes/60, abs(offsetMinutes%60))
	return &OrgTime{loc: time.FixedZone(name, offsetMinutes*60)}
}

// Location returns the fixed org timezone
func (o *OrgTime) Location() *time.Location {
	return o.loc
}

// ParseDate parses a YYYY-MM-DD calendar date in the org timezone
func (o *OrgTime) ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, o.loc)
	if err != nil {
		return time.Time{}, NewValidationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return d, nil
}

// DayStart returns the UTC instant at which the given calendar day begins
func (o *OrgTime) DayStart(date time.Time) time.Time {
	y, m, d := date.In(o.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, o.loc).UTC()
}

// DayWindow returns the half-open [start, end) window for one calendar day
func (o *OrgTime) DayWindow(date time.Time) Window {
	start := o.DayStart(date)
	return Window{Start: start, End: start.Add(24 * time.Hour)}
}

// RangeWindow returns the window covering whole days from start through end
// inclusive. End must not precede start.
func (o *OrgTime) RangeWindow(start, end time.Time) (Window, error) {
	s := o.DayStart(start)
	e := o.DayStart(end).Add(24 * time.Hour)
	if e.Before(s) || e.Equal(s) {
		return Window{}, NewValidationError("date range end precedes start")
	}
	return Window{Start: s, End: e}, nil
}

// DayOf returns the calendar date (midnight, org timezone) containing t
func (o *OrgTime) DayOf(t time.Time) time.Time {
	y, m, d := t.In(o.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, o.loc)
}

// FormatDate renders an instant as its org-timezone calendar date
func (o *OrgTime) FormatDate(t time.Time) string {
	return t.In(o.loc).Format(DateLayout)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
