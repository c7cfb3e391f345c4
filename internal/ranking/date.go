package ranking

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical text form of a Date.
const DateLayout = "2006-01-02"

// dateLayouts are the layouts accepted by ParseDate, tried in order.
var dateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"02-Jan-2006",
	"2 January 2006",
	"2 Jan 2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// Date is a calendar date. Time of day and location carry no meaning; the
// zero Date means "no date".
type Date struct {
	t time.Time
}

// NewDate returns the date for year, month and day. Out-of-range values are
// normalized the same way time.Date normalizes them.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses s using the accepted layouts.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("unrecognized date %q", s)
}

// MustParseDate is ParseDate that panics on error. Intended for tests and constants.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether d is the zero Date, used for absent dates.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time returns d as midnight UTC.
func (d Date) Time() time.Time {
	return d.t
}

// Year returns the calendar year of d.
func (d Date) Year() int {
	return d.t.Year()
}

// Month returns the month of d.
func (d Date) Month() time.Month {
	return d.t.Month()
}

// Day returns the day of the month of d.
func (d Date) Day() int {
	return d.t.Day()
}

// Before reports whether d is earlier than o.
func (d Date) Before(o Date) bool {
	return d.t.Before(o.t)
}

// After reports whether d is later than o.
func (d Date) After(o Date) bool {
	return d.t.After(o.t)
}

// Equal reports whether d and o are the same day.
func (d Date) Equal(o Date) bool {
	return d.t.Equal(o.t)
}

// Compare returns -1, 0 or +1 as d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	return d.t.Compare(o.t)
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// EndOfMonth returns the last day of the month of d.
func (d Date) EndOfMonth() Date {
	return NewDate(d.Year(), d.Month()+1, 0)
}

// String formats d with DateLayout, or returns "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input yields the zero Date.
func (d *Date) UnmarshalText(b []byte) error {
	if len(strings.TrimSpace(string(b))) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalCSV is used by gocsv.
func (d Date) MarshalCSV() (string, error) {
	return d.String(), nil
}

// UnmarshalCSV is used by gocsv.
func (d *Date) UnmarshalCSV(s string) error {
	return d.UnmarshalText([]byte(s))
}

// Value implements driver.Valuer; the zero Date is stored as NULL.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.t, nil
}

// Scan implements sql.Scanner for date, timestamp and text columns.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}
