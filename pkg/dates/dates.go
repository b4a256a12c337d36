// Package dates implements calendar-date arithmetic for credential validity.
//
// All parsing decomposes a date into year/month/day integers and
// reconstructs it in the local timezone. Dates are never interpreted as UTC
// instants: a "2024-01-15" registered in São Paulo must never format as
// 14/01/2024 because the process happened to run near a UTC midnight
// boundary.
package dates

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	dErrors "capela/pkg/domain-errors"
)

// CalendarDate is a timezone-free calendar day.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// Parse accepts a YYYY-MM-DD string, optionally followed by a time portion
// ("2024-01-15" or "2024-01-15T10:30:00.000Z"). Only the date portion is
// used; the time and any zone designator are discarded.
func Parse(s string) (CalendarDate, error) {
	datePart, _, _ := strings.Cut(s, "T")
	parts := strings.Split(datePart, "-")
	if len(parts) != 3 {
		return CalendarDate{}, dErrors.Newf(dErrors.CodeBadRequest, "invalid date %q, expected YYYY-MM-DD", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return CalendarDate{}, dErrors.Newf(dErrors.CodeBadRequest, "invalid year in date %q", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return CalendarDate{}, dErrors.Newf(dErrors.CodeBadRequest, "invalid month in date %q", s)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return CalendarDate{}, dErrors.Newf(dErrors.CodeBadRequest, "invalid day in date %q", s)
	}
	return CalendarDate{Year: year, Month: time.Month(month), Day: day}, nil
}

// FromTime extracts the calendar day of t in the local timezone.
func FromTime(t time.Time) CalendarDate {
	y, m, d := t.In(time.Local).Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// Time returns local midnight of the calendar day.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.Local)
}

// IsZero reports whether d is the zero value.
func (d CalendarDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String returns the YYYY-MM-DD form.
func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON encodes the date as a "YYYY-MM-DD" string.
func (d CalendarDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "" (zero date) or any YYYY-MM-DD-prefixed string.
func (d *CalendarDate) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = CalendarDate{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// FormatDisplay renders dd/mm/yyyy, the fixed display locale of the service.
func (d CalendarDate) FormatDisplay() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

// FormatInput renders yyyy-mm-dd for HTML date inputs and storage.
func (d CalendarDate) FormatInput() string {
	return d.String()
}

// Age returns whole years elapsed from birth to asOf, decremented by one
// when asOf's month/day falls before the birthday within the current year.
func Age(birth CalendarDate, asOf time.Time) int {
	now := FromTime(asOf)
	age := now.Year - birth.Year
	monthDiff := int(now.Month) - int(birth.Month)
	if monthDiff < 0 || (monthDiff == 0 && now.Day < birth.Day) {
		age--
	}
	return age
}

// ExpirationDate returns the registration date with the year advanced by
// four. Exact calendar-year arithmetic, not a day-count approximation;
// Feb 29 registrations normalize forward when the target year has no
// leap day.
func ExpirationDate(registration CalendarDate) CalendarDate {
	return FromTime(time.Date(registration.Year+4, registration.Month, registration.Day, 0, 0, 0, 0, time.Local))
}

// DaysUntil returns the number of whole days from asOf to local midnight of
// target, rounded up. Negative once the target day has passed.
func DaysUntil(target CalendarDate, asOf time.Time) int {
	diff := target.Time().Sub(asOf)
	return int(math.Ceil(diff.Hours() / 24))
}

// MonthsUntil returns the coarse month difference (year*12 + month),
// ignoring day-of-month. One day before a month boundary still counts as
// zero months remaining; this measure only feeds status tiering.
func MonthsUntil(target CalendarDate, asOf time.Time) int {
	now := FromTime(asOf)
	return (target.Year-now.Year)*12 + int(target.Month) - int(now.Month)
}

// ValidityPercentElapsed returns how much of the registration→expiration
// window has passed at asOf, clamped to [0, 100].
func ValidityPercentElapsed(registration, expiration CalendarDate, asOf time.Time) float64 {
	total := expiration.Time().Sub(registration.Time())
	if total <= 0 {
		return 100
	}
	elapsed := asOf.Sub(registration.Time())
	pct := float64(elapsed) / float64(total) * 100
	return math.Min(math.Max(pct, 0), 100)
}

// FormatDisplayValue renders any supported date representation as
// dd/mm/yyyy: a time.Time, a unix-seconds timestamp, a YYYY-MM-DD(-prefixed)
// string, or an already formatted dd/mm/yyyy string. All forms of the same
// underlying day render identically. Unrecognized values render empty.
func FormatDisplayValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return FromTime(t).FormatDisplay()
	case int64:
		return FromTime(time.Unix(t, 0)).FormatDisplay()
	case CalendarDate:
		if t.IsZero() {
			return ""
		}
		return t.FormatDisplay()
	case string:
		if t == "" {
			return ""
		}
		if strings.Contains(t, "/") {
			return t
		}
		d, err := Parse(t)
		if err != nil {
			return ""
		}
		return d.FormatDisplay()
	default:
		return ""
	}
}
