package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type DatesSuite struct {
	suite.Suite
}

func TestDatesSuite(t *testing.T) {
	suite.Run(t, new(DatesSuite))
}

func localDate(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.Local)
}

// =============================================================================
// Parsing
// =============================================================================

func (s *DatesSuite) TestParse() {
	s.Run("plain date string", func() {
		d, err := Parse("2024-01-15")
		s.Require().NoError(err)
		s.Equal(CalendarDate{Year: 2024, Month: time.January, Day: 15}, d)
	})

	s.Run("ISO string keeps the date portion only", func() {
		d, err := Parse("2024-01-15T23:59:59.000Z")
		s.Require().NoError(err)
		s.Equal(15, d.Day)
		s.Equal("2024-01-15", d.String())
	})

	s.Run("rejects malformed input", func() {
		for _, in := range []string{"", "15/01/2024", "2024-13-01", "2024-01-40", "not-a-date", "2024-01"} {
			_, err := Parse(in)
			s.Error(err, "input %q", in)
		}
	})
}

func (s *DatesSuite) TestParseIsTimezoneInvariant() {
	// An ISO string carrying a UTC zone designator must not drift a day when
	// the process runs far west of UTC.
	original := time.Local
	defer func() { time.Local = original }()
	time.Local = time.FixedZone("UTC-11", -11*3600)

	d, err := Parse("2024-01-15T00:30:00.000Z")
	s.Require().NoError(err)
	s.Equal("15/01/2024", d.FormatDisplay())
	s.Equal("2024-01-15", d.FormatInput())
	s.Equal(15, d.Time().Day())
}

// =============================================================================
// Age
// =============================================================================

func (s *DatesSuite) TestAge() {
	birth := CalendarDate{Year: 1990, Month: time.June, Day: 15}

	s.Run("before birthday in current year", func() {
		s.Equal(33, Age(birth, localDate(2024, time.June, 14, 12)))
	})

	s.Run("on birthday", func() {
		s.Equal(34, Age(birth, localDate(2024, time.June, 15, 0)))
	})

	s.Run("after birthday", func() {
		s.Equal(34, Age(birth, localDate(2024, time.December, 31, 12)))
	})
}

// =============================================================================
// Expiration arithmetic
// =============================================================================

func (s *DatesSuite) TestExpirationDate() {
	s.Run("same month and day, year plus four", func() {
		exp := ExpirationDate(CalendarDate{Year: 2024, Month: time.January, Day: 15})
		s.Equal(CalendarDate{Year: 2028, Month: time.January, Day: 15}, exp)
	})

	s.Run("leap day registration in a leap target year", func() {
		exp := ExpirationDate(CalendarDate{Year: 2024, Month: time.February, Day: 29})
		s.Equal(CalendarDate{Year: 2028, Month: time.February, Day: 29}, exp)
	})

	s.Run("exact calendar years, not day counts", func() {
		// 4*365 days would land on 2028-01-14; calendar arithmetic must not.
		exp := ExpirationDate(CalendarDate{Year: 2024, Month: time.January, Day: 15})
		s.Equal(15, exp.Day)
		s.Equal(time.January, exp.Month)
	})
}

func (s *DatesSuite) TestDaysUntil() {
	target := CalendarDate{Year: 2028, Month: time.January, Day: 15}

	s.Run("future date rounds up", func() {
		s.Equal(1, DaysUntil(target, localDate(2028, time.January, 14, 10)))
	})

	s.Run("same day counts as zero", func() {
		s.Equal(0, DaysUntil(target, localDate(2028, time.January, 15, 10)))
	})

	s.Run("past date is negative", func() {
		s.Less(DaysUntil(target, localDate(2028, time.February, 1, 10)), 0)
	})
}

func (s *DatesSuite) TestMonthsUntil() {
	target := CalendarDate{Year: 2028, Month: time.January, Day: 15}

	s.Run("ignores day of month", func() {
		// One day before a month boundary still counts as zero months.
		s.Equal(0, MonthsUntil(target, localDate(2028, time.January, 1, 0)))
		s.Equal(1, MonthsUntil(target, localDate(2027, time.December, 31, 23)))
	})

	s.Run("crosses years", func() {
		s.Equal(12, MonthsUntil(target, localDate(2027, time.January, 20, 0)))
	})

	s.Run("negative when past", func() {
		s.Equal(-1, MonthsUntil(target, localDate(2028, time.February, 1, 0)))
	})
}

func (s *DatesSuite) TestValidityPercentElapsed() {
	reg := CalendarDate{Year: 2024, Month: time.January, Day: 15}
	exp := CalendarDate{Year: 2028, Month: time.January, Day: 15}

	s.Run("zero at registration", func() {
		s.InDelta(0, ValidityPercentElapsed(reg, exp, reg.Time()), 0.0001)
	})

	s.Run("hundred at expiration", func() {
		s.InDelta(100, ValidityPercentElapsed(reg, exp, exp.Time()), 0.0001)
	})

	s.Run("clamped beyond the window", func() {
		s.Equal(float64(0), ValidityPercentElapsed(reg, exp, localDate(2020, time.January, 1, 0)))
		s.Equal(float64(100), ValidityPercentElapsed(reg, exp, localDate(2030, time.January, 1, 0)))
	})

	s.Run("monotonically non-decreasing", func() {
		prev := -1.0
		for _, asOf := range []time.Time{
			localDate(2024, time.January, 15, 0),
			localDate(2025, time.March, 1, 0),
			localDate(2026, time.July, 20, 0),
			localDate(2027, time.December, 31, 0),
			localDate(2028, time.January, 15, 0),
		} {
			pct := ValidityPercentElapsed(reg, exp, asOf)
			s.GreaterOrEqual(pct, prev)
			prev = pct
		}
	})
}

// =============================================================================
// Display formatting
// =============================================================================

func (s *DatesSuite) TestFormatDisplayValue() {
	s.Run("all representations of one day render identically", func() {
		day := time.Date(2024, time.January, 15, 10, 30, 0, 0, time.Local)
		want := "15/01/2024"

		s.Equal(want, FormatDisplayValue(day))
		s.Equal(want, FormatDisplayValue(day.Unix()))
		s.Equal(want, FormatDisplayValue("2024-01-15"))
		s.Equal(want, FormatDisplayValue("2024-01-15T10:30:00.000Z"))
		s.Equal(want, FormatDisplayValue("15/01/2024"))
		s.Equal(want, FormatDisplayValue(CalendarDate{Year: 2024, Month: time.January, Day: 15}))
	})

	s.Run("empty and unknown values render empty", func() {
		s.Equal("", FormatDisplayValue(nil))
		s.Equal("", FormatDisplayValue(""))
		s.Equal("", FormatDisplayValue(time.Time{}))
		s.Equal("", FormatDisplayValue(42.5))
		s.Equal("", FormatDisplayValue("garbage"))
	})
}
