package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"capela/pkg/dates"
)

type ValiditySuite struct {
	suite.Suite
}

func TestValiditySuite(t *testing.T) {
	suite.Run(t, new(ValiditySuite))
}

func day(y int, m time.Month, d int) dates.CalendarDate {
	return dates.CalendarDate{Year: y, Month: m, Day: d}
}

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.Local)
}

func (s *ValiditySuite) TestClassifyValidity() {
	exp := day(2028, time.January, 15)

	s.Run("expired once the day has passed", func() {
		s.Equal(ValidityExpired, ClassifyValidity(exp, at(2028, time.February, 1)))
	})

	s.Run("expiring-soon under six months", func() {
		// ≈5.5 months remaining
		s.Equal(ValidityExpiringSoon, ClassifyValidity(exp, at(2027, time.August, 1)))
	})

	s.Run("warning between six and twelve months", func() {
		s.Equal(ValidityWarning, ClassifyValidity(exp, at(2027, time.April, 1)))
	})

	s.Run("active at a year or more", func() {
		// ≈19.5 months remaining
		s.Equal(ValidityActive, ClassifyValidity(exp, at(2026, time.June, 1)))
	})

	s.Run("boundaries fall on the documented side", func() {
		// months == 6 → warning, not expiring-soon
		s.Equal(ValidityWarning, ClassifyValidity(exp, at(2027, time.July, 20)))
		// months == 12 → active, not warning
		s.Equal(ValidityActive, ClassifyValidity(exp, at(2027, time.January, 20)))
		// days == 0 (expires today) → expiring-soon, not expired
		s.Equal(ValidityExpiringSoon, ClassifyValidity(exp, at(2028, time.January, 15)))
	})

	s.Run("exactly one status for any date", func() {
		for _, asOf := range []time.Time{
			at(2024, time.February, 1), at(2026, time.June, 1), at(2027, time.April, 1),
			at(2027, time.August, 1), at(2028, time.January, 15), at(2030, time.January, 1),
		} {
			status := ClassifyValidity(exp, asOf)
			s.Contains([]ValidityStatus{ValidityExpired, ValidityExpiringSoon, ValidityWarning, ValidityActive}, status)
		}
	})

	s.Run("zero expiration classifies as expired", func() {
		s.Equal(ValidityExpired, ClassifyValidity(dates.CalendarDate{}, at(2024, time.January, 1)))
	})
}

func (s *ValiditySuite) TestTimeRemaining() {
	exp := day(2028, time.January, 15)

	s.Run("expired phrasing", func() {
		s.Equal("Expirado há 17 dias", TimeRemaining(exp, at(2028, time.February, 1)))
	})

	s.Run("today and tomorrow", func() {
		s.Equal("Expira hoje", TimeRemaining(exp, at(2028, time.January, 15)))
		s.Equal("Expira amanhã", TimeRemaining(exp, at(2028, time.January, 14)))
	})

	s.Run("exact days under thirty", func() {
		s.Equal("Expira em 10 dias", TimeRemaining(exp, at(2028, time.January, 5)))
	})

	s.Run("months under a year", func() {
		s.Equal("Expira em 1 mês", TimeRemaining(exp, at(2027, time.December, 1)))
		s.Equal("Expira em 5 meses", TimeRemaining(exp, at(2027, time.August, 1)))
	})

	s.Run("year phrasing with independent pluralization", func() {
		s.Equal("Expira em 1 ano", TimeRemaining(exp, at(2027, time.January, 1)))
		s.Equal("Expira em 2 anos", TimeRemaining(exp, at(2026, time.January, 1)))
		s.Equal("Expira em 1 ano e 1 mês", TimeRemaining(exp, at(2026, time.December, 1)))
		s.Equal("Expira em 1 ano e 7 meses", TimeRemaining(exp, at(2026, time.June, 1)))
	})
}

func (s *ValiditySuite) TestValidityOf() {
	reg := day(2024, time.January, 15)
	exp := day(2028, time.January, 15)

	info := ValidityOf(reg, exp, at(2026, time.June, 1))
	s.Equal(ValidityActive, info.Status)
	s.Equal("Ativo", info.Label)
	s.Equal("green", info.Color)
	s.Equal(19, info.MonthsRemaining)
	s.Greater(info.PercentElapsed, 0.0)
	s.Less(info.PercentElapsed, 100.0)
}
