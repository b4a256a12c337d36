package models

import (
	"fmt"
	"time"

	"capela/pkg/dates"
)

// ValidityStatus is the derived classification of how close a credential's
// expiration is. It is a pure function of the expiration date and the
// moment of observation: always recomputed on read, never persisted.
type ValidityStatus string

const (
	ValidityExpired      ValidityStatus = "expired"
	ValidityExpiringSoon ValidityStatus = "expiring-soon"
	ValidityWarning      ValidityStatus = "warning"
	ValidityActive       ValidityStatus = "active"
)

// Label returns the display name of the validity status.
func (v ValidityStatus) Label() string {
	switch v {
	case ValidityExpired:
		return "Expirado"
	case ValidityExpiringSoon:
		return "Próximo ao Vencimento"
	case ValidityWarning:
		return "Atenção"
	case ValidityActive:
		return "Ativo"
	default:
		return ValidityExpired.Label()
	}
}

// Color returns the display color tier of the validity status.
func (v ValidityStatus) Color() string {
	switch v {
	case ValidityExpired, ValidityExpiringSoon:
		return "red"
	case ValidityWarning:
		return "yellow"
	case ValidityActive:
		return "green"
	default:
		return "red"
	}
}

// ClassifyValidity maps an expiration date onto exactly one validity status,
// evaluated in priority order:
//
//	expired        days remaining < 0
//	expiring-soon  0 ≤ days, months remaining < 6
//	warning        months remaining in [6, 12)
//	active         months remaining ≥ 12
//
// A zero expiration date classifies as expired so that a broken record can
// never display as active.
func ClassifyValidity(expiration dates.CalendarDate, asOf time.Time) ValidityStatus {
	if expiration.IsZero() {
		return ValidityExpired
	}
	days := dates.DaysUntil(expiration, asOf)
	months := dates.MonthsUntil(expiration, asOf)

	switch {
	case days < 0:
		return ValidityExpired
	case months < 6:
		return ValidityExpiringSoon
	case months < 12:
		return ValidityWarning
	default:
		return ValidityActive
	}
}

// TimeRemaining renders the human-readable distance to expiration: exact day
// phrasing under 30 days, month phrasing under 12 months, year phrasing
// beyond that with months pluralized independently.
func TimeRemaining(expiration dates.CalendarDate, asOf time.Time) string {
	days := dates.DaysUntil(expiration, asOf)

	if days < 0 {
		return fmt.Sprintf("Expirado há %d dias", -days)
	}
	if days == 0 {
		return "Expira hoje"
	}
	if days == 1 {
		return "Expira amanhã"
	}
	if days < 30 {
		return fmt.Sprintf("Expira em %d dias", days)
	}

	months := dates.MonthsUntil(expiration, asOf)
	if months == 1 {
		return "Expira em 1 mês"
	}
	if months < 12 {
		return fmt.Sprintf("Expira em %d meses", months)
	}

	years := months / 12
	remaining := months % 12

	if years == 1 && remaining == 0 {
		return "Expira em 1 ano"
	}
	if remaining == 0 {
		return fmt.Sprintf("Expira em %d anos", years)
	}
	yearWord := "ano"
	if years > 1 {
		yearWord = "anos"
	}
	monthWord := "mês"
	if remaining > 1 {
		monthWord = "meses"
	}
	return fmt.Sprintf("Expira em %d %s e %d %s", years, yearWord, remaining, monthWord)
}

// ValidityInfo bundles everything a dashboard needs to display the derived
// validity of one record.
type ValidityInfo struct {
	Status          ValidityStatus `json:"status"`
	Label           string         `json:"label"`
	Color           string         `json:"color"`
	TimeRemaining   string         `json:"time_remaining"`
	DaysRemaining   int            `json:"days_remaining"`
	MonthsRemaining int            `json:"months_remaining"`
	PercentElapsed  float64        `json:"percent_elapsed"`
}

// ValidityOf derives the full validity view of a registration window at asOf.
func ValidityOf(registration, expiration dates.CalendarDate, asOf time.Time) ValidityInfo {
	status := ClassifyValidity(expiration, asOf)
	return ValidityInfo{
		Status:          status,
		Label:           status.Label(),
		Color:           status.Color(),
		TimeRemaining:   TimeRemaining(expiration, asOf),
		DaysRemaining:   dates.DaysUntil(expiration, asOf),
		MonthsRemaining: dates.MonthsUntil(expiration, asOf),
		PercentElapsed:  dates.ValidityPercentElapsed(registration, expiration, asOf),
	}
}
