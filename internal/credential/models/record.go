package models

import (
	"regexp"
	"strings"
	"time"

	"capela/pkg/dates"
	dErrors "capela/pkg/domain-errors"
)

// MaxPhotoBytes caps the base64-encoded photo payload. The limit mirrors the
// document store's per-record budget, leaving headroom for the other fields.
const MaxPhotoBytes = 950000

// Role is the ecclesiastical role of a chaplain.
type Role string

const (
	RoleMember     Role = "membro"
	RoleCooperator Role = "cooperador"
	RoleDeacon     Role = "diacono"
	RolePresbyter  Role = "presbitero"
	RoleEvangelist Role = "evangelista"
	RolePastor     Role = "pastor"
)

// IsValid reports whether r is one of the six ecclesiastical roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleMember, RoleCooperator, RoleDeacon, RolePresbyter, RoleEvangelist, RolePastor:
		return true
	}
	return false
}

// Label returns the role's display name.
func (r Role) Label() string {
	switch r {
	case RoleMember:
		return "Membro"
	case RoleCooperator:
		return "Cooperador"
	case RoleDeacon:
		return "Diácono"
	case RolePresbyter:
		return "Presbítero"
	case RoleEvangelist:
		return "Evangelista"
	case RolePastor:
		return "Pastor"
	default:
		return string(r)
	}
}

// Address is the postal address of a chaplain.
type Address struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	PostalCode string `json:"postal_code"`
}

// CredentialRecord is the stored profile of one registered chaplain.
//
// Invariants:
//   - ExpirationDate is always exactly four calendar years after
//     RegistrationDate (re-established on renewal)
//   - ProductionHistory only grows; each entry's PreviousStatus equals the
//     ProductionStatus immediately before the entry was appended
//   - Validity is derived from ExpirationDate on every read, never stored
type CredentialRecord struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	FullName    string             `json:"full_name"`
	BirthDate   dates.CalendarDate `json:"birth_date"`
	Age         int                `json:"age"`
	MotherName  string             `json:"mother_name"`
	FatherName  string             `json:"father_name"`
	CPF         string             `json:"cpf"`
	RG          string             `json:"rg"`
	Role        Role               `json:"role"`
	Church      string             `json:"church"`
	BirthCity   string             `json:"birth_city"`
	CurrentCity string             `json:"current_city"`
	Address     Address            `json:"address"`

	Phone string `json:"phone"`
	Email string `json:"email"`

	PhotoB64  string `json:"photo_b64,omitempty"`
	PhotoMime string `json:"photo_mime,omitempty"`

	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	RegistrationDate dates.CalendarDate `json:"registration_date"`
	ExpirationDate   dates.CalendarDate `json:"expiration_date"`

	ProductionStatus  ProductionStatus `json:"production_status"`
	ProductionHistory []HistoryEntry   `json:"production_history"`
}

// Validity derives the record's validity view at asOf. Never cached.
func (r *CredentialRecord) Validity(asOf time.Time) ValidityInfo {
	return ValidityOf(r.RegistrationDate, r.ExpirationDate, asOf)
}

// Clone returns a deep copy so store snapshots cannot be mutated by callers.
func (r *CredentialRecord) Clone() *CredentialRecord {
	cp := *r
	cp.ProductionHistory = make([]HistoryEntry, len(r.ProductionHistory))
	copy(cp.ProductionHistory, r.ProductionHistory)
	return &cp
}

var (
	digitsOnlyRe = regexp.MustCompile(`[^\d]`)
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Go's regexp (RE2) has no backreferences, so `^(\d)\1{10}$` is spelled
	// out as an alternation over each digit repeated eleven times.
	sameDigitRe = regexp.MustCompile(`^(?:0{11}|1{11}|2{11}|3{11}|4{11}|5{11}|6{11}|7{11}|8{11}|9{11})$`)
)

// Digits strips every non-digit rune, the canonical form for CPF/RG/CEP
// comparisons and export filenames.
func Digits(s string) string {
	return digitsOnlyRe.ReplaceAllString(s, "")
}

// ValidateCPF accepts eleven digits that are not all identical. Check-digit
// verification is intentionally off, matching the registration form.
func ValidateCPF(cpf string) bool {
	d := Digits(cpf)
	return len(d) == 11 && !sameDigitRe.MatchString(d)
}

// ValidateEmail applies the registration form's address shape check.
func ValidateEmail(email string) bool {
	return emailRe.MatchString(email)
}

// ValidatePhone accepts ten (landline) or eleven (mobile) digits.
func ValidatePhone(phone string) bool {
	n := len(Digits(phone))
	return n == 10 || n == 11
}

// ValidateFullName requires at least two words of two or more characters.
func ValidateFullName(name string) bool {
	words := strings.Fields(strings.TrimSpace(name))
	if len(words) < 2 {
		return false
	}
	for _, w := range words {
		if len([]rune(w)) < 2 {
			return false
		}
	}
	return true
}

// ValidatePostalCode accepts exactly eight digits (CEP).
func ValidatePostalCode(cep string) bool {
	return len(Digits(cep)) == 8
}

// FormatCPF renders a CPF as 123.321.123-12 from whatever shape it was
// stored in. Inputs with fewer than eleven digits are grouped as far as the
// digits go.
func FormatCPF(cpf string) string {
	d := Digits(cpf)
	if d == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range d {
		switch i {
		case 3, 6:
			b.WriteByte('.')
		case 9:
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatPhone renders a phone as (11) 98765-4321 for eleven digits or
// (11) 8765-4321 for ten. Other lengths pass through as digits.
func FormatPhone(phone string) string {
	d := Digits(phone)
	switch len(d) {
	case 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	case 11:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	default:
		return d
	}
}

// minRegistrationAge is the minimum age at registration time.
const minRegistrationAge = 18

// Validate checks the record's own field invariants. Identifier assignment
// and lifecycle dates are the service's concern and are not inspected here.
func (r *CredentialRecord) Validate(asOf time.Time) error {
	if !ValidateFullName(r.FullName) {
		return dErrors.New(dErrors.CodeBadRequest, "nome completo inválido: informe nome e sobrenome")
	}
	if r.BirthDate.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "data de nascimento é obrigatória")
	}
	if dates.Age(r.BirthDate, asOf) < minRegistrationAge {
		return dErrors.Newf(dErrors.CodeBadRequest, "idade mínima de %d anos", minRegistrationAge)
	}
	if !ValidateCPF(r.CPF) {
		return dErrors.New(dErrors.CodeBadRequest, "CPF inválido")
	}
	if Digits(r.RG) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "RG é obrigatório")
	}
	if !r.Role.IsValid() {
		return dErrors.New(dErrors.CodeBadRequest, "cargo eclesiástico inválido")
	}
	if strings.TrimSpace(r.CurrentCity) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "cidade atual é obrigatória")
	}
	if !ValidateEmail(r.Email) {
		return dErrors.New(dErrors.CodeBadRequest, "email inválido")
	}
	if !ValidatePhone(r.Phone) {
		return dErrors.New(dErrors.CodeBadRequest, "telefone inválido")
	}
	if r.Address.PostalCode != "" && !ValidatePostalCode(r.Address.PostalCode) {
		return dErrors.New(dErrors.CodeBadRequest, "CEP inválido")
	}
	if len(r.PhotoB64) > MaxPhotoBytes {
		return dErrors.New(dErrors.CodeBadRequest, "a imagem é muito grande, máximo permitido: 950KB")
	}
	if r.PhotoB64 != "" {
		switch r.PhotoMime {
		case "image/jpeg", "image/jpg", "image/png":
		default:
			return dErrors.New(dErrors.CodeBadRequest, "formato de imagem inválido, use JPG ou PNG")
		}
	}
	return nil
}
