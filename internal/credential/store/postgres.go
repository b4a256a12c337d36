package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"capela/internal/credential/models"
	"capela/pkg/dates"
	"capela/pkg/platform/sentinel"
)

// Postgres persists credential records in PostgreSQL. Calendar dates are
// stored as YYYY-MM-DD text so a round trip can never shift a day across a
// timezone boundary; the production history is an append-only JSONB array.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the credentials table when it does not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS credentials (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL DEFAULT '',
	full_name         TEXT NOT NULL,
	birth_date        TEXT NOT NULL,
	age               INT NOT NULL,
	mother_name       TEXT NOT NULL DEFAULT '',
	father_name       TEXT NOT NULL DEFAULT '',
	cpf               TEXT NOT NULL,
	rg                TEXT NOT NULL,
	role              TEXT NOT NULL,
	church            TEXT NOT NULL DEFAULT '',
	birth_city        TEXT NOT NULL DEFAULT '',
	current_city      TEXT NOT NULL,
	addr_street       TEXT NOT NULL DEFAULT '',
	addr_number       TEXT NOT NULL DEFAULT '',
	addr_complement   TEXT NOT NULL DEFAULT '',
	addr_district     TEXT NOT NULL DEFAULT '',
	addr_postal_code  TEXT NOT NULL DEFAULT '',
	phone             TEXT NOT NULL DEFAULT '',
	email             TEXT NOT NULL DEFAULT '',
	photo_b64         TEXT NOT NULL DEFAULT '',
	photo_mime        TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL,
	registration_date TEXT NOT NULL,
	expiration_date   TEXT NOT NULL,
	production_status TEXT NOT NULL,
	production_history JSONB NOT NULL DEFAULT '[]'
)`)
	if err != nil {
		return fmt.Errorf("ensure credentials schema: %w", err)
	}
	return nil
}

const credentialColumns = `id, user_id, full_name, birth_date, age, mother_name, father_name,
	cpf, rg, role, church, birth_city, current_city,
	addr_street, addr_number, addr_complement, addr_district, addr_postal_code,
	phone, email, photo_b64, photo_mime,
	created_at, updated_at, registration_date, expiration_date,
	production_status, production_history`

func (p *Postgres) Create(ctx context.Context, rec *models.CredentialRecord) error {
	history, err := json.Marshal(rec.ProductionHistory)
	if err != nil {
		return fmt.Errorf("marshal production history: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
INSERT INTO credentials (`+credentialColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28)`,
		rec.ID, rec.UserID, rec.FullName, rec.BirthDate.String(), rec.Age, rec.MotherName, rec.FatherName,
		rec.CPF, rec.RG, string(rec.Role), rec.Church, rec.BirthCity, rec.CurrentCity,
		rec.Address.Street, rec.Address.Number, rec.Address.Complement, rec.Address.District, rec.Address.PostalCode,
		rec.Phone, rec.Email, rec.PhotoB64, rec.PhotoMime,
		rec.CreatedAt, rec.UpdatedAt, rec.RegistrationDate.String(), rec.ExpirationDate.String(),
		string(rec.ProductionStatus), history)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id string) (*models.CredentialRecord, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE id = $1`, id)
	rec, err := scanCredential(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return rec, nil
}

func (p *Postgres) List(ctx context.Context) ([]*models.CredentialRecord, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+credentialColumns+` FROM credentials ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var out []*models.CredentialRecord
	for rows.Next() {
		rec, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return out, nil
}

func (p *Postgres) Update(ctx context.Context, rec *models.CredentialRecord) error {
	history, err := json.Marshal(rec.ProductionHistory)
	if err != nil {
		return fmt.Errorf("marshal production history: %w", err)
	}
	tag, err := p.pool.Exec(ctx, `
UPDATE credentials SET
	user_id=$2, full_name=$3, birth_date=$4, age=$5, mother_name=$6, father_name=$7,
	cpf=$8, rg=$9, role=$10, church=$11, birth_city=$12, current_city=$13,
	addr_street=$14, addr_number=$15, addr_complement=$16, addr_district=$17, addr_postal_code=$18,
	phone=$19, email=$20, photo_b64=$21, photo_mime=$22,
	created_at=$23, updated_at=$24, registration_date=$25, expiration_date=$26,
	production_status=$27, production_history=$28
WHERE id = $1`,
		rec.ID, rec.UserID, rec.FullName, rec.BirthDate.String(), rec.Age, rec.MotherName, rec.FatherName,
		rec.CPF, rec.RG, string(rec.Role), rec.Church, rec.BirthCity, rec.CurrentCity,
		rec.Address.Street, rec.Address.Number, rec.Address.Complement, rec.Address.District, rec.Address.PostalCode,
		rec.Phone, rec.Email, rec.PhotoB64, rec.PhotoMime,
		rec.CreatedAt, rec.UpdatedAt, rec.RegistrationDate.String(), rec.ExpirationDate.String(),
		string(rec.ProductionStatus), history)
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM credentials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// AppendTransition appends the history entry and flips the status in one
// UPDATE; the previous_status field reads the column's pre-update value, so
// the append is atomic with respect to this record.
func (p *Postgres) AppendTransition(ctx context.Context, id string, target models.ProductionStatus, observation string, now time.Time) (*models.CredentialRecord, error) {
	row := p.pool.QueryRow(ctx, `
UPDATE credentials SET
	production_history = production_history || jsonb_build_array(jsonb_build_object(
		'status', $2::text,
		'observation', $3::text,
		'timestamp', to_jsonb($4::timestamptz),
		'previous_status', production_status)),
	production_status = $2,
	updated_at = $4
WHERE id = $1
RETURNING `+credentialColumns, id, string(target), observation, now)
	rec, err := scanCredential(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("append transition: %w", err)
	}
	return rec, nil
}

func scanCredential(row pgx.Row) (*models.CredentialRecord, error) {
	var (
		rec                   models.CredentialRecord
		birth, reg, exp, role string
		productionStatus      string
		history               []byte
	)
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.FullName, &birth, &rec.Age, &rec.MotherName, &rec.FatherName,
		&rec.CPF, &rec.RG, &role, &rec.Church, &rec.BirthCity, &rec.CurrentCity,
		&rec.Address.Street, &rec.Address.Number, &rec.Address.Complement, &rec.Address.District, &rec.Address.PostalCode,
		&rec.Phone, &rec.Email, &rec.PhotoB64, &rec.PhotoMime,
		&rec.CreatedAt, &rec.UpdatedAt, &reg, &exp,
		&productionStatus, &history)
	if err != nil {
		return nil, err
	}

	rec.Role = models.Role(role)
	rec.ProductionStatus = models.ProductionStatus(productionStatus)
	for _, p := range []struct {
		raw string
		dst *dates.CalendarDate
	}{{birth, &rec.BirthDate}, {reg, &rec.RegistrationDate}, {exp, &rec.ExpirationDate}} {
		if p.raw == "" {
			continue
		}
		d, err := dates.Parse(p.raw)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", p.raw, err)
		}
		*p.dst = d
	}
	if err := json.Unmarshal(history, &rec.ProductionHistory); err != nil {
		return nil, fmt.Errorf("decode production history: %w", err)
	}
	return &rec, nil
}
