// Package export builds the print-shop bundle: a spreadsheet of the selected
// records plus their photos, zipped together, and marks the records as
// exported in the production workflow.
package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"capela/internal/credential/models"
	"capela/internal/platform/metrics"
	"capela/pkg/dates"
	dErrors "capela/pkg/domain-errors"
	pstrings "capela/pkg/platform/strings"
	"capela/pkg/requestcontext"
)

const (
	baseFileName  = "credenciais_export"
	recordsSheet  = "Capelões"
	infoSheet     = "Informações"
	noPhotoMarker = "SEM FOTO"
	photosFolder  = "fotos"
)

// RecordSource fetches the records being exported.
type RecordSource interface {
	Get(ctx context.Context, id string) (*models.CredentialRecord, error)
	List(ctx context.Context) ([]*models.CredentialRecord, error)
}

// Transitioner marks exported records in the production workflow.
type Transitioner interface {
	TransitionStatus(ctx context.Context, id string, target models.ProductionStatus, observation string) (*models.CredentialRecord, error)
}

// Service assembles export bundles.
type Service struct {
	records     RecordSource
	transitions Transitioner
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// New creates an export Service. Sources are required; logger and metrics
// may be nil in tests.
func New(records RecordSource, transitions Transitioner, logger *slog.Logger, m *metrics.Metrics) (*Service, error) {
	if records == nil || transitions == nil {
		return nil, errors.New("export requires a record source and a transitioner")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{records: records, transitions: transitions, logger: logger, metrics: m}, nil
}

// Bundle is a finished export artifact.
type Bundle struct {
	FileName string
	Data     []byte
	Count    int
}

// Build assembles the ZIP for the given record ids (all records when ids is
// empty) and marks each included record as exported. A record whose photo
// cannot be decoded is still exported, with the photo column marked empty,
// matching how the print shop handles missing photos.
func (s *Service) Build(ctx context.Context, ids []string) (*Bundle, error) {
	recs, err := s.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "nenhuma credencial para exportar")
	}

	now := requestcontext.Now(ctx)
	fileName := fmt.Sprintf("%s_%s.zip", baseFileName, dates.FromTime(now).String())

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	sheet, err := s.buildSpreadsheet(recs, now)
	if err != nil {
		return nil, err
	}
	if err := writeZipFile(zw, baseFileName+".xlsx", sheet); err != nil {
		return nil, err
	}

	for _, rec := range recs {
		if rec.PhotoB64 == "" {
			continue
		}
		photo, err := base64.StdEncoding.DecodeString(rec.PhotoB64)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping undecodable photo",
				"credential_id", rec.ID,
				"request_id", requestcontext.RequestID(ctx),
			)
			continue
		}
		if err := writeZipFile(zw, photosFolder+"/"+photoFileName(rec), photo); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "falha ao montar o arquivo de exportação")
	}

	for _, rec := range recs {
		if _, err := s.transitions.TransitionStatus(ctx, rec.ID, models.ProductionExported, "exportado em "+fileName); err != nil {
			s.logger.WarnContext(ctx, "failed to mark record as exported",
				"credential_id", rec.ID,
				"error", err.Error(),
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}

	s.metrics.IncrementExportsGenerated()
	s.logger.InfoContext(ctx, "export bundle generated",
		"file", fileName,
		"records", len(recs),
		"request_id", requestcontext.RequestID(ctx),
	)
	return &Bundle{FileName: fileName, Data: buf.Bytes(), Count: len(recs)}, nil
}

func (s *Service) resolve(ctx context.Context, ids []string) ([]*models.CredentialRecord, error) {
	ids = pstrings.DedupeAndTrim(ids)
	if len(ids) == 0 {
		return s.records.List(ctx)
	}
	recs := make([]*models.CredentialRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.records.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// photoFileName follows the print shop's convention: capelao_<CPF digits>.jpg.
func photoFileName(rec *models.CredentialRecord) string {
	return "capelao_" + models.Digits(rec.CPF) + ".jpg"
}

var columns = []struct {
	header string
	width  float64
	value  func(rec *models.CredentialRecord) string
}{
	{"Nome Completo", 30, func(r *models.CredentialRecord) string { return r.FullName }},
	{"CPF", 15, func(r *models.CredentialRecord) string { return models.FormatCPF(r.CPF) }},
	{"RG", 15, func(r *models.CredentialRecord) string { return r.RG }},
	{"Data de Nascimento", 15, func(r *models.CredentialRecord) string { return r.BirthDate.FormatDisplay() }},
	{"Idade", 8, func(r *models.CredentialRecord) string { return fmt.Sprintf("%d", r.Age) }},
	{"Nome da Mãe", 25, func(r *models.CredentialRecord) string { return r.MotherName }},
	{"Nome do Pai", 25, func(r *models.CredentialRecord) string { return r.FatherName }},
	{"Cargo Eclesiástico", 20, func(r *models.CredentialRecord) string { return r.Role.Label() }},
	{"Igreja", 25, func(r *models.CredentialRecord) string { return r.Church }},
	{"Cidade Natal", 20, func(r *models.CredentialRecord) string { return r.BirthCity }},
	{"Cidade Atual", 20, func(r *models.CredentialRecord) string { return r.CurrentCity }},
	{"Telefone", 15, func(r *models.CredentialRecord) string { return models.FormatPhone(r.Phone) }},
	{"Email", 25, func(r *models.CredentialRecord) string { return r.Email }},
	{"Rua", 30, func(r *models.CredentialRecord) string { return r.Address.Street }},
	{"Número", 8, func(r *models.CredentialRecord) string { return r.Address.Number }},
	{"Complemento", 15, func(r *models.CredentialRecord) string { return r.Address.Complement }},
	{"Bairro", 20, func(r *models.CredentialRecord) string { return r.Address.District }},
	{"CEP", 12, func(r *models.CredentialRecord) string { return r.Address.PostalCode }},
	{"Data de Validade", 15, func(r *models.CredentialRecord) string { return r.ExpirationDate.FormatDisplay() }},
	{"Data de Cadastro", 15, func(r *models.CredentialRecord) string { return r.RegistrationDate.FormatDisplay() }},
	{"Status", 12, func(r *models.CredentialRecord) string { return string(r.ProductionStatus) }},
	{"Arquivo da Foto", 35, func(r *models.CredentialRecord) string {
		if r.PhotoB64 == "" {
			return noPhotoMarker
		}
		return photosFolder + "/" + photoFileName(r)
	}},
}

func (s *Service) buildSpreadsheet(recs []*models.CredentialRecord, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "falha ao montar a planilha")
	}

	for col, c := range columns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(recordsSheet, cell, c.header); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "falha ao montar a planilha")
		}
		name, _ := excelize.ColumnNumberToName(col + 1)
		_ = f.SetColWidth(recordsSheet, name, name, c.width)
	}
	for row, rec := range recs {
		for col, c := range columns {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(recordsSheet, cell, c.value(rec)); err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "falha ao montar a planilha")
			}
		}
	}

	if _, err := f.NewSheet(infoSheet); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "falha ao montar a planilha")
	}
	info := [][]interface{}{
		{"Sistema de Gerenciamento de Capelania"},
		{"Data de Exportação:", now.Format("02/01/2006 15:04")},
		{"Total de Registros:", len(recs)},
		{},
		{"Instruções para a Gráfica:"},
		{"1. As fotos estão na pasta \"fotos\" dentro do ZIP"},
		{"2. Os nomes dos arquivos seguem o padrão: capelao_CPF.jpg"},
		{"3. A coluna \"Arquivo da Foto\" indica o caminho de cada foto"},
		{"4. Fotos sem cadastro aparecem como \"SEM FOTO\""},
	}
	for row, cells := range info {
		for col, v := range cells {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+1)
			_ = f.SetCellValue(infoSheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "falha ao gravar a planilha")
	}
	return buf.Bytes(), nil
}

func writeZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "falha ao montar o arquivo de exportação")
	}
	if _, err := w.Write(data); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "falha ao montar o arquivo de exportação")
	}
	return nil
}
