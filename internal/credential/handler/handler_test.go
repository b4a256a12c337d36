package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"capela/internal/credential/models"
	"capela/internal/credential/service"
	"capela/internal/credential/store"
	"capela/pkg/requestcontext"
)

type HandlerSuite struct {
	suite.Suite
	router chi.Router
	now    time.Time
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	svc, err := service.New(store.NewMemory(), nil, nil)
	s.Require().NoError(err)

	s.now = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.Local)
	s.router = chi.NewRouter()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), s.now)))
		})
	})
	h := New(svc, nil)
	h.Register(s.router)
	h.RegisterAdmin(s.router)
}

func (s *HandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func registrationBody() map[string]any {
	return map[string]any{
		"full_name":    "João da Silva",
		"birth_date":   "1980-05-10",
		"mother_name":  "Maria da Silva",
		"father_name":  "José da Silva",
		"cpf":          "123.321.123-12",
		"rg":           "12.321.432-0",
		"role":         "pastor",
		"church":       "Igreja Central",
		"birth_city":   "Campinas",
		"current_city": "São Paulo",
		"phone":        "(11) 98765-4321",
		"email":        "joao@example.com",
	}
}

func (s *HandlerSuite) TestCreate() {
	s.Run("creates and derives the identifier", func() {
		rr := s.do(http.MethodPost, "/api/credentials", registrationBody())
		s.Require().Equal(http.StatusCreated, rr.Code)

		var rec models.CredentialRecord
		s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &rec))
		s.Equal("joao_da_silva_sao_paulo", rec.ID)
		s.Equal("2028-01-15", rec.ExpirationDate.String())
	})

	s.Run("duplicate returns conflict", func() {
		rr := s.do(http.MethodPost, "/api/credentials", registrationBody())
		s.Equal(http.StatusConflict, rr.Code)
	})

	s.Run("invalid body returns bad request", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/credentials", bytes.NewBufferString("{"))
		rr := httptest.NewRecorder()
		s.router.ServeHTTP(rr, req)
		s.Equal(http.StatusBadRequest, rr.Code)
	})

	s.Run("validation failure returns bad request", func() {
		body := registrationBody()
		body["cpf"] = "123"
		body["full_name"] = "Ana Costa Silva"
		rr := s.do(http.MethodPost, "/api/credentials", body)
		s.Equal(http.StatusBadRequest, rr.Code)
	})
}

func (s *HandlerSuite) TestGetAndList() {
	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/credentials", registrationBody()).Code)

	s.Run("get by id", func() {
		rr := s.do(http.MethodGet, "/api/credentials/joao_da_silva_sao_paulo", nil)
		s.Equal(http.StatusOK, rr.Code)
	})

	s.Run("missing id returns not found", func() {
		rr := s.do(http.MethodGet, "/api/credentials/missing", nil)
		s.Equal(http.StatusNotFound, rr.Code)
	})

	s.Run("list", func() {
		rr := s.do(http.MethodGet, "/api/credentials", nil)
		s.Require().Equal(http.StatusOK, rr.Code)
		var recs []models.CredentialRecord
		s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &recs))
		s.Len(recs, 1)
	})
}

func (s *HandlerSuite) TestUpdateAndRenewal() {
	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/credentials", registrationBody()).Code)

	s.Run("plain update keeps expiration", func() {
		body := registrationBody()
		body["church"] = "Igreja Nova"
		rr := s.do(http.MethodPut, "/api/credentials/joao_da_silva_sao_paulo", body)
		s.Require().Equal(http.StatusOK, rr.Code)

		var rec models.CredentialRecord
		s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &rec))
		s.Equal("Igreja Nova", rec.Church)
		s.Equal("2028-01-15", rec.ExpirationDate.String())
	})

	s.Run("renewal resets expiration from the request time", func() {
		s.now = time.Date(2026, time.March, 2, 12, 0, 0, 0, time.Local)
		rr := s.do(http.MethodPut, "/api/credentials/joao_da_silva_sao_paulo?renewal=true", registrationBody())
		s.Require().Equal(http.StatusOK, rr.Code)

		var rec models.CredentialRecord
		s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &rec))
		s.Equal("2026-03-02", rec.RegistrationDate.String())
		s.Equal("2030-03-02", rec.ExpirationDate.String())
	})
}

func (s *HandlerSuite) TestDelete() {
	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/credentials", registrationBody()).Code)

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/api/credentials/joao_da_silva_sao_paulo", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/credentials/joao_da_silva_sao_paulo", nil).Code)
}

func (s *HandlerSuite) TestValidity() {
	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/credentials", registrationBody()).Code)

	s.now = time.Date(2027, time.December, 20, 12, 0, 0, 0, time.Local)
	rr := s.do(http.MethodGet, "/api/credentials/joao_da_silva_sao_paulo/validity", nil)
	s.Require().Equal(http.StatusOK, rr.Code)

	var info models.ValidityInfo
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &info))
	s.Equal(models.ValidityExpiringSoon, info.Status)
}

func (s *HandlerSuite) TestStatusTransition() {
	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/credentials", registrationBody()).Code)

	s.Run("applies transition with observation", func() {
		rr := s.do(http.MethodPost, "/api/credentials/joao_da_silva_sao_paulo/status", map[string]any{
			"status":      "em_lote",
			"observation": "lote 7",
		})
		s.Require().Equal(http.StatusOK, rr.Code)

		var rec models.CredentialRecord
		s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &rec))
		s.Equal(models.ProductionBatched, rec.ProductionStatus)
		s.Require().Len(rec.ProductionHistory, 1)
		s.Equal("lote 7", rec.ProductionHistory[0].Observation)
	})

	s.Run("unknown status rejected", func() {
		rr := s.do(http.MethodPost, "/api/credentials/joao_da_silva_sao_paulo/status", map[string]any{
			"status": "lost",
		})
		s.Equal(http.StatusBadRequest, rr.Code)
	})
}

func (s *HandlerSuite) TestBatchStatus() {
	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/credentials", registrationBody()).Code)

	rr := s.do(http.MethodPost, "/api/credentials/status/batch", map[string]any{
		"ids":    []string{"joao_da_silva_sao_paulo", "missing"},
		"status": "exportado",
	})
	s.Require().Equal(http.StatusOK, rr.Code)

	var res service.BatchResult
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &res))
	s.Equal(1, res.SuccessCount)
	s.Equal(1, res.FailCount)
}

func (s *HandlerSuite) TestStats() {
	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/credentials", registrationBody()).Code)

	rr := s.do(http.MethodGet, "/api/credentials/stats", nil)
	s.Require().Equal(http.StatusOK, rr.Code)

	var stats service.Statistics
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &stats))
	s.Equal(1, stats.Total)
	s.Equal(1, stats.Active)
}
