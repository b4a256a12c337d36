// Package handler exposes the credential registry endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"capela/internal/credential/models"
	"capela/internal/credential/service"
	dErrors "capela/pkg/domain-errors"
	"capela/pkg/platform/httputil"
)

// Service defines the interface for credential operations.
type Service interface {
	Create(ctx context.Context, rec *models.CredentialRecord) (*models.CredentialRecord, error)
	Get(ctx context.Context, id string) (*models.CredentialRecord, error)
	List(ctx context.Context) ([]*models.CredentialRecord, error)
	Update(ctx context.Context, id string, updated *models.CredentialRecord, isRenewal bool) (*models.CredentialRecord, error)
	Delete(ctx context.Context, id string) error
	Validity(ctx context.Context, id string) (models.ValidityInfo, error)
	TransitionStatus(ctx context.Context, id string, target models.ProductionStatus, observation string) (*models.CredentialRecord, error)
	BatchTransitionStatus(ctx context.Context, ids []string, target models.ProductionStatus, observation string) (service.BatchResult, error)
	GetStatistics(ctx context.Context) (service.Statistics, error)
}

// Handler handles credential endpoints.
type Handler struct {
	credentials Service
	logger      *slog.Logger
}

func New(credentials Service, logger *slog.Logger) *Handler {
	return &Handler{credentials: credentials, logger: logger}
}

// Register registers the credential routes with the chi router. Deletion is
// registered separately so the admin gate can wrap it.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/credentials", h.handleCreate)
	r.Get("/api/credentials", h.handleList)
	r.Get("/api/credentials/stats", h.handleStats)
	r.Post("/api/credentials/status/batch", h.handleBatchStatus)
	r.Get("/api/credentials/{id}", h.handleGet)
	r.Put("/api/credentials/{id}", h.handleUpdate)
	r.Get("/api/credentials/{id}/validity", h.handleValidity)
	r.Post("/api/credentials/{id}/status", h.handleStatus)
}

// RegisterAdmin registers the destructive routes, meant to sit behind the
// admin role gate.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Delete("/api/credentials/{id}", h.handleDelete)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var rec models.CredentialRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "corpo da requisição inválido"))
		return
	}
	created, err := h.credentials.Create(r.Context(), &rec)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := h.credentials.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, recs)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.credentials.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

// handleUpdate overwrites a record. The renewal query flag additionally
// resets the registration and expiration dates.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var rec models.CredentialRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "corpo da requisição inválido"))
		return
	}
	isRenewal, _ := strconv.ParseBool(r.URL.Query().Get("renewal"))

	updated, err := h.credentials.Update(r.Context(), chi.URLParam(r, "id"), &rec, isRenewal)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.credentials.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleValidity(w http.ResponseWriter, r *http.Request) {
	info, err := h.credentials.Validity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, info)
}

type statusRequest struct {
	Status      models.ProductionStatus `json:"status"`
	Observation string                  `json:"observation"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "corpo da requisição inválido"))
		return
	}
	rec, err := h.credentials.TransitionStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.Observation)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

type batchStatusRequest struct {
	IDs         []string                `json:"ids"`
	Status      models.ProductionStatus `json:"status"`
	Observation string                  `json:"observation"`
}

func (h *Handler) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	var req batchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "corpo da requisição inválido"))
		return
	}
	res, err := h.credentials.BatchTransitionStatus(r.Context(), req.IDs, req.Status, req.Observation)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.credentials.GetStatistics(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}
