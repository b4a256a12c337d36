// Package handler exposes the event endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"capela/internal/event/models"
	dErrors "capela/pkg/domain-errors"
	"capela/pkg/platform/httputil"
)

// Service defines the interface for event operations.
type Service interface {
	Create(ctx context.Context, ev *models.Event) (*models.Event, error)
	Get(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	ListForRecord(ctx context.Context, recordID string) ([]*models.Event, error)
	Update(ctx context.Context, id string, updated *models.Event) (*models.Event, error)
	Delete(ctx context.Context, id string) error
	Enroll(ctx context.Context, eventID, recordID string) (*models.Event, error)
	Unenroll(ctx context.Context, eventID, recordID string) (*models.Event, error)
}

// Handler handles event endpoints.
type Handler struct {
	events Service
	logger *slog.Logger
}

func New(events Service, logger *slog.Logger) *Handler {
	return &Handler{events: events, logger: logger}
}

// Register registers the event routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/events", h.handleList)
	r.Post("/api/events", h.handleCreate)
	r.Get("/api/events/{id}", h.handleGet)
	r.Put("/api/events/{id}", h.handleUpdate)
	r.Delete("/api/events/{id}", h.handleDelete)
	r.Post("/api/events/{id}/participants", h.handleEnroll)
	r.Delete("/api/events/{id}/participants/{recordID}", h.handleUnenroll)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var ev models.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "corpo da requisição inválido"))
		return
	}
	created, err := h.events.Create(r.Context(), &ev)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if recordID := r.URL.Query().Get("record_id"); recordID != "" {
		evs, err := h.events.ListForRecord(r.Context(), recordID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, evs)
		return
	}

	evs, err := h.events.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, evs)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ev, err := h.events.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ev)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var ev models.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "corpo da requisição inválido"))
		return
	}
	updated, err := h.events.Update(r.Context(), chi.URLParam(r, "id"), &ev)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.events.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type enrollRequest struct {
	RecordID string `json:"record_id"`
}

func (h *Handler) handleEnroll(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "corpo da requisição inválido"))
		return
	}
	ev, err := h.events.Enroll(r.Context(), chi.URLParam(r, "id"), req.RecordID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ev)
}

func (h *Handler) handleUnenroll(w http.ResponseWriter, r *http.Request) {
	ev, err := h.events.Unenroll(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "recordID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ev)
}
