package card

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"capela/internal/credential/models"
	"capela/pkg/platform/httputil"
	"capela/pkg/requestcontext"
)

// RecordSource fetches the record a card is rendered for.
type RecordSource interface {
	Get(ctx context.Context, id string) (*models.CredentialRecord, error)
}

// Handler serves the rendered card images and the print-ready PDF.
type Handler struct {
	records    RecordSource
	compositor *Compositor
	logger     *slog.Logger
}

func NewHandler(records RecordSource, compositor *Compositor, logger *slog.Logger) *Handler {
	return &Handler{records: records, compositor: compositor, logger: logger}
}

// Register registers the card routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/credentials/{id}/card/front.png", h.handleFront)
	r.Get("/api/credentials/{id}/card/back.png", h.handleBack)
	r.Get("/api/credentials/{id}/card.pdf", h.handlePDF)
}

func (h *Handler) handleFront(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.fetch(w, r)
	if !ok {
		return
	}
	out, err := h.compositor.RenderFront(r.Context(), rec)
	if err != nil {
		h.renderFailed(r.Context(), "front", rec.ID, err)
		httputil.WriteError(w, err)
		return
	}
	writeImage(w, "image/png", out)
}

func (h *Handler) handleBack(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.fetch(w, r)
	if !ok {
		return
	}
	out, err := h.compositor.RenderBack(r.Context(), rec)
	if err != nil {
		h.renderFailed(r.Context(), "back", rec.ID, err)
		httputil.WriteError(w, err)
		return
	}
	writeImage(w, "image/png", out)
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.fetch(w, r)
	if !ok {
		return
	}

	front, err := h.compositor.RenderFront(r.Context(), rec)
	if err != nil {
		h.renderFailed(r.Context(), "front", rec.ID, err)
		httputil.WriteError(w, err)
		return
	}
	back, err := h.compositor.RenderBack(r.Context(), rec)
	if err != nil {
		h.renderFailed(r.Context(), "back", rec.ID, err)
		httputil.WriteError(w, err)
		return
	}

	pdf, err := BuildPDF(front, back)
	if err != nil {
		h.renderFailed(r.Context(), "pdf", rec.ID, err)
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="credencial-`+rec.ID+`.pdf"`)
	writeImage(w, "application/pdf", pdf)
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) (*models.CredentialRecord, bool) {
	rec, err := h.records.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	return rec, true
}

func (h *Handler) renderFailed(ctx context.Context, side, id string, err error) {
	h.logger.ErrorContext(ctx, "card render failed",
		"side", side,
		"credential_id", id,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}

func writeImage(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
