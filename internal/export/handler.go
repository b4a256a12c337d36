package export

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dErrors "capela/pkg/domain-errors"
	"capela/pkg/platform/httputil"
)

// Handler serves the export endpoint.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register registers the export route with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/export", h.handleExport)
}

type exportRequest struct {
	IDs []string `json:"ids"`
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "corpo da requisição inválido"))
			return
		}
	}

	bundle, err := h.service.Build(r.Context(), req.IDs)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+bundle.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(bundle.Data)
}
