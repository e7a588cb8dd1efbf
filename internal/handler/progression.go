package handler

import (
	"log/slog"
	"net/http"

	"cartable/internal/domain/services"
	"cartable/internal/httputil"
)

// ProgressionHandler handles progression HTTP requests
type ProgressionHandler struct {
	progressionService services.ProgressionService
	logger             *slog.Logger
}

// NewProgressionHandler creates a new progression handler
func NewProgressionHandler(progressionService services.ProgressionService, logger *slog.Logger) *ProgressionHandler {
	return &ProgressionHandler{
		progressionService: progressionService,
		logger:             logger,
	}
}

// ListProgressions handles GET /api/progressions
func (h *ProgressionHandler) ListProgressions(w http.ResponseWriter, r *http.Request) {
	progressions, err := h.progressionService.ListProgressions(r.Context(), callerFrom(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, progressions)
}

// CreateProgression handles POST /api/progressions
func (h *ProgressionHandler) CreateProgression(w http.ResponseWriter, r *http.Request) {
	var req services.ProgressionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	progression, err := h.progressionService.CreateProgression(r.Context(), callerFrom(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, progression)
}

// GetProgression handles GET /api/progressions/{id}
func (h *ProgressionHandler) GetProgression(w http.ResponseWriter, r *http.Request) {
	progression, err := h.progressionService.GetProgression(r.Context(), callerFrom(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, progression)
}

// UpdateProgression handles PUT /api/progressions/{id}
func (h *ProgressionHandler) UpdateProgression(w http.ResponseWriter, r *http.Request) {
	var req services.ProgressionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	progression, err := h.progressionService.UpdateProgression(r.Context(), callerFrom(r), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, progression)
}

// DeleteProgression handles DELETE /api/progressions/{id}
func (h *ProgressionHandler) DeleteProgression(w http.ResponseWriter, r *http.Request) {
	if err := h.progressionService.DeleteProgression(r.Context(), callerFrom(r), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}
