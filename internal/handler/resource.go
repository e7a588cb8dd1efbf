package handler

import (
	"log/slog"
	"net/http"

	"cartable/internal/domain/services"
	"cartable/internal/httputil"
)

// ResourceHandler handles resource HTTP requests
type ResourceHandler struct {
	resourceService services.ResourceService
	logger          *slog.Logger
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(resourceService services.ResourceService, logger *slog.Logger) *ResourceHandler {
	return &ResourceHandler{
		resourceService: resourceService,
		logger:          logger,
	}
}

// ListResources handles GET /api/resources
func (h *ResourceHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.resourceService.ListResources(r.Context(), callerFrom(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resources)
}

// CreateResource handles POST /api/resources
func (h *ResourceHandler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req services.CreateResourceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resource, err := h.resourceService.CreateResource(r.Context(), callerFrom(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, resource)
}

// GetResource handles GET /api/resources/{id}
func (h *ResourceHandler) GetResource(w http.ResponseWriter, r *http.Request) {
	resource, err := h.resourceService.GetResource(r.Context(), callerFrom(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resource)
}

// updateResourceBody distinguishes an absent description from an explicit null
type updateResourceBody struct {
	Title       *string                 `json:"title"`
	Description httputil.OptionalString `json:"description"`
	TypeID      *string                 `json:"type_id"`
	SubTypeID   *string                 `json:"sub_type_id"`
	SessionIDs  []string                `json:"session_ids"`
}

// UpdateResource handles PUT /api/resources/{id}
// Absent fields are left unchanged; "description": null clears it.
func (h *ResourceHandler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	var body updateResourceBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resource, err := h.resourceService.UpdateResource(r.Context(), callerFrom(r), r.PathValue("id"), &services.UpdateResourceRequest{
		Title:       body.Title,
		Description: body.Description.Patch(),
		TypeID:      body.TypeID,
		SubTypeID:   body.SubTypeID,
		SessionIDs:  body.SessionIDs,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resource)
}

// DeleteResource handles DELETE /api/resources/{id}
func (h *ResourceHandler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	if err := h.resourceService.DeleteResource(r.Context(), callerFrom(r), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// ListResourceTypes handles GET /api/resource-types
func (h *ResourceHandler) ListResourceTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.resourceService.ListResourceTypes(r.Context(), callerFrom(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, types)
}

// ListResourceSubTypes handles GET /api/resource-types/{id}/subtypes
func (h *ResourceHandler) ListResourceSubTypes(w http.ResponseWriter, r *http.Request) {
	subTypes, err := h.resourceService.ListResourceSubTypes(r.Context(), callerFrom(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, subTypes)
}
