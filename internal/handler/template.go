package handler

import (
	"log/slog"
	"net/http"

	"taskhive/internal/domain/services"
	"taskhive/internal/httputil"
)

// TemplateHandler handles list template and field HTTP requests.
type TemplateHandler struct {
	templates services.TemplateService
	logger    *slog.Logger
}

// NewTemplateHandler creates a new template handler.
func NewTemplateHandler(templates services.TemplateService, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, logger: logger}
}

// GetTemplate retrieves a list's template with its active fields,
// creating the template on first access.
// GET /api/lists/{id}/template
func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	listID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	template, err := h.templates.GetTemplate(r.Context(), listID, actor)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, template)
}

// CreateField adds a field to a list's template.
// POST /api/lists/{id}/fields
func (h *TemplateHandler) CreateField(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	listID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.CreateFieldRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ListID = listID
	req.ActorID = actor

	field, err := h.templates.CreateField(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, field)
}

// UpdateField updates a field's name, config and/or required flag. The
// field's type is immutable.
// PATCH /api/fields/{id}
func (h *TemplateHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.UpdateFieldRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ActorID = actor

	field, err := h.templates.UpdateField(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, field)
}

// ReorderField moves a field among its template's fields.
// POST /api/fields/{id}/reorder
func (h *TemplateHandler) ReorderField(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	order, ok := parseReorder(w, r)
	if !ok {
		return
	}

	field, err := h.templates.ReorderField(r.Context(), id, actor, order)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, field)
}

// DeactivateField soft-deletes a field.
// DELETE /api/fields/{id}
func (h *TemplateHandler) DeactivateField(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.templates.DeactivateField(r.Context(), id, actor); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
