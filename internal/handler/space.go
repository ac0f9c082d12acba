package handler

import (
	"log/slog"
	"net/http"

	"taskhive/internal/domain/services"
	"taskhive/internal/httputil"
)

// SpaceHandler handles space HTTP requests.
type SpaceHandler struct {
	spaces services.SpaceService
	logger *slog.Logger
}

// NewSpaceHandler creates a new space handler.
func NewSpaceHandler(spaces services.SpaceService, logger *slog.Logger) *SpaceHandler {
	return &SpaceHandler{spaces: spaces, logger: logger}
}

// CreateSpace creates a space at the tail of the workspace's order.
// POST /api/workspaces/{id}/spaces
func (h *SpaceHandler) CreateSpace(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.CreateSpaceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.WorkspaceID = workspaceID
	req.ActorID = actor

	space, err := h.spaces.CreateSpace(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, space)
}

// ListSpaces lists the workspace's active spaces in order.
// GET /api/workspaces/{id}/spaces
func (h *SpaceHandler) ListSpaces(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	spaces, err := h.spaces.ListSpaces(r.Context(), workspaceID, actor)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, spaces)
}

// GetSpace retrieves a space.
// GET /api/spaces/{id}
func (h *SpaceHandler) GetSpace(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	space, err := h.spaces.GetSpace(r.Context(), id, actor)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, space)
}

// UpdateSpace renames a space and/or changes its visibility.
// PATCH /api/spaces/{id}
func (h *SpaceHandler) UpdateSpace(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.UpdateSpaceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ActorID = actor

	space, err := h.spaces.UpdateSpace(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, space)
}

// ReorderSpace moves a space to a new position among its siblings.
// POST /api/spaces/{id}/reorder
func (h *SpaceHandler) ReorderSpace(w http.ResponseWriter, r *http.Request) {
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

	space, err := h.spaces.ReorderSpace(r.Context(), id, actor, order)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, space)
}

// DeleteSpace soft-deletes a space.
// DELETE /api/spaces/{id}
func (h *SpaceHandler) DeleteSpace(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.spaces.DeleteSpace(r.Context(), id, actor); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetPermission grants or adjusts a user's permission on the space.
// PUT /api/spaces/{id}/permissions
func (h *SpaceHandler) SetPermission(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.SetPermissionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ResourceID = id
	req.ActorID = actor

	perm, err := h.spaces.SetPermission(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, perm)
}

// RevokePermission deactivates a user's permission record on the space.
// DELETE /api/spaces/{id}/permissions/{userID}
func (h *SpaceHandler) RevokePermission(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	if err := h.spaces.RevokePermission(r.Context(), id, userID, actor); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
