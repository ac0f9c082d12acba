package handler

import (
	"log/slog"
	"net/http"

	"taskhive/internal/domain/services"
	"taskhive/internal/httputil"
)

// ListHandler handles list HTTP requests.
type ListHandler struct {
	lists  services.ListService
	logger *slog.Logger
}

// NewListHandler creates a new list handler.
func NewListHandler(lists services.ListService, logger *slog.Logger) *ListHandler {
	return &ListHandler{lists: lists, logger: logger}
}

// CreateList creates a list in a folder or directly in a space.
// POST /api/lists
func (h *ListHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var req services.CreateListRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ActorID = actor

	list, err := h.lists.CreateList(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, list)
}

// ListLists lists one parent's active lists: the folder named by the
// folder_id query parameter, or the space's direct lists without it.
// GET /api/spaces/{id}/lists[?folder_id=...]
func (h *ListHandler) ListLists(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	spaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var folderID *string
	if v := r.URL.Query().Get("folder_id"); v != "" {
		folderID = &v
	}

	lists, err := h.lists.ListLists(r.Context(), spaceID, folderID, actor)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, lists)
}

// GetList retrieves a list.
// GET /api/lists/{id}
func (h *ListHandler) GetList(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	list, err := h.lists.GetList(r.Context(), id, actor)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, list)
}

// UpdateList renames a list and/or changes its visibility.
// PATCH /api/lists/{id}
func (h *ListHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.UpdateListRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ActorID = actor

	list, err := h.lists.UpdateList(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, list)
}

// ReorderList moves a list among its parent's lists.
// POST /api/lists/{id}/reorder
func (h *ListHandler) ReorderList(w http.ResponseWriter, r *http.Request) {
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

	list, err := h.lists.ReorderList(r.Context(), id, actor, order)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, list)
}

// DeleteList soft-deletes a list.
// DELETE /api/lists/{id}
func (h *ListHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.lists.DeleteList(r.Context(), id, actor); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetPermission grants or adjusts a user's permission on the list.
// PUT /api/lists/{id}/permissions
func (h *ListHandler) SetPermission(w http.ResponseWriter, r *http.Request) {
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

	perm, err := h.lists.SetPermission(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, perm)
}

// RevokePermission deactivates a user's permission record on the list.
// DELETE /api/lists/{id}/permissions/{userID}
func (h *ListHandler) RevokePermission(w http.ResponseWriter, r *http.Request) {
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

	if err := h.lists.RevokePermission(r.Context(), id, userID, actor); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
