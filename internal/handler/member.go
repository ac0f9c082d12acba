package handler

import (
	"log/slog"
	"net/http"

	"taskhive/internal/domain/services"
	"taskhive/internal/httputil"
)

// MemberHandler handles workspace membership HTTP requests.
type MemberHandler struct {
	memberships services.MembershipService
	logger      *slog.Logger
}

// NewMemberHandler creates a new membership handler.
func NewMemberHandler(memberships services.MembershipService, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{memberships: memberships, logger: logger}
}

// AddMember invites a user into the workspace.
// POST /api/workspaces/{id}/members
func (h *MemberHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.AddMemberRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.WorkspaceID = workspaceID
	req.ActedBy = actor

	member, err := h.memberships.AddMember(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, member)
}

// ListMembers lists the active members of a workspace.
// GET /api/workspaces/{id}/members
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	members, err := h.memberships.ListMembers(r.Context(), workspaceID, actor)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, members)
}

// ChangeRole changes a member's workspace role.
// PATCH /api/workspaces/{id}/members
func (h *MemberHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.ChangeRoleRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.WorkspaceID = workspaceID
	req.ActedBy = actor

	member, err := h.memberships.ChangeRole(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, member)
}

// RemoveMember soft-removes a member from their workspace.
// DELETE /api/members/{id}
func (h *MemberHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	memberID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.memberships.RemoveMember(r.Context(), memberID, actor); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
