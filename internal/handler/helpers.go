package handler

import (
	"net/http"

	"taskhive/internal/httputil"
)

// actorID extracts the authenticated user id. The auth middleware
// rejects unauthenticated requests, so an empty id here means the
// middleware was not applied.
func actorID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := httputil.GetUserID(r)
	if id == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return "", false
	}
	return id, true
}

// pathID extracts a required path parameter.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue(name)
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, name+" is required")
		return "", false
	}
	return id, true
}

// reorderRequest carries the target position for reorder endpoints.
type reorderRequest struct {
	Order int `json:"order"`
}

func parseReorder(w http.ResponseWriter, r *http.Request) (int, bool) {
	var req reorderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return req.Order, true
}

// Health reports liveness.
// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
