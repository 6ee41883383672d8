package httpapi

import (
	"net/http"

	"github.com/google/uuid"
)

// userIDHeader carries the authenticated user's ID, set by the upstream auth
// layer. This service trusts it: authentication itself is an external
// collaborator.
const userIDHeader = "X-User-ID"

// callerID extracts the authenticated user ID from the request. The second
// return is false when the header is missing or malformed; the caller should
// respond 401.
func callerID(r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get(userIDHeader)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{Detail: "not authenticated"})
}
