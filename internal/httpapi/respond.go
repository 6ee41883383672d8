package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/Homoney/watch-collection-tracker/internal/accuracy"
	"github.com/Homoney/watch-collection-tracker/internal/errors"
	"github.com/Homoney/watch-collection-tracker/internal/logging"
)

// errorResponse is the JSON error body.
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps domain errors onto HTTP statuses. Business-rule violations
// and malformed input are client errors with the human-readable reason;
// anything unrecognized is a 500 with a generic body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *accuracy.ValidationError
		pairingErr    *accuracy.InvalidPairingError
	)

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &pairingErr),
		errors.Is(err, accuracy.ErrFirstReadingMustBeInitial),
		errors.Is(err, accuracy.ErrNoInitialReading):
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
	case errors.Is(err, accuracy.ErrNotFound),
		errors.Is(err, accuracy.ErrWatchNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: err.Error()})
	default:
		logging.L(r.Context()).Error("request failed", logging.ErrAttr(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "internal server error"})
	}
}
