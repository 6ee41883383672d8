package httpapi

import (
	"net/http"
	"time"
)

// atomicTimeResponse mirrors the public reference-time payload.
type atomicTimeResponse struct {
	CurrentTime    time.Time `json:"current_time"`
	IsAtomicSource bool      `json:"is_atomic_source"`
	Timezone       string    `json:"timezone"`
	UnixTimestamp  float64   `json:"unix_timestamp"`
}

// atomicTime returns the current reference time for the requested timezone.
// Public: the frontend clock polls it without credentials.
func (h *Handler) atomicTime(w http.ResponseWriter, r *http.Request) {
	tz := r.URL.Query().Get("tz")
	if tz == "" {
		tz = "UTC"
	}

	current, isAtomic := h.time.Now(r.Context(), tz)

	writeJSON(w, http.StatusOK, atomicTimeResponse{
		CurrentTime:    current,
		IsAtomicSource: isAtomic,
		Timezone:       tz,
		UnixTimestamp:  float64(current.UnixNano()) / float64(time.Second),
	})
}
