package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/Homoney/watch-collection-tracker/internal/accuracy"
	"github.com/Homoney/watch-collection-tracker/internal/metrics"
)

var readingsCreated = metrics.NewCounterVec(metrics.CounterOpts{
	Name: "accuracy_readings_created_total",
	Help: "Accuracy readings created, by kind",
}, []string{"kind"})

// createReadingRequest is the JSON body for POST accuracy-readings.
// Pointers distinguish "absent" from zero values for the required fields.
type createReadingRequest struct {
	WatchSecondsPosition *int    `json:"watch_seconds_position"`
	IsInitialReading     *bool   `json:"is_initial_reading"`
	Notes                *string `json:"notes"`
	Timezone             string  `json:"timezone"`
}

// updateReadingRequest is the JSON body for PUT; all fields optional.
type updateReadingRequest struct {
	WatchSecondsPosition *int    `json:"watch_seconds_position"`
	IsInitialReading     *bool   `json:"is_initial_reading"`
	Notes                *string `json:"notes"`
	Timezone             *string `json:"timezone"`
}

func (h *Handler) createReading(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	userID, ok := callerID(r)
	if !ok {
		unauthorized(w)
		return
	}

	watchID, err := uuid.Parse(params.ByName("watch_id"))
	if err != nil {
		writeError(w, r, &accuracy.ValidationError{Reason: "watch_id must be a UUID"})
		return
	}

	var req createReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, &accuracy.ValidationError{Reason: "invalid JSON body"})
		return
	}
	if req.WatchSecondsPosition == nil {
		writeError(w, r, &accuracy.ValidationError{Reason: "watch_seconds_position is required"})
		return
	}
	if req.IsInitialReading == nil {
		writeError(w, r, &accuracy.ValidationError{Reason: "is_initial_reading is required"})
		return
	}

	reading, err := h.service.CreateReading(r.Context(), userID, watchID, accuracy.CreateInput{
		WatchSecondsPosition: *req.WatchSecondsPosition,
		IsInitialReading:     *req.IsInitialReading,
		Notes:                req.Notes,
		Timezone:             req.Timezone,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	kind := "subsequent"
	if reading.IsInitialReading {
		kind = "initial"
	}
	readingsCreated.WithLabelValues(kind).Inc()

	writeJSON(w, http.StatusCreated, reading)
}

func (h *Handler) listReadings(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	userID, ok := callerID(r)
	if !ok {
		unauthorized(w)
		return
	}

	watchID, err := uuid.Parse(params.ByName("watch_id"))
	if err != nil {
		writeError(w, r, &accuracy.ValidationError{Reason: "watch_id must be a UUID"})
		return
	}

	readings, err := h.service.ListReadings(r.Context(), userID, watchID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, readings)
}

func (h *Handler) getReading(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	userID, ok := callerID(r)
	if !ok {
		unauthorized(w)
		return
	}

	watchID, readingID, err := pathIDs(params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	reading, err := h.service.GetReading(r.Context(), userID, watchID, readingID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reading)
}

func (h *Handler) updateReading(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	userID, ok := callerID(r)
	if !ok {
		unauthorized(w)
		return
	}

	watchID, readingID, err := pathIDs(params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, &accuracy.ValidationError{Reason: "invalid JSON body"})
		return
	}

	reading, err := h.service.UpdateReading(r.Context(), userID, watchID, readingID, accuracy.UpdateInput{
		WatchSecondsPosition: req.WatchSecondsPosition,
		IsInitialReading:     req.IsInitialReading,
		Notes:                req.Notes,
		Timezone:             req.Timezone,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reading)
}

func (h *Handler) deleteReading(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	userID, ok := callerID(r)
	if !ok {
		unauthorized(w)
		return
	}

	watchID, readingID, err := pathIDs(params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.DeleteReading(r.Context(), userID, watchID, readingID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) analytics(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	userID, ok := callerID(r)
	if !ok {
		unauthorized(w)
		return
	}

	watchID, err := uuid.Parse(params.ByName("watch_id"))
	if err != nil {
		writeError(w, r, &accuracy.ValidationError{Reason: "watch_id must be a UUID"})
		return
	}

	analytics, err := h.service.WatchAnalytics(r.Context(), userID, watchID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, analytics)
}

func pathIDs(params httprouter.Params) (watchID, readingID uuid.UUID, err error) {
	watchID, err = uuid.Parse(params.ByName("watch_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, &accuracy.ValidationError{Reason: "watch_id must be a UUID"}
	}
	readingID, err = uuid.Parse(params.ByName("reading_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, &accuracy.ValidationError{Reason: "reading_id must be a UUID"}
	}
	return watchID, readingID, nil
}
