// Package api exposes HTTP handlers for the activity tracker.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"example.com/sleepbaby/internal/capture"
	"example.com/sleepbaby/internal/domain"
	"example.com/sleepbaby/internal/feed"
	"example.com/sleepbaby/internal/listview"
	"example.com/sleepbaby/internal/persistence"
	"example.com/sleepbaby/internal/projection"
)

// Handler coordinates HTTP requests with the domain service, the capture
// dialog flow, and the live list views.
type Handler struct {
	service  *domain.Service
	hub      *feed.Hub
	identity domain.IdentityResolver
	logger   *log.Logger
	pageSize int
}

// NewHandler builds a Handler. pageSize bounds list and stream queries; a
// value <= 0 means unbounded.
func NewHandler(service *domain.Service, hub *feed.Hub, identity domain.IdentityResolver, logger *log.Logger, pageSize int) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{service: service, hub: hub, identity: identity, logger: logger, pageSize: pageSize}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/activities", h.activities)
	mux.HandleFunc("/v1/activities/stream", h.streamActivities)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createActivity(w, r)
	case http.MethodGet:
		h.listActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	// Each submission runs through its own dialog lifecycle so the in-flight
	// and reset semantics match the interactive flow.
	dialog := capture.NewController(h.service, logNotifier{h.logger})
	if err := dialog.Open(); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	record, err := dialog.Submit(r.Context(), req.toInput())
	if err != nil {
		var fields domain.FieldErrors
		switch {
		case errors.As(err, &fields):
			writeFieldErrors(w, fields)
		case errors.Is(err, domain.ErrUnauthenticated):
			writeError(w, http.StatusUnauthorized, "unauthorized", "sign in to log activities")
		default:
			writeError(w, http.StatusBadGateway, "persistence_failed", "could not store the activity")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toActivityView(*record))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	filter := domain.Filter(r.URL.Query().Get("filter"))
	if filter == "" {
		filter = domain.FilterAll
	}
	if !filter.Known() {
		writeError(w, http.StatusBadRequest, "validation_failed", "unknown filter")
		return
	}

	limit := h.pageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	records, next, err := h.service.Query(r.Context(), filter, cursor, limit)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "sign in to view activities")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	resp := ListActivitiesResponse{
		State: listview.Ready.String(),
		Items: projection.Project(records, time.Now()),
	}
	if len(records) == 0 && cursor == nil {
		resp.State = listview.Empty.String()
		resp.EmptyMessage = projection.EmptyMessage(filter)
	}
	resp.NextCursor = persistence.EncodeCursor(next)
	writeJSON(w, http.StatusOK, resp)
}

// streamActivities serves the live list over server-sent events. Every feed
// notification for the caller re-runs the query and pushes a fresh snapshot.
func (h *Handler) streamActivities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "server_error", "streaming unsupported")
		return
	}

	filter := domain.Filter(r.URL.Query().Get("filter"))
	if filter == "" {
		filter = domain.FilterAll
	}
	if !filter.Known() {
		writeError(w, http.StatusBadRequest, "validation_failed", "unknown filter")
		return
	}

	if _, ok := h.identity.CurrentCaller(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "sign in to view activities")
		return
	}

	view := listview.New(h.service, h.hub, h.identity, filter, h.pageSize)

	runDone := make(chan error, 1)
	go func() { runDone <- view.Run(r.Context()) }()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			<-runDone
			return
		case err := <-runDone:
			if err != nil && !errors.Is(err, r.Context().Err()) {
				h.logger.Printf("activity stream ended: %v", err)
			}
			return
		case <-view.Changed():
			h.writeListEvent(w, view, filter)
			flusher.Flush()
		}
	}
}

func (h *Handler) writeListEvent(w http.ResponseWriter, view *listview.View, filter domain.Filter) {
	snap := view.Snapshot()
	resp := ListActivitiesResponse{
		State: snap.State.String(),
		Items: projection.Project(snap.Records, time.Now()),
	}
	if snap.State == listview.Empty {
		resp.EmptyMessage = projection.EmptyMessage(filter)
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}

	data, err := json.Marshal(resp)
	if err != nil {
		h.logger.Printf("encode list event: %v", err)
		return
	}
	fmt.Fprintf(w, "event: list\ndata: %s\n\n", data)
}

// logNotifier routes dialog outcome notifications to the server log; the
// response body carries the user-facing result.
type logNotifier struct {
	logger *log.Logger
}

func (n logNotifier) Success(message string) { n.logger.Printf("capture: %s", message) }
func (n logNotifier) Error(message string)   { n.logger.Printf("capture: %s", message) }

// CreateActivityRequest is the payload for POST /v1/activities.
type CreateActivityRequest struct {
	Kind            string     `json:"kind"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Amount          *int       `json:"amount,omitempty"`
	Unit            string     `json:"unit,omitempty"`
	DiaperKind      string     `json:"diaper_kind,omitempty"`
	CustomName      string     `json:"custom_name,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

func (r CreateActivityRequest) toInput() domain.Input {
	return domain.Input{
		Kind:            r.Kind,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		DurationMinutes: r.DurationMinutes,
		Amount:          r.Amount,
		Unit:            r.Unit,
		DiaperKind:      r.DiaperKind,
		CustomName:      r.CustomName,
		Notes:           r.Notes,
	}
}

// ActivityView exposes one stored record.
type ActivityView struct {
	ActivityID      string     `json:"activity_id"`
	OwnerID         string     `json:"owner_id"`
	Kind            string     `json:"kind"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Amount          *int       `json:"amount,omitempty"`
	Unit            *string    `json:"unit,omitempty"`
	DiaperKind      *string    `json:"diaper_kind,omitempty"`
	CustomName      *string    `json:"custom_name,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ListActivitiesResponse packages list results with the view state.
type ListActivitiesResponse struct {
	State        string            `json:"state"`
	EmptyMessage string            `json:"empty_message,omitempty"`
	Items        []projection.Item `json:"items"`
	NextCursor   string            `json:"next_cursor,omitempty"`
	Error        string            `json:"error,omitempty"`
}

func writeFieldErrors(w http.ResponseWriter, fields domain.FieldErrors) {
	payload := struct {
		Type   string            `json:"type"`
		Fields map[string]string `json:"fields"`
	}{
		Type:   "validation_failed",
		Fields: fields,
	}
	writeJSON(w, http.StatusBadRequest, payload)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toActivityView(rec domain.ActivityRecord) ActivityView {
	view := ActivityView{
		ActivityID:      rec.ID,
		OwnerID:         rec.OwnerID,
		Kind:            string(rec.Kind),
		StartTime:       rec.StartTime,
		EndTime:         rec.EndTime,
		DurationMinutes: rec.DurationMinutes,
		Amount:          rec.Amount,
		CustomName:      rec.CustomName,
		Notes:           rec.Notes,
		CreatedAt:       rec.CreatedAt,
	}
	if rec.Unit != nil {
		unit := string(*rec.Unit)
		view.Unit = &unit
	}
	if rec.DiaperKind != nil {
		diaper := string(*rec.DiaperKind)
		view.DiaperKind = &diaper
	}
	return view
}
