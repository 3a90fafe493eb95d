package handlers

import (
	"net/http"
	"strconv"

	"github.com/raaf17/assesment-test-imp/internal/auth"
	"github.com/raaf17/assesment-test-imp/internal/services"
)

// EventHandler handles HTTP requests for the activity feed.
type EventHandler struct {
	events services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events services.EventServiceProvider) *EventHandler {
	return &EventHandler{events: events}
}

// Recent returns the authenticated user's most recent activity.
func (h *EventHandler) Recent(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "Missing auth token"})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.events.RecentForUser(session.Subject, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, "", events)
}
