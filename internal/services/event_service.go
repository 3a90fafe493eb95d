package services

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/raaf17/assesment-test-imp/internal/apperr"
	"github.com/raaf17/assesment-test-imp/internal/models"
)

// EventServiceProvider defines the interface for activity recording.
type EventServiceProvider interface {
	Record(eventType, level, message string, userID *string) error
	RecentForUser(userID string, limit int) ([]models.Event, error)
}

// EventService records auth and content activity to the database.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// Record logs a new event to the database.
func (s *EventService) Record(eventType, level, message string, userID *string) error {
	event := models.Event{
		ID:      uuid.New().String(),
		Type:    eventType,
		Level:   level,
		Message: message,
		UserID:  userID,
	}

	stmt, err := s.db.Prepare("INSERT INTO events (id, type, level, message, user_id) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return apperr.Internal("Failed to record event", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(event.ID, event.Type, event.Level, event.Message, event.UserID)
	if err != nil {
		return apperr.Internal("Failed to record event", err)
	}
	return nil
}

// RecentForUser retrieves the most recent events for a single user.
func (s *EventService) RecentForUser(userID string, limit int) ([]models.Event, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	rows, err := s.db.Query(`SELECT id, type, level, message, user_id, created_at
		FROM events WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, apperr.Internal("Failed to list events", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.UserID, &event.CreatedAt); err != nil {
			return nil, apperr.Internal("Failed to scan event", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("Failed to list events", err)
	}
	return events, nil
}
