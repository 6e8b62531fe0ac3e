package domain

import (
	"strings" // Trimming
	"time"    // Event dates
)

// EventStatus is the planning state of an event. Any status may move to any other.
type EventStatus string

const (
	StatusPlanning  EventStatus = "planning"
	StatusConfirmed EventStatus = "confirmed"
	StatusCompleted EventStatus = "completed"
	StatusCancelled EventStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses
func (s EventStatus) Valid() bool {
	switch s {
	case StatusPlanning, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Event Model
type Event struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id" validate:"required"`
	UserID      string      `gorm:"index:idx_events_user_date,priority:1;size:36;not null" json:"user_id" validate:"required"`
	Name        string      `gorm:"size:255;not null" json:"name" validate:"required"`
	Date        time.Time   `gorm:"index:idx_events_user_date,priority:2;not null" json:"date" validate:"required"`
	Status      EventStatus `gorm:"size:16;not null" json:"status" validate:"required,oneof=planning confirmed completed cancelled"`
	Description string      `gorm:"type:text" json:"description,omitempty"`
	Location    string      `gorm:"size:255" json:"location,omitempty"`
	CreatedAt   time.Time   `json:"created_at" validate:"required"`
	UpdatedAt   *time.Time  `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
}

// NewEvent is the caller-supplied part of an event
type NewEvent struct {
	Name        string
	Date        time.Time
	Status      EventStatus
	Description string
	Location    string
}

// Normalize trims text fields, defaults the status and checks the result
func (n *NewEvent) Normalize() error {
	n.Name = strings.TrimSpace(n.Name)
	n.Description = strings.TrimSpace(n.Description)
	n.Location = strings.TrimSpace(n.Location)
	if n.Name == "" {
		return Validationf("event name is required")
	}
	if n.Date.IsZero() {
		return Validationf("event date is required")
	}
	if n.Status == "" {
		n.Status = StatusPlanning
	}
	if !n.Status.Valid() {
		return Validationf("unknown event status %q", n.Status)
	}
	n.Date = StoreTime(n.Date)
	return nil
}

// StoreTime converts t to the form persisted by the stores: UTC, millisecond precision.
// A value passed through StoreTime compares Equal after a database round trip.
func StoreTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
