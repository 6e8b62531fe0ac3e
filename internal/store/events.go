package store

import (
	"context" // Context for database operations
	"fmt"     // Error wrapping

	"eventflow/internal/domain" // Importing domain models
)

// CreateEvent stores a new event owned by the session user
func (s *Store) CreateEvent(ctx context.Context, sess domain.Session, in domain.NewEvent) (*domain.Event, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	event := &domain.Event{
		ID:          s.newID(),
		UserID:      sess.UserID,
		Name:        in.Name,
		Date:        in.Date,
		Status:      in.Status,
		Description: in.Description,
		Location:    in.Location,
		CreatedAt:   domain.StoreTime(s.now()),
	}
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// GetEvent returns one of the session user's events. Events owned by other
// users are reported as missing.
func (s *Store) GetEvent(ctx context.Context, sess domain.Session, eventID string) (*domain.Event, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	var event domain.Event
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", eventID, sess.UserID).
		First(&event).Error
	if isNotFound(err) {
		return nil, domain.NotFoundf("event %s", eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := s.checkDocument("event", eventID, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// GetUserEvents lists the session user's events, latest date first
func (s *Store) GetUserEvents(ctx context.Context, sess domain.Session) ([]domain.Event, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	events := []domain.Event{} // Empty list, not null, when there are none
	err := s.db.WithContext(ctx).
		Where("user_id = ?", sess.UserID).
		Order("date desc").
		Order("created_at desc").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	for i := range events {
		if err := s.checkDocument("event", events[i].ID, &events[i]); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// UpdateEventStatus sets the event status. Any status may follow any other.
func (s *Store) UpdateEventStatus(ctx context.Context, sess domain.Session, eventID string, status domain.EventStatus) (*domain.Event, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, domain.Validationf("unknown event status %q", status)
	}
	res := s.db.WithContext(ctx).Model(&domain.Event{}).
		Where("id = ? AND user_id = ?", eventID, sess.UserID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": domain.StoreTime(s.now()),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("update event status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.NotFoundf("event %s", eventID) // Missing or owned by someone else
	}
	return s.GetEvent(ctx, sess, eventID)
}
