package store

import (
	"context" // Context for database operations
	"fmt"     // Error wrapping
	"strings" // String manipulation

	"eventflow/internal/domain" // Importing domain models
)

// CreateUserProfile stores the profile written at sign-up
func (s *Store) CreateUserProfile(ctx context.Context, sess domain.Session, role domain.Role, email string) (*domain.UserProfile, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, domain.Validationf("role must be %q or %q", domain.RoleProducer, domain.RoleAgency)
	}
	profile := &domain.UserProfile{
		UserID:    sess.UserID,
		Role:      role,
		Email:     NormalizeEmail(email),
		CreatedAt: domain.StoreTime(s.now()),
	}
	if err := s.validate.Struct(profile); err != nil {
		return nil, domain.Validationf("%v", err)
	}
	if err := s.db.WithContext(ctx).Create(profile).Error; err != nil {
		if isDuplicate(err) {
			return nil, domain.Conflictf("profile for %s already exists", sess.UserID)
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return profile, nil
}

// GetUserProfile returns the session user's profile
func (s *Store) GetUserProfile(ctx context.Context, sess domain.Session) (*domain.UserProfile, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	var profile domain.UserProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", sess.UserID).First(&profile).Error
	if isNotFound(err) {
		return nil, domain.NotFoundf("profile %s", sess.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if err := s.checkDocument("profile", sess.UserID, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateUserProfile merges the supplied fields into the session user's profile.
// Role and email are not writable through this path.
func (s *Store) UpdateUserProfile(ctx context.Context, sess domain.Session, update domain.ProfileUpdate) (*domain.UserProfile, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	fields := map[string]any{"updated_at": domain.StoreTime(s.now())} // Only supplied fields are written
	if update.Name != nil {
		fields["name"] = strings.TrimSpace(*update.Name)
	}
	if update.Phone != nil {
		fields["phone"] = strings.TrimSpace(*update.Phone)
	}
	if update.Company != nil {
		fields["company"] = strings.TrimSpace(*update.Company)
	}

	res := s.db.WithContext(ctx).Model(&domain.UserProfile{}).Where("user_id = ?", sess.UserID).Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("update profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.NotFoundf("profile %s", sess.UserID)
	}
	return s.GetUserProfile(ctx, sess)
}
