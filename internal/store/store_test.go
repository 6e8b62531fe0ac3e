package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"eventflow/internal/db"
	"eventflow/internal/domain"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "store.db"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return New(database, opts...)
}

// newTestUser creates an account and its profile and returns the session
func newTestUser(t *testing.T, s *Store, email string) domain.Session {
	t.Helper()
	ctx := context.Background()
	account := &domain.UserAccount{Email: email, PasswordHash: "x"}
	require.NoError(t, s.CreateAccount(ctx, account))
	sess := domain.Session{UserID: account.ID, Email: account.Email}
	_, err := s.CreateUserProfile(ctx, sess, domain.RoleProducer, email)
	require.NoError(t, err)
	return sess
}

func newTestEvent(t *testing.T, s *Store, sess domain.Session, name string, date time.Time) *domain.Event {
	t.Helper()
	event, err := s.CreateEvent(context.Background(), sess, domain.NewEvent{Name: name, Date: date})
	require.NoError(t, err)
	return event
}
