// Package store persists profiles, events and budgets as documents in the
// relational database. Every operation takes the caller's session explicitly
// and scopes reads and writes to the documents that session owns.
package store

import (
	"errors" // Error matching
	"fmt"    // Error wrapping
	"time"   // Clock

	"eventflow/internal/domain" // Importing domain models

	"github.com/go-playground/validator/v10" // Struct and field validation
	"github.com/google/uuid"                 // Document IDs
	"gorm.io/gorm"                           // GORM ORM library
)

// DefaultWriteAttempts bounds the compare-and-set retries of a budget write
const DefaultWriteAttempts = 5

// Store is the document store backed by GORM
type Store struct {
	db            *gorm.DB
	validate      *validator.Validate
	writeAttempts int
	now           func() time.Time
	newID         func() string
}

// Option configures a Store
type Option func(*Store)

// WithWriteAttempts sets how many times a conflicting budget write is retried
func WithWriteAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.writeAttempts = n
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Store on top of an opened and migrated database
func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:            db,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		writeAttempts: DefaultWriteAttempts,
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// checkDocument validates a document loaded from the database
func (s *Store) checkDocument(kind, id string, doc any) error {
	if err := s.validate.Struct(doc); err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrMalformedDocument, kind, id, err)
	}
	return nil
}

func requireSession(sess domain.Session) error {
	if !sess.Valid() {
		return fmt.Errorf("%w: missing session", domain.ErrUnauthorized)
	}
	return nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
