package store

import (
	"context" // Context for database operations
	"fmt"     // Error wrapping
	"strings" // String manipulation

	"eventflow/internal/domain" // Importing domain models
)

// CreateAccount inserts an identity record. A taken email yields ErrConflict.
func (s *Store) CreateAccount(ctx context.Context, account *domain.UserAccount) error {
	account.Email = NormalizeEmail(account.Email)
	if account.ID == "" { // Assign an ID unless the caller chose one
		account.ID = s.newID()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = domain.StoreTime(s.now())
	}
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		if isDuplicate(err) {
			return domain.Conflictf("email %s already registered", account.Email)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// GetAccountByEmail looks an identity record up by login email
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	var account domain.UserAccount
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&account).Error
	if isNotFound(err) {
		return nil, domain.NotFoundf("account %s", email)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &account, nil
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
