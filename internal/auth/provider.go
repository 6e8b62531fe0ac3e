// Package auth is the identity provider: it turns email/password credentials
// into user accounts and verifies them on sign-in.
package auth

import (
	"context" // Context for store calls
	"errors"  // Error matching
	"fmt"     // Error wrapping
	"strings" // String manipulation

	"eventflow/internal/domain" // Accounts and error kinds

	"github.com/go-playground/validator/v10" // Struct and field validation
	"golang.org/x/crypto/bcrypt"             // Password hashing
)

// Password length limits; bcrypt ignores input beyond 72 bytes
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	ErrWeakPassword       = domain.Validationf("password must be %d-%d characters", MinPasswordLength, MaxPasswordLength)
	ErrInvalidEmail       = domain.Validationf("email address is not valid")
)

// IdentityProvider creates accounts and signs users in
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, password string) (*domain.UserAccount, error)
	SignIn(ctx context.Context, email, password string) (*domain.UserAccount, error)
}

// AccountStore is the persistence the password provider needs
type AccountStore interface {
	CreateAccount(ctx context.Context, account *domain.UserAccount) error
	GetAccountByEmail(ctx context.Context, email string) (*domain.UserAccount, error)
}

// PasswordProvider implements IdentityProvider with bcrypt password hashes
type PasswordProvider struct {
	accounts AccountStore
	cost     int
	validate *validator.Validate
}

// NewPasswordProvider creates a provider. A zero cost means bcrypt.DefaultCost.
func NewPasswordProvider(accounts AccountStore, cost int) *PasswordProvider {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordProvider{accounts: accounts, cost: cost, validate: validator.New()}
}

// CreateAccount validates the credentials, hashes the password and stores the account
func (p *PasswordProvider) CreateAccount(ctx context.Context, email, password string) (*domain.UserAccount, error) {
	email = strings.TrimSpace(email)
	if err := p.validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost) // Hash the password
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	account := &domain.UserAccount{Email: email, PasswordHash: string(hash)}
	if err := p.accounts.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// SignIn checks the credentials. Unknown emails and wrong passwords fail the same way.
func (p *PasswordProvider) SignIn(ctx context.Context, email, password string) (*domain.UserAccount, error) {
	account, err := p.accounts.GetAccountByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	// Compare provided password with stored hash
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}
