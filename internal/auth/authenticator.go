// Package auth handles user registration, login and session tokens.
package auth

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Authenticator registers and verifies users. The service layer depends on
// this interface so the credential scheme can change without touching it.
type Authenticator interface {
	// Register creates an account. Returns ErrEmailExists or ErrWeakPassword
	// for rejected input.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the user owning email when credential matches,
	// ErrInvalidCredentials otherwise.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks credential strength without storing anything.
	ValidateCredential(credential string) error
}

var _ Authenticator = (*PasswordAuthenticator)(nil)
