package ports

import (
	"context"

	"github.com/accountd/auth-api/internal/core/domain"
)

// RegisterInput carries the registration form. All fields are required.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

type LoginInput struct {
	Email    string
	Password string
}

// UpdateProfileInput is a partial update; at least one field must be set.
type UpdateProfileInput struct {
	Name  string
	Email string
}

type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// Caller identifies the authenticated principal a protected operation runs
// on behalf of, as decoded from its token.
type Caller struct {
	UserID string
	Role   string
}

// AuthService implements the account lifecycle: registration, login, profile
// and credential mutation, deletion, and lookup.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (string, *domain.User, error)
	Login(ctx context.Context, input LoginInput) (string, *domain.User, error)
	UpdateProfile(ctx context.Context, caller Caller, input UpdateProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, caller Caller, input ChangePasswordInput) (string, error)
	DeleteUser(ctx context.Context, caller Caller, targetID string) error
	GetUserByID(ctx context.Context, caller Caller, targetID string) (*domain.User, error)
	UnlockUser(ctx context.Context, targetID string) error
}
