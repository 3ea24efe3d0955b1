package ports

import (
	"context"

	"github.com/accountd/auth-api/internal/core/domain"
)

// ProfileUpdate carries the mutable profile fields for a partial update.
// An empty string means "leave unchanged".
type ProfileUpdate struct {
	Name  string
	Email string
}

// UserRepository defines the persistence boundary for accounts. Absent
// records surface as domain.ErrUserNotFound; a duplicate email surfaces as
// domain.ErrEmailTaken.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByEmailExcluding looks up an account by email while ignoring the
	// account with excludeID. Used to detect email collisions on profile update.
	FindByEmailExcluding(ctx context.Context, email, excludeID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	DeleteByID(ctx context.Context, id string) error
}
