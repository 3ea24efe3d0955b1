package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/accountd/auth-api/internal/core/domain"
	"github.com/accountd/auth-api/internal/core/ports"
	"github.com/accountd/auth-api/internal/pkg/password"
	"github.com/accountd/auth-api/internal/pkg/token"
)

// AuthService orchestrates the account lifecycle over the repository, the
// credential hasher, the token issuer, and the login limiter.
type AuthService struct {
	repo    ports.UserRepository
	hasher  password.Hasher
	issuer  *token.Issuer
	limiter ports.LoginLimiter
	logger  zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, hasher password.Hasher, issuer *token.Issuer, limiter ports.LoginLimiter, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, issuer: issuer, limiter: limiter, logger: logger}
}

// Register creates an account with the default role and logs it in by
// issuing a token for it.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (string, *domain.User, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" || input.ConfirmPassword == "" {
		return "", nil, domain.ErrMissingFields
	}
	if input.Password != input.ConfirmPassword {
		return "", nil, domain.ErrPasswordMismatch
	}
	if len(input.Password) < domain.MinPasswordLength {
		return "", nil, domain.ErrPasswordTooShort
	}

	// The unique index on email is the authoritative guard; this lookup just
	// gives the common case a clean rejection before hashing work.
	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return "", nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, fmt.Errorf("register lookup: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return "", nil, err
	}

	tkn, err := s.issuer.Issue(created.ID, created.Role)
	if err != nil {
		return "", nil, err
	}
	return tkn, created, nil
}

// Login verifies credentials and issues a token. A missing account and a
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input ports.LoginInput) (string, *domain.User, error) {
	if input.Email == "" || input.Password == "" {
		return "", nil, domain.ErrMissingFields
	}

	if s.throttled(ctx, input.Email) {
		return "", nil, domain.ErrTooManyAttempts
	}

	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, input.Email)
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("login lookup: %w", err)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		s.recordFailure(ctx, input.Email)
		return "", nil, domain.ErrInvalidCredentials
	}

	if err := s.limiter.Reset(ctx, input.Email); err != nil {
		s.logger.Warn().Err(err).Msg("login limiter reset failed")
	}

	tkn, err := s.issuer.Issue(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}
	return tkn, user, nil
}

// UpdateProfile applies a partial name/email update to the caller's own
// account, rejecting emails already held by a different account.
func (s *AuthService) UpdateProfile(ctx context.Context, caller ports.Caller, input ports.UpdateProfileInput) (*domain.User, error) {
	if input.Name == "" && input.Email == "" {
		return nil, domain.ErrNothingToUpdate
	}

	if input.Email != "" {
		_, err := s.repo.FindByEmailExcluding(ctx, input.Email, caller.UserID)
		switch {
		case err == nil:
			return nil, domain.ErrEmailTaken
		case !errors.Is(err, domain.ErrUserNotFound):
			return nil, fmt.Errorf("email collision lookup: %w", err)
		}
	}

	return s.repo.UpdateProfile(ctx, caller.UserID, ports.ProfileUpdate{
		Name:  input.Name,
		Email: input.Email,
	})
}

// ChangePassword rotates the caller's credential and issues a fresh token.
// The new password is compared to the stored hash, not the submitted current
// password, since only the hash is authoritative.
func (s *AuthService) ChangePassword(ctx context.Context, caller ports.Caller, input ports.ChangePasswordInput) (string, error) {
	if input.CurrentPassword == "" || input.NewPassword == "" || input.ConfirmPassword == "" {
		return "", domain.ErrMissingFields
	}
	if input.NewPassword != input.ConfirmPassword {
		return "", domain.ErrPasswordMismatch
	}
	if len(input.NewPassword) < domain.MinPasswordLength {
		return "", domain.ErrPasswordTooShort
	}

	user, err := s.repo.FindByID(ctx, caller.UserID)
	if err != nil {
		return "", err
	}

	if !s.hasher.Verify(input.CurrentPassword, user.PasswordHash) {
		return "", domain.ErrCurrentPassword
	}
	if s.hasher.Verify(input.NewPassword, user.PasswordHash) {
		return "", domain.ErrSamePassword
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return "", err
	}

	return s.issuer.Issue(user.ID, user.Role)
}

// DeleteUser removes the target account. Callers may delete themselves;
// admins may delete anyone.
func (s *AuthService) DeleteUser(ctx context.Context, caller ports.Caller, targetID string) error {
	if err := authorize(caller, targetID); err != nil {
		return err
	}
	return s.repo.DeleteByID(ctx, targetID)
}

// GetUserByID returns the target account's public fields under the same
// self-or-admin rule as deletion.
func (s *AuthService) GetUserByID(ctx context.Context, caller ports.Caller, targetID string) (*domain.User, error) {
	if err := authorize(caller, targetID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, targetID)
}

// UnlockUser clears the login-attempt counter for the target account.
// Exposed on an admin-only route.
func (s *AuthService) UnlockUser(ctx context.Context, targetID string) error {
	user, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.limiter.Reset(ctx, user.Email); err != nil {
		return fmt.Errorf("unlock user: %w", err)
	}
	return nil
}

func authorize(caller ports.Caller, targetID string) error {
	if caller.Role != domain.RoleAdmin && caller.UserID != targetID {
		return domain.ErrForbidden
	}
	return nil
}

// throttled and recordFailure fail open: an unavailable limiter backend must
// not turn into a login outage.
func (s *AuthService) throttled(ctx context.Context, email string) bool {
	blocked, err := s.limiter.TooManyAttempts(ctx, email)
	if err != nil {
		s.logger.Warn().Err(err).Msg("login limiter check failed")
		return false
	}
	return blocked
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.logger.Warn().Err(err).Msg("login limiter record failed")
	}
}
