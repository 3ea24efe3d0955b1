package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// MinPasswordLength is the single password policy, applied on registration
// and password change alike.
const MinPasswordLength = 8

// User models an account holder. PasswordHash never leaves the process: it is
// excluded from JSON and only the repository and service layers touch it.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
