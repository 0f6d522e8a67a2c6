package models

import (
	"time"

	"github.com/google/uuid"
)

// Operator roles
const (
	RoleAdmin       = "admin"
	RoleCoordinator = "coordinator"
	RoleAgent       = "agent"
)

// UserDB represents an operator record in the database
type UserDB struct {
	UserID       uuid.UUID `json:"user_id" db:"user_id"`             // Primary key
	Username     string    `json:"username" db:"username"`           // Unique username
	Email        string    `json:"email" db:"email"`                 // Operator email
	PasswordHash string    `json:"password_hash" db:"password_hash"` // Bcrypt hash
	Role         string    `json:"role" db:"role"`                   // admin, coordinator or agent
	CreatedAt    time.Time `json:"created_at" db:"created_at"`       // Creation timestamp
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`       // Last update timestamp
}
