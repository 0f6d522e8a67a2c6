package models

import (
	"time"

	"github.com/google/uuid"
)

// Agent lifecycle statuses
const (
	AgentStatusPending = "PENDING"
	AgentStatusActive  = "ACTIVE"
	AgentStatusBlocked = "BLOCKED"
)

// AgentDB represents an agent row in the database
type AgentDB struct {
	AgentID   uuid.UUID  `json:"agent_id" db:"agent_id"`     // Unique agent identifier
	FullName  string     `json:"full_name" db:"full_name"`   // Agent display name
	Phone     string     `json:"phone" db:"phone"`           // Unique contact number
	Status    string     `json:"status" db:"status"`         // PENDING, ACTIVE or BLOCKED
	CreatedBy *uuid.UUID `json:"created_by" db:"created_by"` // Operator who onboarded the agent
	CreatedAt time.Time  `json:"created_at" db:"created_at"` // Timestamp when the agent was onboarded
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"` // Timestamp of the last update
}
