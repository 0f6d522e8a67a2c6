package models

import (
	"time"

	"github.com/google/uuid"
)

// MemberDB represents a registered card holder
type MemberDB struct {
	MemberID     uuid.UUID `json:"member_id" db:"member_id"`         // Primary key
	FullName     string    `json:"full_name" db:"full_name"`         // Member display name
	Phone        string    `json:"phone" db:"phone"`                 // Unique contact number
	CardNumber   string    `json:"card_number" db:"card_number"`     // Issued discount card number
	RegisteredBy uuid.UUID `json:"registered_by" db:"registered_by"` // Agent who sold the card
	CreatedAt    time.Time `json:"created_at" db:"created_at"`       // Registration timestamp
}
