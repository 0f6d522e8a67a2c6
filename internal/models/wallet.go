package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletDB represents a wallet row in the database.
// balance == total_earned - total_spent holds after every committed
// ledger operation and is also enforced by a table CHECK constraint.
type WalletDB struct {
	WalletID    uuid.UUID       `json:"wallet_id" db:"wallet_id"`       // Unique wallet identifier
	AgentID     uuid.UUID       `json:"agent_id" db:"agent_id"`         // Identifier of the owning agent
	Balance     decimal.Decimal `json:"balance" db:"balance"`           // Current spendable balance
	TotalEarned decimal.Decimal `json:"total_earned" db:"total_earned"` // Lifetime sum of credits
	TotalSpent  decimal.Decimal `json:"total_spent" db:"total_spent"`   // Lifetime sum of debits
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`     // Timestamp when the wallet was created
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`     // Timestamp of the last balance mutation
}
