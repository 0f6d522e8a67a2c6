package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction directions
const (
	DirectionCredit = "credit"
	DirectionDebit  = "debit"
)

// Reference types identifying the business event behind a transaction
const (
	ReferenceAdminTopup       = "admin_topup"
	ReferenceWalletAction     = "wallet_action"
	ReferenceUserRegistration = "user_registration"
)

// TransactionDB represents one append-only ledger entry. Rows are never
// updated or deleted once written.
type TransactionDB struct {
	TransactionSeq int64           `json:"transaction_seq" db:"transaction_seq"` // Monotonic insertion-order tiebreaker
	TransactionID  uuid.UUID       `json:"transaction_id" db:"transaction_id"`   // Unique transaction identifier
	AgentID        uuid.UUID       `json:"agent_id" db:"agent_id"`               // Owning agent
	Direction      string          `json:"direction" db:"direction"`             // credit or debit
	Amount         decimal.Decimal `json:"amount" db:"amount"`                   // Always positive
	Description    string          `json:"description" db:"description"`         // Free-text remark
	ReferenceType  string          `json:"reference_type" db:"reference_type"`   // Triggering business event tag
	ReferenceID    *string         `json:"reference_id" db:"reference_id"`       // Optional foreign identifier (e.g. member id)
	PerformedBy    *uuid.UUID      `json:"performed_by" db:"performed_by"`       // Actor who performed the operation
	BalanceBefore  decimal.Decimal `json:"balance_before" db:"balance_before"`   // Wallet balance immediately before commit
	BalanceAfter   decimal.Decimal `json:"balance_after" db:"balance_after"`     // Wallet balance immediately after commit
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`           // Commit timestamp
}

// TransactionEvent is the JSON payload published to Kafka after a ledger
// operation commits.
type TransactionEvent struct {
	TransactionID string `json:"transaction_id"` // Unique identifier of the committed transaction
	AgentID       string `json:"agent_id"`       // Owning agent
	Direction     string `json:"direction"`      // credit or debit
	Amount        string `json:"amount"`         // Decimal amount as string
	BalanceAfter  string `json:"balance_after"`  // Resulting balance as string
	ReferenceType string `json:"reference_type"` // Triggering business event tag
	Timestamp     int64  `json:"timestamp"`      // Unix seconds of publication
}
