package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bonchicares/agent-wallet/internal/logger"
	"github.com/bonchicares/agent-wallet/internal/models"
)

const transactionColumns = `transaction_seq, transaction_id, agent_id, direction, amount,
	description, reference_type, reference_id, performed_by,
	balance_before, balance_after, created_at`

// TransactionWriteRepository appends ledger entries. The table is
// append-only: this repository deliberately exposes no update or delete.
type TransactionWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewTransactionWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *TransactionWriteRepository {
	return &TransactionWriteRepository{db: db, txGetter: txGetter}
}

func (r *TransactionWriteRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Append persists one transaction entry. The caller supplies all fields
// including balance_before and balance_after; the log computes nothing.
func (r *TransactionWriteRepository) Append(ctx context.Context, entry models.TransactionDB) (*models.TransactionDB, error) {
	query := `
		INSERT INTO wallet_transactions
			(agent_id, direction, amount, description, reference_type,
			 reference_id, performed_by, balance_before, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING ` + transactionColumns

	var saved models.TransactionDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &saved, query,
		entry.AgentID, entry.Direction, entry.Amount, entry.Description,
		entry.ReferenceType, entry.ReferenceID, entry.PerformedBy,
		entry.BalanceBefore, entry.BalanceAfter,
	)

	logger.Log.Infow("transaction append",
		"query", strings.Join(strings.Fields(query), " "),
		"agent_id", entry.AgentID,
		"direction", entry.Direction,
		"amount", entry.Amount,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// TransactionReadRepository serves paginated transaction history.
type TransactionReadRepository struct {
	db *sqlx.DB
}

func NewTransactionReadRepository(db *sqlx.DB) *TransactionReadRepository {
	return &TransactionReadRepository{db: db}
}

// ListByAgentID returns one page of an agent's transactions, newest first.
// transaction_seq breaks ordering ties between entries committed within
// the same timestamp, keeping pagination deterministic.
func (r *TransactionReadRepository) ListByAgentID(ctx context.Context, agentID uuid.UUID, page, pageSize int) ([]models.TransactionDB, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM wallet_transactions
		WHERE agent_id = $1
		ORDER BY created_at DESC, transaction_seq DESC
		LIMIT $2 OFFSET $3`

	var entries []models.TransactionDB
	err := r.db.SelectContext(ctx, &entries, query, agentID, pageSize, (page-1)*pageSize)

	logger.Log.Infow("transaction list",
		"query", strings.Join(strings.Fields(query), " "),
		"agent_id", agentID,
		"page", page,
		"page_size", pageSize,
		"count", len(entries),
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return entries, nil
}
