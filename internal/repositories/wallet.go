package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/bonchicares/agent-wallet/internal/logger"
	"github.com/bonchicares/agent-wallet/internal/models"
)

const walletColumns = `wallet_id, agent_id, balance, total_earned, total_spent, created_at, updated_at`

// WalletWriteRepository handles wallet mutations. All mutating queries
// resolve their executor from the request transaction when one is present.
type WalletWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewWalletWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *WalletWriteRepository {
	return &WalletWriteRepository{db: db, txGetter: txGetter}
}

func (r *WalletWriteRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Create initializes a zero-balance wallet for the agent. Returns
// sql.ErrNoRows when a wallet already exists: the conflict clause must
// never silently overwrite an existing balance.
func (r *WalletWriteRepository) Create(ctx context.Context, agentID uuid.UUID) (*models.WalletDB, error) {
	query := `
		INSERT INTO wallets (agent_id, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		ON CONFLICT (agent_id) DO NOTHING
		RETURNING ` + walletColumns

	var wallet models.WalletDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &wallet, query, agentID)

	logger.Log.Infow("wallet create",
		"query", strings.Join(strings.Fields(query), " "),
		"agent_id", agentID,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// ApplyCredit increases balance and total_earned by amount in one statement.
func (r *WalletWriteRepository) ApplyCredit(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) (*models.WalletDB, error) {
	query := `
		UPDATE wallets
		SET balance = balance + $2,
		    total_earned = total_earned + $2,
		    updated_at = NOW()
		WHERE agent_id = $1
		RETURNING ` + walletColumns

	var wallet models.WalletDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &wallet, query, agentID, amount)

	logger.Log.Infow("wallet credit",
		"query", strings.Join(strings.Fields(query), " "),
		"agent_id", agentID,
		"amount", amount,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// ApplyDebit decreases balance and increases total_spent, guarded so the
// balance can never go negative. Returns sql.ErrNoRows when funds are
// insufficient.
func (r *WalletWriteRepository) ApplyDebit(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) (*models.WalletDB, error) {
	query := `
		UPDATE wallets
		SET balance = balance - $2,
		    total_spent = total_spent + $2,
		    updated_at = NOW()
		WHERE agent_id = $1 AND balance >= $2
		RETURNING ` + walletColumns

	var wallet models.WalletDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &wallet, query, agentID, amount)

	logger.Log.Infow("wallet debit",
		"query", strings.Join(strings.Fields(query), " "),
		"agent_id", agentID,
		"amount", amount,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// WalletReadRepository handles wallet reads.
type WalletReadRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewWalletReadRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *WalletReadRepository {
	return &WalletReadRepository{db: db, txGetter: txGetter}
}

func (r *WalletReadRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// GetByAgentID returns the wallet row for an agent.
func (r *WalletReadRepository) GetByAgentID(ctx context.Context, agentID uuid.UUID) (*models.WalletDB, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE agent_id = $1`

	var wallet models.WalletDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &wallet, query, agentID)

	logger.Log.Infow("wallet get",
		"query", strings.Join(strings.Fields(query), " "),
		"agent_id", agentID,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// GetByAgentIDForUpdate reads the wallet row holding a row lock for the
// remainder of the surrounding transaction. Callers must run inside a
// transaction; the lock serializes concurrent ledger operations on the
// same agent while leaving other agents untouched.
func (r *WalletReadRepository) GetByAgentIDForUpdate(ctx context.Context, agentID uuid.UUID) (*models.WalletDB, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE agent_id = $1 FOR UPDATE`

	var wallet models.WalletDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &wallet, query, agentID)

	logger.Log.Infow("wallet get for update",
		"query", strings.Join(strings.Fields(query), " "),
		"agent_id", agentID,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &wallet, nil
}
