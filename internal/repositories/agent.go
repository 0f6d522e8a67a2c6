package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bonchicares/agent-wallet/internal/logger"
	"github.com/bonchicares/agent-wallet/internal/models"
)

const agentColumns = `agent_id, full_name, phone, status, created_by, created_at, updated_at`

// AgentWriteRepository handles agent creation and status changes.
// Agents are never hard-deleted, only blocked.
type AgentWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewAgentWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *AgentWriteRepository {
	return &AgentWriteRepository{db: db, txGetter: txGetter}
}

func (r *AgentWriteRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Save inserts a new agent in PENDING status.
func (r *AgentWriteRepository) Save(ctx context.Context, fullName, phone string, createdBy *uuid.UUID) (*models.AgentDB, error) {
	query := `
		INSERT INTO agents (full_name, phone, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + agentColumns

	var agent models.AgentDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &agent, query,
		fullName, phone, models.AgentStatusPending, createdBy)

	logger.Log.Infow("agent save",
		"query", strings.Join(strings.Fields(query), " "),
		"phone", phone,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &agent, nil
}

// SetStatus updates the agent status. The wallet is never touched here.
func (r *AgentWriteRepository) SetStatus(ctx context.Context, agentID uuid.UUID, status string) (*models.AgentDB, error) {
	query := `
		UPDATE agents
		SET status = $2, updated_at = NOW()
		WHERE agent_id = $1
		RETURNING ` + agentColumns

	var agent models.AgentDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &agent, query, agentID, status)

	logger.Log.Infow("agent set status",
		"query", strings.Join(strings.Fields(query), " "),
		"agent_id", agentID,
		"status", status,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &agent, nil
}

// AgentReadRepository handles agent reads.
type AgentReadRepository struct {
	db *sqlx.DB
}

func NewAgentReadRepository(db *sqlx.DB) *AgentReadRepository {
	return &AgentReadRepository{db: db}
}

// GetByID returns the agent row.
func (r *AgentReadRepository) GetByID(ctx context.Context, agentID uuid.UUID) (*models.AgentDB, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE agent_id = $1`

	var agent models.AgentDB
	err := r.db.GetContext(ctx, &agent, query, agentID)

	logger.Log.Infow("agent get",
		"query", strings.Join(strings.Fields(query), " "),
		"agent_id", agentID,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &agent, nil
}
