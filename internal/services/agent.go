package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bonchicares/agent-wallet/internal/logger"
	"github.com/bonchicares/agent-wallet/internal/models"
)

var (
	// ErrAgentNotFound is returned when no agent exists for the id.
	ErrAgentNotFound = errors.New("agent not found")
	// ErrInvalidStatusTransition is returned for a transition outside
	// PENDING -> ACTIVE -> BLOCKED -> ACTIVE.
	ErrInvalidStatusTransition = errors.New("invalid agent status transition")
)

// AgentReader defines read operations for agents.
type AgentReader interface {
	GetByID(ctx context.Context, agentID uuid.UUID) (*models.AgentDB, error)
}

// AgentWriter defines write operations for agents.
type AgentWriter interface {
	Save(ctx context.Context, fullName, phone string, createdBy *uuid.UUID) (*models.AgentDB, error)
	SetStatus(ctx context.Context, agentID uuid.UUID, status string) (*models.AgentDB, error)
}

// WalletCreator creates the zero-balance wallet during onboarding.
type WalletCreator interface {
	Create(ctx context.Context, agentID uuid.UUID) (*models.WalletDB, error)
}

// allowedTransitions maps a current status to the statuses it may move to.
var allowedTransitions = map[string][]string{
	models.AgentStatusPending: {models.AgentStatusActive},
	models.AgentStatusActive:  {models.AgentStatusBlocked},
	models.AgentStatusBlocked: {models.AgentStatusActive},
}

// AgentService handles agent onboarding and status management. An agent
// and its wallet are created in one transaction so no agent can ever
// exist without a wallet. Status transitions never touch the wallet: a
// blocked agent keeps its balance untouched.
type AgentService struct {
	db            *sqlx.DB
	reader        AgentReader
	writer        AgentWriter
	walletCreator WalletCreator
}

// NewAgentService creates a new AgentService.
func NewAgentService(db *sqlx.DB, reader AgentReader, writer AgentWriter, walletCreator WalletCreator) *AgentService {
	return &AgentService{
		db:            db,
		reader:        reader,
		writer:        writer,
		walletCreator: walletCreator,
	}
}

// Onboard creates an agent in PENDING status together with its
// zero-balance wallet.
func (s *AgentService) Onboard(ctx context.Context, fullName, phone string, createdBy *uuid.UUID) (*models.AgentDB, error) {
	var agent *models.AgentDB

	err := runInTx(ctx, s.db, func(txCtx context.Context) error {
		var err error
		agent, err = s.writer.Save(txCtx, fullName, phone, createdBy)
		if err != nil {
			return err
		}

		if _, err := s.walletCreator.Create(txCtx, agent.AgentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrWalletAlreadyExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		logger.Log.Errorw("agent onboarding failed", "phone", phone, "error", err)
		return nil, err
	}

	return agent, nil
}

// SetStatus applies a status transition after validating it against the
// agent lifecycle.
func (s *AgentService) SetStatus(ctx context.Context, agentID uuid.UUID, status string) (*models.AgentDB, error) {
	agent, err := s.reader.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}

	if !transitionAllowed(agent.Status, status) {
		logger.Log.Warnw("rejected agent status transition",
			"agent_id", agentID, "from", agent.Status, "to", status)
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.writer.SetStatus(ctx, agentID, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAgentNotFound
		}
		logger.Log.Errorw("failed to set agent status", "agent_id", agentID, "error", err)
		return nil, err
	}

	return updated, nil
}

// GetByID returns an agent.
func (s *AgentService) GetByID(ctx context.Context, agentID uuid.UUID) (*models.AgentDB, error) {
	agent, err := s.reader.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}
	return agent, nil
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
