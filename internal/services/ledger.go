package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/bonchicares/agent-wallet/internal/logger"
	"github.com/bonchicares/agent-wallet/internal/models"
)

var (
	// ErrInvalidAmount is returned when a non-positive amount is supplied.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrWalletNotFound is returned when an agent has no wallet row. It
	// signals a broken onboarding, not a user mistake.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrWalletAlreadyExists is returned when creating a wallet for an
	// agent that already holds one.
	ErrWalletAlreadyExists = errors.New("wallet already exists")
	// ErrInsufficientFunds is returned when a debit would drive the
	// balance negative. No state is mutated.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// WalletReader defines the wallet reads the ledger needs.
type WalletReader interface {
	GetByAgentID(ctx context.Context, agentID uuid.UUID) (*models.WalletDB, error)
	GetByAgentIDForUpdate(ctx context.Context, agentID uuid.UUID) (*models.WalletDB, error)
}

// WalletWriter defines the wallet mutations the ledger performs.
type WalletWriter interface {
	ApplyCredit(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) (*models.WalletDB, error)
	ApplyDebit(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) (*models.WalletDB, error)
}

// TransactionWriter appends entries to the transaction log.
type TransactionWriter interface {
	Append(ctx context.Context, entry models.TransactionDB) (*models.TransactionDB, error)
}

// TransactionReader serves paginated transaction history.
type TransactionReader interface {
	ListByAgentID(ctx context.Context, agentID uuid.UUID, page, pageSize int) ([]models.TransactionDB, error)
}

// BalanceCache caches committed wallet balances.
type BalanceCache interface {
	Get(ctx context.Context, agentID uuid.UUID) (*models.WalletDB, error)
	Set(ctx context.Context, agentID uuid.UUID, wallet *models.WalletDB) error
	Invalidate(ctx context.Context, agentID uuid.UUID) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// LedgerService owns the two balance-mutating operations of the wallet
// ledger. Each operation reads the wallet under a row lock, mutates the
// balance and appends the log entry inside one database transaction, so
// concurrent operations on the same agent serialize while different
// agents never block each other.
type LedgerService struct {
	db           *sqlx.DB
	walletReader WalletReader
	walletWriter WalletWriter
	txWriter     TransactionWriter
	txReader     TransactionReader
	cache        BalanceCache
	kafkaWriter  KafkaWriter
}

// NewLedgerService creates a new LedgerService. cache and kafkaWriter may
// be nil; both are best-effort side channels.
func NewLedgerService(
	db *sqlx.DB,
	walletReader WalletReader,
	walletWriter WalletWriter,
	txWriter TransactionWriter,
	txReader TransactionReader,
	cache BalanceCache,
	kafkaWriter KafkaWriter,
) *LedgerService {
	return &LedgerService{
		db:           db,
		walletReader: walletReader,
		walletWriter: walletWriter,
		txWriter:     txWriter,
		txReader:     txReader,
		cache:        cache,
		kafkaWriter:  kafkaWriter,
	}
}

// Credit adds amount to the agent's wallet and appends the matching
// transaction entry atomically. Returns the wallet after the mutation.
func (s *LedgerService) Credit(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal, description, referenceType string, actorID *uuid.UUID) (*models.WalletDB, error) {
	if !amount.IsPositive() {
		logger.Log.Warnw("invalid credit amount", "agent_id", agentID, "amount", amount)
		return nil, ErrInvalidAmount
	}
	if referenceType == "" {
		referenceType = models.ReferenceAdminTopup
	}

	var wallet *models.WalletDB
	var entry *models.TransactionDB

	err := runInTx(ctx, s.db, func(txCtx context.Context) error {
		before, err := s.walletReader.GetByAgentIDForUpdate(txCtx, agentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrWalletNotFound
			}
			return err
		}

		wallet, err = s.walletWriter.ApplyCredit(txCtx, agentID, amount)
		if err != nil {
			return err
		}

		entry, err = s.txWriter.Append(txCtx, models.TransactionDB{
			AgentID:       agentID,
			Direction:     models.DirectionCredit,
			Amount:        amount,
			Description:   description,
			ReferenceType: referenceType,
			PerformedBy:   actorID,
			BalanceBefore: before.Balance,
			BalanceAfter:  wallet.Balance,
		})
		return err
	})
	if err != nil {
		logger.Log.Errorw("credit failed", "agent_id", agentID, "amount", amount, "error", err)
		return nil, err
	}

	s.invalidateCache(ctx, agentID)
	s.publishTransaction(ctx, entry)

	return wallet, nil
}

// Debit removes amount from the agent's wallet and appends the matching
// transaction entry atomically. When the balance is short the operation
// fails with ErrInsufficientFunds and mutates nothing: neither the wallet
// nor the log may record a balance-violating transaction.
func (s *LedgerService) Debit(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal, description, referenceType string, referenceID *string, actorID *uuid.UUID) (*models.WalletDB, error) {
	if !amount.IsPositive() {
		logger.Log.Warnw("invalid debit amount", "agent_id", agentID, "amount", amount)
		return nil, ErrInvalidAmount
	}

	var wallet *models.WalletDB
	var entry *models.TransactionDB

	err := runInTx(ctx, s.db, func(txCtx context.Context) error {
		before, err := s.walletReader.GetByAgentIDForUpdate(txCtx, agentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrWalletNotFound
			}
			return err
		}

		if before.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}

		wallet, err = s.walletWriter.ApplyDebit(txCtx, agentID, amount)
		if err != nil {
			// Guarded UPDATE matched no row: the balance check in SQL
			// disagreed with the locked read.
			if errors.Is(err, sql.ErrNoRows) {
				return ErrInsufficientFunds
			}
			return err
		}

		entry, err = s.txWriter.Append(txCtx, models.TransactionDB{
			AgentID:       agentID,
			Direction:     models.DirectionDebit,
			Amount:        amount,
			Description:   description,
			ReferenceType: referenceType,
			ReferenceID:   referenceID,
			PerformedBy:   actorID,
			BalanceBefore: before.Balance,
			BalanceAfter:  wallet.Balance,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			logger.Log.Warnw("debit rejected", "agent_id", agentID, "amount", amount)
		} else {
			logger.Log.Errorw("debit failed", "agent_id", agentID, "amount", amount, "error", err)
		}
		return nil, err
	}

	s.invalidateCache(ctx, agentID)
	s.publishTransaction(ctx, entry)

	return wallet, nil
}

// GetBalance returns the wallet balances, served from the cache when
// possible.
func (s *LedgerService) GetBalance(ctx context.Context, agentID uuid.UUID) (*models.WalletDB, error) {
	if s.cache != nil {
		if wallet, err := s.cache.Get(ctx, agentID); err == nil {
			return wallet, nil
		}
	}

	wallet, err := s.walletReader.GetByAgentID(ctx, agentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		logger.Log.Errorw("failed to get balance", "agent_id", agentID, "error", err)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, agentID, wallet); err != nil {
			logger.Log.Errorw("failed to cache balance", "agent_id", agentID, "error", err)
		}
	}

	return wallet, nil
}

// ListTransactions returns one page of the agent's statement, newest first.
func (s *LedgerService) ListTransactions(ctx context.Context, agentID uuid.UUID, page, pageSize int) ([]models.TransactionDB, error) {
	entries, err := s.txReader.ListByAgentID(ctx, agentID, page, pageSize)
	if err != nil {
		logger.Log.Errorw("failed to list transactions", "agent_id", agentID, "error", err)
		return nil, err
	}
	return entries, nil
}

func (s *LedgerService) invalidateCache(ctx context.Context, agentID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, agentID); err != nil {
		logger.Log.Errorw("failed to invalidate balance cache", "agent_id", agentID, "error", err)
	}
}

// publishTransaction publishes a committed transaction to Kafka, best
// effort.
func (s *LedgerService) publishTransaction(ctx context.Context, entry *models.TransactionDB) {
	if s.kafkaWriter == nil || entry == nil {
		return
	}

	event := models.TransactionEvent{
		TransactionID: entry.TransactionID.String(),
		AgentID:       entry.AgentID.String(),
		Direction:     entry.Direction,
		Amount:        entry.Amount.String(),
		BalanceAfter:  entry.BalanceAfter.String(),
		ReferenceType: entry.ReferenceType,
		Timestamp:     time.Now().Unix(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("failed to marshal transaction event", "transaction_id", event.TransactionID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.TransactionID),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish transaction event", "transaction_id", event.TransactionID, "error", err)
	} else {
		logger.Log.Infow("transaction event published", "transaction_id", event.TransactionID, "amount", event.Amount)
	}
}
