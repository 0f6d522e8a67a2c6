package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/bonchicares/agent-wallet/internal/logger"
	"github.com/bonchicares/agent-wallet/internal/models"
)

// cachedBalance is the Redis value for one wallet.
type cachedBalance struct {
	Balance     decimal.Decimal `json:"balance"`
	TotalEarned decimal.Decimal `json:"total_earned"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
}

// BalanceCacheRepository caches wallet balances in Redis with a TTL.
// Every committed ledger operation invalidates the owning agent's entry,
// so the cache only ever serves a balance the store has committed.
type BalanceCacheRepository struct {
	client *redis.Client
	exp    time.Duration
}

func NewBalanceCacheRepository(client *redis.Client, expiration time.Duration) *BalanceCacheRepository {
	return &BalanceCacheRepository{client: client, exp: expiration}
}

func balanceKey(agentID uuid.UUID) string {
	return fmt.Sprintf("wallet_balance:%s", agentID)
}

// Get fetches a cached balance. A cache miss is returned as an error.
func (r *BalanceCacheRepository) Get(ctx context.Context, agentID uuid.UUID) (*models.WalletDB, error) {
	key := balanceKey(agentID)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("balance not cached for agent %s", agentID)
		}
		return nil, err
	}

	var cached cachedBalance
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		logger.Log.Errorw("corrupt balance cache entry", "key", key, "error", err)
		return nil, err
	}

	return &models.WalletDB{
		AgentID:     agentID,
		Balance:     cached.Balance,
		TotalEarned: cached.TotalEarned,
		TotalSpent:  cached.TotalSpent,
	}, nil
}

// Set caches the wallet balance with the configured TTL.
func (r *BalanceCacheRepository) Set(ctx context.Context, agentID uuid.UUID, wallet *models.WalletDB) error {
	data, err := json.Marshal(cachedBalance{
		Balance:     wallet.Balance,
		TotalEarned: wallet.TotalEarned,
		TotalSpent:  wallet.TotalSpent,
	})
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, balanceKey(agentID), data, r.exp).Err()

	logger.Log.Infow("balance cache set",
		"agent_id", agentID,
		"balance", wallet.Balance,
		"error", err,
	)

	return err
}

// Invalidate drops the cached balance for an agent.
func (r *BalanceCacheRepository) Invalidate(ctx context.Context, agentID uuid.UUID) error {
	err := r.client.Del(ctx, balanceKey(agentID)).Err()

	logger.Log.Infow("balance cache invalidate",
		"agent_id", agentID,
		"error", err,
	)

	return err
}
