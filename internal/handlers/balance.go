package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bonchicares/agent-wallet/internal/jwt"
	"github.com/bonchicares/agent-wallet/internal/logger"
	"github.com/bonchicares/agent-wallet/internal/models"
	"github.com/bonchicares/agent-wallet/internal/services"
)

// BalanceTokener defines only the token methods needed by this handler.
type BalanceTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// BalanceReader defines the interface that the service must implement.
type BalanceReader interface {
	GetBalance(ctx context.Context, agentID uuid.UUID) (*models.WalletDB, error)
}

// WalletBalance represents an agent's balances
// swagger:model WalletBalance
type WalletBalance struct {
	// Current spendable balance
	Balance decimal.Decimal `json:"balance"`

	// Lifetime sum of credits
	TotalEarned decimal.Decimal `json:"total_earned"`

	// Lifetime sum of debits
	TotalSpent decimal.Decimal `json:"total_spent"`
}

// BalanceResponse represents a successful balance response
// swagger:model BalanceResponse
type BalanceResponse struct {
	// Agent balances
	Balance WalletBalance `json:"balance"`
}

// BalanceErrorResponse represents an error response when fetching balance
// swagger:model BalanceErrorResponse
type BalanceErrorResponse struct {
	// Error message
	Error string `json:"error"`
}

// NewAgentBalanceHandler returns an HTTP handler for fetching an agent's
// wallet balances.
// @Summary Get agent balance
// @Description Returns current balance, lifetime earned and lifetime spent for an agent.
// @Tags wallet
// @Produce json
// @Param agentID path string true "Agent ID"
// @Success 200 {object} handlers.BalanceResponse "Agent balance"
// @Failure 401 {object} handlers.BalanceErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.BalanceErrorResponse "Wallet not found"
// @Router /agents/{agentID}/balance [get]
// @Security BearerAuth
func NewAgentBalanceHandler(
	svc BalanceReader,
	tokenGetter BalanceTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(BalanceErrorResponse{Error: "Unauthorized"})
			return
		}
		if _, err := tokenGetter.GetClaims(ctx, tokenStr); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(BalanceErrorResponse{Error: "Unauthorized"})
			return
		}

		agentID, err := uuid.Parse(chi.URLParam(r, "agentID"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(BalanceErrorResponse{Error: "Invalid agent id"})
			return
		}

		wallet, err := svc.GetBalance(ctx, agentID)
		if err != nil {
			if errors.Is(err, services.ErrWalletNotFound) {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(BalanceErrorResponse{Error: "Wallet not found"})
				return
			}
			logger.Log.Errorw("failed to get balance", "agent_id", agentID, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(BalanceErrorResponse{Error: "Internal server error"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(BalanceResponse{
			Balance: WalletBalance{
				Balance:     wallet.Balance,
				TotalEarned: wallet.TotalEarned,
				TotalSpent:  wallet.TotalSpent,
			},
		})
	}
}
