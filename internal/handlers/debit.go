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

// DebitTokener defines only the token methods needed by this handler.
type DebitTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// Debiter defines the interface that the service must implement.
type Debiter interface {
	Debit(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal, description, referenceType string, referenceID *string, actorID *uuid.UUID) (*models.WalletDB, error)
}

// DebitRequest represents the JSON body for a wallet deduction
// swagger:model DebitRequest
type DebitRequest struct {
	// Amount to debit
	// required: true
	Amount decimal.Decimal `json:"amount"`

	// Free-text remark
	Description string `json:"description" validate:"max=500"`

	// Triggering business event tag; defaults to wallet_action
	ReferenceType string `json:"reference_type" validate:"omitempty,max=50"`

	// Optional identifier of the triggering business record
	ReferenceID *string `json:"reference_id" validate:"omitempty,max=100"`
}

// DebitResponse represents a successful deduction response
// swagger:model DebitResponse
type DebitResponse struct {
	// Success message
	Message string `json:"message"`

	// Wallet after the debit
	NewBalance WalletBalance `json:"new_balance"`
}

// DebitErrorResponse represents an error response for a deduction
// swagger:model DebitErrorResponse
type DebitErrorResponse struct {
	// Error message
	Error string `json:"error"`
}

// NewDebitHandler returns an HTTP handler for debiting an agent wallet.
// @Summary Debit agent wallet
// @Description Deducts from an agent's wallet and appends the matching ledger entry atomically. Fails without any mutation when funds are insufficient.
// @Tags wallet
// @Accept json
// @Produce json
// @Param agentID path string true "Agent ID"
// @Param request body handlers.DebitRequest true "Debit Request"
// @Success 200 {object} handlers.DebitResponse "Wallet debited"
// @Failure 400 {object} handlers.DebitErrorResponse "Invalid amount or insufficient funds"
// @Failure 401 {object} handlers.DebitErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.DebitErrorResponse "Wallet not found"
// @Router /agents/{agentID}/wallet/debit [post]
// @Security BearerAuth
func NewDebitHandler(
	svc Debiter,
	tokenGetter DebitTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(DebitErrorResponse{Error: "Unauthorized"})
			return
		}
		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(DebitErrorResponse{Error: "Unauthorized"})
			return
		}

		agentID, err := uuid.Parse(chi.URLParam(r, "agentID"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(DebitErrorResponse{Error: "Invalid agent id"})
			return
		}

		var req DebitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(DebitErrorResponse{Error: "Invalid request body"})
			return
		}
		if err := validate.Struct(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(DebitErrorResponse{Error: err.Error()})
			return
		}
		if !req.Amount.IsPositive() {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(DebitErrorResponse{Error: "Invalid amount"})
			return
		}

		referenceType := req.ReferenceType
		if referenceType == "" {
			referenceType = models.ReferenceWalletAction
		}

		wallet, err := svc.Debit(ctx, agentID, req.Amount, req.Description, referenceType, req.ReferenceID, &claims.ActorID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidAmount):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(DebitErrorResponse{Error: "Invalid amount"})
			case errors.Is(err, services.ErrInsufficientFunds):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(DebitErrorResponse{Error: "Insufficient funds"})
			case errors.Is(err, services.ErrWalletNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(DebitErrorResponse{Error: "Wallet not found"})
			default:
				logger.Log.Errorw("failed to debit wallet", "agent_id", agentID, "amount", req.Amount, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(DebitErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(DebitResponse{
			Message: "Wallet debited successfully",
			NewBalance: WalletBalance{
				Balance:     wallet.Balance,
				TotalEarned: wallet.TotalEarned,
				TotalSpent:  wallet.TotalSpent,
			},
		})
	}
}
