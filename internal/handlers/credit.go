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

// CreditTokener defines only the token methods needed by this handler.
type CreditTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// Crediter defines the interface that the service must implement.
type Crediter interface {
	Credit(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal, description, referenceType string, actorID *uuid.UUID) (*models.WalletDB, error)
}

// CreditRequest represents the JSON body for a wallet top-up
// swagger:model CreditRequest
type CreditRequest struct {
	// Amount to credit
	// required: true
	Amount decimal.Decimal `json:"amount"`

	// Free-text remark
	Description string `json:"description" validate:"max=500"`

	// Triggering business event tag; defaults to admin_topup
	ReferenceType string `json:"reference_type" validate:"omitempty,max=50"`
}

// CreditResponse represents a successful top-up response
// swagger:model CreditResponse
type CreditResponse struct {
	// Success message
	Message string `json:"message"`

	// Wallet after the credit
	NewBalance WalletBalance `json:"new_balance"`
}

// CreditErrorResponse represents an error response for a top-up
// swagger:model CreditErrorResponse
type CreditErrorResponse struct {
	// Error message
	Error string `json:"error"`
}

// NewCreditHandler returns an HTTP handler for crediting an agent wallet.
// @Summary Credit agent wallet
// @Description Tops up an agent's wallet and appends the matching ledger entry atomically.
// @Tags wallet
// @Accept json
// @Produce json
// @Param agentID path string true "Agent ID"
// @Param request body handlers.CreditRequest true "Credit Request"
// @Success 200 {object} handlers.CreditResponse "Wallet credited"
// @Failure 400 {object} handlers.CreditErrorResponse "Invalid amount"
// @Failure 401 {object} handlers.CreditErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.CreditErrorResponse "Wallet not found"
// @Router /agents/{agentID}/wallet/credit [post]
// @Security BearerAuth
func NewCreditHandler(
	svc Crediter,
	tokenGetter CreditTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(CreditErrorResponse{Error: "Unauthorized"})
			return
		}
		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(CreditErrorResponse{Error: "Unauthorized"})
			return
		}

		agentID, err := uuid.Parse(chi.URLParam(r, "agentID"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(CreditErrorResponse{Error: "Invalid agent id"})
			return
		}

		var req CreditRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(CreditErrorResponse{Error: "Invalid request body"})
			return
		}
		if err := validate.Struct(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(CreditErrorResponse{Error: err.Error()})
			return
		}
		if !req.Amount.IsPositive() {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(CreditErrorResponse{Error: "Invalid amount"})
			return
		}

		wallet, err := svc.Credit(ctx, agentID, req.Amount, req.Description, req.ReferenceType, &claims.ActorID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidAmount):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(CreditErrorResponse{Error: "Invalid amount"})
			case errors.Is(err, services.ErrWalletNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(CreditErrorResponse{Error: "Wallet not found"})
			default:
				logger.Log.Errorw("failed to credit wallet", "agent_id", agentID, "amount", req.Amount, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(CreditErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(CreditResponse{
			Message: "Wallet topped up successfully",
			NewBalance: WalletBalance{
				Balance:     wallet.Balance,
				TotalEarned: wallet.TotalEarned,
				TotalSpent:  wallet.TotalSpent,
			},
		})
	}
}
