package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/bonchicares/agent-wallet/internal/jwt"
	"github.com/bonchicares/agent-wallet/internal/logger"
	"github.com/bonchicares/agent-wallet/internal/models"
	"github.com/bonchicares/agent-wallet/internal/services"
)

// MemberTokener defines only the token methods needed by this handler.
type MemberTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// MemberRegistrar defines the interface that the service must implement.
type MemberRegistrar interface {
	Register(ctx context.Context, fullName, phone string, agentID uuid.UUID, actorID *uuid.UUID) (*models.MemberDB, *models.WalletDB, error)
}

// MemberRegisterRequest represents the JSON body for member registration
// swagger:model MemberRegisterRequest
type MemberRegisterRequest struct {
	// Member display name
	// required: true
	FullName string `json:"full_name" validate:"required,min=2,max=100"`

	// Unique contact number
	// required: true
	Phone string `json:"phone" validate:"required,min=7,max=20"`

	// Selling agent whose wallet pays the registration fee
	// required: true
	AgentID uuid.UUID `json:"agent_id" validate:"required"`
}

// MemberRegisterResponse represents a successful member registration
// swagger:model MemberRegisterResponse
type MemberRegisterResponse struct {
	// Success message
	Message string `json:"message"`

	// The registered member with the issued card number
	Member *models.MemberDB `json:"member"`

	// The selling agent's wallet after the fee debit
	NewBalance WalletBalance `json:"new_balance"`
}

// MemberRegisterErrorResponse represents an error response for member registration
// swagger:model MemberRegisterErrorResponse
type MemberRegisterErrorResponse struct {
	// Error message
	Error string `json:"error"`
}

// NewMemberRegisterHandler returns an HTTP handler for the member
// registration workflow. The route must be wrapped in the transaction
// middleware: the member insert and the fee debit commit or roll back as
// one unit.
// @Summary Register a member
// @Description Creates a member, issues a card number and debits the registration fee from the selling agent's wallet. Insufficient funds abort the whole registration.
// @Tags members
// @Accept json
// @Produce json
// @Param request body handlers.MemberRegisterRequest true "Member Registration Request"
// @Success 201 {object} handlers.MemberRegisterResponse "Member registered"
// @Failure 400 {object} handlers.MemberRegisterErrorResponse "Insufficient funds / duplicate member / invalid request"
// @Failure 401 {object} handlers.MemberRegisterErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.MemberRegisterErrorResponse "Wallet not found"
// @Router /members [post]
// @Security BearerAuth
func NewMemberRegisterHandler(
	svc MemberRegistrar,
	tokenGetter MemberTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(MemberRegisterErrorResponse{Error: "Unauthorized"})
			return
		}
		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(MemberRegisterErrorResponse{Error: "Unauthorized"})
			return
		}

		var req MemberRegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(MemberRegisterErrorResponse{Error: "Invalid request body"})
			return
		}
		if err := validate.Struct(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(MemberRegisterErrorResponse{Error: err.Error()})
			return
		}

		member, wallet, err := svc.Register(ctx, req.FullName, req.Phone, req.AgentID, &claims.ActorID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrMemberAlreadyExists):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(MemberRegisterErrorResponse{Error: "Member already registered"})
			case errors.Is(err, services.ErrInsufficientFunds):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(MemberRegisterErrorResponse{Error: "Insufficient funds"})
			case errors.Is(err, services.ErrWalletNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(MemberRegisterErrorResponse{Error: "Wallet not found"})
			default:
				logger.Log.Errorw("failed to register member", "phone", req.Phone, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(MemberRegisterErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(MemberRegisterResponse{
			Message: "Member registered successfully",
			Member:  member,
			NewBalance: WalletBalance{
				Balance:     wallet.Balance,
				TotalEarned: wallet.TotalEarned,
				TotalSpent:  wallet.TotalSpent,
			},
		})
	}
}
