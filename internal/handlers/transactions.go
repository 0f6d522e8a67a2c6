package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bonchicares/agent-wallet/internal/jwt"
	"github.com/bonchicares/agent-wallet/internal/logger"
	"github.com/bonchicares/agent-wallet/internal/models"
)

// TransactionListTokener defines only the token methods needed by this handler.
type TransactionListTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// TransactionLister defines the interface that the service must implement.
type TransactionLister interface {
	ListTransactions(ctx context.Context, agentID uuid.UUID, page, pageSize int) ([]models.TransactionDB, error)
}

// TransactionListResponse represents one page of an agent's statement
// swagger:model TransactionListResponse
type TransactionListResponse struct {
	// Page number, starting at 1
	Page int `json:"page"`

	// Page size
	PageSize int `json:"page_size"`

	// Transactions, newest first
	Transactions []models.TransactionDB `json:"transactions"`
}

// TransactionListErrorResponse represents an error response for the statement view
// swagger:model TransactionListErrorResponse
type TransactionListErrorResponse struct {
	// Error message
	Error string `json:"error"`
}

// NewTransactionListHandler returns an HTTP handler for the paginated
// transaction statement.
// @Summary List agent transactions
// @Description Returns one page of the agent's wallet transactions, newest first.
// @Tags wallet
// @Produce json
// @Param agentID path string true "Agent ID"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20)"
// @Success 200 {object} handlers.TransactionListResponse "Transaction page"
// @Failure 401 {object} handlers.TransactionListErrorResponse "Unauthorized"
// @Router /agents/{agentID}/transactions [get]
// @Security BearerAuth
func NewTransactionListHandler(
	svc TransactionLister,
	tokenGetter TransactionListTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(TransactionListErrorResponse{Error: "Unauthorized"})
			return
		}
		if _, err := tokenGetter.GetClaims(ctx, tokenStr); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(TransactionListErrorResponse{Error: "Unauthorized"})
			return
		}

		agentID, err := uuid.Parse(chi.URLParam(r, "agentID"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TransactionListErrorResponse{Error: "Invalid agent id"})
			return
		}

		page := queryInt(r, "page", 1)
		pageSize := queryInt(r, "page_size", 20)

		entries, err := svc.ListTransactions(ctx, agentID, page, pageSize)
		if err != nil {
			logger.Log.Errorw("failed to list transactions", "agent_id", agentID, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(TransactionListErrorResponse{Error: "Internal server error"})
			return
		}
		if entries == nil {
			entries = []models.TransactionDB{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(TransactionListResponse{
			Page:         page,
			PageSize:     pageSize,
			Transactions: entries,
		})
	}
}

func queryInt(r *http.Request, key string, def int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 1 {
		return def
	}
	return n
}
