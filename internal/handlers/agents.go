package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bonchicares/agent-wallet/internal/jwt"
	"github.com/bonchicares/agent-wallet/internal/logger"
	"github.com/bonchicares/agent-wallet/internal/models"
	"github.com/bonchicares/agent-wallet/internal/services"
)

// AgentTokener defines only the token methods needed by the agent handlers.
type AgentTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// AgentOnboarder defines the interface that the service must implement.
type AgentOnboarder interface {
	Onboard(ctx context.Context, fullName, phone string, createdBy *uuid.UUID) (*models.AgentDB, error)
}

// AgentStatusSetter defines the interface that the service must implement.
type AgentStatusSetter interface {
	SetStatus(ctx context.Context, agentID uuid.UUID, status string) (*models.AgentDB, error)
}

// AgentOnboardRequest represents the JSON body for agent onboarding
// swagger:model AgentOnboardRequest
type AgentOnboardRequest struct {
	// Agent display name
	// required: true
	FullName string `json:"full_name" validate:"required,min=2,max=100"`

	// Unique contact number
	// required: true
	Phone string `json:"phone" validate:"required,min=7,max=20"`
}

// AgentStatusRequest represents the JSON body for a status transition
// swagger:model AgentStatusRequest
type AgentStatusRequest struct {
	// Target status
	// required: true
	// enum: ACTIVE,BLOCKED
	Status string `json:"status" validate:"required,oneof=ACTIVE BLOCKED"`
}

// AgentResponse represents an agent in API responses
// swagger:model AgentResponse
type AgentResponse struct {
	// The agent record
	Agent *models.AgentDB `json:"agent"`
}

// AgentErrorResponse represents an error response for agent operations
// swagger:model AgentErrorResponse
type AgentErrorResponse struct {
	// Error message
	Error string `json:"error"`
}

// NewAgentOnboardHandler returns an HTTP handler for onboarding an agent.
// The agent and its zero-balance wallet are created in the request
// transaction; a wallet failure rolls the agent back too.
// @Summary Onboard a new agent
// @Description Creates an agent in PENDING status together with its zero-balance wallet.
// @Tags agents
// @Accept json
// @Produce json
// @Param request body handlers.AgentOnboardRequest true "Onboard Request"
// @Success 201 {object} handlers.AgentResponse "Agent onboarded"
// @Failure 400 {object} handlers.AgentErrorResponse "Invalid request"
// @Failure 401 {object} handlers.AgentErrorResponse "Unauthorized"
// @Router /agents [post]
// @Security BearerAuth
func NewAgentOnboardHandler(
	svc AgentOnboarder,
	tokenGetter AgentTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(AgentErrorResponse{Error: "Unauthorized"})
			return
		}
		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(AgentErrorResponse{Error: "Unauthorized"})
			return
		}

		var req AgentOnboardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(AgentErrorResponse{Error: "Invalid request body"})
			return
		}
		if err := validate.Struct(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(AgentErrorResponse{Error: err.Error()})
			return
		}

		agent, err := svc.Onboard(ctx, req.FullName, req.Phone, &claims.ActorID)
		if err != nil {
			logger.Log.Errorw("failed to onboard agent", "phone", req.Phone, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(AgentErrorResponse{Error: "Internal server error"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(AgentResponse{Agent: agent})
	}
}

// NewAgentStatusHandler returns an HTTP handler for agent status
// transitions.
// @Summary Change agent status
// @Description Applies a lifecycle transition (PENDING -> ACTIVE -> BLOCKED -> ACTIVE). The wallet is never touched.
// @Tags agents
// @Accept json
// @Produce json
// @Param agentID path string true "Agent ID"
// @Param request body handlers.AgentStatusRequest true "Status Request"
// @Success 200 {object} handlers.AgentResponse "Status updated"
// @Failure 400 {object} handlers.AgentErrorResponse "Invalid transition"
// @Failure 401 {object} handlers.AgentErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.AgentErrorResponse "Agent not found"
// @Router /agents/{agentID}/status [patch]
// @Security BearerAuth
func NewAgentStatusHandler(
	svc AgentStatusSetter,
	tokenGetter AgentTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(AgentErrorResponse{Error: "Unauthorized"})
			return
		}
		if _, err := tokenGetter.GetClaims(ctx, tokenStr); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(AgentErrorResponse{Error: "Unauthorized"})
			return
		}

		agentID, err := uuid.Parse(chi.URLParam(r, "agentID"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(AgentErrorResponse{Error: "Invalid agent id"})
			return
		}

		var req AgentStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(AgentErrorResponse{Error: "Invalid request body"})
			return
		}
		if err := validate.Struct(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(AgentErrorResponse{Error: err.Error()})
			return
		}

		agent, err := svc.SetStatus(ctx, agentID, req.Status)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrAgentNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(AgentErrorResponse{Error: "Agent not found"})
			case errors.Is(err, services.ErrInvalidStatusTransition):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(AgentErrorResponse{Error: "Invalid status transition"})
			default:
				logger.Log.Errorw("failed to set agent status", "agent_id", agentID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(AgentErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(AgentResponse{Agent: agent})
	}
}
