package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bonchicares/agent-wallet/internal/logger"
	"github.com/bonchicares/agent-wallet/internal/services"
)

// Registerer defines the interface that the service must implement.
type Registerer interface {
	Register(ctx context.Context, username, password, email, role string) error
}

// RegisterRequest represents the JSON body for operator registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Username
	// required: true
	Username string `json:"username" validate:"required,min=3,max=50"`

	// Password
	// required: true
	Password string `json:"password" validate:"required,min=8"`

	// Email
	// required: true
	Email string `json:"email" validate:"required,email"`

	// Operator role
	// required: true
	// enum: admin,coordinator,agent
	Role string `json:"role" validate:"required,oneof=admin coordinator agent"`
}

// RegisterResponse represents a successful registration response
// swagger:model RegisterResponse
type RegisterResponse struct {
	// Success message
	Message string `json:"message"`
}

// RegisterErrorResponse represents an error response for registration
// swagger:model RegisterErrorResponse
type RegisterErrorResponse struct {
	// Error message
	Error string `json:"error"`
}

// NewRegisterHandler returns an HTTP handler for operator registration.
// @Summary Register a new operator
// @Description Creates an operator account (admin, coordinator or agent). Password is hashed before storing.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body handlers.RegisterRequest true "Operator registration request"
// @Success 201 {object} handlers.RegisterResponse "Operator successfully registered"
// @Failure 400 {object} handlers.RegisterErrorResponse "Username or email already exists / invalid request"
// @Router /register [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(RegisterErrorResponse{Error: "Invalid request body"})
			return
		}

		if err := validate.Struct(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(RegisterErrorResponse{Error: err.Error()})
			return
		}

		err := svc.Register(r.Context(), req.Username, req.Password, req.Email, req.Role)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserAlreadyExists), errors.Is(err, services.ErrInvalidRole):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(RegisterErrorResponse{Error: err.Error()})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(RegisterErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(RegisterResponse{Message: "Operator registered successfully"})
	}
}
