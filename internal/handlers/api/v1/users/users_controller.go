// ===============================
// FILE: internal/handlers/api/v1/users/users_controller.go
// ===============================

package users

import (
	"encoding/json"
	"net/http"
	"strconv"

	"allowancehub/internal/response"
	"allowancehub/internal/services"
	"allowancehub/internal/validation"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// UserController handles user profile API endpoints
type UserController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewUserController creates a new user controller
func NewUserController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *UserController {
	return &UserController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// ListUsers handles GET /api/v1/users
func (c *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.serviceCollection.UserService.ListUsers(r.Context())
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, users)
}

// GetUser handles GET /api/v1/users/{userID}
func (c *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["userID"], 10, 64)
	if err != nil || userID <= 0 {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid user ID", err))
		return
	}

	user, err := c.serviceCollection.UserService.GetUser(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, user)
}

// CreateUser handles POST /api/v1/users
func (c *UserController) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req services.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode create user request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	user, err := c.serviceCollection.UserService.CreateUser(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, user)
}
