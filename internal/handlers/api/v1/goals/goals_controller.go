// ===============================
// FILE: internal/handlers/api/v1/goals/goals_controller.go
// ===============================

package goals

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

// GoalController handles savings goal API endpoints
type GoalController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewGoalController creates a new goal controller
func NewGoalController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *GoalController {
	return &GoalController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// ListGoals handles GET /api/v1/users/{userID}/goals
func (c *GoalController) ListGoals(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	goals, err := c.serviceCollection.GoalService.ListGoals(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, goals)
}

// CreateGoal handles POST /api/v1/users/{userID}/goals
func (c *GoalController) CreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	var req services.CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode create goal request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.UserID = userID

	if err := validation.ValidateStruct(&req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	goal, err := c.serviceCollection.GoalService.CreateGoal(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, goal)
}

// AddFunds handles POST /api/v1/users/{userID}/goals/{goalID}/funds
func (c *GoalController) AddFunds(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	goalID, err := pathID(r, "goalID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	var req services.AddFundsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode add funds request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.UserID = userID
	req.GoalID = goalID

	if err := validation.ValidateStruct(&req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	goal, err := c.serviceCollection.GoalService.AddFunds(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, goal)
}

// DeleteGoal handles DELETE /api/v1/users/{userID}/goals/{goalID}
func (c *GoalController) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	goalID, err := pathID(r, "goalID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	if err := c.serviceCollection.GoalService.DeleteGoal(r.Context(), userID, goalID); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteNoContent(w, r)
}

// pathID extracts a numeric route variable
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, services.NewValidationError("invalid "+name, err)
	}
	return id, nil
}
