// ===============================
// FILE: internal/handlers/api/v1/badges/badges_controller.go
// ===============================

package badges

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

// BadgeController exposes the badge engine over HTTP
type BadgeController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewBadgeController creates a new badge controller
func NewBadgeController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *BadgeController {
	return &BadgeController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// GetCatalog handles GET /api/v1/badges
func (c *BadgeController) GetCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := c.serviceCollection.BadgeService.GetCatalog(r.Context())
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, catalog)
}

// GetUserBadges handles GET /api/v1/users/{userID}/badges
func (c *BadgeController) GetUserBadges(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	summary, err := c.serviceCollection.BadgeService.GetUserBadges(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, summary)
}

// ApplyProgress handles POST /api/v1/users/{userID}/badges/progress
func (c *BadgeController) ApplyProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	var req services.ApplyProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode progress request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	result, err := c.serviceCollection.BadgeService.ApplyProgress(r.Context(), userID, req.Category, req.Increment)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.logger.Info("Badge progress applied via API",
		zap.Int64("user_id", userID),
		zap.String("category", req.Category),
		zap.Int("increment", req.Increment),
		zap.Int("errors", result.ErrorCount()),
	)

	c.responseBuilder.WriteSuccess(w, r, result)
}

// ResetProgress handles DELETE /api/v1/users/{userID}/badges. Debug
// endpoint for wiping a user's earned state.
func (c *BadgeController) ResetProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	if err := c.serviceCollection.BadgeService.ResetProgress(r.Context(), userID); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.logger.Info("Badge progress reset", zap.Int64("user_id", userID))

	c.responseBuilder.WriteNoContent(w, r)
}

// pathUserID extracts the {userID} route variable
func pathUserID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["userID"]
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, services.NewValidationError("invalid user ID", err)
	}
	return userID, nil
}
