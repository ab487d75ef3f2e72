// ===============================
// FILE: internal/handlers/api/v1/transactions/transactions_controller.go
// ===============================

package transactions

import (
	"encoding/json"
	"net/http"
	"strconv"

	"allowancehub/internal/models"
	"allowancehub/internal/response"
	"allowancehub/internal/services"
	"allowancehub/internal/validation"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// TransactionController handles income and expense API endpoints
type TransactionController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewTransactionController creates a new transaction controller
func NewTransactionController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *TransactionController {
	return &TransactionController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// ListTransactions handles GET /api/v1/users/{userID}/transactions
func (c *TransactionController) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	params := parsePagination(r)

	page, err := c.serviceCollection.TransactionService.ListTransactions(r.Context(), userID, params)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, page)
}

// CreateTransaction handles POST /api/v1/users/{userID}/transactions
func (c *TransactionController) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	var req services.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode create transaction request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.UserID = userID

	if err := validation.ValidateStruct(&req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	transaction, err := c.serviceCollection.TransactionService.CreateTransaction(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, transaction)
}

// DeleteTransaction handles DELETE /api/v1/users/{userID}/transactions/{transactionID}
func (c *TransactionController) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	transactionID, err := pathID(r, "transactionID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	if err := c.serviceCollection.TransactionService.DeleteTransaction(r.Context(), userID, transactionID); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteNoContent(w, r)
}

// parsePagination reads limit/offset/sort/order query parameters.
// Out-of-range values are clamped in the repository layer.
func parsePagination(r *http.Request) models.PaginationParams {
	query := r.URL.Query()

	params := models.PaginationParams{
		Sort:  query.Get("sort"),
		Order: query.Get("order"),
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil {
		params.Limit = limit
	}
	if offset, err := strconv.Atoi(query.Get("offset")); err == nil {
		params.Offset = offset
	}

	return params
}

// pathID extracts a numeric route variable
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, services.NewValidationError("invalid "+name, err)
	}
	return id, nil
}
