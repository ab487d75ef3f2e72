// file: internal/services/transaction_service.go
package services

import (
	"allowancehub/internal/models"
	"allowancehub/internal/repositories"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// transactionService implements TransactionService
type transactionService struct {
	repo   repositories.TransactionRepository
	badges BadgeService
	logger *zap.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(repo repositories.TransactionRepository, badges BadgeService, logger *zap.Logger) TransactionService {
	return &transactionService{
		repo:   repo,
		badges: badges,
		logger: logger,
	}
}

// ListTransactions returns a page of the user's transactions wrapped in
// the pagination envelope
func (s *transactionService) ListTransactions(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Transaction], error) {
	if userID <= 0 {
		return nil, NewValidationError("user is required", nil)
	}

	params = normalizePagination(params)

	transactions, err := s.repo.GetByUserID(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	total, err := s.repo.Count(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	totalPages := 0
	if params.Limit > 0 {
		totalPages = (total + params.Limit - 1) / params.Limit
	}

	return &models.PaginatedResponse[*models.Transaction]{
		Data:       transactions,
		Total:      int64(total),
		Limit:      params.Limit,
		Offset:     params.Offset,
		HasMore:    params.Offset+len(transactions) < total,
		TotalPages: totalPages,
	}, nil
}

// normalizePagination mirrors the repository clamps so the envelope
// reports the limit and offset actually applied to the query
func normalizePagination(params models.PaginationParams) models.PaginationParams {
	if params.Limit <= 0 {
		params.Limit = 20
	}
	if params.Limit > 100 {
		params.Limit = 100
	}
	if params.Offset < 0 {
		params.Offset = 0
	}
	return params
}

// CreateTransaction records income or expense. Expenses count toward the
// expenses badge category; every transaction counts as app activity.
func (s *transactionService) CreateTransaction(ctx context.Context, req *CreateTransactionRequest) (*models.Transaction, error) {
	if req.Description == "" {
		return nil, NewValidationError("description is required", nil)
	}
	if req.Amount <= 0 {
		return nil, NewValidationError("amount must be positive", nil)
	}
	if req.Type != models.TransactionTypeIncome && req.Type != models.TransactionTypeExpense {
		return nil, NewValidationError("type must be income or expense", nil)
	}

	transaction := &models.Transaction{
		UserID:      req.UserID,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.Category,
	}

	if err := s.repo.Create(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if req.Type == models.TransactionTypeExpense {
		if _, err := s.badges.ApplyProgress(ctx, req.UserID, models.BadgeCategoryExpenses, 1); err != nil {
			s.logger.Warn("Badge update failed for expense",
				zap.Int64("user_id", req.UserID),
				zap.Error(err),
			)
		}
	}
	if _, err := s.badges.ApplyProgress(ctx, req.UserID, models.BadgeCategoryActivity, 1); err != nil {
		s.logger.Warn("Badge update failed for activity",
			zap.Int64("user_id", req.UserID),
			zap.Error(err),
		)
	}

	return transaction, nil
}

// DeleteTransaction removes a transaction owned by the user
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID int64) error {
	if err := s.repo.Delete(ctx, transactionID, userID); err != nil {
		return NewNotFoundError("transaction not found")
	}
	return nil
}
