package repositories

import (
	"allowancehub/internal/database"
	"allowancehub/internal/models"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// transactionRepository implements TransactionRepository
type transactionRepository struct {
	*BaseRepository
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.Manager, logger *zap.Logger) TransactionRepository {
	return &transactionRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// GetByUserID retrieves a page of transactions for a user
func (r *transactionRepository) GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) ([]*models.Transaction, error) {
	query := `
		SELECT id, user_id, description, amount, type, category, created_at
		FROM transactions
		WHERE user_id = $1`

	validSorts := map[string]bool{"created_at": true, "amount": true}
	args := []interface{}{userID}
	query, args = r.ApplyPagination(query, validSorts, params.Sort, params.Order, params.Limit, params.Offset, args)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Description, &t.Amount, &t.Type, &t.Category, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &t)
	}

	return transactions, rows.Err()
}

// GetByID retrieves a single transaction; nil without error when absent
func (r *transactionRepository) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	query := `
		SELECT id, user_id, description, amount, type, category, created_at
		FROM transactions
		WHERE id = $1`

	var t models.Transaction
	err := r.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.UserID, &t.Description, &t.Amount, &t.Type, &t.Category, &t.CreatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &t, nil
}

// Create inserts a new transaction
func (r *transactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, description, amount, type, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.QueryRowContext(
		ctx, query,
		transaction.UserID, transaction.Description, transaction.Amount,
		transaction.Type, transaction.Category,
	).Scan(&transaction.ID, &transaction.CreatedAt)

	if err != nil {
		r.GetLogger().Error("Failed to create transaction",
			zap.Error(err),
			zap.Int64("user_id", transaction.UserID),
			zap.String("type", transaction.Type),
		)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// Delete removes a transaction owned by the user
func (r *transactionRepository) Delete(ctx context.Context, id, userID int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("transaction %d not found", id)
	}

	return nil
}

// Count returns the user's total transaction count for pagination
func (r *transactionRepository) Count(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = $1`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}
