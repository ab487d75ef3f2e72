package repositories

import (
	"allowancehub/internal/database"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// BaseRepository provides common database operations shared by all
// repositories. Query metrics and slow-query logging live in the
// database manager; this layer adds scanning and pagination helpers.
type BaseRepository struct {
	db     *database.Manager
	logger *zap.Logger
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *database.Manager, logger *zap.Logger) *BaseRepository {
	return &BaseRepository{
		db:     db,
		logger: logger,
	}
}

// ===============================
// CORE DATABASE OPERATIONS
// ===============================

// ExecContext executes a statement through the managed connection
func (r *BaseRepository) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return r.db.ExecContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows
func (r *BaseRepository) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return r.db.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a query that returns a single row
func (r *BaseRepository) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return r.db.QueryRowContext(ctx, query, args...)
}

// BeginTx starts a new transaction
func (r *BaseRepository) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, opts)
}

// GetLogger returns the repository logger
func (r *BaseRepository) GetLogger() *zap.Logger {
	return r.logger
}

// IsNotFound reports whether err is the no-rows sentinel
func (r *BaseRepository) IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsUniqueViolation reports whether err is a unique-constraint violation.
// Used by the bonus-award guard, where a conflicting insert means the
// award was already granted.
func (r *BaseRepository) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	// lib/pq error code 23505
	return strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "duplicate key value")
}

// ===============================
// PAGINATION HELPERS
// ===============================

// ApplyPagination appends ORDER BY / LIMIT / OFFSET to a query. Sort
// columns are validated against an allow list to keep identifiers out of
// caller control.
func (r *BaseRepository) ApplyPagination(query string, validSorts map[string]bool, sort, order string, limit, offset int, args []interface{}) (string, []interface{}) {
	if sort == "" || !validSorts[sort] {
		sort = "created_at"
	}
	if order != "asc" && order != "desc" {
		order = "desc"
	}

	query += fmt.Sprintf(" ORDER BY %s %s", sort, strings.ToUpper(order))

	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	argIndex := len(args) + 1
	query += fmt.Sprintf(" LIMIT $%d", argIndex)
	args = append(args, limit)

	if offset > 0 {
		argIndex++
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, offset)
	}

	return query, args
}
