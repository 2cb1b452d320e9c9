package store

import (
	"context"
	"errors"
	"time"

	"stokcast/backend/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

// TransactionFilter selects transactions by product and a half-open date
// range [From, To). Zero values leave a bound open. A positive Limit keeps
// only the most recent matches.
type TransactionFilter struct {
	ProductID string
	From      time.Time
	To        time.Time
	Limit     int
}

// Match reports whether tx passes the filter, ignoring Limit.
func (f TransactionFilter) Match(tx domain.Transaction) bool {
	if !f.From.IsZero() && tx.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !tx.Date.Before(f.To) {
		return false
	}
	if f.ProductID == "" {
		return true
	}
	for _, item := range tx.Items {
		if item.ProductID == f.ProductID {
			return true
		}
	}
	return false
}

type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)

	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	GetSupplier(ctx context.Context, id string) (*domain.Supplier, error)
	CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error)

	CreateTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	// ListTransactions returns matches ordered by date, oldest first.
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
