package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stokcast/backend/internal/domain"
	"stokcast/backend/internal/forecast"
	"stokcast/backend/internal/store"
	"stokcast/backend/internal/xid"
)

// TransactionQuery filters the transaction listing. From and To are month
// bounds, both inclusive.
type TransactionQuery struct {
	ProductID string
	From      *domain.Period
	To        *domain.Period
	Limit     int
}

// CreateTransaction records a sale. Lines without a price take the product's
// list price. Stock levels are not touched.
func (s *Service) CreateTransaction(ctx context.Context, req domain.TransactionCreateRequest) (domain.Transaction, error) {
	if len(req.Items) == 0 {
		return domain.Transaction{}, fmt.Errorf("%w: at least one item is required", store.ErrInvalidInput)
	}

	id := xid.New("trx")
	date := s.now().In(s.location())
	if raw := strings.TrimSpace(req.Date); raw != "" {
		parsed, err := forecast.ParseTimestampIn(id, raw, s.location())
		if err != nil {
			return domain.Transaction{}, err
		}
		date = parsed
	}

	lines := make([]domain.TransactionLine, 0, len(req.Items))
	total := decimal.Zero
	for _, item := range req.Items {
		productID := strings.TrimSpace(item.ProductID)
		if productID == "" || item.Quantity < 1 {
			return domain.Transaction{}, fmt.Errorf("%w: each item needs a product and a positive quantity", store.ErrInvalidInput)
		}
		product, err := s.repo.GetProduct(ctx, productID)
		if err != nil {
			return domain.Transaction{}, fmt.Errorf("product %s: %w", productID, err)
		}

		price := product.Price
		if item.Price != nil {
			if item.Price.IsNegative() {
				return domain.Transaction{}, fmt.Errorf("%w: price must not be negative", store.ErrInvalidInput)
			}
			price = *item.Price
		}
		subtotal := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(subtotal)
		lines = append(lines, domain.TransactionLine{
			ProductID: productID,
			Quantity:  item.Quantity,
			Price:     price,
			Subtotal:  subtotal,
		})
	}

	createdBy := ""
	if actor, ok := ActorFromContext(ctx); ok {
		createdBy = actor.Username
	}

	created, err := s.repo.CreateTransaction(ctx, domain.Transaction{
		ID:          id,
		Date:        date,
		Note:        strings.TrimSpace(req.Note),
		TotalAmount: total,
		Items:       lines,
		CreatedBy:   createdBy,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.logAudit(ctx, "transaction_create", "transaction", created.ID,
		fmt.Sprintf("items=%d total=%s", len(created.Items), created.TotalAmount.StringFixed(2)))
	return *created, nil
}

func (s *Service) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Transaction{}, err
	}
	return *tx, nil
}

// ListTransactions returns matching sales, oldest first.
func (s *Service) ListTransactions(ctx context.Context, query TransactionQuery) (domain.TransactionListResponse, error) {
	if query.From != nil && query.To != nil && query.To.Before(*query.From) {
		return domain.TransactionListResponse{}, fmt.Errorf("%w: range end is before its start", store.ErrInvalidInput)
	}

	filter := store.TransactionFilter{
		ProductID: strings.TrimSpace(query.ProductID),
		Limit:     query.Limit,
	}
	if query.From != nil {
		filter.From = query.From.Start(s.location())
	}
	if query.To != nil {
		filter.To = query.To.Next().Start(s.location())
	}

	transactions, err := s.repo.ListTransactions(ctx, filter)
	if err != nil {
		return domain.TransactionListResponse{}, err
	}
	return domain.TransactionListResponse{
		Transactions: transactions,
		Total:        len(transactions),
	}, nil
}

func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	id = strings.TrimSpace(id)
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "transaction_delete", "transaction", id, "")
	return nil
}

// transactionsUntil loads every sale dated before the first instant of end.
// A nil end loads the whole history.
func (s *Service) transactionsUntil(ctx context.Context, productID string, end *domain.Period) ([]domain.Transaction, error) {
	filter := store.TransactionFilter{ProductID: productID}
	if end != nil {
		filter.To = end.Start(s.location())
	}
	return s.repo.ListTransactions(ctx, filter)
}

func monthStart(t time.Time, loc *time.Location) time.Time {
	return forecast.PeriodOf(t, loc).Start(loc)
}
