package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stokcast/backend/internal/domain"
	"stokcast/backend/internal/forecast"
	"stokcast/backend/internal/store"
)

func TestTransactionsRoundTripIntoMonthlySeries(t *testing.T) {
	databaseURL := os.Getenv("STOKCAST_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set STOKCAST_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(ctx))

	stamp := time.Now().UnixNano()
	productID := fmt.Sprintf("prd_it_%d", stamp)
	otherID := fmt.Sprintf("prd_it_other_%d", stamp)
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id LIKE $1`, fmt.Sprintf("trx_it_%d%%", stamp))
		_, _ = s.db.ExecContext(ctx, `DELETE FROM products WHERE id IN ($1, $2)`, productID, otherID)
	})

	price := decimal.RequireFromString("2500.50")
	_, err = s.CreateProduct(ctx, domain.Product{ID: productID, Name: "Produk IT " + productID, Unit: "Pcs", Price: price})
	require.NoError(t, err)
	_, err = s.CreateProduct(ctx, domain.Product{ID: otherID, Name: "Produk IT " + otherID, Unit: "Pcs", Price: price})
	require.NoError(t, err)

	_, err = s.CreateProduct(ctx, domain.Product{Name: "produk it " + productID})
	assert.ErrorIs(t, err, store.ErrConflict)

	sales := []struct {
		at  time.Time
		qty int
		pid string
	}{
		{time.Date(2024, time.November, 3, 10, 0, 0, 0, time.UTC), 4, productID},
		{time.Date(2025, time.January, 9, 10, 0, 0, 0, time.UTC), 7, productID},
		{time.Date(2024, time.December, 20, 10, 0, 0, 0, time.UTC), 2, productID},
		{time.Date(2024, time.December, 21, 10, 0, 0, 0, time.UTC), 9, otherID},
	}
	for i, sale := range sales {
		subtotal := price.Mul(decimal.NewFromInt(int64(sale.qty)))
		_, err := s.CreateTransaction(ctx, domain.Transaction{
			ID:          fmt.Sprintf("trx_it_%d_%d", stamp, i),
			Date:        sale.at,
			TotalAmount: subtotal,
			Items:       []domain.TransactionLine{{ProductID: sale.pid, Quantity: sale.qty, Price: price, Subtotal: subtotal}},
		})
		require.NoError(t, err)
	}

	txs, err := s.ListTransactions(ctx, store.TransactionFilter{ProductID: productID})
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.True(t, txs[0].Items[0].Price.Equal(price))

	series, err := forecast.AggregateMonthly(txs, productID, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 2, 7}, forecast.Demands(series))

	latest, err := s.ListTransactions(ctx, store.TransactionFilter{ProductID: productID, Limit: 1})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, time.January, latest[0].Date.UTC().Month())

	require.NoError(t, s.DeleteTransaction(ctx, latest[0].ID))
	_, err = s.GetTransaction(ctx, latest[0].ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.CreateTransaction(ctx, domain.Transaction{
		ID:    fmt.Sprintf("trx_it_%d_ghost", stamp),
		Date:  time.Now(),
		Items: []domain.TransactionLine{{ProductID: "prd_missing", Quantity: 1}},
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
