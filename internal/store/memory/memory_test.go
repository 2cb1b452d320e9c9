package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stokcast/backend/internal/domain"
	"stokcast/backend/internal/forecast"
	"stokcast/backend/internal/store"
)

var seedNow = time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)

func TestNewSeededAtHistoryWindow(t *testing.T) {
	ctx := context.Background()
	s := NewSeededAt(seedNow)

	txs, err := s.ListTransactions(ctx, store.TransactionFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, txs)
	assert.Equal(t, domain.Period{Year: 2024, Month: time.March}, forecast.PeriodOf(txs[0].Date, time.UTC))
	assert.Equal(t, domain.Period{Year: 2026, Month: time.February}, forecast.PeriodOf(txs[len(txs)-1].Date, time.UTC))

	indomie, err := forecast.AggregateMonthly(txs, "prd_indomie", time.UTC)
	require.NoError(t, err)
	require.Len(t, indomie, 24)
	assert.Equal(t, indomieHistory, forecast.Demands(indomie))

	kopi, err := forecast.AggregateMonthly(txs, "prd_kapalapi", time.UTC)
	require.NoError(t, err)
	assert.Empty(t, kopi)

	sirup, err := forecast.AggregateMonthly(txs, "prd_sirup", time.UTC)
	require.NoError(t, err)
	assert.Len(t, sirup, 12)
}

func TestSeedTransactionsAreConsistent(t *testing.T) {
	s := NewSeededAt(seedNow)
	txs, err := s.ListTransactions(context.Background(), store.TransactionFilter{})
	require.NoError(t, err)

	for _, tx := range txs {
		total := decimal.Zero
		for _, item := range tx.Items {
			assert.True(t, item.Subtotal.Equal(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))), tx.ID)
			total = total.Add(item.Subtotal)
		}
		assert.True(t, total.Equal(tx.TotalAmount), tx.ID)
	}
}

func TestTransactionFilterAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.CreateProduct(ctx, domain.Product{ID: "prd_a", Name: "A"})
	require.NoError(t, err)
	_, err = s.CreateProduct(ctx, domain.Product{ID: "prd_b", Name: "B"})
	require.NoError(t, err)

	jan := time.Date(2025, time.January, 5, 10, 0, 0, 0, time.UTC)
	feb := time.Date(2025, time.February, 5, 10, 0, 0, 0, time.UTC)
	t1, err := s.CreateTransaction(ctx, domain.Transaction{Date: feb, Items: []domain.TransactionLine{{ProductID: "prd_a", Quantity: 1}}})
	require.NoError(t, err)
	_, err = s.CreateTransaction(ctx, domain.Transaction{Date: jan, Items: []domain.TransactionLine{{ProductID: "prd_b", Quantity: 2}}})
	require.NoError(t, err)

	all, err := s.ListTransactions(ctx, store.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].Date.Equal(jan))

	onlyA, err := s.ListTransactions(ctx, store.TransactionFilter{ProductID: "prd_a"})
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, t1.ID, onlyA[0].ID)

	janOnly, err := s.ListTransactions(ctx, store.TransactionFilter{From: jan, To: feb})
	require.NoError(t, err)
	require.Len(t, janOnly, 1)

	latest, err := s.ListTransactions(ctx, store.TransactionFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, t1.ID, latest[0].ID)

	require.NoError(t, s.DeleteTransaction(ctx, t1.ID))
	assert.ErrorIs(t, s.DeleteTransaction(ctx, t1.ID), store.ErrNotFound)
	_, err = s.GetTransaction(ctx, t1.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateTransactionValidation(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.CreateTransaction(ctx, domain.Transaction{Date: time.Now()})
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	_, err = s.CreateTransaction(ctx, domain.Transaction{Date: time.Now(), Items: []domain.TransactionLine{{ProductID: "ghost", Quantity: 1}}})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProductConflictsAndUpdate(t *testing.T) {
	ctx := context.Background()
	s := New()
	created, err := s.CreateProduct(ctx, domain.Product{Name: "Teh Pucuk", Unit: "Botol"})
	require.NoError(t, err)
	assert.Contains(t, created.ID, "prd_")

	_, err = s.CreateProduct(ctx, domain.Product{Name: "teh pucuk"})
	assert.ErrorIs(t, err, store.ErrConflict)

	created.CurrentStock = 40
	updated, err := s.UpdateProduct(ctx, *created)
	require.NoError(t, err)
	assert.Equal(t, 40, updated.CurrentStock)

	_, err = s.UpdateProduct(ctx, domain.Product{ID: "prd_none"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersAndAuditLog(t *testing.T) {
	ctx := context.Background()
	s := New()

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "admin", users[0].Username)

	assert.ErrorIs(t, s.CreateUser(ctx, domain.UserAccount{Username: "Admin", Password: "x"}), store.ErrConflict)
	require.NoError(t, s.CreateUser(ctx, domain.UserAccount{Username: "Gudang", Password: "hash"}))
	users, _ = s.ListUsers(ctx)
	assert.Equal(t, domain.RoleStaff, users[1].Role)

	require.NoError(t, s.CreateAuditLog(ctx, domain.AuditLog{Action: "first"}))
	require.NoError(t, s.CreateAuditLog(ctx, domain.AuditLog{Action: "second"}))
	logs, err := s.ListAuditLogs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "second", logs[0].Action)
}
