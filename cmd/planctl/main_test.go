package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stokcast/backend/internal/domain"
)

const testTransactions = `transaction_id,date,product_id,quantity,price
T1,2024-01-05 09:00:00,kopi,10,14500
T2,2024-02-05 09:00:00,kopi,20,14500
T3,2024-03-05 09:00:00,kopi,30,14500
T4,2024-04-05 09:00:00,kopi,40,14500
T4,2024-04-05 09:00:00,gula,5,17500
`

const testProducts = `product_id,name,unit,current_stock,safety_stock,preferred_window,supplier
kopi,Kopi Kapal Api,Pcs,5,0,3,CV Sumber Rejeki
gula,Gula Gulaku 1kg,Pcs,100,0,2,CV Sumber Rejeki
`

func writeFixtures(t *testing.T) options {
	t.Helper()
	dir := t.TempDir()
	txPath := filepath.Join(dir, "transactions.csv")
	productPath := filepath.Join(dir, "products.csv")
	require.NoError(t, os.WriteFile(txPath, []byte(testTransactions), 0o600))
	require.NoError(t, os.WriteFile(productPath, []byte(testProducts), 0o600))
	return options{TransactionsFile: txPath, ProductsFile: productPath, Format: "json", Timezone: "UTC"}
}

func TestRunPlanJSON(t *testing.T) {
	opts := writeFixtures(t)
	opts.Policy = "fixed"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out))

	var plan domain.PurchasePlanResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &plan))
	assert.Equal(t, domain.NewPeriod(2024, time.May), plan.TargetPeriod)
	assert.Equal(t, domain.WindowPolicyFixed, plan.WindowPolicy)
	require.Len(t, plan.Items, 2)
	assert.Equal(t, 2, plan.Total)

	kopi := plan.Items[0]
	assert.Equal(t, "kopi", kopi.Product.ID)
	assert.Equal(t, "CV Sumber Rejeki", kopi.SupplierName)
	assert.Equal(t, 3, kopi.Recommendation.WindowUsed)
	assert.Equal(t, 30, kopi.Recommendation.Forecast)
	assert.Equal(t, 4, kopi.Recommendation.SafetyStock)
	assert.Equal(t, 29, kopi.Recommendation.OrderQuantity)
	assert.Equal(t, 4, kopi.Recommendation.DataMonths)

	assert.Zero(t, plan.Items[1].Recommendation.OrderQuantity)
}

func TestRunPlanText(t *testing.T) {
	opts := writeFixtures(t)
	opts.Format = "text"
	opts.Search = "kopi"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out))

	text := out.String()
	assert.Contains(t, text, "PURCHASE PLAN Mei 2024")
	assert.Contains(t, text, "Kopi Kapal Api")
	assert.NotContains(t, text, "Gula Gulaku")
	assert.Contains(t, text, "1 products")
}

func TestRunProductReport(t *testing.T) {
	opts := writeFixtures(t)
	opts.ProductID = "kopi"
	opts.Window = 2
	opts.Target = "2024-05"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out))

	var report productReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, 2, report.Forecast.Window)
	require.Len(t, report.Forecast.Result.Points, 5)
	last := report.Forecast.Result.Points[4]
	assert.Nil(t, last.Actual)
	require.NotNil(t, last.Forecast)
	assert.InDelta(t, 35.0, *last.Forecast, 1e-9)
	assert.Equal(t, "kopi", report.Recommendation.ProductID)

	opts.Format = "text"
	out.Reset()
	require.NoError(t, run(context.Background(), opts, &out))
	assert.Contains(t, out.String(), "SMA N=2")
	assert.Contains(t, out.String(), "Recommendation for")
}

func TestRunRejectsBadInput(t *testing.T) {
	opts := writeFixtures(t)

	tests := []struct {
		name   string
		mutate func(*options)
		want   string
	}{
		{name: "missing files", mutate: func(o *options) { o.ProductsFile = "" }, want: "required"},
		{name: "format", mutate: func(o *options) { o.Format = "xml" }, want: "unsupported output format"},
		{name: "policy", mutate: func(o *options) { o.Policy = "sometimes" }, want: "policy"},
		{name: "target", mutate: func(o *options) { o.Target = "May 2024" }, want: "YYYY-MM"},
		{name: "timezone", mutate: func(o *options) { o.Timezone = "Mars/Olympus" }, want: "Mars/Olympus"},
		{name: "unknown product", mutate: func(o *options) { o.ProductID = "teh" }, want: "not found"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := opts
			tc.mutate(&o)
			err := run(context.Background(), o, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
