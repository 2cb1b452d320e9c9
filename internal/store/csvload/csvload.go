// Package csvload reads sales history and product catalogs exported as CSV.
package csvload

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stokcast/backend/internal/domain"
	"stokcast/backend/internal/forecast"
)

var (
	transactionHeader = []string{"transaction_id", "date", "product_id", "quantity", "price"}
	productHeader     = []string{"product_id", "name", "unit", "current_stock", "safety_stock", "preferred_window", "supplier"}
)

// Catalog is the result of loading a products file. Suppliers are created
// from the distinct supplier names and referenced by ID from products.
type Catalog struct {
	Products  []domain.Product
	Suppliers []domain.Supplier
}

func LoadTransactionsFile(path string, loc *time.Location) ([]domain.Transaction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transactions file %s: %w", path, err)
	}
	defer file.Close()
	return LoadTransactions(file, loc)
}

// LoadTransactions reads rows of transaction_id,date,product_id,quantity,price.
// Rows sharing a transaction_id become lines of one transaction, in file
// order. Zone-less dates are read in loc.
func LoadTransactions(r io.Reader, loc *time.Location) ([]domain.Transaction, error) {
	records, err := readAll(r, "transactions", transactionHeader)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	out := make([]domain.Transaction, 0, len(records))
	for i, record := range records {
		row := i + 2
		id := strings.TrimSpace(record[0])
		if id == "" {
			return nil, fmt.Errorf("transactions CSV row %d: transaction_id is required", row)
		}
		date, err := forecast.ParseTimestampIn(id, record[1], loc)
		if err != nil {
			return nil, fmt.Errorf("transactions CSV row %d: %w", row, err)
		}
		productID := strings.TrimSpace(record[2])
		if productID == "" {
			return nil, fmt.Errorf("transactions CSV row %d: product_id is required", row)
		}
		qty, err := strconv.Atoi(strings.TrimSpace(record[3]))
		if err != nil {
			return nil, fmt.Errorf("transactions CSV row %d: invalid quantity %q", row, record[3])
		}
		if qty < 1 {
			return nil, fmt.Errorf("transactions CSV row %d: quantity must be positive, got %d", row, qty)
		}
		price := decimal.Zero
		if raw := strings.TrimSpace(record[4]); raw != "" {
			price, err = decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("transactions CSV row %d: invalid price %q", row, raw)
			}
		}

		pos, seen := index[id]
		if !seen {
			pos = len(out)
			index[id] = pos
			out = append(out, domain.Transaction{ID: id, Date: date, CreatedAt: date})
		} else if !out[pos].Date.Equal(date) {
			return nil, fmt.Errorf("transactions CSV row %d: transaction %s has conflicting dates", row, id)
		}

		subtotal := price.Mul(decimal.NewFromInt(int64(qty)))
		out[pos].Items = append(out[pos].Items, domain.TransactionLine{
			ProductID: productID,
			Quantity:  qty,
			Price:     price,
			Subtotal:  subtotal,
		})
		out[pos].TotalAmount = out[pos].TotalAmount.Add(subtotal)
	}
	return out, nil
}

func LoadProductsFile(path string) (Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to open products file %s: %w", path, err)
	}
	defer file.Close()
	return LoadProducts(file)
}

// LoadProducts reads rows of
// product_id,name,unit,current_stock,safety_stock,preferred_window,supplier.
// Empty numeric cells read as 0.
func LoadProducts(r io.Reader) (Catalog, error) {
	records, err := readAll(r, "products", productHeader)
	if err != nil {
		return Catalog{}, err
	}

	var catalog Catalog
	supplierIDs := make(map[string]string)
	seen := make(map[string]bool)
	for i, record := range records {
		row := i + 2
		id := strings.TrimSpace(record[0])
		name := strings.TrimSpace(record[1])
		if id == "" || name == "" {
			return Catalog{}, fmt.Errorf("products CSV row %d: product_id and name are required", row)
		}
		if seen[id] {
			return Catalog{}, fmt.Errorf("products CSV row %d: duplicate product_id %s", row, id)
		}
		seen[id] = true

		var ints [3]int
		for j, col := range []int{3, 4, 5} {
			ints[j], err = parseOptionalInt(record[col])
			if err != nil {
				return Catalog{}, fmt.Errorf("products CSV row %d: %s: %w", row, productHeader[col], err)
			}
		}

		product := domain.Product{
			ID:              id,
			Name:            name,
			Unit:            strings.TrimSpace(record[2]),
			CurrentStock:    ints[0],
			SafetyStock:     ints[1],
			PreferredWindow: ints[2],
		}
		if supplierName := strings.TrimSpace(record[6]); supplierName != "" {
			key := strings.ToLower(supplierName)
			supID, ok := supplierIDs[key]
			if !ok {
				supID = fmt.Sprintf("sup_%d", len(supplierIDs)+1)
				supplierIDs[key] = supID
				catalog.Suppliers = append(catalog.Suppliers, domain.Supplier{ID: supID, Name: supplierName})
			}
			product.SupplierID = supID
		}
		catalog.Products = append(catalog.Products, product)
	}
	return catalog, nil
}

func readAll(r io.Reader, name string, expected []string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", name, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header row", name)
	}
	if !validateHeader(records[0], expected) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", name, expected, records[0])
	}
	for i, record := range records[1:] {
		if len(record) != len(expected) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", name, i+2, len(expected), len(record))
		}
	}
	return records[1:], nil
}

func validateHeader(header, expected []string) bool {
	if len(header) != len(expected) {
		return false
	}
	for i, col := range header {
		if strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))) != expected[i] {
			return false
		}
	}
	return true
}

func parseOptionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	return v, nil
}
