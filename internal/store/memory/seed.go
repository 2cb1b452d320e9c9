package memory

import (
	"math/rand"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"stokcast/backend/internal/domain"
	"stokcast/backend/internal/forecast"
)

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD;
// when unset the dev defaults are used and a warning is logged. These
// accounts never reach PostgreSQL.
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	staffPwd := envOr("SEED_STAFF_PASSWORD", "staff123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_STAFF_PASSWORD") == "" {
		logrus.WithField("component", "memory-store").
			Warn("using default dev credentials; set SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD to override")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, domain.RoleAdmin},
		{"staff", staffPwd, domain.RoleStaff},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			logrus.WithError(err).Fatalf("memory-store: hash seed password for %s", u.username)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// indomieHistory is a fixed 24-month demand curve for the demo catalog.
var indomieHistory = []int{
	66, 70, 65, 72, 60, 68, 64, 70, 62, 71, 68, 74,
	68, 72, 64, 69, 62, 67, 66, 70, 63, 71, 69, 74,
}

type seedProduct struct {
	product    domain.Product
	baseDemand int
	// skip lists month offsets (0 = oldest) with no sales at all
	skip map[int]bool
}

// NewSeeded returns a demo store whose 24 months of sales end with the
// month before the current one.
func NewSeeded() *Store {
	return NewSeededAt(time.Now())
}

// NewSeededAt is NewSeeded with the history ending the month before now.
func NewSeededAt(now time.Time) *Store {
	s := New()
	created := now.UTC()

	for _, sup := range []domain.Supplier{
		{ID: "sup_sumber", Name: "CV Sumber Rejeki", Contact: "Pak Hadi", Phone: "0812-1111-2020"},
		{ID: "sup_sinar", Name: "PT Sinar Pangan", Contact: "Bu Rina", Phone: "0813-3030-4040"},
		{ID: "sup_makmur", Name: "UD Makmur Jaya", Contact: "Pak Yusuf", Phone: "0857-5050-6060"},
	} {
		sup.CreatedAt = created
		s.suppliersByID[sup.ID] = sup
	}

	catalog := []seedProduct{
		{product: domain.Product{ID: "prd_indomie", Name: "Indomie Goreng", Unit: "Dus", Price: decimal.NewFromInt(115000), CurrentStock: 250, SafetyStock: 6, PreferredWindow: 4, SupplierID: "sup_sumber"}},
		{product: domain.Product{ID: "prd_bimoli", Name: "Minyak Bimoli 2L", Unit: "Pcs", Price: decimal.NewFromInt(38500), CurrentStock: 45, SafetyStock: 5, PreferredWindow: 4, SupplierID: "sup_sinar"}, baseDemand: 55},
		{product: domain.Product{ID: "prd_rojolele", Name: "Beras Rojolele 5kg", Unit: "Karung", Price: decimal.NewFromInt(78000), CurrentStock: 10, SafetyStock: 3, PreferredWindow: 2, SupplierID: "sup_makmur"}, baseDemand: 30},
		{product: domain.Product{ID: "prd_gulaku", Name: "Gula Gulaku 1kg", Unit: "Pcs", Price: decimal.NewFromInt(17500), CurrentStock: 5, SafetyStock: 7, PreferredWindow: 4, SupplierID: "sup_sinar"}, baseDemand: 85},
		{product: domain.Product{ID: "prd_segitiga", Name: "Terigu Segitiga Biru 1kg", Unit: "Pcs", Price: decimal.RequireFromString("13500.50"), CurrentStock: 50, SafetyStock: 4, PreferredWindow: 8, SupplierID: "sup_sumber"}, baseDemand: 45},
		{product: domain.Product{ID: "prd_sirup", Name: "Sirup Marjan 460ml", Unit: "Botol", Price: decimal.NewFromInt(24000), CurrentStock: 12, SafetyStock: 2, SupplierID: "sup_makmur"}, baseDemand: 20,
			skip: map[int]bool{1: true, 2: true, 3: true, 5: true, 6: true, 7: true, 13: true, 14: true, 15: true, 17: true, 18: true, 19: true}},
		{product: domain.Product{ID: "prd_kapalapi", Name: "Kopi Kapal Api 165g", Unit: "Pcs", Price: decimal.NewFromInt(14500), CurrentStock: 30, SafetyStock: 4, SupplierID: "sup_sumber"}},
	}
	for _, item := range catalog {
		item.product.CreatedAt = created
		s.products[item.product.ID] = item.product
	}

	last := forecast.PeriodOf(now, time.UTC).Prev()
	first := last
	for range len(indomieHistory) - 1 {
		first = first.Prev()
	}
	rng := rand.New(rand.NewSource(20240101))
	for offset, period := range forecast.MonthRange(first, last) {
		demand := map[string]int{}
		for _, item := range catalog {
			switch {
			case item.product.ID == "prd_indomie":
				demand[item.product.ID] = indomieHistory[offset]
			case item.baseDemand == 0 || item.skip[offset]:
			default:
				fluctuation := 0.9 + rng.Float64()*0.2
				demand[item.product.ID] = int(float64(item.baseDemand)*fluctuation + 0.5)
			}
		}
		s.seedMonth(period, catalog, demand)
	}
	return s
}

// seedMonth spreads each product's monthly demand over four sales days.
func (s *Store) seedMonth(period domain.Period, catalog []seedProduct, demand map[string]int) {
	days := []int{3, 10, 17, 24}
	for d, dayOfMonth := range days {
		tx := domain.Transaction{
			ID:   "trx_seed_" + period.String() + "_" + string(rune('a'+d)),
			Date: time.Date(period.Year, period.Month, dayOfMonth, 12, 0, 0, 0, time.UTC),
			Note: "demo",
		}
		for _, item := range catalog {
			total := demand[item.product.ID]
			qty := total / len(days)
			if d == len(days)-1 {
				qty = total - qty*(len(days)-1)
			}
			if qty <= 0 {
				continue
			}
			subtotal := item.product.Price.Mul(decimal.NewFromInt(int64(qty)))
			tx.Items = append(tx.Items, domain.TransactionLine{
				ProductID: item.product.ID,
				Quantity:  qty,
				Price:     item.product.Price,
				Subtotal:  subtotal,
			})
			tx.TotalAmount = tx.TotalAmount.Add(subtotal)
		}
		if len(tx.Items) == 0 {
			continue
		}
		tx.CreatedAt = tx.Date
		s.transactionsByID[tx.ID] = &tx
	}
}
