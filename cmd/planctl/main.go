// Command planctl prints a purchase plan or a single-product forecast from
// CSV exports, without a database or HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"stokcast/backend/internal/cache"
	"stokcast/backend/internal/config"
	"stokcast/backend/internal/domain"
	"stokcast/backend/internal/forecast"
	"stokcast/backend/internal/logging"
	"stokcast/backend/internal/recommendation"
	"stokcast/backend/internal/service"
	"stokcast/backend/internal/store/csvload"
	"stokcast/backend/internal/store/memory"
)

type options struct {
	TransactionsFile string
	ProductsFile     string
	Target           string
	ProductID        string
	Window           int
	Policy           string
	Format           string
	Timezone         string
	Search           string
}

func main() {
	var opts options
	flag.StringVar(&opts.TransactionsFile, "transactions", "", "Path to transactions CSV (transaction_id,date,product_id,quantity,price)")
	flag.StringVar(&opts.ProductsFile, "products", "", "Path to products CSV (product_id,name,unit,current_stock,safety_stock,preferred_window,supplier)")
	flag.StringVar(&opts.Target, "target", "", "Target month YYYY-MM (default: month after the latest sale)")
	flag.StringVar(&opts.ProductID, "product", "", "Show the forecast and recommendation for one product")
	flag.IntVar(&opts.Window, "window", 0, "Moving-average window for -product (default: preferred window)")
	flag.StringVar(&opts.Policy, "policy", "", "Window policy: auto or fixed")
	flag.StringVar(&opts.Format, "format", "text", "Output format: text or json")
	flag.StringVar(&opts.Timezone, "timezone", "", "IANA timezone used to bucket sales into months")
	flag.StringVar(&opts.Search, "q", "", "Filter the plan by product name, unit or supplier")
	logLevel := flag.String("log-level", "warn", "Log level")
	flag.Parse()

	logging.Setup(*logLevel, "text", os.Stderr)

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	if opts.TransactionsFile == "" || opts.ProductsFile == "" {
		return fmt.Errorf("both -transactions and -products are required")
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported output format: %s", opts.Format)
	}

	loc, err := config.Config{Timezone: opts.Timezone}.Location()
	if err != nil {
		return err
	}
	var policy domain.WindowPolicy
	if strings.TrimSpace(opts.Policy) != "" {
		if policy, err = config.ParseWindowPolicy(opts.Policy); err != nil {
			return err
		}
	}
	var target *domain.Period
	if strings.TrimSpace(opts.Target) != "" {
		parsed, err := domain.ParsePeriod(opts.Target)
		if err != nil {
			return err
		}
		target = &parsed
	}

	params := forecast.DefaultParams()
	params.Location = loc
	svc, err := loadService(ctx, opts, params)
	if err != nil {
		return err
	}
	ctx = service.WithActor(ctx, domain.Actor{Username: "planctl", Role: domain.RoleAdmin})

	if opts.ProductID != "" {
		fc, err := svc.ProductForecast(ctx, opts.ProductID, opts.Window)
		if err != nil {
			return err
		}
		rec, err := svc.Recommendation(ctx, opts.ProductID, target, policy)
		if err != nil {
			return err
		}
		return writeProductReport(out, format, productReport{Forecast: fc, Recommendation: rec})
	}

	plan, err := fullPlan(ctx, svc, service.PlanQuery{Target: target, Search: opts.Search, Policy: policy})
	if err != nil {
		return err
	}
	return writePlan(out, format, plan)
}

// loadService reads both CSV files into a fresh in-memory store.
func loadService(ctx context.Context, opts options, params forecast.Params) (*service.Service, error) {
	catalog, err := csvload.LoadProductsFile(opts.ProductsFile)
	if err != nil {
		return nil, err
	}
	transactions, err := csvload.LoadTransactionsFile(opts.TransactionsFile, params.Location)
	if err != nil {
		return nil, err
	}

	repo := memory.New()
	for _, supplier := range catalog.Suppliers {
		if _, err := repo.CreateSupplier(ctx, supplier); err != nil {
			return nil, fmt.Errorf("supplier %s: %w", supplier.Name, err)
		}
	}
	for _, product := range catalog.Products {
		if _, err := repo.CreateProduct(ctx, product); err != nil {
			return nil, fmt.Errorf("product %s: %w", product.ID, err)
		}
	}
	for _, tx := range transactions {
		if _, err := repo.CreateTransaction(ctx, tx); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
	}
	logrus.WithFields(logrus.Fields{
		"component":    "planctl",
		"products":     len(catalog.Products),
		"suppliers":    len(catalog.Suppliers),
		"transactions": len(transactions),
	}).Info("csv loaded")

	engine := recommendation.NewEngine(cache.NewMemoryRecommendationCache(), time.Hour, params)
	return service.New(repo, engine, domain.WindowPolicyAuto), nil
}

// fullPlan walks every page of the plan into one response.
func fullPlan(ctx context.Context, svc *service.Service, query service.PlanQuery) (domain.PurchasePlanResponse, error) {
	query.PageSize = 100
	var merged domain.PurchasePlanResponse
	for page := 1; ; page++ {
		query.Page = page
		resp, err := svc.PurchasePlan(ctx, query)
		if err != nil {
			return domain.PurchasePlanResponse{}, err
		}
		if page == 1 {
			merged = resp
			merged.Items = append([]domain.PurchasePlanItem(nil), resp.Items...)
		} else {
			merged.Items = append(merged.Items, resp.Items...)
		}
		if len(resp.Items) == 0 || page*resp.PageSize >= resp.Total {
			break
		}
	}
	if merged.Items == nil {
		merged.Items = []domain.PurchasePlanItem{}
	}
	merged.Page = 1
	merged.PageSize = len(merged.Items)
	return merged, nil
}
