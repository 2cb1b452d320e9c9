package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Unit            string          `json:"unit"`
	Price           decimal.Decimal `json:"price"`
	CurrentStock    int             `json:"current_stock"`
	SafetyStock     int             `json:"safety_stock"`
	PreferredWindow int             `json:"preferred_window,omitempty"`
	SupplierID      string          `json:"supplier_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type ProductCreateRequest struct {
	Name            string          `json:"name"`
	Unit            string          `json:"unit"`
	Price           decimal.Decimal `json:"price"`
	CurrentStock    int             `json:"current_stock"`
	SafetyStock     int             `json:"safety_stock"`
	PreferredWindow int             `json:"preferred_window"`
	SupplierID      string          `json:"supplier_id"`
}

type ProductUpdateRequest struct {
	Name            *string          `json:"name,omitempty"`
	Unit            *string          `json:"unit,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	CurrentStock    *int             `json:"current_stock,omitempty"`
	SafetyStock     *int             `json:"safety_stock,omitempty"`
	PreferredWindow *int             `json:"preferred_window,omitempty"`
	SupplierID      *string          `json:"supplier_id,omitempty"`
}

type Supplier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SupplierCreateRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type TransactionLine struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Transaction is a recorded sale. Date is the business timestamp used for
// monthly bucketing; CreatedAt is when the record was stored.
type Transaction struct {
	ID          string            `json:"id"`
	Date        time.Time         `json:"date"`
	Note        string            `json:"note,omitempty"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Items       []TransactionLine `json:"items"`
	CreatedBy   string            `json:"created_by,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

type TransactionLineRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

type TransactionCreateRequest struct {
	Date  string                   `json:"date"`
	Note  string                   `json:"note"`
	Items []TransactionLineRequest `json:"items"`
}

type TransactionListResponse struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
}

// DailySlice is one day's quantity inside a monthly bucket.
type DailySlice struct {
	Date     string `json:"date"`
	Quantity int    `json:"quantity"`
}

// MonthlyDemand is the total quantity of one product sold in one month.
type MonthlyDemand struct {
	ProductID   string       `json:"product_id"`
	Period      Period       `json:"period"`
	PeriodLabel string       `json:"period_label"`
	Demand      int          `json:"demand"`
	Days        []DailySlice `json:"days,omitempty"`
}

type MonthlyHistoryResponse struct {
	ProductID string          `json:"product_id"`
	Months    []MonthlyDemand `json:"months"`
}

// ForecastPoint is one row of an SMA evaluation. Forecast, Error and APE
// are nil where the window has not filled yet; APE is also nil when the
// actual demand is zero. Actual is nil only for the appended target row.
type ForecastPoint struct {
	Period      Period   `json:"period"`
	PeriodLabel string   `json:"period_label"`
	Actual      *int     `json:"actual"`
	Forecast    *float64 `json:"forecast"`
	Error       *float64 `json:"error"`
	APE         *float64 `json:"ape"`
}

type ErrorMetrics struct {
	MAD        float64 `json:"mad"`
	MSE        float64 `json:"mse"`
	MAPE       float64 `json:"mape"`
	Evaluated  int     `json:"evaluated"`
	MAPEPoints int     `json:"mape_points"`
}

type ForecastResult struct {
	Window       int             `json:"window"`
	Points       []ForecastPoint `json:"points"`
	Metrics      ErrorMetrics    `json:"metrics"`
	NextForecast float64         `json:"next_forecast"`
}

type WindowScore struct {
	Window  int          `json:"window"`
	Metrics ErrorMetrics `json:"metrics"`
}

type ProductForecastResponse struct {
	Product     Product        `json:"product"`
	Window      int            `json:"window"`
	BestWindow  int            `json:"best_window"`
	TargetLabel string         `json:"target_label"`
	Result      ForecastResult `json:"result"`
	Evaluations []WindowScore  `json:"evaluations"`
}

type WindowPolicy string

const (
	WindowPolicyAuto  WindowPolicy = "auto"
	WindowPolicyFixed WindowPolicy = "fixed"
)

type Recommendation struct {
	ProductID     string       `json:"product_id"`
	TargetPeriod  Period       `json:"target_period"`
	TargetLabel   string       `json:"target_label"`
	CutoffLabel   string       `json:"cutoff_label"`
	DataMonths    int          `json:"data_months"`
	WindowPolicy  WindowPolicy `json:"window_policy"`
	WindowUsed    int          `json:"window_used"`
	MAPE          float64      `json:"mape"`
	RawForecast   float64      `json:"raw_forecast"`
	Forecast      int          `json:"forecast"`
	SafetyStock   int          `json:"safety_stock"`
	CurrentStock  int          `json:"current_stock"`
	OrderQuantity int          `json:"order_quantity"`
}

type PurchasePlanItem struct {
	Product        Product        `json:"product"`
	SupplierName   string         `json:"supplier_name,omitempty"`
	Recommendation Recommendation `json:"recommendation"`
}

type PurchasePlanResponse struct {
	TargetPeriod   Period             `json:"target_period"`
	TargetLabel    string             `json:"target_label"`
	DataUntilLabel string             `json:"data_until_label"`
	WindowPolicy   WindowPolicy       `json:"window_policy"`
	Total          int                `json:"total"`
	Page           int                `json:"page"`
	PageSize       int                `json:"page_size"`
	Items          []PurchasePlanItem `json:"items"`
	GeneratedAt    time.Time          `json:"generated_at"`
}

type ProductSales struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	Quantity  int    `json:"quantity"`
}

type DashboardResponse struct {
	MonthLabel       string          `json:"month_label"`
	Revenue          decimal.Decimal `json:"revenue"`
	UnitsSold        int             `json:"units_sold"`
	TransactionCount int             `json:"transaction_count"`
	ProductCount     int             `json:"product_count"`
	TopProducts      []ProductSales  `json:"top_products"`
	LowStock         []Product       `json:"low_stock"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type UserCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type User struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}
