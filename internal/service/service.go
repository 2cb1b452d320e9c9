package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"stokcast/backend/internal/domain"
	"stokcast/backend/internal/forecast"
	"stokcast/backend/internal/logging"
	"stokcast/backend/internal/recommendation"
	"stokcast/backend/internal/store"
	"stokcast/backend/internal/xid"
)

var ErrForbidden = errors.New("admin role required")

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo        store.Repository
	recommender *recommendation.Engine
	policy      domain.WindowPolicy
	now         func() time.Time
}

// New wires the service. policy is the window policy used when a caller
// does not ask for one explicitly.
func New(repo store.Repository, recommender *recommendation.Engine, policy domain.WindowPolicy) *Service {
	if recommender == nil {
		recommender = recommendation.NewEngine(nil, 0, forecast.DefaultParams())
	}
	if policy != domain.WindowPolicyFixed {
		policy = domain.WindowPolicyAuto
	}

	return &Service{
		repo:        repo,
		recommender: recommender,
		policy:      policy,
		now:         time.Now,
	}
}

func (s *Service) params() forecast.Params {
	return s.recommender.Params()
}

func (s *Service) location() *time.Location {
	return s.params().Location
}

func (s *Service) resolvePolicy(policy domain.WindowPolicy) domain.WindowPolicy {
	switch policy {
	case domain.WindowPolicyAuto, domain.WindowPolicyFixed:
		return policy
	default:
		return s.policy
	}
}

func requireAdmin(ctx context.Context) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Product{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Unit = strings.TrimSpace(req.Unit)
	req.SupplierID = strings.TrimSpace(req.SupplierID)
	if req.Name == "" || req.Unit == "" {
		return domain.Product{}, fmt.Errorf("%w: name and unit are required", store.ErrInvalidInput)
	}
	if req.Price.IsNegative() || req.CurrentStock < 0 || req.SafetyStock < 0 || req.PreferredWindow < 0 {
		return domain.Product{}, fmt.Errorf("%w: price, stock, safety stock and window must not be negative", store.ErrInvalidInput)
	}
	if req.SupplierID != "" {
		if _, err := s.repo.GetSupplier(ctx, req.SupplierID); err != nil {
			return domain.Product{}, err
		}
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		ID:              xid.New("prd"),
		Name:            req.Name,
		Unit:            req.Unit,
		Price:           req.Price,
		CurrentStock:    req.CurrentStock,
		SafetyStock:     req.SafetyStock,
		PreferredWindow: req.PreferredWindow,
		SupplierID:      req.SupplierID,
		CreatedAt:       s.now().UTC(),
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_create", "product", created.ID, fmt.Sprintf("name=%s stock=%d", created.Name, created.CurrentStock))
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Product{}, err
	}

	current, err := s.repo.GetProduct(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Product{}, err
	}
	product := *current

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, fmt.Errorf("%w: name must not be empty", store.ErrInvalidInput)
		}
		product.Name = name
	}
	if req.Unit != nil {
		unit := strings.TrimSpace(*req.Unit)
		if unit == "" {
			return domain.Product{}, fmt.Errorf("%w: unit must not be empty", store.ErrInvalidInput)
		}
		product.Unit = unit
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return domain.Product{}, fmt.Errorf("%w: price must not be negative", store.ErrInvalidInput)
		}
		product.Price = *req.Price
	}
	if req.CurrentStock != nil {
		if *req.CurrentStock < 0 {
			return domain.Product{}, fmt.Errorf("%w: stock must not be negative", store.ErrInvalidInput)
		}
		product.CurrentStock = *req.CurrentStock
	}
	if req.SafetyStock != nil {
		if *req.SafetyStock < 0 {
			return domain.Product{}, fmt.Errorf("%w: safety stock must not be negative", store.ErrInvalidInput)
		}
		product.SafetyStock = *req.SafetyStock
	}
	if req.PreferredWindow != nil {
		if *req.PreferredWindow < 0 {
			return domain.Product{}, fmt.Errorf("%w: window must not be negative", store.ErrInvalidInput)
		}
		product.PreferredWindow = *req.PreferredWindow
	}
	if req.SupplierID != nil {
		supplierID := strings.TrimSpace(*req.SupplierID)
		if supplierID != "" {
			if _, err := s.repo.GetSupplier(ctx, supplierID); err != nil {
				return domain.Product{}, err
			}
		}
		product.SupplierID = supplierID
	}

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_update", "product", updated.ID,
		fmt.Sprintf("stock=%d safety=%d window=%d", updated.CurrentStock, updated.SafetyStock, updated.PreferredWindow))
	return *updated, nil
}

func (s *Service) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListSuppliers(ctx)
}

func (s *Service) CreateSupplier(ctx context.Context, req domain.SupplierCreateRequest) (domain.Supplier, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Supplier{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Supplier{}, fmt.Errorf("%w: supplier name is required", store.ErrInvalidInput)
	}

	created, err := s.repo.CreateSupplier(ctx, domain.Supplier{
		ID:        xid.New("sup"),
		Name:      req.Name,
		Contact:   strings.TrimSpace(req.Contact),
		Phone:     strings.TrimSpace(req.Phone),
		Address:   strings.TrimSpace(req.Address),
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return domain.Supplier{}, err
	}

	s.logAudit(ctx, "supplier_create", "supplier", created.ID, "name="+created.Name)
	return *created, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListAuditLogs(ctx, limit)
}

func (s *Service) supplierNames(ctx context.Context) (map[string]string, error) {
	suppliers, err := s.repo.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(suppliers))
	for _, supplier := range suppliers {
		names[supplier.ID] = supplier.Name
	}
	return names, nil
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     s.now().UTC(),
	}); err != nil {
		logging.Component(ctx, "service").WithFields(logrus.Fields{
			"action": action,
			"entity": entityType + "/" + entityID,
		}).WithError(err).Warn("failed to write audit log")
	}
}
