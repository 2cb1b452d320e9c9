package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"stokcast/backend/internal/config"
	"stokcast/backend/internal/domain"
	"stokcast/backend/internal/forecast"
	"stokcast/backend/internal/service"
)

const refreshPageSize = 100

// Planner is the part of the service the refresher drives.
type Planner interface {
	PurchasePlan(ctx context.Context, query service.PlanQuery) (domain.PurchasePlanResponse, error)
}

// PlanRefresher recomputes the current month's purchase plan on a cron
// schedule.
// Each run warms the recommendation cache and logs products that need an
// order.
type PlanRefresher struct {
	scheduler *gocron.Scheduler
	config    config.PlanRefresh
	planner   Planner
	location  *time.Location
	now       func() time.Time

	mu              sync.Mutex
	running         bool
	lastStartedAt   time.Time
	lastCompletedAt time.Time
}

func NewPlanRefresher(planner Planner, cfg config.PlanRefresh, loc *time.Location) *PlanRefresher {
	if loc == nil {
		loc = time.Local
	}

	logrus.WithFields(logrus.Fields{
		"component":     "scheduler",
		"cron_schedule": cfg.CronSchedule,
		"enabled":       cfg.Enabled,
	}).Info("plan refresh configuration loaded")

	return &PlanRefresher{
		scheduler: gocron.NewScheduler(loc),
		config:    cfg,
		planner:   planner,
		location:  loc,
		now:       time.Now,
	}
}

// Start schedules the job and stops the scheduler when ctx is cancelled.
func (r *PlanRefresher) Start(ctx context.Context) error {
	if !r.config.Enabled {
		logrus.WithField("component", "scheduler").Info("plan refresh disabled by configuration")
		return nil
	}

	_, err := r.scheduler.Cron(r.config.CronSchedule).Do(func() {
		if _, err := r.RunOnce(ctx); err != nil {
			logrus.WithField("component", "scheduler").WithError(err).Error("plan refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule plan refresh %q: %w", r.config.CronSchedule, err)
	}

	r.scheduler.StartAsync()
	logrus.WithFields(logrus.Fields{
		"component": "scheduler",
		"cron":      r.config.CronSchedule,
	}).Info("plan refresh scheduler started")

	go func() {
		<-ctx.Done()
		logrus.WithField("component", "scheduler").Info("stopping plan refresh scheduler")
		r.scheduler.Stop()
	}()
	return nil
}

// RunOnce computes the plan for the month containing now, so the data
// cutoff is the last month that has fully ended. It returns the number of
// products that need an order, or 0 when another run is in progress.
func (r *PlanRefresher) RunOnce(ctx context.Context) (int, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		logrus.WithField("component", "scheduler").Info("plan refresh already running, skipping")
		return 0, nil
	}
	r.running = true
	r.lastStartedAt = r.now()
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.lastCompletedAt = r.now()
		r.mu.Unlock()
	}()

	ctx = service.WithActor(ctx, domain.Actor{Username: "scheduler", Role: domain.RoleAdmin})
	target := forecast.PeriodOf(r.now(), r.location)
	log := logrus.WithFields(logrus.Fields{
		"component": "scheduler",
		"target":    target.String(),
	})

	started := time.Now()
	reorders := 0
	total := 0
	for page := 1; ; page++ {
		plan, err := r.planner.PurchasePlan(ctx, service.PlanQuery{
			Target:   &target,
			Page:     page,
			PageSize: refreshPageSize,
		})
		if err != nil {
			return reorders, fmt.Errorf("purchase plan for %s: %w", target, err)
		}
		total = plan.Total

		for _, item := range plan.Items {
			rec := item.Recommendation
			if rec.OrderQuantity < 1 {
				continue
			}
			reorders++
			log.WithFields(logrus.Fields{
				"product_id": item.Product.ID,
				"product":    item.Product.Name,
				"supplier":   item.SupplierName,
				"order_qty":  rec.OrderQuantity,
				"forecast":   rec.Forecast,
				"safety":     rec.SafetyStock,
				"stock":      rec.CurrentStock,
				"window":     rec.WindowUsed,
			}).Info("reorder needed")
		}
		if page*plan.PageSize >= plan.Total || len(plan.Items) == 0 {
			break
		}
	}

	log.WithFields(logrus.Fields{
		"products": total,
		"reorders": reorders,
		"duration": time.Since(started).String(),
	}).Info("plan refresh completed")
	return reorders, nil
}

// LastRun reports when the latest run started and completed.
func (r *PlanRefresher) LastRun() (started, completed time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastStartedAt, r.lastCompletedAt
}
