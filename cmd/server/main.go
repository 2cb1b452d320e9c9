package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"stokcast/backend/internal/cache"
	"stokcast/backend/internal/config"
	"stokcast/backend/internal/domain"
	"stokcast/backend/internal/httpapi"
	"stokcast/backend/internal/logging"
	"stokcast/backend/internal/recommendation"
	"stokcast/backend/internal/scheduler"
	"stokcast/backend/internal/service"
	"stokcast/backend/internal/store"
	"stokcast/backend/internal/store/memory"
	pgstore "stokcast/backend/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err := validateSecurityConfig(cfg); err != nil {
		logrus.WithError(err).Fatal("invalid security configuration")
	}
	params, err := cfg.ForecastParams()
	if err != nil {
		logrus.WithError(err).Fatal("invalid forecast configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logrus.WithError(err).Fatal("postgres unavailable and DATABASE_URL is set; refusing to start with in-memory fallback")
		}
		if err := pg.Migrate(ctx); err != nil {
			logrus.WithError(err).Fatal("postgres migration failed")
		}
		if err := bootstrapAdmin(ctx, pg, cfg.BootstrapAdminPass); err != nil {
			logrus.WithError(err).Fatal("bootstrap admin failed")
		}
		repo = pg
		closers = append(closers, pg.Close)
		logrus.Info("repository: postgres")
	} else if cfg.SeedDemoData {
		repo = memory.NewSeeded()
		logrus.Info("repository: in-memory with demo history")
	} else {
		repo = memory.New()
		logrus.Info("repository: in-memory")
	}

	cacheStore := cache.RecommendationCache(cache.NewMemoryRecommendationCache())
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisRecommendationCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			logrus.WithError(err).Warn("redis unavailable, using in-process cache")
		} else {
			cacheStore = redisCache
			closers = append(closers, redisCache.Close)
			logrus.Info("cache: redis")
		}
	} else {
		logrus.Info("cache: in-process")
	}

	recommender := recommendation.NewEngine(cacheStore, cfg.CacheTTL(), params)
	svc := service.New(repo, recommender, cfg.WindowPolicy())
	auth := httpapi.NewAuthManager(ctx, cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, repo)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()
	refresher := scheduler.NewPlanRefresher(svc, cfg.PlanRefresh, params.Location)
	if err := refresher.Start(runCtx); err != nil {
		logrus.WithError(err).Fatal("plan refresh scheduler failed to start")
	}

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logrus.WithField("addr", cfg.Address()).Info("stokcast backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	stopRun()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("shutdown error")
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logrus.WithError(err).Warn("close error")
		}
	}

	logrus.Info("server stopped")
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if cfg.DatabaseURL != "" && cfg.BootstrapAdminPass != "" && len(cfg.BootstrapAdminPass) < 8 {
		return fmt.Errorf("BOOTSTRAP_ADMIN_PASSWORD must be at least 8 characters")
	}
	return nil
}

// bootstrapAdmin creates the first admin account when the user table is
// empty. Without a password an empty table is left as is.
func bootstrapAdmin(ctx context.Context, repo store.Repository, password string) error {
	users, err := repo.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}
	if password == "" {
		logrus.Warn("no users exist and BOOTSTRAP_ADMIN_PASSWORD is empty; nobody can log in")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}
	if err := repo.CreateUser(ctx, domain.UserAccount{
		Username:  "admin",
		Password:  string(hash),
		Role:      domain.RoleAdmin,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return err
	}
	logrus.Info("bootstrap admin account created")
	return nil
}
