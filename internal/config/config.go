package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"stokcast/backend/internal/domain"
	"stokcast/backend/internal/forecast"
)

type Config struct {
	Port                  string         `mapstructure:"port"`
	AllowedOrigin         string         `mapstructure:"allowed_origin"`
	DatabaseURL           string         `mapstructure:"database_url"`
	RedisAddr             string         `mapstructure:"redis_addr"`
	RedisPassword         string         `mapstructure:"redis_password"`
	RedisDB               int            `mapstructure:"redis_db"`
	AuthSecret            string         `mapstructure:"auth_secret"`
	AccessTokenTTLMinutes int            `mapstructure:"access_token_ttl_minutes"`
	LogLevel              string         `mapstructure:"log_level"`
	LogFormat             string         `mapstructure:"log_format"`
	Timezone              string         `mapstructure:"timezone"`
	SeedDemoData          bool           `mapstructure:"seed_demo_data"`
	BootstrapAdminPass    string         `mapstructure:"bootstrap_admin_password"`
	Forecast              ForecastConfig `mapstructure:",squash"`
	PlanRefresh           PlanRefresh    `mapstructure:",squash"`
}

type ForecastConfig struct {
	LeadTimeMaxDays  int    `mapstructure:"lead_time_max_days"`
	LeadTimeAvgDays  int    `mapstructure:"lead_time_avg_days"`
	PeriodDays       int    `mapstructure:"period_days"`
	CandidateWindows []int  `mapstructure:"candidate_windows"`
	DefaultWindow    int    `mapstructure:"default_window"`
	WindowPolicy     string `mapstructure:"window_policy"`
	CacheTTLSeconds  int    `mapstructure:"forecast_cache_ttl_seconds"`
}

type PlanRefresh struct {
	CronSchedule string `mapstructure:"plan_refresh_cron"`
	Enabled      bool   `mapstructure:"plan_refresh_enabled"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGIN", "http://127.0.0.1:3000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	// no fallback secret: the server refuses to start without one
	v.SetDefault("AUTH_SECRET", "")
	v.SetDefault("ACCESS_TOKEN_TTL_MINUTES", 480)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("TIMEZONE", "")
	v.SetDefault("SEED_DEMO_DATA", true)
	// creates the first admin in an empty postgres user table
	v.SetDefault("BOOTSTRAP_ADMIN_PASSWORD", "")

	v.SetDefault("LEAD_TIME_MAX_DAYS", forecast.DefaultLeadTimeMaxDays)
	v.SetDefault("LEAD_TIME_AVG_DAYS", forecast.DefaultLeadTimeAvgDays)
	v.SetDefault("PERIOD_DAYS", forecast.DefaultPeriodDays)
	v.SetDefault("CANDIDATE_WINDOWS", "2,4,6,8")
	v.SetDefault("DEFAULT_WINDOW", forecast.DefaultWindow)
	v.SetDefault("WINDOW_POLICY", string(domain.WindowPolicyAuto))
	v.SetDefault("FORECAST_CACHE_TTL_SECONDS", 300)

	// first day of every month at 05:00
	v.SetDefault("PLAN_REFRESH_CRON", "0 5 1 * *")
	v.SetDefault("PLAN_REFRESH_ENABLED", false)
}

// Load reads configuration from the environment, after merging an optional
// .env file found in the working directory or its parent.
func Load() (Config, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.AuthSecret = strings.TrimSpace(cfg.AuthSecret)
	if cfg.AccessTokenTTLMinutes < 1 {
		cfg.AccessTokenTTLMinutes = 480
	}
	if cfg.Forecast.CacheTTLSeconds < 0 {
		cfg.Forecast.CacheTTLSeconds = 0
	}
	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	if _, err := ParseWindowPolicy(cfg.Forecast.WindowPolicy); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Location is the calendar used to bucket sales into months.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Forecast.CacheTTLSeconds) * time.Second
}

func (c Config) WindowPolicy() domain.WindowPolicy {
	policy, err := ParseWindowPolicy(c.Forecast.WindowPolicy)
	if err != nil {
		return domain.WindowPolicyAuto
	}
	return policy
}

// ForecastParams builds the forecasting core's parameters.
func (c Config) ForecastParams() (forecast.Params, error) {
	loc, err := c.Location()
	if err != nil {
		return forecast.Params{}, err
	}
	params := forecast.Params{
		LeadTimeMaxDays:  c.Forecast.LeadTimeMaxDays,
		LeadTimeAvgDays:  c.Forecast.LeadTimeAvgDays,
		PeriodDays:       c.Forecast.PeriodDays,
		CandidateWindows: append([]int(nil), c.Forecast.CandidateWindows...),
		DefaultWindow:    c.Forecast.DefaultWindow,
		Location:         loc,
	}
	return params.Normalize(), nil
}

// ParseWindowPolicy accepts "auto", "fixed" or empty (auto).
func ParseWindowPolicy(raw string) (domain.WindowPolicy, error) {
	switch domain.WindowPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", domain.WindowPolicyAuto:
		return domain.WindowPolicyAuto, nil
	case domain.WindowPolicyFixed:
		return domain.WindowPolicyFixed, nil
	default:
		return "", fmt.Errorf("window policy must be auto or fixed, got %q", raw)
	}
}

func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	for _, location := range []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
	} {
		if _, err := os.Stat(location); err != nil {
			continue
		}
		if err := godotenv.Load(location); err != nil {
			logrus.WithError(err).Warnf("could not load %s", location)
			continue
		}
		logrus.Debugf("loaded environment from %s", location)
		return
	}
}
