package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// redis (login sessions + login rate limiting)
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// prometheus
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// github repo holding the planner CSV files
	GitHubAPIBaseURL string `toml:"github_api_base_url"`
	GitHubOwner      string `toml:"github_owner"`
	GitHubRepo       string `toml:"github_repo"`
	GitHubBranch     string `toml:"github_branch"`

	PlanCSVPath    string `toml:"plan_csv_path"`
	CatalogCSVPath string `toml:"catalog_csv_path"`
	LogCSVPath     string `toml:"log_csv_path"`

	StoreTimeoutSeconds  int `toml:"store_timeout_seconds"`
	StoreCacheTTLSeconds int `toml:"store_cache_ttl_seconds"`

	// auto-save debounce window, per (user, weekday)
	AutoSaveDebounceMillis int `toml:"auto_save_debounce_millis"`

	LoginRateLimitAllowedPerMin int `toml:"login_rate_limit_allowed_per_min"`

	// the two planner users, selectable at login (no passwords)
	Users []string `toml:"users"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var tomlCfg Toml
	if _, err := toml.DecodeFile(path, &tomlCfg); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := tomlCfg.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section for env %s missing in %s", env, path)
	}

	cfg.Environment = env
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.GitHubAPIBaseURL == "" {
		c.GitHubAPIBaseURL = "https://api.github.com"
	}
	if c.GitHubBranch == "" {
		c.GitHubBranch = "main"
	}
	if c.PlanCSVPath == "" {
		c.PlanCSVPath = "Data/treinos.csv"
	}
	if c.CatalogCSVPath == "" {
		c.CatalogCSVPath = "Data/exercicios.csv"
	}
	if c.LogCSVPath == "" {
		c.LogCSVPath = "Data/treino_log.csv"
	}
	if c.StoreTimeoutSeconds <= 0 {
		c.StoreTimeoutSeconds = 20
	}
	if c.StoreCacheTTLSeconds <= 0 {
		c.StoreCacheTTLSeconds = 60
	}
	if c.AutoSaveDebounceMillis <= 0 {
		c.AutoSaveDebounceMillis = 1200
	}
	if c.LoginRateLimitAllowedPerMin <= 0 {
		c.LoginRateLimitAllowedPerMin = 15
	}
}
