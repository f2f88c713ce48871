package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	LogConfig     logger.LogConfig `json:"log_config"`
	Auth          AuthConfig       `json:"auth"`
	CORSAllowlist []string         `json:"cors_allowlist"`
	RateLimitMS   int              `json:"rate_limit_ms"`
	Text          ModalityConfig   `json:"text"`
	Image         ModalityConfig   `json:"image"`
	Fetch         FetchConfig      `json:"fetch"`
	Cache         CacheConfig      `json:"cache"`
	Database      DatabaseConfig   `json:"database"`
}

type AuthConfig struct {
	Mode      string   `json:"mode"` // none, api_key or jwt
	APIKeys   []string `json:"api_keys"`
	JWTSecret string   `json:"jwt_secret"`
}

type ProviderConfig struct {
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
	Data     interface{} `json:"data"`
}

type ModalityConfig struct {
	Providers     []ProviderConfig `json:"providers"`
	MaxBatch      int              `json:"max_batch"`
	MaxInputChars int              `json:"max_input_chars"`
	Timeout       int              `json:"timeout"`
	ExpectDims    int              `json:"expect_dims"`
}

type FetchConfig struct {
	Timeout        int      `json:"timeout"`
	MaxBytes       int64    `json:"max_bytes"`
	MaxConcurrency int      `json:"max_concurrency"`
	RatePerSec     float64  `json:"rate_per_sec"`
	S3             S3Config `json:"s3"`
}

type S3Config struct {
	Endpoint  string `json:"endpoint"`
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	Region    string `json:"region"`
	UsePath   bool   `json:"use_path_style"`
}

type CacheConfig struct {
	LRUSize       int         `json:"lru_size"`
	LRUTTLMinutes int         `json:"lru_ttl_minutes"`
	Redis         RedisConfig `json:"redis"`
	MaxAgeDays    int         `json:"max_age_days"`
	CleanupCron   string      `json:"cleanup_cron"`
}

type RedisConfig struct {
	Addr       string `json:"addr"`
	Password   string `json:"password"`
	DB         int    `json:"db"`
	TTLMinutes int    `json:"ttl_minutes"`
}

type DatabaseConfig struct {
	Enable   bool   `json:"enable"`
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if len(cfg.Text.Providers) == 0 {
		return nil, fmt.Errorf("text.providers is required")
	}
	for i, p := range cfg.Text.Providers {
		if p.Provider == "" || p.Model == "" {
			return nil, fmt.Errorf("text.providers[%d] provider/model are required", i)
		}
	}
	for i, p := range cfg.Image.Providers {
		if p.Provider == "" || p.Model == "" {
			return nil, fmt.Errorf("image.providers[%d] provider/model are required", i)
		}
	}
	switch cfg.Auth.Mode {
	case "", "none":
		cfg.Auth.Mode = "none"
	case "api_key":
		if len(cfg.Auth.APIKeys) == 0 {
			return nil, fmt.Errorf("auth.api_keys is required for api_key mode")
		}
	case "jwt":
		if cfg.Auth.JWTSecret == "" {
			return nil, fmt.Errorf("auth.jwt_secret is required for jwt mode")
		}
	default:
		return nil, fmt.Errorf("auth.mode must be none, api_key or jwt")
	}
	if cfg.Text.MaxBatch == 0 {
		cfg.Text.MaxBatch = 64
	}
	if cfg.Text.MaxInputChars == 0 {
		cfg.Text.MaxInputChars = 8192
	}
	if cfg.Text.Timeout == 0 {
		cfg.Text.Timeout = 30
	}
	if cfg.Image.MaxBatch == 0 {
		cfg.Image.MaxBatch = 16
	}
	if cfg.Image.Timeout == 0 {
		cfg.Image.Timeout = 60
	}
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = 10
	}
	if cfg.Fetch.MaxBytes == 0 {
		cfg.Fetch.MaxBytes = 10 << 20
	}
	if cfg.Fetch.MaxConcurrency == 0 {
		cfg.Fetch.MaxConcurrency = 4
	}
	if cfg.Cache.LRUSize == 0 {
		cfg.Cache.LRUSize = 10000
	}
	if cfg.Cache.LRUTTLMinutes == 0 {
		cfg.Cache.LRUTTLMinutes = 120
	}
	if cfg.Cache.Redis.Addr != "" && cfg.Cache.Redis.TTLMinutes == 0 {
		cfg.Cache.Redis.TTLMinutes = 24 * 60
	}
	if cfg.Cache.MaxAgeDays == 0 {
		cfg.Cache.MaxAgeDays = 30
	}
	if cfg.Cache.CleanupCron == "" {
		cfg.Cache.CleanupCron = "30 3 * * *"
	}
	if cfg.Database.Enable {
		if cfg.Database.DSN == "" && (cfg.Database.Host == "" || cfg.Database.DBName == "") {
			return nil, fmt.Errorf("database.dsn or database.host/db_name are required when database.enable is set")
		}
	}
	return &cfg, nil
}
