package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Security  SecurityConfig  `mapstructure:"security"`
	Admission AdmissionConfig `mapstructure:"admission"`
}

type ServerConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	MetricsPort       int    `mapstructure:"metrics_port"`
	TrustProxyHeaders bool   `mapstructure:"trust_proxy_headers"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SecurityConfig struct {
	JWTSecret       string `mapstructure:"jwt_secret"`
	TokenTTLMinutes int    `mapstructure:"token_ttl_minutes"`
}

// AdmissionConfig is the configuration surface of the request-admission
// pipeline: the per-route policy table, the skip-path list, the store
// call timeout and the revocation failure policy. Loaded once at startup.
type AdmissionConfig struct {
	StoreTimeoutMS     int            `mapstructure:"store_timeout_ms"`
	RevocationFailMode string         `mapstructure:"revocation_fail_mode"`
	SkipPaths          []string       `mapstructure:"skip_paths"`
	DefaultPolicy      PolicyConfig   `mapstructure:"default_policy"`
	Routes             []PolicyConfig `mapstructure:"routes"`
}

type PolicyConfig struct {
	Pattern         string `mapstructure:"pattern"`
	RateLimit       int    `mapstructure:"rate_limit"`
	WindowSeconds   int    `mapstructure:"window_seconds"`
	Cacheable       bool   `mapstructure:"cacheable"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
	Personalized    bool   `mapstructure:"personalized"`
}

func Load(configPath string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	setDefaultValues(&cfg)

	return &cfg, nil
}

func setDefaultValues(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MetricsPort == 0 {
		cfg.Server.MetricsPort = 9090
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Security.TokenTTLMinutes == 0 {
		cfg.Security.TokenTTLMinutes = 30
	}
	if cfg.Admission.StoreTimeoutMS == 0 {
		cfg.Admission.StoreTimeoutMS = 200
	}
	if cfg.Admission.RevocationFailMode == "" {
		cfg.Admission.RevocationFailMode = "open"
	}
	if cfg.Admission.DefaultPolicy.RateLimit == 0 {
		cfg.Admission.DefaultPolicy.RateLimit = 100
	}
	if cfg.Admission.DefaultPolicy.WindowSeconds == 0 {
		cfg.Admission.DefaultPolicy.WindowSeconds = 60
	}
}
