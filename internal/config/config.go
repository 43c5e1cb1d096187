package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	Vault    VaultConfig    `mapstructure:"vault"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`

	// ReadOnly pauses all vault mutations while leaving reads and the
	// event stream up; used during venue catalog migrations.
	ReadOnly bool `mapstructure:"read_only"`
}

type AuthConfig struct {
	// VerifySignatures requires every /v1 call to carry a recoverable
	// signature over the request body matching the claimed identity.
	VerifySignatures bool   `mapstructure:"verify_signatures"`
	AdminKey         string `mapstructure:"admin_key"`
	AdminSecretKey   string `mapstructure:"admin_secret_key"`
}

type DatabaseConfig struct {
	DSN                    string `mapstructure:"dsn"`
	AuditRetentionDays     int    `mapstructure:"audit_retention_days"`
	CleanupIntervalMinutes int    `mapstructure:"cleanup_interval_minutes"`
}

type RedisConfig struct {
	Addr                  string `mapstructure:"addr"`
	Password              string `mapstructure:"password"`
	DB                    int    `mapstructure:"db"`
	IdempotencyTTLSeconds int    `mapstructure:"idempotency_ttl_seconds"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LimitsConfig struct {
	QPS   float64 `mapstructure:"qps"`   // per-caller request rate
	Burst int     `mapstructure:"burst"` // token bucket burst size

	// Daily withdraw caps; zero disables the cap.
	MaxDailyWithdrawValue uint64 `mapstructure:"max_daily_withdraw_value"`
	MaxDailyWithdrawCount int    `mapstructure:"max_daily_withdraw_count"`
}

// VaultConfig seeds the registry on first boot. Admin is the identity
// allowed to replace the venue catalog; it never changes after the
// registry record is created.
type VaultConfig struct {
	Admin  string        `mapstructure:"admin"`
	Chains []ChainConfig `mapstructure:"chains"`
	Venues []VenueConfig `mapstructure:"venues"`
}

type ChainConfig struct {
	ChainID       uint32 `mapstructure:"chain_id"`
	BridgeAddress string `mapstructure:"bridge_address"`
	GasToken      string `mapstructure:"gas_token"`
}

type VenueConfig struct {
	VenueID   uint32 `mapstructure:"venue_id"`
	Name      string `mapstructure:"name"`
	ChainID   uint32 `mapstructure:"chain_id"`
	APY       uint32 `mapstructure:"apy"`        // basis points
	RiskScore uint8  `mapstructure:"risk_score"` // 0..10
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variables support
	// e.g. YIELDGATE_DATABASE_DSN
	viper.SetEnvPrefix("yieldgate")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("auth.verify_signatures", false)
	viper.SetDefault("auth.admin_key", "")
	viper.SetDefault("auth.admin_secret_key", "")
	viper.SetDefault("redis.idempotency_ttl_seconds", 86400)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
	viper.SetDefault("limits.qps", 10)
	viper.SetDefault("limits.burst", 20)
	viper.SetDefault("database.audit_retention_days", 30)
	viper.SetDefault("database.cleanup_interval_minutes", 60)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
