package config

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig is built once at process start and passed by reference into every
// component that needs it. Nothing mutates it after Load returns.
type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	Admin     AdminSettings     `mapstructure:"admin"`
	Argon2    Argon2Settings    `mapstructure:"argon2"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures the optional Redis connection used for login rate
// limiting. An empty host disables it.
type RedisSettings struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
}

// KafkaSettings configures the optional visit event producer. Empty broker
// list falls back to the logging stub publisher.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

// AdminSettings carries the operator credential configuration.
//
// PasswordHash arrives base64-url encoded (no padding) in
// ADMIN_PASSWORD_HASH, the transport form the hash-admin-password CLI prints,
// and is decoded to the raw Argon2id hash string during Load.
type AdminSettings struct {
	PasswordHash             string `mapstructure:"password_hash"`
	LoginExpiresAfterSeconds int    `mapstructure:"login_expires_after_seconds"`
	CookieSecret             string `mapstructure:"cookie_secret"`
}

// LoginTTL returns the session token lifetime as a duration.
func (s AdminSettings) LoginTTL() time.Duration {
	return time.Duration(s.LoginExpiresAfterSeconds) * time.Second
}

// Argon2ProfileSettings configures one Argon2id cost profile.
type Argon2ProfileSettings struct {
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
	SaltLength  uint32 `mapstructure:"salt_length"`
	KeyLength   uint32 `mapstructure:"key_length"`
}

// Argon2Settings configures both credential hashing cost profiles plus the
// concurrency gate for hash computations.
type Argon2Settings struct {
	Weak          Argon2ProfileSettings `mapstructure:"weak"`
	Strong        Argon2ProfileSettings `mapstructure:"strong"`
	MaxConcurrent int64                 `mapstructure:"max_concurrent"`
}

// RateLimitSettings configures the sliding-window limit on login attempts.
type RateLimitSettings struct {
	WindowDuration   time.Duration `mapstructure:"window_duration"`
	LoginMaxAttempts int           `mapstructure:"login_max_attempts"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("SHORTENER")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"kafka.brokers",
		"kafka.topic_prefix",
		"admin.password_hash",
		"admin.login_expires_after_seconds",
		"admin.cookie_secret",
		"argon2.weak.memory",
		"argon2.weak.iterations",
		"argon2.weak.parallelism",
		"argon2.weak.salt_length",
		"argon2.weak.key_length",
		"argon2.strong.memory",
		"argon2.strong.iterations",
		"argon2.strong.parallelism",
		"argon2.strong.salt_length",
		"argon2.strong.key_length",
		"argon2.max_concurrent",
		"rate_limit.window_duration",
		"rate_limit.login_max_attempts",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Admin.PasswordHash != "" {
		decoded, err := base64.RawURLEncoding.DecodeString(cfg.Admin.PasswordHash)
		if err != nil {
			return nil, fmt.Errorf("decode ADMIN_PASSWORD_HASH: %w", err)
		}
		cfg.Admin.PasswordHash = string(decoded)
	}

	if cfg.Admin.LoginExpiresAfterSeconds <= 0 {
		return nil, fmt.Errorf("admin.login_expires_after_seconds must be positive")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "link-shortener")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "shortener")
	v.SetDefault("postgres.password", "shortener_password")
	v.SetDefault("postgres.database", "shortener")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "shortener")

	v.SetDefault("admin.password_hash", "")
	v.SetDefault("admin.login_expires_after_seconds", 1800)
	v.SetDefault("admin.cookie_secret", "")

	// Session secrets are checked on every authenticated dashboard request;
	// the operator password and platform API keys are rare, high-value
	// verifications.
	v.SetDefault("argon2.weak.memory", 13312)
	v.SetDefault("argon2.weak.iterations", 2)
	v.SetDefault("argon2.weak.parallelism", 1)
	v.SetDefault("argon2.weak.salt_length", 16)
	v.SetDefault("argon2.weak.key_length", 64)
	v.SetDefault("argon2.strong.memory", 19456)
	v.SetDefault("argon2.strong.iterations", 3)
	v.SetDefault("argon2.strong.parallelism", 2)
	v.SetDefault("argon2.strong.salt_length", 16)
	v.SetDefault("argon2.strong.key_length", 64)
	v.SetDefault("argon2.max_concurrent", 0)

	v.SetDefault("rate_limit.window_duration", "1m")
	v.SetDefault("rate_limit.login_max_attempts", 5)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "SHORTENER_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
