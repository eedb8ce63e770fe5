package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	Log       LogConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Email     EmailConfig
	CORS      CORSConfig
	Billing   BillingConfig
	Load      LoadConfig
	Sweep     SweepConfig
	Ownership OwnershipConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds token verification settings. Tokens are issued by the
// municipal SSO; this service only verifies them.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RedisConfig holds the tariff read-through cache settings. The cache is
// never the source of truth; a short TTL bounds staleness.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// KafkaConfig holds the event publisher settings.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// EmailConfig holds notification email settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// BillingConfig holds municipal-wide billing policy knobs. Plan-specific
// rates (slabs, subsidies, PF thresholds) live on the tariff plan itself.
type BillingConfig struct {
	DueDays            int             `mapstructure:"due_days"`
	MinIntervalDays    int             `mapstructure:"min_interval_days"`
	LatePenaltyRate    decimal.Decimal `mapstructure:"-"`
	RebatePercent      decimal.Decimal `mapstructure:"-"`
	RebateWindowMonths int             `mapstructure:"rebate_window_months"`
}

// LoadConfig holds load-accounting thresholds.
type LoadConfig struct {
	ViolationTolerance decimal.Decimal `mapstructure:"-"` // demand above sanctioned × tolerance is a violation
	AlertThresholdPct  decimal.Decimal `mapstructure:"-"` // violation percentage above which a critical alert fires
}

// SweepConfig holds the periodic sweep worker settings.
type SweepConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	BatchSize int           `mapstructure:"batch_size"`
}

// OwnershipConfig holds the ownership-verification collaborator settings.
type OwnershipConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from environment variables with the PALIKA_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PALIKA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "palika")
	v.SetDefault("db.password", "palika_secret")
	v.SetDefault("db.name", "palika_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "palika-sso")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "5m")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "palika.billing.events")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-south-1")
	v.SetDefault("email.from_address", "noreply@palika.gov.in")
	v.SetDefault("email.from_name", "Nagar Palika")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Billing policy defaults
	v.SetDefault("billing.due_days", 21)
	v.SetDefault("billing.min_interval_days", 25)
	v.SetDefault("billing.late_penalty_rate", "0.02")
	v.SetDefault("billing.rebate_percent", "0.05")
	v.SetDefault("billing.rebate_window_months", 2)

	// Load policy defaults
	v.SetDefault("load.violation_tolerance", "1.10")
	v.SetDefault("load.alert_threshold_pct", "20")

	// Sweep defaults
	v.SetDefault("sweep.enabled", true)
	v.SetDefault("sweep.interval", "1h")
	v.SetDefault("sweep.batch_size", 500)

	// Ownership verifier defaults
	v.SetDefault("ownership.base_url", "http://localhost:9090")
	v.SetDefault("ownership.timeout", "5s")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                  "PALIKA_SERVER_PORT",
		"server.read_timeout":          "PALIKA_SERVER_READ_TIMEOUT",
		"server.write_timeout":         "PALIKA_SERVER_WRITE_TIMEOUT",
		"server.environment":           "PALIKA_SERVER_ENVIRONMENT",
		"db.host":                      "PALIKA_DB_HOST",
		"db.port":                      "PALIKA_DB_PORT",
		"db.user":                      "PALIKA_DB_USER",
		"db.password":                  "PALIKA_DB_PASSWORD",
		"db.name":                      "PALIKA_DB_NAME",
		"db.sslmode":                   "PALIKA_DB_SSLMODE",
		"db.max_open":                  "PALIKA_DB_MAX_OPEN",
		"db.max_idle":                  "PALIKA_DB_MAX_IDLE",
		"jwt.secret":                   "PALIKA_JWT_SECRET",
		"jwt.issuer":                   "PALIKA_JWT_ISSUER",
		"log.level":                    "PALIKA_LOG_LEVEL",
		"log.format":                   "PALIKA_LOG_FORMAT",
		"redis.enabled":                "PALIKA_REDIS_ENABLED",
		"redis.addr":                   "PALIKA_REDIS_ADDR",
		"redis.password":               "PALIKA_REDIS_PASSWORD",
		"redis.db":                     "PALIKA_REDIS_DB",
		"redis.ttl":                    "PALIKA_REDIS_TTL",
		"kafka.enabled":                "PALIKA_KAFKA_ENABLED",
		"kafka.brokers":                "PALIKA_KAFKA_BROKERS",
		"kafka.topic":                  "PALIKA_KAFKA_TOPIC",
		"email.provider":               "PALIKA_EMAIL_PROVIDER",
		"email.region":                 "PALIKA_EMAIL_REGION",
		"email.from_address":           "PALIKA_EMAIL_FROM_ADDRESS",
		"email.from_name":              "PALIKA_EMAIL_FROM_NAME",
		"cors.allowed_origins":         "PALIKA_CORS_ALLOWED_ORIGINS",
		"billing.due_days":             "PALIKA_BILLING_DUE_DAYS",
		"billing.min_interval_days":    "PALIKA_BILLING_MIN_INTERVAL_DAYS",
		"billing.late_penalty_rate":    "PALIKA_BILLING_LATE_PENALTY_RATE",
		"billing.rebate_percent":       "PALIKA_BILLING_REBATE_PERCENT",
		"billing.rebate_window_months": "PALIKA_BILLING_REBATE_WINDOW_MONTHS",
		"load.violation_tolerance":     "PALIKA_LOAD_VIOLATION_TOLERANCE",
		"load.alert_threshold_pct":     "PALIKA_LOAD_ALERT_THRESHOLD_PCT",
		"sweep.enabled":                "PALIKA_SWEEP_ENABLED",
		"sweep.interval":               "PALIKA_SWEEP_INTERVAL",
		"sweep.batch_size":             "PALIKA_SWEEP_BATCH_SIZE",
		"ownership.base_url":           "PALIKA_OWNERSHIP_BASE_URL",
		"ownership.timeout":            "PALIKA_OWNERSHIP_TIMEOUT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if PALIKA_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("PALIKA_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
		Issuer: v.GetString("jwt.issuer"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("redis.enabled"),
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
		TTL:      v.GetDuration("redis.ttl"),
	}
	cfg.Kafka = KafkaConfig{
		Enabled: v.GetBool("kafka.enabled"),
		Brokers: splitAndTrim(v.GetString("kafka.brokers")),
		Topic:   v.GetString("kafka.topic"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitAndTrim(v.GetString("cors.allowed_origins")),
	}

	latePenalty, err := decimal.NewFromString(v.GetString("billing.late_penalty_rate"))
	if err != nil {
		return nil, fmt.Errorf("invalid billing.late_penalty_rate: %w", err)
	}
	rebatePct, err := decimal.NewFromString(v.GetString("billing.rebate_percent"))
	if err != nil {
		return nil, fmt.Errorf("invalid billing.rebate_percent: %w", err)
	}
	cfg.Billing = BillingConfig{
		DueDays:            v.GetInt("billing.due_days"),
		MinIntervalDays:    v.GetInt("billing.min_interval_days"),
		LatePenaltyRate:    latePenalty,
		RebatePercent:      rebatePct,
		RebateWindowMonths: v.GetInt("billing.rebate_window_months"),
	}

	tolerance, err := decimal.NewFromString(v.GetString("load.violation_tolerance"))
	if err != nil {
		return nil, fmt.Errorf("invalid load.violation_tolerance: %w", err)
	}
	alertPct, err := decimal.NewFromString(v.GetString("load.alert_threshold_pct"))
	if err != nil {
		return nil, fmt.Errorf("invalid load.alert_threshold_pct: %w", err)
	}
	cfg.Load = LoadConfig{
		ViolationTolerance: tolerance,
		AlertThresholdPct:  alertPct,
	}

	cfg.Sweep = SweepConfig{
		Enabled:   v.GetBool("sweep.enabled"),
		Interval:  v.GetDuration("sweep.interval"),
		BatchSize: v.GetInt("sweep.batch_size"),
	}
	cfg.Ownership = OwnershipConfig{
		BaseURL: v.GetString("ownership.base_url"),
		Timeout: v.GetDuration("ownership.timeout"),
	}

	return cfg, nil
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
