package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MARKETSYNC_DATABASE_PASSWORD
const EnvPrefix = "MARKETSYNC"

// Config holds all application configuration
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Log         LogConfig         `mapstructure:"log"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
	Import      ImportConfig      `mapstructure:"import"`
	Marketplace MarketplaceConfig `mapstructure:"marketplace"`
	Events      EventsConfig      `mapstructure:"events"`
	Auth        AuthConfig        `mapstructure:"auth"`
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

// RedisConfig holds Redis connection settings. An empty Addr selects the
// in-memory run lock.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"`
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"`
	Insecure          bool          `mapstructure:"insecure"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`
	LogsEnabled       bool          `mapstructure:"logs_enabled"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`
}

// SchedulerConfig holds the periodic import scheduler configuration
type SchedulerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Workers       int           `mapstructure:"workers"`
	QueueSize     int           `mapstructure:"queue_size"`
	Interval      time.Duration `mapstructure:"interval"`
	JobTimeout    time.Duration `mapstructure:"job_timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
}

// ImportConfig holds order import settings
type ImportConfig struct {
	CursorPolicy  string        `mapstructure:"cursor_policy"` // advance_before_fetch, advance_after_fetch
	WindowOverlap time.Duration `mapstructure:"window_overlap"`
	RequireOrders bool          `mapstructure:"require_orders"`
	LockTTL       time.Duration `mapstructure:"lock_ttl"`
}

// MarketplaceConfig holds eBay client settings
type MarketplaceConfig struct {
	Mode               string        `mapstructure:"mode"` // live, replay
	ReplayDir          string        `mapstructure:"replay_dir"`
	CompatibilityLevel string        `mapstructure:"compatibility_level"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	ProductionURL      string        `mapstructure:"production_url"`
	SandboxURL         string        `mapstructure:"sandbox_url"`
	CallsPerSecond     float64       `mapstructure:"calls_per_second"` // per developer keyset, 0 disables
	CallBurst          int           `mapstructure:"call_burst"`
}

// EventsConfig holds the Kafka event publisher settings. No brokers
// disables publishing.
type EventsConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	ClientID     string        `mapstructure:"client_id"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AuthConfig holds the API bearer token settings. An empty secret leaves
// the API open, which production refuses.
type AuthConfig struct {
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	Audience string        `mapstructure:"audience"`
	Leeway   time.Duration `mapstructure:"leeway"`
}

// Enabled reports whether bearer tokens are checked
func (a *AuthConfig) Enabled() bool {
	return a.Secret != ""
}

// defaults lists every key with its default. A key must appear here to be
// settable from the environment.
var defaults = map[string]any{
	"app.name": "marketsync",
	"app.env":  "development",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "marketsync",
	"database.sslmode":            "disable",
	"database.max_open_conns":     10,
	"database.max_idle_conns":     2,
	"database.conn_max_lifetime":  time.Hour,
	"database.conn_max_idle_time": 30 * time.Minute,
	"database.log_level":          "warn",

	"redis.addr":     "",
	"redis.password": "",
	"redis.db":       0,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.port":         "8080",
	"http.read_timeout": 15 * time.Second,
	// imports run inside the request, so writes get more room than reads
	"http.write_timeout": 5 * time.Minute,
	"http.idle_timeout":  60 * time.Second,

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "",
	"telemetry.insecure":                false,
	"telemetry.metrics_interval":        60 * time.Second,
	"telemetry.logs_enabled":            false,
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,

	"scheduler.enabled":        false,
	"scheduler.workers":        2,
	"scheduler.queue_size":     100,
	"scheduler.interval":       15 * time.Minute,
	"scheduler.job_timeout":    10 * time.Minute,
	"scheduler.retry_attempts": 3,
	"scheduler.retry_delay":    time.Minute,

	"import.cursor_policy":  "advance_before_fetch",
	"import.window_overlap": time.Duration(0),
	"import.require_orders": false,
	"import.lock_ttl":       30 * time.Minute,

	"marketplace.mode":                "live",
	"marketplace.replay_dir":          "",
	"marketplace.compatibility_level": "",
	"marketplace.request_timeout":     30 * time.Second,
	"marketplace.production_url":      "",
	"marketplace.sandbox_url":         "",
	"marketplace.calls_per_second":    5.0,
	"marketplace.call_burst":          5,

	"events.brokers":       []string{},
	"events.client_id":     "marketsync",
	"events.batch_timeout": 50 * time.Millisecond,
	"events.write_timeout": 10 * time.Second,

	"auth.secret":   "",
	"auth.issuer":   "",
	"auth.audience": "marketsync",
	"auth.leeway":   30 * time.Second,
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv exports the variables of each existing file in paths, e.g.
// MARKETSYNC_DATABASE_PASSWORD kept in a local .env. Variables already in
// the environment win. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load reads configuration from config.toml (optional) and the environment,
// environment first.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/marketsync")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFile reads configuration from an explicit file plus the environment
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// minAuthSecretLength matches the shortest HS256 key the verifier accepts
const minAuthSecretLength = 32

// Validate reports every value the service cannot run with
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Database.MaxOpenConns <= 0 {
		fail("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		fail("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		fail("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		fail("telemetry.sampling_ratio must be between 0.0 and 1.0, got %g", c.Telemetry.SamplingRatio)
	}
	if c.Scheduler.Workers < 0 || c.Scheduler.QueueSize < 0 {
		fail("scheduler.workers and scheduler.queue_size cannot be negative")
	}
	if c.Scheduler.RetryAttempts < 0 {
		fail("scheduler.retry_attempts cannot be negative")
	}

	switch c.Import.CursorPolicy {
	case "advance_before_fetch", "advance_after_fetch":
	default:
		fail("import.cursor_policy must be advance_before_fetch or advance_after_fetch, got %q", c.Import.CursorPolicy)
	}
	if c.Import.WindowOverlap < 0 {
		fail("import.window_overlap cannot be negative")
	}
	if c.Import.LockTTL <= 0 {
		fail("import.lock_ttl must be positive")
	}

	switch c.Marketplace.Mode {
	case "live":
	case "replay":
		if c.Marketplace.ReplayDir == "" {
			fail("marketplace.replay_dir is required in replay mode")
		}
	default:
		fail("marketplace.mode must be live or replay, got %q", c.Marketplace.Mode)
	}
	if c.Marketplace.CallsPerSecond < 0 {
		fail("marketplace.calls_per_second cannot be negative")
	}

	if c.Auth.Enabled() && len(c.Auth.Secret) < minAuthSecretLength {
		fail("auth.secret must be at least %d bytes", minAuthSecretLength)
	}

	if c.IsProduction() {
		if !c.Auth.Enabled() {
			fail("auth.secret is required in production")
		}
		if c.Database.Password == "" {
			fail("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			fail("database.sslmode cannot be 'disable' in production")
		}
		if c.Marketplace.Mode == "replay" {
			fail("marketplace.mode cannot be 'replay' in production")
		}
		if c.Telemetry.DBLogFullSQL {
			fail("telemetry.db_log_full_sql must be false in production")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
