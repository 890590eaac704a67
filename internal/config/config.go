package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/ganot/hrv-ingest/internal/domain/numeric"
	"github.com/ganot/hrv-ingest/internal/domain/participant"
	"github.com/ganot/hrv-ingest/internal/domain/report"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config defines the ingester and server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Auth      AuthConfig      `yaml:"auth"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	CORS      CORSConfig      `yaml:"cors"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	// Mode is "http" or "stdio".
	Mode string `yaml:"mode"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
	// Tokens maps client names to bearer tokens.
	Tokens map[string]string `yaml:"tokens"`
}

type DBConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	// Path is the sqlite database file.
	Path string `yaml:"path"`
	// DSN overrides the postgres connection fields when set.
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Path, when set, writes logs to a size-capped file.
	Path string `yaml:"path"`
}

type IngestConfig struct {
	Root       string       `yaml:"root"`
	Timezone   string       `yaml:"timezone"`
	MinGapMS   int          `yaml:"min_gap_ms"`
	MaxGapMS   int          `yaml:"max_gap_ms"`
	Locale     string       `yaml:"locale"`
	Precedence []string     `yaml:"precedence"`
	Journal    bool         `yaml:"journal"`
	UserID     UserIDConfig `yaml:"user_id"`
}

type UserIDConfig struct {
	Strategy string `yaml:"strategy"`
	Offset   int    `yaml:"offset"`
	Length   int    `yaml:"length"`
	Pattern  string `yaml:"pattern"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the configuration used before the file and environment
// are applied.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{Mode: "http"},
		DB: DBConfig{
			Driver:  "sqlite",
			Path:    "hrv.db",
			Port:    5432,
			SSLMode: "disable",
		},
		Log: LogConfig{
			Level: "info",
		},
		Ingest: IngestConfig{
			Root:     "data",
			Timezone: "UTC",
			MinGapMS: 0,
			MaxGapMS: 3000,
			Locale:   "auto",
			Journal:  true,
			UserID: UserIDConfig{
				Strategy: participant.StrategyOffset,
				Offset:   participant.DefaultOffset,
				Length:   participant.DefaultLength,
			},
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "hrv",
		},
		CORS: CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("HRV_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}
	setBool := func(key string, dst *bool) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = b
		return nil
	}
	setList := func(key string, dst *[]string) {
		if v := os.Getenv(key); v != "" {
			*dst = splitList(v)
		}
	}

	setString("HRV_SERVER_HOST", &cfg.Server.Host)
	setString("HRV_TRANSPORT", &cfg.Transport.Mode)
	setString("HRV_DB_DRIVER", &cfg.DB.Driver)
	setString("HRV_DB_PATH", &cfg.DB.Path)
	setString("HRV_DB_DSN", &cfg.DB.DSN)
	setString("HRV_LOG_LEVEL", &cfg.Log.Level)
	setString("HRV_LOG_PATH", &cfg.Log.Path)
	setString("HRV_INGEST_ROOT", &cfg.Ingest.Root)
	setString("HRV_INGEST_TIMEZONE", &cfg.Ingest.Timezone)
	setString("HRV_INGEST_LOCALE", &cfg.Ingest.Locale)
	setString("HRV_USER_ID_STRATEGY", &cfg.Ingest.UserID.Strategy)
	setString("HRV_USER_ID_PATTERN", &cfg.Ingest.UserID.Pattern)
	setString("HRV_METRICS_NAMESPACE", &cfg.Metrics.Namespace)
	setList("HRV_INGEST_PRECEDENCE", &cfg.Ingest.Precedence)
	setList("HRV_CORS_ALLOWED_ORIGINS", &cfg.CORS.AllowedOrigins)

	for key, dst := range map[string]*int{
		"HRV_SERVER_PORT":       &cfg.Server.Port,
		"HRV_INGEST_MIN_GAP_MS": &cfg.Ingest.MinGapMS,
		"HRV_INGEST_MAX_GAP_MS": &cfg.Ingest.MaxGapMS,
		"HRV_USER_ID_OFFSET":    &cfg.Ingest.UserID.Offset,
		"HRV_USER_ID_LENGTH":    &cfg.Ingest.UserID.Length,
	} {
		if err := setInt(key, dst); err != nil {
			return err
		}
	}
	for key, dst := range map[string]*bool{
		"HRV_AUTH_ENABLED":    &cfg.Auth.Enabled,
		"HRV_METRICS_ENABLED": &cfg.Metrics.Enabled,
		"HRV_INGEST_JOURNAL":  &cfg.Ingest.Journal,
	} {
		if err := setBool(key, dst); err != nil {
			return err
		}
	}

	// HRV_AUTH_TOKENS is a comma separated list of client:token pairs.
	if v := os.Getenv("HRV_AUTH_TOKENS"); v != "" {
		tokens := make(map[string]string)
		for _, pair := range splitList(v) {
			client, token, ok := strings.Cut(pair, ":")
			if !ok || client == "" || token == "" {
				return fmt.Errorf("invalid HRV_AUTH_TOKENS entry %q", pair)
			}
			tokens[client] = token
		}
		cfg.Auth.Tokens = tokens
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Validate checks every section and reports the first problem found.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d", ErrInvalid, c.Server.Port)
	}
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("%w: transport mode %q", ErrInvalid, c.Transport.Mode)
	}
	if c.Auth.Enabled && len(c.Auth.Tokens) == 0 {
		return fmt.Errorf("%w: auth enabled without tokens", ErrInvalid)
	}
	switch c.DB.Driver {
	case "sqlite":
		if c.DB.Path == "" {
			return fmt.Errorf("%w: sqlite path is empty", ErrInvalid)
		}
	case "postgres":
		if c.DB.DSN == "" && (c.DB.Host == "" || c.DB.Name == "") {
			return fmt.Errorf("%w: postgres needs a dsn or host and name", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: db driver %q", ErrInvalid, c.DB.Driver)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.Log.Level)
	}
	if _, err := c.Ingest.Location(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Ingest.MinGapMS < 0 || c.Ingest.MaxGapMS < c.Ingest.MinGapMS {
		return fmt.Errorf("%w: gap bounds %d..%d", ErrInvalid, c.Ingest.MinGapMS, c.Ingest.MaxGapMS)
	}
	if _, err := numeric.ParseLocale(c.Ingest.Locale); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := report.ParsePrecedence(c.Ingest.Precedence); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := c.Ingest.UserID.Resolver(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// DataSource returns the connection string for the configured driver.
func (d DBConfig) DataSource() string {
	if d.Driver != "postgres" {
		return d.Path
	}
	if d.DSN != "" {
		return d.DSN
	}
	parts := []string{
		"host=" + d.Host,
		"port=" + strconv.Itoa(d.Port),
		"dbname=" + d.Name,
		"sslmode=" + d.SSLMode,
	}
	if d.User != "" {
		parts = append(parts, "user="+d.User)
	}
	if d.Password != "" {
		parts = append(parts, "password="+d.Password)
	}
	return strings.Join(parts, " ")
}

// Location loads the configured timezone.
func (i IngestConfig) Location() (*time.Location, error) {
	if i.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(i.Timezone)
}

// Resolver builds the configured user id resolver.
func (u UserIDConfig) Resolver() (participant.Resolver, error) {
	return participant.NewResolver(u.Strategy, u.Offset, u.Length, u.Pattern)
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
