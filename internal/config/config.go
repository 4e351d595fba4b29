// Package config carga la configuración del portal desde YAML + variables de entorno.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Blob     BlobConfig     `yaml:"blob"`
	Logging  LoggingConfig  `yaml:"logging"`
	Tracing  TracingConfig  `yaml:"tracing"`

	// CatalogPath es opcional; vacío = tablas por defecto.
	CatalogPath string `yaml:"catalog_path"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// MaxUploadBytes limita el tamaño de la foto en /publicar.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

type DatabaseConfig struct {
	// Driver: "pgx" (default) o "postgres" (lib/pq). DSN vacío = store en memoria.
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	Migrate         bool          `yaml:"migrate"`
}

type AuthConfig struct {
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	CookieName    string        `yaml:"cookie_name"`
	CookieSecure  bool          `yaml:"cookie_secure"`
	// DevHeaders habilita X-Debug-User-ID (solo desarrollo/tests).
	DevHeaders   bool     `yaml:"dev_headers"`
	ModeratorIDs []string `yaml:"moderator_ids"`
	// Intentos de login/registro por minuto y por IP.
	AttemptsPerMinute int `yaml:"attempts_per_minute"`
}

type BlobConfig struct {
	Driver string `yaml:"driver"` // memory | fs | s3
	FSRoot string `yaml:"fs_root"`

	S3Bucket    string `yaml:"s3_bucket"`
	S3Region    string `yaml:"s3_region"`
	S3Endpoint  string `yaml:"s3_endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	App    string `yaml:"app"`
}

type TracingConfig struct {
	// Endpoint OTLP/HTTP (host:port). Vacío = sin exportador.
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   10 * time.Second,
			MaxUploadBytes: 5 << 20,
		},
		Database: DatabaseConfig{
			Driver:          "pgx",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Auth: AuthConfig{
			SessionSecret:     "dev-secret-change-me",
			SessionTTL:        14 * 24 * time.Hour,
			CookieName:        "sessionid",
			AttemptsPerMinute: 10,
		},
		Blob: BlobConfig{
			Driver: "memory",
			FSRoot: "./media",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			App:    "pet-adoption-portal",
		},
		Tracing: TracingConfig{
			ServiceName: "pet-adoption-portal",
		},
	}
}

// Load lee path (si existe) sobre los defaults y aplica overrides de entorno.
// path vacío o inexistente = defaults + entorno.
func Load(path string) (*Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
			// defaults
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DB_MIGRATE"); v != "" {
		c.Database.Migrate = parseBool(v, c.Database.Migrate)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("APP_NAME"); v != "" {
		c.Logging.App = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.Auth.SessionSecret = v
	}
	if v := os.Getenv("DEV_AUTH_HEADERS"); v != "" {
		c.Auth.DevHeaders = parseBool(v, c.Auth.DevHeaders)
	}
	if v := os.Getenv("MODERATOR_IDS"); v != "" {
		c.Auth.ModeratorIDs = splitList(v)
	}
	if v := os.Getenv("BLOB_DRIVER"); v != "" {
		c.Blob.Driver = v
	}
	if v := os.Getenv("BLOB_FS_ROOT"); v != "" {
		c.Blob.FSRoot = v
	}
	if v := os.Getenv("BLOB_S3_BUCKET"); v != "" {
		c.Blob.S3Bucket = v
	}
	if v := os.Getenv("BLOB_S3_REGION"); v != "" {
		c.Blob.S3Region = v
	}
	if v := os.Getenv("BLOB_S3_ENDPOINT"); v != "" {
		c.Blob.S3Endpoint = v
	}
	if v := os.Getenv("BLOB_S3_PATH_STYLE"); v != "" {
		c.Blob.S3PathStyle = parseBool(v, c.Blob.S3PathStyle)
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Tracing.Endpoint = v
	}
	if v := os.Getenv("CATALOG_PATH"); v != "" {
		c.CatalogPath = v
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "pgx", "postgres":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	switch c.Blob.Driver {
	case "memory", "fs", "s3":
	default:
		return fmt.Errorf("config: unsupported blob driver %q", c.Blob.Driver)
	}
	if c.Blob.Driver == "s3" && strings.TrimSpace(c.Blob.S3Bucket) == "" {
		return fmt.Errorf("config: blob.s3_bucket required for s3 driver")
	}
	if strings.TrimSpace(c.Auth.SessionSecret) == "" {
		return fmt.Errorf("config: auth.session_secret required")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("config: auth.session_ttl must be positive")
	}
	return nil
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return b
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
