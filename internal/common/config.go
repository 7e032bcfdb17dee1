package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Storage backends understood by storage.NewLedgerStore.
const (
	StorageBackendSQLite    = "sqlite"
	StorageBackendSurrealDB = "surrealdb"
)

// Config holds all configuration for riskgate
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Advisory    AdvisoryConfig  `toml:"advisory"`
	RateLimit   RateLimitConfig `toml:"ratelimit"`
	Auth        AuthConfig      `toml:"auth"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig selects and configures the ledger backend.
type StorageConfig struct {
	Backend   string          `toml:"backend"` // "sqlite" (default) or "surrealdb"
	SQLite    SQLiteConfig    `toml:"sqlite"`
	SurrealDB SurrealDBConfig `toml:"surrealdb"`
}

// SQLiteConfig holds the local ledger file location.
type SQLiteConfig struct {
	Path string `toml:"path"`
}

// SurrealDBConfig holds connection settings for a remote SurrealDB ledger.
type SurrealDBConfig struct {
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// Address returns a printable location of the configured ledger.
func (c *StorageConfig) Address() string {
	if c.Backend == StorageBackendSurrealDB {
		return c.SurrealDB.Address
	}
	return c.SQLite.Path
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Gemini GeminiConfig `toml:"gemini"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey        string  `toml:"api_key"`
	Model         string  `toml:"model"`
	Temperature   float32 `toml:"temperature"`
	CodeExecution bool    `toml:"code_execution"` // tool output is relayed as "tools" chunks
}

// AdvisoryConfig controls the advisory stream relay.
type AdvisoryConfig struct {
	IdleTimeout       string `toml:"idle_timeout"`
	MaxPromptChars    int    `toml:"max_prompt_chars"`
	SystemInstruction string `toml:"system_instruction"`
}

// GetIdleTimeout parses the stall timeout, defaulting to five minutes.
func (c *AdvisoryConfig) GetIdleTimeout() time.Duration {
	d, err := time.ParseDuration(c.IdleTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// RateLimitConfig holds per-client limits for the advisory endpoint.
type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// AuthConfig holds service-token settings for the payment recording endpoint.
// An empty JWTSecret leaves the endpoint open.
type AuthConfig struct {
	JWTSecret   string `toml:"jwt_secret"`
	RecordScope string `toml:"record_scope"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Storage: StorageConfig{
			Backend: StorageBackendSQLite,
			SQLite:  SQLiteConfig{Path: "data/riskgate.db"},
			SurrealDB: SurrealDBConfig{
				Address:   "ws://localhost:8000/rpc",
				Namespace: "riskgate",
				Database:  "ledger",
				Username:  "root",
				Password:  "root",
			},
		},
		Clients: ClientsConfig{
			Gemini: GeminiConfig{
				Model:         "gemini-2.0-flash",
				Temperature:   0.4,
				CodeExecution: true,
			},
		},
		Advisory: AdvisoryConfig{
			IdleTimeout:    "5m",
			MaxPromptChars: 8000,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 1,
			Burst:             5,
		},
		Auth: AuthConfig{
			RecordScope: "entitlements:write",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// A .env file in the working directory is loaded first when present.
func LoadConfig(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("RISKGATE_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("RISKGATE_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("RISKGATE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("RISKGATE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	// Storage overrides
	if v := os.Getenv("RISKGATE_STORAGE_BACKEND"); v != "" {
		config.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("RISKGATE_SQLITE_PATH"); v != "" {
		config.Storage.SQLite.Path = v
	}
	if v := os.Getenv("RISKGATE_SURREALDB_ADDRESS"); v != "" {
		config.Storage.SurrealDB.Address = v
	}
	if v := os.Getenv("RISKGATE_SURREALDB_USERNAME"); v != "" {
		config.Storage.SurrealDB.Username = v
	}
	if v := os.Getenv("RISKGATE_SURREALDB_PASSWORD"); v != "" {
		config.Storage.SurrealDB.Password = v
	}

	// Gemini key, first match wins
	for _, name := range []string{"RISKGATE_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.Gemini.APIKey = v
			break
		}
	}
	if v := os.Getenv("RISKGATE_GEMINI_MODEL"); v != "" {
		config.Clients.Gemini.Model = v
	}

	if v := os.Getenv("RISKGATE_ADVISORY_IDLE_TIMEOUT"); v != "" {
		config.Advisory.IdleTimeout = v
	}

	if v := os.Getenv("RISKGATE_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
}

// Validate rejects configurations the app cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageBackendSQLite:
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required for the sqlite backend")
		}
	case StorageBackendSurrealDB:
		if c.Storage.SurrealDB.Address == "" {
			return fmt.Errorf("storage.surrealdb.address is required for the surrealdb backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
