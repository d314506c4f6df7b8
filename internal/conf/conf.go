package conf

import (
	"os"
	"strconv"
)

// Config represents application configuration
type Config struct {
	// Reddit account configuration
	Reddit RedditConfig

	// State store configuration
	State StateConfig

	// Scan limits per sync cycle
	PostsLimit    int // newest posts per cycle, default 100
	CommentsLimit int // newest comments per cycle, 0 = unbounded

	// Minimum seconds between platform requests, passed through to the
	// client. The core does not retry.
	RatelimitSeconds int

	// Minutes between sync cycles when running looped
	SyncIntervalMinutes int

	// Dry-run mode: matches are logged but no reply, mark-read or
	// responded-record happens
	DryRun bool

	// Response catalog paths
	ResponsesPath  string
	CorrectionPath string

	// Debug mode
	Debug bool
}

// RedditConfig contains platform credentials
type RedditConfig struct {
	Username     string
	Password     string
	ClientID     string
	ClientSecret string
	UserAgent    string
}

// StateBackend selects the state store implementation.
type StateBackend string

const (
	BackendJSON     StateBackend = "json"
	BackendSQLite   StateBackend = "sqlite"
	BackendPostgres StateBackend = "postgres"
)

// StateConfig contains state store configuration
type StateConfig struct {
	Backend     StateBackend
	JSONPath    string // json backend
	SQLitePath  string // sqlite backend
	PostgresURL string // postgres backend
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	backend := StateBackend(os.Getenv("STATE_BACKEND"))
	if backend == "" {
		if os.Getenv("DATABASE_URL") != "" {
			backend = BackendPostgres
		} else {
			backend = BackendJSON
		}
	}

	jsonPath := os.Getenv("STATE_JSON_PATH")
	if jsonPath == "" {
		jsonPath = "data.json"
	}

	sqlitePath := os.Getenv("STATE_SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = "data/state.db"
	}

	userAgent := os.Getenv("REDDIT_USER_AGENT")
	if userAgent == "" {
		userAgent = "paddybot (by /u/itspaddysday)"
	}

	return &Config{
		Reddit: RedditConfig{
			Username:     os.Getenv("REDDIT_USER_NAME"),
			Password:     os.Getenv("REDDIT_PASSWORD"),
			ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
			ClientSecret: os.Getenv("REDDIT_SECRET"),
			UserAgent:    userAgent,
		},
		State: StateConfig{
			Backend:     backend,
			JSONPath:    jsonPath,
			SQLitePath:  sqlitePath,
			PostgresURL: os.Getenv("DATABASE_URL"),
		},
		PostsLimit:          envInt("POSTS_LIMIT", 100),
		CommentsLimit:       envInt("COMMENTS_LIMIT", 0),
		RatelimitSeconds:    envInt("RATELIMIT_SECONDS", 60),
		SyncIntervalMinutes: envInt("SYNC_INTERVAL_MINUTES", 10),
		DryRun:              os.Getenv("DRYRUN") == "true",
		ResponsesPath:       os.Getenv("RESPONSES_CONFIG_PATH"),
		CorrectionPath:      os.Getenv("CORRECTION_TEXT_PATH"),
		Debug:               os.Getenv("DEBUG") == "true",
	}
}

func envInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Reddit.Username == "" || c.Reddit.Password == "" {
		return &ConfigError{Field: "REDDIT_USER_NAME/REDDIT_PASSWORD", Message: "required"}
	}
	if c.Reddit.ClientID == "" || c.Reddit.ClientSecret == "" {
		return &ConfigError{Field: "REDDIT_CLIENT_ID/REDDIT_SECRET", Message: "required"}
	}
	if c.State.Backend == BackendPostgres && c.State.PostgresURL == "" {
		return &ConfigError{Field: "DATABASE_URL", Message: "required for postgres backend"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
