package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (default)
	AuthModeToken AuthMode = "token" // Write requests need a bearer token
)

type (
	Config struct {
		HTTP
		Global
		Database
		Catalog
		Snapshot
		Tasks
		Auth
		Recommend
		Demo
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path   string
		LogSQL bool
	}
	Catalog struct {
		MaxActiveLoans int
	}
	Snapshot struct {
		Enabled  bool   // Load on start, save on shutdown and on schedule
		Schedule string // Cron format: "*/15 * * * *" = every 15 minutes
		OnWrite  bool   // Queue a save after every successful mutation
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Auth struct {
		Mode       AuthMode
		TokenHash  string // bcrypt hash of the API token, see `librarian hash-token`
		BcryptCost int
	}
	Recommend struct {
		Limit int // Default number of recommendations returned
	}
	Demo struct {
		Enabled bool // Serve the sample library from memory, read-only
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_log_sql", false)
	v.SetDefault("catalog_max_active_loans", 3)

	// Snapshot defaults
	v.SetDefault("snapshot_enabled", true)
	v.SetDefault("snapshot_schedule", DefaultSnapshotSchedule)
	v.SetDefault("snapshot_on_write", true)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_token_hash", "")
	v.SetDefault("auth_bcrypt_cost", 12) // bcrypt cost factor

	v.SetDefault("recommend_limit", 5)
	v.SetDefault("demo_mode", false)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path:   v.GetString("DATABASE_PATH"),
			LogSQL: v.GetBool("DATABASE_LOG_SQL"),
		},
		Catalog: Catalog{
			MaxActiveLoans: v.GetInt("CATALOG_MAX_ACTIVE_LOANS"),
		},
		Snapshot: Snapshot{
			Enabled:  v.GetBool("SNAPSHOT_ENABLED"),
			Schedule: v.GetString("SNAPSHOT_SCHEDULE"),
			OnWrite:  v.GetBool("SNAPSHOT_ON_WRITE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Auth: Auth{
			Mode:       AuthMode(v.GetString("AUTH_MODE")),
			TokenHash:  v.GetString("AUTH_TOKEN_HASH"),
			BcryptCost: v.GetInt("AUTH_BCRYPT_COST"),
		},
		Recommend: Recommend{
			Limit: v.GetInt("RECOMMEND_LIMIT"),
		},
		Demo: Demo{
			Enabled: v.GetBool("DEMO_MODE"),
		},
	}
}

// Validate reports settings that would make the server misbehave.
func (c *Config) Validate() error {
	switch c.Auth.Mode {
	case AuthModeNone:
	case AuthModeToken:
		if c.Auth.TokenHash == "" {
			return fmt.Errorf("AUTH_MODE=token requires AUTH_TOKEN_HASH")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.Auth.Mode)
	}
	if c.Catalog.MaxActiveLoans <= 0 {
		return fmt.Errorf("CATALOG_MAX_ACTIVE_LOANS must be positive, got %d", c.Catalog.MaxActiveLoans)
	}
	if c.Snapshot.Enabled && c.Database.Path == "" {
		return fmt.Errorf("SNAPSHOT_ENABLED requires DATABASE_PATH")
	}
	return nil
}
