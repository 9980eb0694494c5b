package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fiodorowphotography/studio/pkg/studio"
	"github.com/fiodorowphotography/studio/pkg/studio/objectkey"
	"github.com/fiodorowphotography/studio/pkg/studio/repo/memory"
	repopg "github.com/fiodorowphotography/studio/pkg/studio/repo/postgres"
	reposqlite "github.com/fiodorowphotography/studio/pkg/studio/repo/sqlite"
	fsstorage "github.com/fiodorowphotography/studio/pkg/studio/storage/fs"
	memorystorage "github.com/fiodorowphotography/studio/pkg/studio/storage/memory"
	s3storage "github.com/fiodorowphotography/studio/pkg/studio/storage/s3"
)

// Database types.
const (
	DatabaseMemory   = "memory"
	DatabasePostgres = "postgres"
	DatabaseSQLite   = "sqlite"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:                  "8080",
		Environment:           "development",
		DatabaseType:          DatabaseMemory,
		DefaultStorageBackend: "memory",
		StorageBackends: []StorageBackendConfig{
			{
				Name:   "memory",
				Type:   "memory",
				Config: map[string]interface{}{},
			},
		},
		ObjectKeyGenerator: "git-like",
		MaxUploadBytes:     studio.DefaultMaxUploadBytes,
		EnableEventLogging: true,
		AutoMigrate:        true,
	}
}

// ServerConfig represents server configuration for the studio service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres", "sqlite"
	AutoMigrate  bool   // apply the SQL schema on startup

	// Storage configuration
	DefaultStorageBackend string
	StorageBackends       []StorageBackendConfig
	ObjectKeyGenerator    string // "git-like", "flat"
	MaxUploadBytes        int64

	// Server options
	EnableEventLogging bool

	closers []func()
}

// StorageBackendConfig represents configuration for a storage backend
type StorageBackendConfig struct {
	Name   string
	Type   string // "memory", "fs", "s3"
	Config map[string]interface{}
}

// IsDevelopment reports whether the server runs in development mode.
func (c *ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case DatabaseMemory:
	case DatabasePostgres, DatabaseSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required when using %s", c.DatabaseType)
		}
	default:
		return errors.New("database_type must be 'memory', 'postgres' or 'sqlite'")
	}

	if c.MaxUploadBytes <= 0 {
		return errors.New("max_upload_bytes must be positive")
	}

	if _, err := newKeyGenerator(c.ObjectKeyGenerator); err != nil {
		return err
	}

	// Ensure default storage backend exists in configured backends
	found := false
	for _, backend := range c.StorageBackends {
		if backend.Name == c.DefaultStorageBackend {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("default storage backend '%s' not found in configured backends", c.DefaultStorageBackend)
	}

	return nil
}

// BuildService creates a Service instance from the server configuration.
// Call Close to release database connections when done.
func (c *ServerConfig) BuildService(ctx context.Context, logger *slog.Logger) (studio.Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	options := []studio.Option{studio.WithLogger(logger)}

	repo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}
	options = append(options, studio.WithRepository(repo))

	for _, backendConfig := range c.StorageBackends {
		store, err := c.buildStorageBackend(ctx, backendConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to build storage backend %s: %w", backendConfig.Name, err)
		}
		options = append(options, studio.WithBlobStore(backendConfig.Name, store))
	}
	options = append(options, studio.WithDefaultBackend(c.DefaultStorageBackend))

	keyGen, err := newKeyGenerator(c.ObjectKeyGenerator)
	if err != nil {
		return nil, err
	}
	options = append(options,
		studio.WithKeyGenerator(keyGen),
		studio.WithMaxUploadBytes(c.MaxUploadBytes),
	)

	if c.EnableEventLogging {
		options = append(options, studio.WithEventSink(studio.NewLogEventSink(logger)))
	}

	return studio.New(options...)
}

// Close releases resources opened by BuildService.
func (c *ServerConfig) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context) (studio.Repository, error) {
	switch c.DatabaseType {
	case DatabaseMemory:
		return memory.New(), nil
	case DatabasePostgres:
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		c.closers = append(c.closers, pool.Close)
		if c.AutoMigrate {
			if err := repopg.Migrate(ctx, pool); err != nil {
				return nil, err
			}
		}
		return repopg.NewWithPool(pool), nil
	case DatabaseSQLite:
		repo, err := reposqlite.Open(c.DatabaseURL)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() { repo.Close() })
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// PingPostgres verifies connectivity to Postgres.
func PingPostgres(ctx context.Context, databaseURL string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// buildStorageBackend creates a BlobStore based on the backend configuration
func (c *ServerConfig) buildStorageBackend(ctx context.Context, config StorageBackendConfig) (studio.BlobStore, error) {
	switch config.Type {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir: getString(config.Config, "base_dir", "./data/storage"),
		})

	case "s3":
		return s3storage.NewWithContext(ctx, s3storage.Config{
			Region:                 getString(config.Config, "region", "us-east-1"),
			Bucket:                 getString(config.Config, "bucket", ""),
			Prefix:                 getString(config.Config, "prefix", ""),
			AccessKeyID:            getString(config.Config, "access_key_id", ""),
			SecretAccessKey:        getString(config.Config, "secret_access_key", ""),
			Endpoint:               getString(config.Config, "endpoint", ""),
			UsePathStyle:           getBool(config.Config, "use_path_style", false),
			CacheControl:           getString(config.Config, "cache_control", "public, max-age=31536000, immutable"),
			CreateBucketIfNotExist: getBool(config.Config, "create_bucket_if_not_exist", false),
		})

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", config.Type)
	}
}

func newKeyGenerator(name string) (objectkey.Generator, error) {
	switch name {
	case "", "git-like", "default":
		return objectkey.NewGitLikeGenerator(), nil
	case "flat":
		return objectkey.NewFlatGenerator(), nil
	case "high-performance":
		return &objectkey.GitLikeGenerator{ShardLength: 3}, nil
	}
	return nil, fmt.Errorf("invalid object key generator: %s (valid: git-like, flat, high-performance)", name)
}

func getString(config map[string]interface{}, key string, defaultValue string) string {
	if value, exists := config[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}

func getBool(config map[string]interface{}, key string, defaultValue bool) bool {
	if value, exists := config[key]; exists {
		if b, ok := value.(bool); ok {
			return b
		}
		if str, ok := value.(string); ok {
			if b, err := strconv.ParseBool(str); err == nil {
				return b
			}
		}
	}
	return defaultValue
}
