package config

import (
	"fmt"
	"net/url"
	"strings"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabaseURL selects the repository from a connection string:
//
//	"" or "memory"                  in-memory
//	postgres://... or postgresql://  Postgres
//	sqlite:///path/to/studio.db      SQLite file (sqlite://:memory: for a throwaway db)
func WithDatabaseURL(dbURL string) Option {
	return func(c *ServerConfig) error {
		switch {
		case dbURL == "" || dbURL == "memory" || dbURL == "memory://":
			c.DatabaseType = DatabaseMemory
			c.DatabaseURL = ""
		case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
			c.DatabaseType = DatabasePostgres
			c.DatabaseURL = dbURL
		case strings.HasPrefix(dbURL, "sqlite://"):
			path := strings.TrimPrefix(dbURL, "sqlite://")
			if path == "" {
				return fmt.Errorf("sqlite path cannot be empty in DATABASE_URL")
			}
			c.DatabaseType = DatabaseSQLite
			c.DatabaseURL = path
		default:
			return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory', 'postgres://...' or 'sqlite://...')", dbURL)
		}
		return nil
	}
}

// WithStorageURL configures the default storage backend from a URL:
//
//	memory://                                   in-memory
//	file:///path/to/data                        filesystem
//	s3://bucket?region=eu-central-1&endpoint=http://minio:9000&path_style=true&prefix=site
func WithStorageURL(storageURL string) Option {
	return func(c *ServerConfig) error {
		switch {
		case storageURL == "" || storageURL == "memory" || storageURL == "memory://":
			c.StorageBackends = upsertStorageBackend(c.StorageBackends, StorageBackendConfig{
				Name: "memory", Type: "memory", Config: map[string]interface{}{},
			})
			c.DefaultStorageBackend = "memory"
			return nil
		case strings.HasPrefix(storageURL, "file://"):
			path := strings.TrimPrefix(storageURL, "file://")
			if path == "" {
				return fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
			}
			c.StorageBackends = upsertStorageBackend(c.StorageBackends, StorageBackendConfig{
				Name: "fs", Type: "fs", Config: map[string]interface{}{"base_dir": path},
			})
			c.DefaultStorageBackend = "fs"
			return nil
		case strings.HasPrefix(storageURL, "s3://"):
			return applyS3URL(storageURL, c)
		}
		return fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", storageURL)
	}
}

func applyS3URL(raw string, c *ServerConfig) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid STORAGE_URL: %w", err)
	}
	if u.Host == "" {
		return fmt.Errorf("S3 bucket cannot be empty in STORAGE_URL")
	}
	q := u.Query()
	cfg := map[string]interface{}{
		"bucket": u.Host,
		"region": q.Get("region"),
	}
	if cfg["region"] == "" {
		cfg["region"] = "us-east-1"
	}
	for param, key := range map[string]string{
		"endpoint":      "endpoint",
		"prefix":        "prefix",
		"path_style":    "use_path_style",
		"create_bucket": "create_bucket_if_not_exist",
		"cache_control": "cache_control",
	} {
		if v := q.Get(param); v != "" {
			cfg[key] = v
		}
	}
	if u.User != nil {
		cfg["access_key_id"] = u.User.Username()
		if secret, ok := u.User.Password(); ok {
			cfg["secret_access_key"] = secret
		}
	}

	c.StorageBackends = upsertStorageBackend(c.StorageBackends, StorageBackendConfig{
		Name: "s3", Type: "s3", Config: cfg,
	})
	c.DefaultStorageBackend = "s3"
	return nil
}

// WithDefaultStorage sets the default storage backend name
func WithDefaultStorage(name string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			return fmt.Errorf("default storage backend name cannot be empty")
		}
		c.DefaultStorageBackend = name
		return nil
	}
}

// WithMemoryStorage adds a memory storage backend (for testing)
// If name is empty, defaults to "memory"
func WithMemoryStorage(name string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			name = "memory"
		}
		c.StorageBackends = upsertStorageBackend(c.StorageBackends, StorageBackendConfig{
			Name:   name,
			Type:   "memory",
			Config: map[string]interface{}{},
		})
		return nil
	}
}

// WithFilesystemStorage adds a filesystem storage backend
// If name is empty, defaults to "fs"
func WithFilesystemStorage(name, baseDir string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			name = "fs"
		}
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}
		c.StorageBackends = upsertStorageBackend(c.StorageBackends, StorageBackendConfig{
			Name:   name,
			Type:   "fs",
			Config: map[string]interface{}{"base_dir": baseDir},
		})
		return nil
	}
}

// WithS3Credentials sets static credentials on an S3 backend, creating it if needed
func WithS3Credentials(name, accessKeyID, secretAccessKey string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			name = "s3"
		}
		for i := range c.StorageBackends {
			if c.StorageBackends[i].Name == name && c.StorageBackends[i].Type == "s3" {
				c.StorageBackends[i].Config["access_key_id"] = accessKeyID
				c.StorageBackends[i].Config["secret_access_key"] = secretAccessKey
				return nil
			}
		}
		c.StorageBackends = append(c.StorageBackends, StorageBackendConfig{
			Name: name,
			Type: "s3",
			Config: map[string]interface{}{
				"access_key_id":     accessKeyID,
				"secret_access_key": secretAccessKey,
			},
		})
		return nil
	}
}

// WithObjectKeyGenerator sets the object key generation strategy
// Valid values: "git-like", "flat", "high-performance"
func WithObjectKeyGenerator(generator string) Option {
	return func(c *ServerConfig) error {
		if _, err := newKeyGenerator(generator); err != nil {
			return err
		}
		c.ObjectKeyGenerator = generator
		return nil
	}
}

// WithMaxUploadBytes limits the size of a single image upload
func WithMaxUploadBytes(n int64) Option {
	return func(c *ServerConfig) error {
		if n <= 0 {
			return fmt.Errorf("max upload bytes must be positive, got: %d", n)
		}
		c.MaxUploadBytes = n
		return nil
	}
}

// WithEventLogging enables or disables event logging
func WithEventLogging(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}

// WithAutoMigrate enables or disables applying the SQL schema on startup
func WithAutoMigrate(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.AutoMigrate = enabled
		return nil
	}
}

func upsertStorageBackend(backends []StorageBackendConfig, backend StorageBackendConfig) []StorageBackendConfig {
	for i := range backends {
		if backends[i].Name == backend.Name {
			backends[i] = backend
			return backends
		}
	}
	return append(backends, backend)
}
