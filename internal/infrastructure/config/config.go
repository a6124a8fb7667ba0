// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for dexgraph configuration.
	DefaultConfigDir = ".dexgraph"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultDatabaseFile is the default SQLite graph file name.
	DefaultDatabaseFile = "dexgraph.db"
)

// Catalog source drivers.
const (
	SourceFS = "fs"
	SourceS3 = "s3"
)

// Graph store drivers.
const (
	StoreSQLite = "sqlite"
	StoreNeo4j  = "neo4j"
)

// Placeholder policies.
const (
	PolicyUpgrade = "upgrade"
	PolicyKeep    = "keep"
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	Catalog  CatalogConfig  `yaml:"catalog,omitempty"`
	Store    StoreConfig    `yaml:"store,omitempty"`
	Loader   LoaderConfig   `yaml:"loader,omitempty"`
	Log      LogConfig      `yaml:"log,omitempty"`
	Embedder EmbedderConfig `yaml:"embedder,omitempty"`
	Qdrant   QdrantConfig   `yaml:"qdrant,omitempty"`
}

// CatalogConfig describes where catalog documents are read from.
type CatalogConfig struct {
	Driver string `yaml:"driver,omitempty"`
	// Dir is the local directory holding the documents (fs driver).
	Dir string `yaml:"dir,omitempty"`
	// Language is the flavor text language code used for descriptions.
	Language string   `yaml:"language,omitempty"`
	S3       S3Config `yaml:"s3,omitempty"`
}

// S3Config holds configuration for reading the catalog from a bucket.
type S3Config struct {
	Bucket          string `yaml:"bucket,omitempty"`
	Prefix          string `yaml:"prefix,omitempty"`
	Region          string `yaml:"region,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty"` // optional, e.g. MinIO
	PathStyle       bool   `yaml:"path_style,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
}

// StoreConfig selects and configures the graph store.
type StoreConfig struct {
	Driver string       `yaml:"driver,omitempty"`
	SQLite SQLiteConfig `yaml:"sqlite,omitempty"`
	Neo4j  Neo4jConfig  `yaml:"neo4j,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite graph store.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database.
	Path string `yaml:"path,omitempty"`
}

// Neo4jConfig holds configuration for the Neo4j graph store.
type Neo4jConfig struct {
	URI            string `yaml:"uri,omitempty"`
	User           string `yaml:"user,omitempty"`
	Password       string `yaml:"password,omitempty"`
	Database       string `yaml:"database,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
	MaxPoolSize    int    `yaml:"max_pool_size,omitempty"`
}

// LoaderConfig holds loader behavior settings.
type LoaderConfig struct {
	PlaceholderPolicy string `yaml:"placeholder_policy,omitempty"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Mode string `yaml:"mode,omitempty"` // dev or prod
}

// EmbedderConfig holds configuration for the embedding provider.
type EmbedderConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
}

// QdrantConfig holds configuration for the optional description index.
type QdrantConfig struct {
	Enabled    bool   `yaml:"enabled,omitempty"`
	Host       string `yaml:"host,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Collection string `yaml:"collection,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Driver:   SourceFS,
			Dir:      "data",
			Language: "en",
			S3: S3Config{
				Region: "us-east-1",
			},
		},
		Store: StoreConfig{
			Driver: StoreSQLite,
			Neo4j: Neo4jConfig{
				User:           "neo4j",
				TimeoutSeconds: 10,
				MaxPoolSize:    50,
			},
		},
		Loader: LoaderConfig{
			PlaceholderPolicy: PolicyUpgrade,
		},
		Log: LogConfig{
			Mode: "dev",
		},
		Embedder: EmbedderConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		Qdrant: QdrantConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "dexgraph_descriptions",
		},
	}
}

// Load loads configuration from the .dexgraph directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'dexgraph init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.resolvePaths(basePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault loads the config file if present and falls back to defaults otherwise.
func LoadOrDefault(basePath string) (*Config, error) {
	if Exists(basePath) {
		return Load(basePath)
	}

	cfg := Default()
	cfg.applyEnvOverrides()
	cfg.resolvePaths(basePath)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown drivers and policies.
func (c *Config) Validate() error {
	switch c.Catalog.Driver {
	case SourceFS:
		if c.Catalog.Dir == "" {
			return fmt.Errorf("catalog.dir is required for the %s driver", SourceFS)
		}
	case SourceS3:
		if c.Catalog.S3.Bucket == "" {
			return fmt.Errorf("catalog.s3.bucket is required for the %s driver", SourceS3)
		}
	default:
		return fmt.Errorf("invalid catalog.driver %q (valid: %s, %s)", c.Catalog.Driver, SourceFS, SourceS3)
	}

	switch c.Store.Driver {
	case StoreSQLite:
	case StoreNeo4j:
		if c.Store.Neo4j.URI == "" {
			return fmt.Errorf("store.neo4j.uri is required for the %s driver", StoreNeo4j)
		}
	default:
		return fmt.Errorf("invalid store.driver %q (valid: %s, %s)", c.Store.Driver, StoreSQLite, StoreNeo4j)
	}

	switch c.Loader.PlaceholderPolicy {
	case PolicyUpgrade, PolicyKeep:
	default:
		return fmt.Errorf("invalid loader.placeholder_policy %q (valid: %s, %s)", c.Loader.PlaceholderPolicy, PolicyUpgrade, PolicyKeep)
	}

	if c.Catalog.Language == "" {
		return fmt.Errorf("catalog.language is required")
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("DEXGRAPH_CATALOG_DIR"); dir != "" {
		c.Catalog.Dir = dir
	}
	if mode := os.Getenv("DEXGRAPH_LOG_MODE"); mode != "" {
		c.Log.Mode = mode
	}
	if uri := strings.TrimSpace(os.Getenv("NEO4J_URI")); uri != "" && c.Store.Neo4j.URI == "" {
		c.Store.Neo4j.URI = uri
	}
	if user := strings.TrimSpace(os.Getenv("NEO4J_USER")); user != "" {
		c.Store.Neo4j.User = user
	}
	if pw := os.Getenv("NEO4J_PASSWORD"); pw != "" && c.Store.Neo4j.Password == "" {
		c.Store.Neo4j.Password = pw
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && c.Embedder.APIKey == "" {
		c.Embedder.APIKey = key
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" && c.Qdrant.APIKey == "" {
		c.Qdrant.APIKey = key
	}
}

// resolvePaths fills in the SQLite path and makes the catalog dir absolute.
func (c *Config) resolvePaths(basePath string) {
	if c.Store.SQLite.Path == "" {
		c.Store.SQLite.Path = SQLitePath(basePath)
	}
	if c.Catalog.Dir != "" && !filepath.IsAbs(c.Catalog.Dir) {
		c.Catalog.Dir = filepath.Join(basePath, c.Catalog.Dir)
	}
}

// ConfigDir returns the path to the .dexgraph config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// SQLitePath returns the default SQLite graph path under the config directory.
func SQLitePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultDatabaseFile)
}

// Exists checks if a dexgraph config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}
