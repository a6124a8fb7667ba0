package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigYAML is the default configuration content.
const DefaultConfigYAML = `# dexgraph configuration

catalog:
  driver: fs            # fs or s3
  dir: data             # relative to this project
  language: en
  # s3:
  #   bucket: my-catalog
  #   prefix: pokedex/
  #   region: us-east-1
  #   endpoint: http://localhost:9000  # MinIO
  #   path_style: true

store:
  driver: sqlite        # sqlite or neo4j
  # sqlite:
  #   path: .dexgraph/dexgraph.db
  # neo4j:
  #   uri: neo4j://localhost:7687
  #   user: neo4j
  #   password: (or set NEO4J_PASSWORD env var)

loader:
  placeholder_policy: upgrade   # upgrade or keep

log:
  mode: dev

embedder:
  provider: openai
  model: text-embedding-3-small
  # api_key: your-api-key (or set OPENAI_API_KEY env var)

qdrant:
  enabled: false
  host: localhost
  port: 6334
  collection: dexgraph_descriptions
`

// WriteDefault creates the .dexgraph directory and writes a default config file.
func WriteDefault(basePath string) error {
	configDir := ConfigDir(basePath)
	configFile := filepath.Join(configDir, DefaultConfigFile)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists: %s", configFile)
	}

	if err := os.WriteFile(configFile, []byte(DefaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Write writes the given config to the config file.
func Write(basePath string, cfg *Config) error {
	configDir := ConfigDir(basePath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(configDir, DefaultConfigFile), data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
