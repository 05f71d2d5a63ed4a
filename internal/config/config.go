package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// RequestsPerMinute caps each client IP on the /api group.
	RequestsPerMinute int    `toml:"requests_per_minute"`
	StaticDir         string `toml:"static_dir"`
}

type EmbeddingConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type StoreConfig struct {
	Backend   string `toml:"backend"`
	Namespace string `toml:"namespace"`
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
	URI       string `toml:"uri"`
	User      string `toml:"user"`
	Password  string `toml:"password"`
}

type SearchConfig struct {
	// DefaultAlpha is the fusion weight used when a query omits alpha.
	DefaultAlpha float64 `toml:"default_alpha"`
	// MinScore suppresses near-zero fused candidates.
	MinScore float64 `toml:"min_score"`
	// OverfetchFactor multiplies top_k on backend calls so filtering still
	// leaves a full page.
	OverfetchFactor int `toml:"overfetch_factor"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Store     StoreConfig     `toml:"store"`
	Search    SearchConfig    `toml:"search"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			RequestsPerMinute: 10,
			StaticDir:         "./static",
		},
		Embedding: EmbeddingConfig{
			Provider: "voyage",
		},
		Store: StoreConfig{
			Backend:   "turbopuffer",
			Namespace: "bufos",
		},
		Search: SearchConfig{
			DefaultAlpha:    0.7,
			MinScore:        0.001,
			OverfetchFactor: 5,
		},
	}
}

// Load reads a TOML config file and layers it over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides file values with environment variables where set.
// Credentials are expected to arrive this way in deployment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("EMBEDDING_PROVIDER"); v != "" {
		c.Embedding.Provider = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		c.Embedding.Model = v
	}
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		c.Embedding.APIKey = v
	}
	if v := os.Getenv("VOYAGE_API_TOKEN"); v != "" {
		c.Embedding.APIKey = v
	}
	if v := os.Getenv("EMBEDDING_BASE_URL"); v != "" {
		c.Embedding.BaseURL = v
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("TURBOPUFFER_API_KEY"); v != "" {
		c.Store.APIKey = v
	}
	if v := os.Getenv("TURBOPUFFER_NAMESPACE"); v != "" {
		c.Store.Namespace = v
	}
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		c.Store.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		c.Store.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		c.Store.Password = v
	}
}
