package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds settings loaded from docqa.yml, the environment and defaults.
type Config struct {
	LLM       LLMConfig       `yaml:"llm,omitempty"`
	Server    ServerConfig    `yaml:"server,omitempty"`
	Gateway   GatewayConfig   `yaml:"gateway,omitempty"`
	Corpus    CorpusConfig    `yaml:"corpus,omitempty"`
	Retrieval RetrievalConfig `yaml:"retrieval,omitempty"`
	LogLevel  string          `yaml:"log_level,omitempty"`
}

// LLMConfig selects the completion provider.
type LLMConfig struct {
	Provider  string `yaml:"provider,omitempty"`
	Model     string `yaml:"model,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
}

// ServerConfig is where `docqa serve` listens.
type ServerConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// GatewayConfig is how `docqa ask` reaches a running gateway.
type GatewayConfig struct {
	URL         string `yaml:"url,omitempty"`
	TimeoutSecs int    `yaml:"timeout_secs,omitempty"`
}

// Timeout returns the client timeout as a duration.
func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSecs) * time.Second
}

// CorpusConfig locates the knowledge base.
type CorpusConfig struct {
	Dir      string   `yaml:"dir,omitempty"`
	Includes []string `yaml:"includes,omitempty"`
	Excludes []string `yaml:"excludes,omitempty"`
}

// RetrievalConfig tunes chunking and ranking.
type RetrievalConfig struct {
	ChunkSize int `yaml:"chunk_size,omitempty"`
	TopK      int `yaml:"top_k,omitempty"`
}

// Defaults.
const (
	DefaultProvider    = "openai"
	DefaultModel       = "llama-3.3-70b-versatile"
	DefaultHost        = "127.0.0.1"
	DefaultPort        = 8000
	DefaultTimeoutSecs = 5
	DefaultCorpusDir   = "knowledge_base"
	DefaultChunkSize   = 400
	DefaultTopK        = 5
	DefaultLogLevel    = "info"
)

// Load reads docqa.yml or docqa.yaml from dir. It returns a zero-value config
// (not an error) if no config file exists.
func Load(dir string) (*Config, error) {
	for _, name := range []string{"docqa.yml", "docqa.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return parse(path, data)
	}
	return &Config{}, nil
}

// LoadFile reads the config at path. Unlike Load, a missing file is an error.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return parse(path, data)
}

func parse(path string, data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Resolve builds the effective config: .env in dir is loaded into the
// process environment (existing variables win), then the file at path (or
// docqa.yml in dir when path is empty), then environment overrides, then
// defaults.
func Resolve(dir, path string) (*Config, error) {
	if err := LoadDotEnv(dir); err != nil {
		return nil, err
	}

	var (
		cfg *Config
		err error
	)
	if path != "" {
		cfg, err = LoadFile(path)
	} else {
		cfg, err = Load(dir)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, cfg.Validate()
}

// LoadDotEnv loads dir/.env if it exists.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("LLM_PROVIDER", &c.LLM.Provider)
	str("LLM_MODEL", &c.LLM.Model)
	str("LLM_BASE_URL", &c.LLM.BaseURL)
	str("LLM_API_KEY_ENV", &c.LLM.APIKeyEnv)
	str("MCP_SERVER_HOST", &c.Server.Host)
	str("MCP_SERVER_URL", &c.Gateway.URL)
	str("KNOWLEDGE_BASE_DIR", &c.Corpus.Dir)
	str("LOG_LEVEL", &c.LogLevel)

	if err := num("MCP_SERVER_PORT", &c.Server.Port); err != nil {
		return err
	}
	if err := num("GATEWAY_TIMEOUT_SECS", &c.Gateway.TimeoutSecs); err != nil {
		return err
	}
	if err := num("CHUNK_SIZE", &c.Retrieval.ChunkSize); err != nil {
		return err
	}
	return num("TOP_K", &c.Retrieval.TopK)
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultProvider
	}
	if c.LLM.Model == "" && c.LLM.Provider == DefaultProvider {
		c.LLM.Model = DefaultModel
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Gateway.URL == "" {
		c.Gateway.URL = "http://" + net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
	}
	if c.Gateway.TimeoutSecs == 0 {
		c.Gateway.TimeoutSecs = DefaultTimeoutSecs
	}
	if c.Corpus.Dir == "" {
		c.Corpus.Dir = DefaultCorpusDir
	}
	if c.Retrieval.ChunkSize == 0 {
		c.Retrieval.ChunkSize = DefaultChunkSize
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = DefaultTopK
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate rejects values no component can use.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port < 0 || c.Server.Port > 65535:
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	case c.Gateway.TimeoutSecs < 0:
		return fmt.Errorf("config: gateway.timeout_secs must not be negative")
	case c.Retrieval.ChunkSize < 0:
		return fmt.Errorf("config: retrieval.chunk_size must not be negative")
	case c.Retrieval.TopK < 0:
		return fmt.Errorf("config: retrieval.top_k must not be negative")
	}
	return nil
}
