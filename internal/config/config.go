package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/nurseally/internal/domain"
)

// Backend and driver names accepted in the config.
const (
	LLMLocal  = "local"
	LLMHosted = "hosted"

	IndexFlat  = "flat"
	IndexRedis = "redis"

	HistoryFile  = "file"
	HistoryRedis = "redis"
	HistoryNone  = "none"
)

// Config holds the nurseally configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Answer    AnswerConfig    `yaml:"answer"`
	Index     IndexConfig     `yaml:"index"`
	Database  DatabaseConfig  `yaml:"database"`
	History   HistoryConfig   `yaml:"history"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	APIKeys         []string `yaml:"api_keys"`
}

// ArtifactsConfig points at the directory written by the ingest command.
type ArtifactsConfig struct {
	Dir string `yaml:"dir"`
}

// EmbeddingConfig holds the OpenAI-compatible embedding server settings.
// Queries must be embedded with the same model the corpus was built with.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"`
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
	TimeoutSec       int    `yaml:"timeout_sec"`
	BatchSize        int    `yaml:"batch_size"`
	Cache            bool   `yaml:"cache"`
	CacheTTLSec      int    `yaml:"cache_ttl_sec"` // 0 = no expiry
}

// LLMConfig selects and configures the chat backend.
type LLMConfig struct {
	Backend    string `yaml:"backend"` // local | hosted
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// AnswerConfig tunes the answer composer.
type AnswerConfig struct {
	TopK        int      `yaml:"top_k"`
	Temperature *float64 `yaml:"temperature"`
	Persona     string   `yaml:"persona"`
	Suggestions []string `yaml:"suggestions"`
}

// IndexConfig selects where chunk vectors are searched.
type IndexConfig struct {
	Backend string `yaml:"backend"` // flat | redis
	Metric  string `yaml:"metric"`  // l2 | cosine
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// HistoryConfig selects the question log.
type HistoryConfig struct {
	Backend string `yaml:"backend"` // file | redis | none
	Path    string `yaml:"path"`
}

// IngestConfig holds defaults of the ingest command.
type IngestConfig struct {
	PDF        string `yaml:"pdf"`
	MinLineLen int    `yaml:"min_line_len"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands env variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Must outlive the LLM timeout so the failure text reaches the client.
		c.HTTP.WriteTimeoutSec = 90
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Artifacts.Dir == "" {
		c.Artifacts.Dir = "data"
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "local"
	}
	if c.Embedding.BaseURL == "" {
		c.Embedding.BaseURL = "http://127.0.0.1:1234/v1"
	}
	vec := domain.DefaultVectorConfig()
	if c.Embedding.Model == "" {
		c.Embedding.Model = vec.Model
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = vec.Dimensions
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 60
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = 64
	}
	if c.LLM.Backend == "" {
		c.LLM.Backend = LLMLocal
	}
	if c.LLM.TimeoutSec <= 0 {
		c.LLM.TimeoutSec = 60
	}
	if c.Answer.TopK <= 0 {
		c.Answer.TopK = 5
	}
	if c.Answer.Temperature == nil {
		t := 0.7
		c.Answer.Temperature = &t
	}
	if c.Index.Backend == "" {
		c.Index.Backend = IndexFlat
	}
	if c.Index.Metric == "" {
		c.Index.Metric = vec.DistanceMetric
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.History.Backend == "" {
		c.History.Backend = HistoryFile
	}
	if c.History.Path == "" {
		c.History.Path = "chat_history.json"
	}
	if c.Ingest.PDF == "" {
		c.Ingest.PDF = "reference.pdf"
	}
	if c.Ingest.MinLineLen <= 0 {
		c.Ingest.MinLineLen = 30
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.LLM.Backend {
	case LLMLocal:
	case LLMHosted:
		if c.LLM.Model == "" {
			return errors.New("llm.model is required for the hosted backend")
		}
	default:
		return fmt.Errorf("llm.backend must be %q or %q, got %q", LLMLocal, LLMHosted, c.LLM.Backend)
	}
	if t := *c.Answer.Temperature; t < 0 || t > 2 {
		return fmt.Errorf("answer.temperature must be between 0 and 2, got %v", t)
	}
	switch c.Index.Metric {
	case "l2", "cosine":
	default:
		return fmt.Errorf("index.metric must be \"l2\" or \"cosine\", got %q", c.Index.Metric)
	}
	switch c.Index.Backend {
	case IndexFlat:
	case IndexRedis:
		if !c.Database.Enabled {
			return errors.New("index.backend redis requires database.enabled")
		}
	default:
		return fmt.Errorf("index.backend must be %q or %q, got %q", IndexFlat, IndexRedis, c.Index.Backend)
	}
	switch c.History.Backend {
	case HistoryFile, HistoryNone:
	case HistoryRedis:
		if !c.Database.Enabled {
			return errors.New("history.backend redis requires database.enabled")
		}
	default:
		return fmt.Errorf("history.backend must be file, redis or none, got %q", c.History.Backend)
	}
	if c.Database.Enabled && len(c.Database.Addrs) == 0 {
		return errors.New("database.addrs is required when database.enabled")
	}
	return nil
}

// LLMTimeout returns the chat-completion timeout.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSec) * time.Second
}

// EmbeddingTimeout returns the embedding call timeout.
func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.Embedding.TimeoutSec) * time.Second
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
