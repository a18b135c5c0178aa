// Package config loads the studybot application configuration from YAML and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/studybot/ai"
)

// FileName is the config file looked up in the working directory.
const FileName = "studybot.yaml"

// Progress backends.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// AIConfig configures the OpenAI-compatible embedding and generation endpoints.
type AIConfig struct {
	EmbeddingHost      string  `yaml:"embedding_host"`
	GenerationHost     string  `yaml:"generation_host"`
	EmbeddingModel     string  `yaml:"embedding_model"`
	GenerationModel    string  `yaml:"generation_model"`
	APIKeyEnv          string  `yaml:"api_key_env"`
	RequestsPerSecond  float64 `yaml:"requests_per_second"`
	EmbeddingBatchSize int     `yaml:"embedding_batch_size"`
}

// IngestionConfig configures the build pipeline.
type IngestionConfig struct {
	PoolSize  int    `yaml:"pool_size"`
	BatchSize int    `yaml:"batch_size"`
	IndexDir  string `yaml:"index_dir"`
}

// SearchConfig holds retrieval depths.
type SearchConfig struct {
	KChunks    int `yaml:"k_chunks"`
	KSentences int `yaml:"k_sentences"`
	RAGTopK    int `yaml:"rag_top_k"`
	QuizTopK   int `yaml:"quiz_top_k"`
}

// ProgressConfig selects where Q&A and quiz logs are kept.
type ProgressConfig struct {
	Backend    string `yaml:"backend"`
	SQLitePath string `yaml:"sqlite_path"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	DataDir   string          `yaml:"data_dir"`
	Student   string          `yaml:"student"`
	LogLevel  string          `yaml:"log_level"`
	AI        AIConfig        `yaml:"ai"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Search    SearchConfig    `yaml:"search"`
	Progress  ProgressConfig  `yaml:"progress"`
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	aiDefaults := ai.DefaultConfig()
	return &AppConfig{
		DataDir:  "studybot-data",
		Student:  "default",
		LogLevel: "warn",
		AI: AIConfig{
			EmbeddingHost:      aiDefaults.EmbeddingHost,
			GenerationHost:     aiDefaults.GenerationHost,
			EmbeddingModel:     aiDefaults.EmbeddingModel,
			GenerationModel:    aiDefaults.GenerationModel,
			APIKeyEnv:          "STUDYBOT_API_KEY",
			EmbeddingBatchSize: aiDefaults.EmbeddingBatchSize,
		},
		Ingestion: IngestionConfig{BatchSize: 32, IndexDir: "indexes"},
		Search:    SearchConfig{KChunks: 3, KSentences: 3, RAGTopK: 5, QuizTopK: 3},
		Progress:  ProgressConfig{Backend: BackendBadger, SQLitePath: "student_progress.db"},
	}
}

// Load reads a config from path. A missing file yields the defaults.
// Fields absent from the file keep their default values.
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault tries ./studybot.yaml first, then ~/.config/studybot/config.yaml.
// If neither exists the defaults are returned with an empty path.
func LoadDefault() (*AppConfig, string, error) {
	if _, err := os.Stat(FileName); err == nil {
		cfg, err := Load(FileName)
		return cfg, FileName, err
	}
	userPath, err := UserConfigPath()
	if err != nil {
		return Default(), "", nil
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	return Default(), "", nil
}

// Save writes the config to path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// UserConfigPath returns ~/.config/studybot/config.yaml.
func UserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "studybot", "config.yaml"), nil
}

// LoadEnv loads .env files into the process environment. Missing files are
// ignored; variables already set are not overwritten.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Validate checks values that have no sensible fallback.
func (c *AppConfig) Validate() error {
	switch c.Progress.Backend {
	case BackendBadger, BackendSQLite:
	default:
		return fmt.Errorf("progress.backend must be %q or %q, got %q", BackendBadger, BackendSQLite, c.Progress.Backend)
	}
	if c.Ingestion.BatchSize < 0 || c.Ingestion.PoolSize < 0 {
		return errors.New("ingestion sizes must not be negative")
	}
	if c.AI.RequestsPerSecond < 0 {
		return errors.New("ai.requests_per_second must not be negative")
	}
	return nil
}

// APIKey returns the API token from the environment variable named by
// AI.APIKeyEnv, or "" when unset.
func (c *AppConfig) APIKey() string {
	if c.AI.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.AI.APIKeyEnv)
}

// AIOptions converts the AI section into ai.Config options.
func (c *AppConfig) AIOptions() []ai.ConfigOption {
	opts := []ai.ConfigOption{
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithGenerationHost(c.AI.GenerationHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithGenerationModel(c.AI.GenerationModel),
		ai.WithRequestsPerSecond(c.AI.RequestsPerSecond),
		ai.WithEmbeddingBatchSize(c.AI.EmbeddingBatchSize),
	}
	if key := c.APIKey(); key != "" {
		opts = append(opts, ai.WithToken(key))
	}
	return opts
}

// ResolvePath returns p relative to DataDir unless it is absolute.
func (c *AppConfig) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

func applyDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.Student == "" {
		cfg.Student = def.Student
	}
	if cfg.AI.EmbeddingHost == "" {
		cfg.AI.EmbeddingHost = def.AI.EmbeddingHost
	}
	if cfg.AI.GenerationHost == "" {
		cfg.AI.GenerationHost = cfg.AI.EmbeddingHost
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = def.AI.EmbeddingModel
	}
	if cfg.AI.GenerationModel == "" {
		cfg.AI.GenerationModel = def.AI.GenerationModel
	}
	if cfg.AI.EmbeddingBatchSize == 0 {
		cfg.AI.EmbeddingBatchSize = def.AI.EmbeddingBatchSize
	}
	if cfg.Ingestion.BatchSize == 0 {
		cfg.Ingestion.BatchSize = def.Ingestion.BatchSize
	}
	if cfg.Ingestion.IndexDir == "" {
		cfg.Ingestion.IndexDir = def.Ingestion.IndexDir
	}
	if cfg.Search.KChunks == 0 {
		cfg.Search.KChunks = def.Search.KChunks
	}
	if cfg.Search.KSentences == 0 {
		cfg.Search.KSentences = def.Search.KSentences
	}
	if cfg.Search.RAGTopK == 0 {
		cfg.Search.RAGTopK = def.Search.RAGTopK
	}
	if cfg.Search.QuizTopK == 0 {
		cfg.Search.QuizTopK = def.Search.QuizTopK
	}
	if cfg.Progress.Backend == "" {
		cfg.Progress.Backend = def.Progress.Backend
	}
	if cfg.Progress.SQLitePath == "" {
		cfg.Progress.SQLitePath = def.Progress.SQLitePath
	}
}
