package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the answer engine
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Search    SearchConfig    `mapstructure:"search"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server and auth settings
type ServerConfig struct {
	Address   string `mapstructure:"address"`
	JWTSecret string `mapstructure:"jwt_secret"` // empty disables workspace tokens
}

// LLMConfig contains the chat/embedding provider configuration
type LLMConfig struct {
	Provider       string        `mapstructure:"provider"` // openai
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	ChatModel      string        `mapstructure:"chat_model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	Embeddings     bool          `mapstructure:"embeddings"` // enable vector retrieval and semantic rerank
	Temperature    float64       `mapstructure:"temperature"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

func (l LLMConfig) Validate() error {
	if strings.TrimSpace(l.APIKey) == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if strings.TrimSpace(l.ChatModel) == "" {
		return fmt.Errorf("llm.chat_model is required")
	}
	if l.Embeddings && strings.TrimSpace(l.EmbeddingModel) == "" {
		return fmt.Errorf("llm.embedding_model is required when embeddings are enabled")
	}
	return nil
}

// SearchConfig contains web and image search settings
type SearchConfig struct {
	Provider      string        `mapstructure:"provider"` // serper, brave or tavily
	APIKey        string        `mapstructure:"api_key"`
	ImageProvider string        `mapstructure:"image_provider"` // tavily
	ImageAPIKey   string        `mapstructure:"image_api_key"`
	MaxResults    int           `mapstructure:"max_results"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

func (s SearchConfig) Validate() error {
	if strings.TrimSpace(s.Provider) == "" {
		return fmt.Errorf("search.provider is required")
	}
	if strings.TrimSpace(s.APIKey) == "" {
		return fmt.Errorf("search.api_key is required")
	}
	return nil
}

// FetchConfig contains page fetching settings
type FetchConfig struct {
	Type     string        `mapstructure:"type"` // http or chromedp
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxChars int           `mapstructure:"max_chars"`
}

// WorkspaceConfig contains per-workspace document settings
type WorkspaceConfig struct {
	DataDir       string        `mapstructure:"data_dir"`
	ChunkSize     int           `mapstructure:"chunk_size"`
	ChunkOverlap  int           `mapstructure:"chunk_overlap"`
	RetentionCron string        `mapstructure:"retention_cron"` // empty disables the janitor
	RetentionTTL  time.Duration `mapstructure:"retention_ttl"`
}

func (w WorkspaceConfig) Validate() error {
	if strings.TrimSpace(w.DataDir) == "" {
		return fmt.Errorf("workspace.data_dir is required")
	}
	if w.ChunkSize <= 0 {
		return fmt.Errorf("workspace.chunk_size must be > 0")
	}
	if w.ChunkOverlap < 0 || w.ChunkOverlap >= w.ChunkSize {
		return fmt.Errorf("workspace.chunk_overlap must be in [0, chunk_size)")
	}
	return nil
}

// KnowledgeConfig controls the shared read-only knowledge index
type KnowledgeConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	SeedURLs []string `mapstructure:"seed_urls"`
}

// StorageConfig contains chat history persistence settings
type StorageConfig struct {
	History  string         `mapstructure:"history"` // inmemory, redis or postgres
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

func (s StorageConfig) Validate() error {
	switch s.History {
	case "", "inmemory":
		return nil
	case "redis":
		return s.Redis.Validate()
	case "postgres":
		return s.Postgres.Validate()
	default:
		return fmt.Errorf("storage.history must be inmemory, redis or postgres")
	}
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("storage.redis.host required")
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("storage.redis.port required")
	}
	return nil
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (p PostgresConfig) Validate() error {
	if strings.TrimSpace(p.URL) != "" {
		return nil
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("storage.postgres.host required when url is not provided")
	}
	if strings.TrimSpace(p.Port) == "" {
		return fmt.Errorf("storage.postgres.port required when url is not provided")
	}
	if strings.TrimSpace(p.DBName) == "" {
		return fmt.Errorf("storage.postgres.dbname required when url is not provided")
	}
	return nil
}

// DSN builds a lib/pq connection string from the configured fields.
func (p PostgresConfig) DSN() string {
	if strings.TrimSpace(p.URL) != "" {
		return p.URL
	}
	sslmode := p.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, sslmode)
}

// TelemetryConfig contains telemetry and monitoring settings
type TelemetryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	LogFile string `mapstructure:"log_file"`
}

// LoadConfig loads config from file
func LoadConfig(path string) *Config {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("json")   // REQUIRED if the config file does not have the extension in the name
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.default_timeout", time.Minute)
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.chat_model", "gpt-4o-mini")
	viper.SetDefault("llm.embedding_model", "text-embedding-3-small")
	viper.SetDefault("llm.embeddings", true)
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.timeout", 2*time.Minute)
	viper.SetDefault("search.provider", "serper")
	viper.SetDefault("search.image_provider", "tavily")
	viper.SetDefault("search.max_results", 6)
	viper.SetDefault("search.timeout", 20*time.Second)
	viper.SetDefault("fetch.type", "http")
	viper.SetDefault("fetch.timeout", 25*time.Second)
	viper.SetDefault("fetch.max_chars", 20000)
	viper.SetDefault("workspace.data_dir", "./data/workspaces")
	viper.SetDefault("workspace.chunk_size", 400)
	viper.SetDefault("workspace.chunk_overlap", 80)
	viper.SetDefault("workspace.retention_ttl", 72*time.Hour)
	viper.SetDefault("knowledge.enabled", true)
	viper.SetDefault("storage.history", "inmemory")
	viper.SetDefault("telemetry.enabled", true)

	if path == "" {
		viper.AddConfigPath("./app/config") // path to look for the config file in
		viper.AddConfigPath("./config")     // path to look for the config file in
		viper.AddConfigPath(".")            // optionally look for config in the working directory
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)                                // bin/
		viper.AddConfigPath(filepath.Join(exeDir, ".."))           // repo root
		viper.AddConfigPath(filepath.Join(exeDir, "..", "config")) // repo root/config
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("ANSWERHUB")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	viper.AutomaticEnv() // read in environment variables that match (ANSWERHUB_*)

	err := viper.ReadInConfig() // Find and read the config file
	if err != nil {             // Handle errors reading the config file
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	// unmarshal config
	var config Config

	if err = viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.LLM.Validate(); err != nil {
		panic(err)
	}
	if err := config.Search.Validate(); err != nil {
		panic(err)
	}
	if err := config.Workspace.Validate(); err != nil {
		panic(err)
	}
	if err := config.Storage.Validate(); err != nil {
		panic(err)
	}
	return &config
}
