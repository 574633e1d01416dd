package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
// Secret precedence: Vault (if enabled) > config file > environment
// variables (TALENTALIGN_EMBEDDING_APIKEY, etc.) > defaults.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Engine        EngineConfig        `mapstructure:"engine"`
	Embedding     EmbeddingConfig     `mapstructure:"embedding"`
	Server        ServerConfig        `mapstructure:"server"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AppConfig holds general application settings
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// EngineConfig tunes the analysis engine. Scoring weights are not
// configurable; they define the product's scoring contract.
type EngineConfig struct {
	MaxHeatmapPoints int           `mapstructure:"maxHeatmapPoints"`
	TopSections      int           `mapstructure:"topSections"`
	ChunkPreviewLen  int           `mapstructure:"chunkPreviewLen"`
	CacheTTL         time.Duration `mapstructure:"cacheTTL"`
	MinTextLength    int           `mapstructure:"minTextLength"`
	ExtraSkills      []string      `mapstructure:"extraSkills"`
}

// CircuitBreakerConfig guards the neural embedding strategy
type CircuitBreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"maxRequests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MinRequests      uint32        `mapstructure:"minRequests"`
	FailureThreshold float64       `mapstructure:"failureThreshold"`
}

// EmbeddingConfig selects and configures the similarity backend strategy
type EmbeddingConfig struct {
	Provider       string               `mapstructure:"provider"` // "lexical" or "gemini"
	Model          string               `mapstructure:"model"`
	APIKey         string               `mapstructure:"apiKey"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	MaxRetries     int                  `mapstructure:"maxRetries"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RequestsPerMin int           `mapstructure:"requestsPerMin"`
	BurstCapacity  int           `mapstructure:"burstCapacity"`
	ByIP           bool          `mapstructure:"byIP"`
	ByAPIKey       bool          `mapstructure:"byAPIKey"`
	Window         time.Duration `mapstructure:"window"`
}

// TLSConfig holds the server TLS settings
type TLSConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	CertFile   string `mapstructure:"certFile"`
	KeyFile    string `mapstructure:"keyFile"`
	MinVersion string `mapstructure:"minVersion"`
	AutoReload bool   `mapstructure:"autoReload"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string          `mapstructure:"host"`
	Port           string          `mapstructure:"port"`
	ReadTimeout    time.Duration   `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration   `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration   `mapstructure:"idleTimeout"`
	MaxRequestSize int64           `mapstructure:"maxRequestSize"`
	APIKeys        []string        `mapstructure:"apiKeys"`
	RateLimit      RateLimitConfig `mapstructure:"rateLimit"`
	TLS            TLSConfig       `mapstructure:"tls"`
}

// StorageConfig holds SQLite persistence configuration
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// VaultConfig holds HashiCorp Vault configuration for secret loading
type VaultConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Address   string        `mapstructure:"address"`
	Token     string        `mapstructure:"token"`
	Namespace string        `mapstructure:"namespace"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Secrets   VaultSecrets  `mapstructure:"secrets"`
}

// VaultSecrets names the KV paths secrets are read from
type VaultSecrets struct {
	APIKeys      string `mapstructure:"apiKeys"`
	EmbeddingKey string `mapstructure:"embeddingKey"`
}

// PrometheusConfig holds Prometheus exporter configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// ConsoleConfig holds stdout exporter configuration
type ConsoleConfig struct {
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// ObservabilityConfig holds tracing/metrics configuration
type ObservabilityConfig struct {
	Enabled        bool             `mapstructure:"enabled"`
	ServiceName    string           `mapstructure:"serviceName"`
	ServiceVersion string           `mapstructure:"serviceVersion"`
	ConsoleOutput  bool             `mapstructure:"consoleOutput"`
	SampleRate     float64          `mapstructure:"sampleRate"`
	Console        ConsoleConfig    `mapstructure:"console"`
	Prometheus     PrometheusConfig `mapstructure:"prometheus"`
	OTLP           OTLPConfig       `mapstructure:"otlp"`
}

// LoadConfig loads configuration from defaults, a config file, environment
// variables and (optionally) Vault
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("TALENTALIGN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/talentalign/")
	v.AddConfigPath("$HOME/.talentalign")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Vault secrets take precedence over file and environment values
	if config.Vault.Enabled {
		if err := config.loadVaultSecrets(); err != nil {
			return nil, fmt.Errorf("failed to load secrets from vault: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks the configuration for invalid combinations
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case "lexical", "gemini":
	default:
		return fmt.Errorf("embedding.provider must be 'lexical' or 'gemini', got %q", c.Embedding.Provider)
	}

	if c.Engine.MinTextLength < 0 {
		return fmt.Errorf("engine.minTextLength must be non-negative")
	}
	if c.Engine.MaxHeatmapPoints <= 0 {
		return fmt.Errorf("engine.maxHeatmapPoints must be positive")
	}
	if c.Engine.TopSections <= 0 {
		return fmt.Errorf("engine.topSections must be positive")
	}
	if c.Engine.CacheTTL <= 0 {
		return fmt.Errorf("engine.cacheTTL must be positive")
	}

	if c.Server.TLS.Enabled {
		if c.Server.TLS.CertFile == "" || c.Server.TLS.KeyFile == "" {
			return fmt.Errorf("server.tls requires certFile and keyFile when enabled")
		}
	}

	if c.Observability.SampleRate < 0 || c.Observability.SampleRate > 1 {
		return fmt.Errorf("observability.sampleRate must be in [0,1]")
	}

	return nil
}
