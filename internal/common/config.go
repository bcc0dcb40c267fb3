package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// DefaultEndpointURL is the question-answering service the client talks to
// when no endpoint is configured.
const DefaultEndpointURL = "https://rag-teol.onrender.com/ask"

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Server      ServerConfig   `toml:"server"`
	Endpoint    EndpointConfig `toml:"endpoint"`
	Render      RenderConfig   `toml:"render"`
	Session     SessionConfig  `toml:"session"`
	Logging     LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host" validate:"required"`
}

// EndpointConfig describes the remote question-answering service.
// The endpoint is fixed for the lifetime of the process.
type EndpointConfig struct {
	// POST target for questions
	URL string `toml:"url" validate:"required,url"`
	// GET target for health checks (default: service root)
	StatusURL string `toml:"status_url" validate:"omitempty,url"`
	// Request timeout as duration string (empty = no timeout)
	Timeout string `toml:"timeout"`
	// Max requests per second (0 = unlimited)
	RateLimit int `toml:"rate_limit" validate:"min=0"`
}

// RenderConfig controls how answers and sources are rendered
type RenderConfig struct {
	RawSourceMarkup bool   `toml:"raw_source_markup"` // Insert source content as markup instead of escaped text
	MarkdownAnswers bool   `toml:"markdown_answers"`  // Render the answer from markdown on the web page
	TemplatesDir    string `toml:"templates_dir"`     // Optional directory of page template overrides
}

// SessionConfig controls in-memory web sessions
type SessionConfig struct {
	IdleTTL string `toml:"idle_ttl"` // Drop sessions idle for longer than this (default: "30m")
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=debug info warn error"`
	Format     string   `toml:"format" validate:"oneof=text json"`
	Output     []string `toml:"output" validate:"dive,oneof=stdout console file"`
	TimeFormat string   `toml:"time_format"` // default: "15:04:05"
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Endpoint: EndpointConfig{
			URL: DefaultEndpointURL,
		},
		Render: RenderConfig{
			RawSourceMarkup: false, // Escaped by default, raw markup is opt-in
			MarkdownAnswers: false,
		},
		Session: SessionConfig{
			IdleTTL: "30m",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
	}
}

// LoadFromFiles loads configuration with priority: default -> file1 -> file2 -> ... -> .env -> env
// Later files override earlier files. CLI flags are applied afterwards with ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// .env never overrides variables already set in the environment
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	applyEnvOverrides(config)

	return config, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("POLICYQA_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("POLICYQA_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("POLICYQA_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Endpoint configuration
	if url := os.Getenv("POLICYQA_ENDPOINT_URL"); url != "" {
		config.Endpoint.URL = url
	}
	if statusURL := os.Getenv("POLICYQA_ENDPOINT_STATUS_URL"); statusURL != "" {
		config.Endpoint.StatusURL = statusURL
	}
	if timeout := os.Getenv("POLICYQA_ENDPOINT_TIMEOUT"); timeout != "" {
		if _, err := time.ParseDuration(timeout); err == nil {
			config.Endpoint.Timeout = timeout
		}
	}
	if rateLimit := os.Getenv("POLICYQA_ENDPOINT_RATE_LIMIT"); rateLimit != "" {
		if rl, err := strconv.Atoi(rateLimit); err == nil {
			config.Endpoint.RateLimit = rl
		}
	}

	// Render configuration
	if raw := os.Getenv("POLICYQA_RENDER_RAW_SOURCE_MARKUP"); raw != "" {
		if r, err := strconv.ParseBool(raw); err == nil {
			config.Render.RawSourceMarkup = r
		}
	}
	if markdown := os.Getenv("POLICYQA_RENDER_MARKDOWN_ANSWERS"); markdown != "" {
		if m, err := strconv.ParseBool(markdown); err == nil {
			config.Render.MarkdownAnswers = m
		}
	}

	if dir := os.Getenv("POLICYQA_RENDER_TEMPLATES_DIR"); dir != "" {
		config.Render.TemplatesDir = dir
	}

	if idleTTL := os.Getenv("POLICYQA_SESSION_IDLE_TTL"); idleTTL != "" {
		if _, err := time.ParseDuration(idleTTL); err == nil {
			config.Session.IdleTTL = idleTTL
		}
	}

	// Logging configuration
	if level := os.Getenv("POLICYQA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("POLICYQA_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("POLICYQA_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string, endpoint string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if endpoint != "" {
		config.Endpoint.URL = endpoint
	}
}

// Validate checks the resolved configuration
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.EndpointTimeout(); err != nil {
		return fmt.Errorf("invalid configuration: endpoint.timeout: %w", err)
	}
	if _, err := c.SessionIdleTTL(); err != nil {
		return fmt.Errorf("invalid configuration: session.idle_ttl: %w", err)
	}
	return nil
}

// EndpointTimeout returns the request timeout, zero when none is configured
func (c *Config) EndpointTimeout() (time.Duration, error) {
	if strings.TrimSpace(c.Endpoint.Timeout) == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Endpoint.Timeout)
}

// SessionIdleTTL returns the idle lifetime of a web session
func (c *Config) SessionIdleTTL() (time.Duration, error) {
	if strings.TrimSpace(c.Session.IdleTTL) == "" {
		return 30 * time.Minute, nil
	}
	return time.ParseDuration(c.Session.IdleTTL)
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
