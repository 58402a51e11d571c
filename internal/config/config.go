package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/acheong08/neuromap/internal/canvas"
	"github.com/acheong08/neuromap/internal/generate"
	"github.com/acheong08/neuromap/internal/layout"
	"github.com/acheong08/neuromap/internal/proxy"
)

// Config holds all environment configuration
type Config struct {
	// Server
	Port           string `validate:"required,numeric"`
	AllowedOrigins []string
	LogLevel       string `validate:"oneof=debug info warn error"`

	// Generation endpoint used by the WebSocket pipeline and the CLI
	GenerationEndpoint string  `validate:"required,url"`
	GenerationModel    string  `validate:"required"`
	RoadmapTemperature float32 `validate:"gte=0,lte=2"`

	// Proxy backend served at /api/gemini
	ProxyBackend  string `validate:"oneof=gemini openai"`
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	Layout  layout.Config
	Style   canvas.Style
	Breaker proxy.BreakerConfig
}

// File is the optional TOML overlay
type File struct {
	Generation GenerationFile      `toml:"generation"`
	Layout     layout.Config       `toml:"layout"`
	Style      canvas.Style        `toml:"style"`
	Breaker    proxy.BreakerConfig `toml:"breaker"`
}

// GenerationFile overrides generation settings
type GenerationFile struct {
	Endpoint    string   `toml:"endpoint"`
	Model       string   `toml:"model"`
	Temperature *float32 `toml:"temperature"`
}

var validate = validator.New()

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Port:               "8080",
		AllowedOrigins:     []string{"*"},
		LogLevel:           "info",
		GenerationEndpoint: "http://localhost:8080/api/gemini",
		GenerationModel:    generate.DefaultModel,
		RoadmapTemperature: generate.DefaultRoadmapTemperature,
		ProxyBackend:       "gemini",
		OpenAIBaseURL:      proxy.DefaultOpenAIBaseURL,
		OpenAIModel:        proxy.DefaultOpenAIModel,
		Layout:             layout.DefaultConfig(),
		Style:              canvas.DefaultStyle(),
		Breaker:            proxy.DefaultBreakerConfig(),
	}
}

// Load reads .env, the TOML overlay named by NEUROMAP_CONFIG and the
// environment, in that order of increasing precedence
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()
	return LoadFrom(os.Getenv("NEUROMAP_CONFIG"))
}

// LoadFrom is Load without .env, reading the overlay from path if set
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	// Point the pipeline at our own proxy unless told otherwise
	port := getEnv("PORT", cfg.Port)
	if cfg.Port != port && cfg.GenerationEndpoint == Default().GenerationEndpoint {
		cfg.GenerationEndpoint = fmt.Sprintf("http://localhost:%s/api/gemini", port)
	}
	cfg.Port = port

	cfg.GenerationEndpoint = getEnv("GENERATION_ENDPOINT", cfg.GenerationEndpoint)
	cfg.GenerationModel = getEnv("GENERATION_MODEL", cfg.GenerationModel)
	cfg.ProxyBackend = strings.ToLower(getEnv("PROXY_BACKEND", cfg.ProxyBackend))
	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.OpenAIModel = getEnv("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))
	if origins := getEnv("ALLOWED_ORIGINS", ""); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	file := File{Layout: c.Layout, Breaker: c.Breaker}
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if file.Generation.Endpoint != "" {
		c.GenerationEndpoint = file.Generation.Endpoint
	}
	if file.Generation.Model != "" {
		c.GenerationModel = file.Generation.Model
	}
	if file.Generation.Temperature != nil {
		c.RoadmapTemperature = *file.Generation.Temperature
	}
	c.Layout = file.Layout
	c.Style = file.Style.Merge(c.Style)
	c.Breaker = file.Breaker
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
