package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the optional YAML file read before environment overrides.
const DefaultPath = "config/config.yaml"

const (
	defaultModel   = "anthropic/claude-sonnet-4-5"
	defaultBaseURL = "https://openrouter.ai/api/v1"
)

type Config struct {
	AppName    string `envconfig:"APP_NAME" default:"weather-chatbot"`
	AppVersion string `envconfig:"APP_VERSION" default:"1.0.0"`
	AppEnv     string `envconfig:"APP_ENV" default:"development"`
	Port       string `envconfig:"PORT" default:"8080"`

	// LLM endpoint. The key is environment-only; it never lives in YAML.
	OpenRouterAPIKey  string `envconfig:"OPENROUTER_API_KEY" yaml:"-"`
	OpenRouterModel   string `envconfig:"OPENROUTER_MODEL" yaml:"openrouter_model"`
	OpenRouterBaseURL string `envconfig:"OPENROUTER_BASE_URL" yaml:"openrouter_base_url"`

	// Open-Meteo endpoints; empty values fall back to the public APIs.
	GeocodingURL string `envconfig:"GEOCODING_URL" yaml:"geocoding_url"`
	ForecastURL  string `envconfig:"FORECAST_URL" yaml:"forecast_url"`
	ArchiveURL   string `envconfig:"ARCHIVE_URL" yaml:"archive_url"`

	// Outbound call policy toward the weather APIs. Zero values take the
	// client defaults.
	WeatherRPS            float64 `envconfig:"WEATHER_RPS" yaml:"weather_rps"`
	WeatherBurst          int     `envconfig:"WEATHER_BURST" yaml:"weather_burst"`
	WeatherMaxRetries     uint64  `envconfig:"WEATHER_MAX_RETRIES" yaml:"weather_max_retries"`
	RequestTimeoutSeconds int     `envconfig:"REQUEST_TIMEOUT_SECONDS" yaml:"request_timeout_seconds"`

	SentryDSN string `envconfig:"SENTRY_DSN" yaml:"-"`
}

// NewConfig reads the YAML file at path if it exists, then overrides with
// environment variables. A missing file is fine; a broken one is not.
func NewConfig(path string) (*Config, error) {
	var cnf Config

	if yamlData, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(yamlData, &cnf); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	}

	if err := envconfig.Process("", &cnf); err != nil {
		return nil, fmt.Errorf("error environment variable parsing: %w", err)
	}

	if cnf.OpenRouterModel == "" {
		cnf.OpenRouterModel = defaultModel
	}
	if cnf.OpenRouterBaseURL == "" {
		cnf.OpenRouterBaseURL = defaultBaseURL
	}

	return &cnf, nil
}
