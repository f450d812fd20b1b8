package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load reads a configuration file, layers environment overrides on top, and
// validates the result. An empty path yields defaults plus environment; a
// missing file at an explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a configuration from defaults and environment variables only.
func FromEnv() (*Config, error) {
	return Load("")
}

func applyEnv(cfg *Config) {
	setString(&cfg.Generator.Provider, "COYOTE_GENERATOR_PROVIDER")
	setString(&cfg.Generator.Model, "COYOTE_GENERATOR_MODEL")
	setString(&cfg.Generator.BaseURL, "COYOTE_GENERATOR_BASE_URL")

	setBool(&cfg.Pipeline.AutoProceed, "COYOTE_AUTO_PROCEED")
	setInt(&cfg.Pipeline.MaxRetries, "COYOTE_MAX_RETRIES")
	setInt(&cfg.Pipeline.TimeoutSeconds, "COYOTE_TIMEOUT_SECONDS")

	setString(&cfg.Observability.PrometheusURL, "PROMETHEUS_URL")
	setString(&cfg.Observability.LokiURL, "LOKI_URL")
	setString(&cfg.Observability.TempoURL, "TEMPO_URL")

	setString(&cfg.Knowledge.LessonsFile, "COYOTE_LESSONS_FILE")
	setBool(&cfg.Knowledge.InsightsEnabled, "COYOTE_INSIGHTS_ENABLED")

	setString(&cfg.Logging.Level, "COYOTE_LOG_LEVEL")

	switch cfg.Generator.Provider {
	case "openai":
		cfg.Generator.APIKey = os.Getenv("OPENAI_API_KEY")
	default:
		cfg.Generator.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
}

func setString(target *string, key string) {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		*target = value
	}
}

func setBool(target *bool, key string) {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func setInt(target *int, key string) {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}
