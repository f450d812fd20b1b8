package config

// Config is the explicit configuration value injected into the pipeline,
// stages, and knowledge store. There is no process-wide lookup; construct it
// once at the entry point and pass it down.
type Config struct {
	Generator     GeneratorConfig     `yaml:"generator"`
	Pipeline      PipelineConfig      `yaml:"pipeline"`
	Observability ObservabilityConfig `yaml:"observability"`
	Knowledge     KnowledgeConfig     `yaml:"knowledge"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// GeneratorConfig selects and tunes the text-generation backend.
type GeneratorConfig struct {
	Provider  string `yaml:"provider" validate:"required,oneof=anthropic openai"`
	Model     string `yaml:"model" validate:"required"`
	BaseURL   string `yaml:"base_url" validate:"omitempty,url"`
	MaxTokens int    `yaml:"max_tokens" validate:"gte=0"`

	// APIKey comes from the environment only; it never lives in the file.
	APIKey string `yaml:"-"`
}

// PipelineConfig tunes run behavior.
type PipelineConfig struct {
	// AutoProceed disables the human approval checkpoint between stages.
	AutoProceed bool `yaml:"auto_proceed"`

	// MaxRetries is a policy hook for stage re-execution. The engine does
	// not consume it yet; see DESIGN.md.
	MaxRetries int `yaml:"max_retries" validate:"gte=0"`

	// TimeoutSeconds bounds a single generator call. Enforcement belongs to
	// the generator adapter, not the engine.
	TimeoutSeconds int `yaml:"timeout_seconds" validate:"gte=0"`
}

// ObservabilityConfig points at the query backends used during investigation.
// Empty URLs mean "not configured" and queries against them return explicit
// not-configured results instead of failing.
type ObservabilityConfig struct {
	PrometheusURL string `yaml:"prometheus_url" validate:"omitempty,url"`
	LokiURL       string `yaml:"loki_url" validate:"omitempty,url"`
	TempoURL      string `yaml:"tempo_url" validate:"omitempty,url"`
}

// KnowledgeConfig locates the lessons-learned document.
type KnowledgeConfig struct {
	LessonsFile string `yaml:"lessons_file" validate:"required"`

	// InsightsEnabled forwards captured lessons to the configured insight
	// sink in addition to the document.
	InsightsEnabled bool `yaml:"insights_enabled"`
}

// LoggingConfig tunes the structured logger.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Provider:  "anthropic",
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 4096,
		},
		Pipeline: PipelineConfig{
			AutoProceed:    false,
			MaxRetries:     3,
			TimeoutSeconds: 300,
		},
		Knowledge: KnowledgeConfig{
			LessonsFile: "LESSONS_LEARNED.md",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
