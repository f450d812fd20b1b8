package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coyote.yaml")
	content := `generator:
  provider: openai
  model: gpt-4o
pipeline:
  auto_proceed: true
  timeout_seconds: 60
observability:
  loki_url: http://loki:3100
knowledge:
  lessons_file: notes/LESSONS.md
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Generator.Provider)
	assert.Equal(t, "gpt-4o", cfg.Generator.Model)
	assert.True(t, cfg.Pipeline.AutoProceed)
	assert.Equal(t, 60, cfg.Pipeline.TimeoutSeconds)
	assert.Equal(t, "http://loki:3100", cfg.Observability.LokiURL)
	assert.Equal(t, "notes/LESSONS.md", cfg.Knowledge.LessonsFile)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched fields keep defaults.
	assert.Equal(t, 3, cfg.Pipeline.MaxRetries)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("COYOTE_GENERATOR_MODEL", "claude-opus-4")
	t.Setenv("COYOTE_AUTO_PROCEED", "true")
	t.Setenv("COYOTE_MAX_RETRIES", "5")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "claude-opus-4", cfg.Generator.Model)
	assert.True(t, cfg.Pipeline.AutoProceed)
	assert.Equal(t, 5, cfg.Pipeline.MaxRetries)
	assert.Equal(t, "sk-test", cfg.Generator.APIKey)
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := Default()
	cfg.Generator.Provider = "carrier-pigeon"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider")
}

func TestValidateRejectsMalformedURL(t *testing.T) {
	cfg := Default()
	cfg.Observability.PrometheusURL = "not a url"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL")
}

func TestValidateRejectsNegativeRetries(t *testing.T) {
	cfg := Default()
	cfg.Pipeline.MaxRetries = -1

	assert.Error(t, Validate(cfg))
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("generator: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
