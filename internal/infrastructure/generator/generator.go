// Package generator provides ports.Generator adapters for the supported
// text-completion providers. Adapters enforce the configured request timeout;
// the engine above them never retries or times out on its own.
package generator

import (
	"fmt"
	"net/http"
	"time"

	"github.com/alexisbeaulieu97/coyote/internal/config"
	"github.com/alexisbeaulieu97/coyote/internal/ports"
)

// New builds the generator selected by the configuration.
func New(cfg *config.Config) (ports.Generator, error) {
	if cfg.Generator.APIKey == "" {
		return nil, fmt.Errorf("generator: no API key configured for provider %s", cfg.Generator.Provider)
	}

	timeout := time.Duration(cfg.Pipeline.TimeoutSeconds) * time.Second

	switch cfg.Generator.Provider {
	case "anthropic":
		return NewAnthropic(cfg.Generator, timeout), nil
	case "openai":
		return NewOpenAI(cfg.Generator, timeout), nil
	default:
		return nil, fmt.Errorf("generator: unknown provider %q", cfg.Generator.Provider)
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &http.Client{Timeout: timeout}
}
