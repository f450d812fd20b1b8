package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/coyote/internal/config"
	"github.com/alexisbeaulieu97/coyote/internal/domain/incident"
	"github.com/alexisbeaulieu97/coyote/internal/ports"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicAPIVersion     = "2023-06-01"
	defaultMaxTokens        = 4096
)

// Anthropic calls the Anthropic Messages API.
type Anthropic struct {
	apiKey    string
	model     string
	maxTokens int
	baseURL   string
	client    *http.Client
}

var _ ports.Generator = (*Anthropic)(nil)

// NewAnthropic builds the adapter from the generator configuration.
func NewAnthropic(cfg config.GeneratorConfig, timeout time.Duration) *Anthropic {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Anthropic{
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: maxTokens,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    newHTTPClient(timeout),
	}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete implements ports.Generator.
func (a *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(anthropicRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", incident.NewGeneratorError("encode anthropic request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", incident.NewGeneratorError("build anthropic request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", incident.NewGeneratorError("anthropic request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", incident.NewGeneratorError("read anthropic response", err)
	}

	var decoded anthropicResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", incident.NewGeneratorError(fmt.Sprintf("decode anthropic response (status %d)", resp.StatusCode), err)
	}

	if resp.StatusCode != http.StatusOK {
		message := fmt.Sprintf("anthropic returned status %d", resp.StatusCode)
		if decoded.Error != nil {
			message = fmt.Sprintf("%s: %s: %s", message, decoded.Error.Type, decoded.Error.Message)
		}
		return "", incident.NewGeneratorError(message, nil)
	}

	var text strings.Builder
	for _, block := range decoded.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", incident.NewGeneratorError("anthropic response carried no text content", nil)
	}
	return text.String(), nil
}
