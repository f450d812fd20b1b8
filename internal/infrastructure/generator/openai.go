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

const defaultOpenAIBaseURL = "https://api.openai.com"

// OpenAI calls the OpenAI Chat Completions API.
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

var _ ports.Generator = (*OpenAI)(nil)

// NewOpenAI builds the adapter from the generator configuration.
func NewOpenAI(cfg config.GeneratorConfig, timeout time.Duration) *OpenAI {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAI{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
	}
}

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete implements ports.Generator.
func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(openAIRequest{
		Model:    o.model,
		Messages: []openAIMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", incident.NewGeneratorError("encode openai request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", incident.NewGeneratorError("build openai request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", incident.NewGeneratorError("openai request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", incident.NewGeneratorError("read openai response", err)
	}

	var decoded openAIResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", incident.NewGeneratorError(fmt.Sprintf("decode openai response (status %d)", resp.StatusCode), err)
	}

	if resp.StatusCode != http.StatusOK {
		message := fmt.Sprintf("openai returned status %d", resp.StatusCode)
		if decoded.Error != nil {
			message = fmt.Sprintf("%s: %s: %s", message, decoded.Error.Type, decoded.Error.Message)
		}
		return "", incident.NewGeneratorError(message, nil)
	}

	if len(decoded.Choices) == 0 || decoded.Choices[0].Message.Content == "" {
		return "", incident.NewGeneratorError("openai response carried no choices", nil)
	}
	return decoded.Choices[0].Message.Content, nil
}
