// Package ollama talks to a local Ollama generate endpoint.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/yourusername/breakdown-bot/internal/domain/constants"
	"github.com/yourusername/breakdown-bot/internal/domain/entity"
	"github.com/yourusername/breakdown-bot/internal/domain/repository"
	"github.com/yourusername/breakdown-bot/pkg/logger"
)

// GenerateRequest body of POST /api/generate
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// GenerateResponse the part of the reply we read
type GenerateResponse struct {
	Response *string `json:"response"`
	Error    string  `json:"error,omitempty"`
}

type ollamaClient struct {
	http     *resty.Client
	endpoint string
	model    string
	log      *zap.Logger
}

// NewOllamaClient returns an explainer posting to endpoint. Empty values fall
// back to the local default endpoint and model. The client sets no timeout of
// its own; callers bound each call with the context.
func NewOllamaClient(endpoint, model string) repository.AIRepository {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = constants.OllamaEndpoint
	}
	if strings.TrimSpace(model) == "" {
		model = constants.OllamaModelName
	}
	return &ollamaClient{
		http:     resty.New().SetHeader("Content-Type", "application/json"),
		endpoint: endpoint,
		model:    model,
		log:      logger.Named("ollama"),
	}
}

func (c *ollamaClient) Name() string {
	return "ollama/" + c.model
}

// Explain sends one non-streaming generate request. No retry.
func (c *ollamaClient) Explain(ctx context.Context, prompt string) (string, error) {
	body := GenerateRequest{Model: c.model, Prompt: prompt, Stream: false}

	c.log.Debug("generate request", zap.String("endpoint", c.endpoint), zap.Int("prompt_len", len(prompt)))
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrServiceUnavailable, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: %s: %s", entity.ErrServiceUnavailable, resp.Status(), strings.TrimSpace(resp.String()))
	}

	var out GenerateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrMalformedResponse, err)
	}
	if out.Response == nil {
		if out.Error != "" {
			return "", fmt.Errorf("%w: %s", entity.ErrMalformedResponse, out.Error)
		}
		return "", fmt.Errorf("%w: missing response field", entity.ErrMalformedResponse)
	}
	return *out.Response, nil
}
