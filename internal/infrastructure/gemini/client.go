// Package gemini explains breakdown matches with Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/yourusername/breakdown-bot/internal/domain/constants"
	"github.com/yourusername/breakdown-bot/internal/domain/entity"
	"github.com/yourusername/breakdown-bot/internal/domain/repository"
	"github.com/yourusername/breakdown-bot/pkg/logger"
)

type generateFunc func(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)

type geminiClient struct {
	client     *genai.Client
	generate   generateFunc
	maxRetries int
	retryDelay time.Duration
	log        *zap.Logger
}

// NewGeminiClient creates a Gemini backed explainer.
func NewGeminiClient(ctx context.Context, apiKey string) (repository.AIRepository, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(constants.GeminiModelName)
	model.SetTemperature(constants.AITemperature)
	model.SetTopK(constants.AITopK)
	model.SetTopP(constants.AITopP)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemInstruction)},
	}

	return &geminiClient{
		client:     client,
		generate:   model.GenerateContent,
		maxRetries: constants.MaxRetries,
		retryDelay: constants.RetryDelay * time.Second,
		log:        logger.Named("gemini"),
	}, nil
}

func (g *geminiClient) Name() string {
	return "gemini/" + constants.GeminiModelName
}

// Explain sends the prompt, retrying transport failures and empty answers.
func (g *geminiClient) Explain(ctx context.Context, prompt string) (string, error) {
	maxRetries := g.maxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		g.log.Debug("gemini request", zap.Int("attempt", attempt), zap.Int("max", maxRetries))

		resp, err := g.generate(ctx, genai.Text(prompt))
		switch {
		case err != nil:
			lastErr = fmt.Errorf("%w: %v", entity.ErrServiceUnavailable, err)
		case resp == nil || len(resp.Candidates) == 0:
			lastErr = fmt.Errorf("%w: no response candidates", entity.ErrMalformedResponse)
		case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
			g.log.Warn("response blocked by safety filter")
			return "", fmt.Errorf("%w: blocked by safety filter", entity.ErrMalformedResponse)
		default:
			text := extractText(resp)
			if strings.TrimSpace(text) != "" {
				return text, nil
			}
			lastErr = fmt.Errorf("%w: empty response", entity.ErrMalformedResponse)
		}

		g.log.Warn("gemini attempt failed", zap.Int("attempt", attempt), zap.Error(lastErr))
		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", entity.ErrServiceUnavailable, ctx.Err())
		case <-time.After(g.retryDelay):
		}
	}
	return "", lastErr
}

// extractText joins the text parts of every candidate
func extractText(resp *genai.GenerateContentResponse) string {
	var result strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				result.WriteString(string(t))
			}
		}
	}
	return result.String()
}

// Close releases the underlying client
func (g *geminiClient) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
