package repository

import "context"

// AIRepository language model behind the explanation step
type AIRepository interface {
	// Explain sends a prompt and returns the reply text. Failures are
	// entity.ErrServiceUnavailable or entity.ErrMalformedResponse.
	Explain(ctx context.Context, prompt string) (string, error)

	// Name short provider/model label for logs
	Name() string
}
