package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yourusername/breakdown-bot/internal/domain/constants"
)

// LLM providers
const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// Config application settings
type Config struct {
	DatasetPath  string
	DatasetSheet string
	WatchDataset bool

	LLMProvider  string
	OllamaURL    string
	OllamaModel  string
	GeminiAPIKey string
	LLMTimeout   time.Duration

	TelegramToken     string
	AllowEmptySecrets bool
	WorkerCount       int

	DatabaseURL string
	LogLevel    string
}

// Load reads .env files (if present) and the environment. Files are loaded
// in order; variables already set are never overwritten.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else {
		for _, f := range envFiles {
			if strings.TrimSpace(f) == "" {
				continue
			}
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("load env file %s: %w", f, err)
			}
		}
	}

	timeout, err := getEnvDuration("LLM_TIMEOUT", constants.DefaultLLMTimeout)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvInt("WORKER_COUNT", constants.DefaultWorkerCount)
	if err != nil {
		return nil, err
	}

	config := &Config{
		DatasetPath:       getEnv("DATASET_PATH", constants.DefaultDatasetPath),
		DatasetSheet:      strings.TrimSpace(os.Getenv("DATASET_SHEET")),
		WatchDataset:      getEnvBool("DATASET_WATCH", true),
		LLMProvider:       strings.ToLower(getEnv("LLM_PROVIDER", ProviderOllama)),
		OllamaURL:         getEnv("OLLAMA_URL", constants.OllamaEndpoint),
		OllamaModel:       getEnv("OLLAMA_MODEL", constants.OllamaModelName),
		GeminiAPIKey:      strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		LLMTimeout:        timeout,
		TelegramToken:     strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		AllowEmptySecrets: getEnvBool("ALLOW_EMPTY_SECRETS", false),
		WorkerCount:       workers,
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks settings every command needs.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOllama:
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable is empty (LLM_PROVIDER=gemini)")
		}
	default:
		return fmt.Errorf("LLM_PROVIDER %q is not supported (use %s or %s)", c.LLMProvider, ProviderOllama, ProviderGemini)
	}
	if strings.TrimSpace(c.DatasetPath) == "" {
		return fmt.Errorf("DATASET_PATH is empty")
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive, got %d", c.WorkerCount)
	}
	return nil
}

// RequireTelegram checks the bot token for the serve command.
func (c *Config) RequireTelegram() error {
	if c.TelegramToken == "" && !c.AllowEmptySecrets {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s is not a number: %v", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	// bare numbers are seconds
	secs, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s is not a duration: %q", key, value)
	}
	return time.Duration(secs) * time.Second, nil
}
