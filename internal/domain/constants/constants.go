package constants

import "time"

// Lookup constants
const (
	// MaxSuggestions how many suggestions are shown for one query
	MaxSuggestions = 10

	// TailRows rows shown after a successful append
	TailRows = 5
)

// Dataset constants
const (
	// DefaultDatasetPath spreadsheet loaded when DATASET_PATH is unset
	DefaultDatasetPath = "BK Dwn May'25.xlsx"

	// ExportFileName name of the downloadable workbook
	ExportFileName = "updated_data.xlsx"

	// ExportMIME content type of the downloadable workbook
	ExportMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// WatchDebounce delay before reloading after a file change
	WatchDebounce = 500 * time.Millisecond

	// TUILogFile log file of the terminal UI when --log-file is unset
	TUILogFile = "breakdownbot.log"
)

// Language model constants
const (
	// OllamaEndpoint local inference endpoint
	OllamaEndpoint = "http://localhost:11434/api/generate"

	// OllamaModelName model asked for explanations
	OllamaModelName = "mistral"

	// DefaultLLMTimeout upper bound for one explanation
	DefaultLLMTimeout = 120 * time.Second

	// GeminiModelName Gemini model used when LLM_PROVIDER=gemini
	GeminiModelName = "gemini-2.5-flash"

	// AITemperature Gemini sampling temperature (0.0-1.0)
	AITemperature = 0.3

	// AITopK Top-K sampling parameter
	AITopK = 20

	// AITopP Top-P sampling parameter
	AITopP = 0.9

	// MaxRetries Gemini attempts per explanation
	MaxRetries = 3

	// RetryDelay wait between Gemini attempts (seconds)
	RetryDelay = 2
)

// Bot constants
const (
	// DefaultWorkerCount workers processing Telegram updates
	DefaultWorkerCount = 4

	// SessionIdleTimeout idle chat sessions older than this are dropped
	SessionIdleTimeout = 2 * time.Hour

	// SessionCleanupInterval how often idle sessions are swept
	SessionCleanupInterval = 15 * time.Minute

	// MaxMessageLength Telegram text limit in runes
	MaxMessageLength = 4096

	// JournalHistoryLimit entries shown by /history
	JournalHistoryLimit = 10
)
