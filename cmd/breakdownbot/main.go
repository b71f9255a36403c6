// Command breakdownbot searches a machine breakdown log, asks a language
// model to explain the matches, and serves the same lookup over Telegram or a
// terminal UI.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/breakdown-bot/config"
	"github.com/yourusername/breakdown-bot/internal/domain/constants"
	"github.com/yourusername/breakdown-bot/pkg/logger"
)

// rootOptions persistent flags shared by every subcommand
type rootOptions struct {
	envFiles []string
	logLevel string
	dataset  string
	logFile  string
	devLog   bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "breakdownbot",
		Short: "Machine breakdown lookup with language model explanations",
		Long: `Searches the breakdown spreadsheet by machine name or problem,
summarizes the matching rows and asks a language model (Ollama or Gemini)
for causes and suggestions. Rows can be appended and the updated
workbook downloaded.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.envFiles...)
			if err != nil {
				return err
			}
			if opts.dataset != "" {
				cfg.DatasetPath = opts.dataset
			}
			if opts.logLevel != "" {
				cfg.LogLevel = opts.logLevel
			}
			opts.cfg = cfg

			logOpts := logger.Options{
				Level:       cfg.LogLevel,
				Development: opts.devLog,
				OutputPaths: logOutputPaths(cmd.Name(), opts.logFile),
			}
			if err := logger.Init(logOpts); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger.L().Debug("config loaded",
				zap.String("command", cmd.Name()),
				zap.String("dataset", cfg.DatasetPath),
				zap.String("llm_provider", cfg.LLMProvider))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "env files to load (default .env)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	root.PersistentFlags().StringVar(&opts.dataset, "dataset", "", "path to the breakdown workbook (overrides DATASET_PATH)")
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "append logs to this file instead of stderr (tui default "+constants.TUILogFile+")")
	root.PersistentFlags().BoolVar(&opts.devLog, "dev-log", false, "human readable log output")

	root.AddCommand(
		newServeCmd(opts),
		newTUICmd(opts),
		newQueryCmd(opts),
		newAddCmd(opts),
		newExportCmd(opts),
		newColumnsCmd(opts),
		newHistoryCmd(opts),
	)
	return root
}

// logOutputPaths nil keeps stderr. The terminal UI owns the screen, so its
// logs always go to a file.
func logOutputPaths(command, logFile string) []string {
	switch {
	case logFile != "":
		return []string{logFile}
	case command == "tui":
		return []string{constants.TUILogFile}
	default:
		return nil
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimSpace(err.Error()))
		os.Exit(1)
	}
}
