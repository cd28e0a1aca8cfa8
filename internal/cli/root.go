package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lexis/config"
	"lexis/internal/adapter/analyzer"
	"lexis/internal/usecase"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
	rootDir  string
	logger   *slog.Logger
	manager  *analyzer.Manager
)

var rootCmd = &cobra.Command{
	Use:   "lexis",
	Short: "Lexis - named tokenizer pipelines and a lexical index built on them",
	Long: `Lexis manages named text-analysis pipelines (tokenizer plus filters) and
uses them to build and search a BM25 index of local files.

Example usage:
  lexis pipelines                        # List registered pipelines
  lexis tokenize -t en_stem "Running"    # Show the tokens of a text
  lexis index .                          # Index current directory
  lexis query -q "authentication"        # Search the index`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		logger = newLogger(level, cfg.Logging.Format, cmd.ErrOrStderr())

		manager, err = usecase.NewManager(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to build pipelines: %w", err)
		}
		return nil
	},
}

// Execute runs the root command. Interrupts cancel the command's context,
// which stops indexing between files.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./lexis.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
