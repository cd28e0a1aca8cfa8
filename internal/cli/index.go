package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"lexis/config"
	"lexis/internal/adapter/chunker"
	"lexis/internal/adapter/fs"
	"lexis/internal/adapter/store"
	"lexis/internal/usecase"
)

var indexNoProgress bool

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index files for retrieval",
	Long: `Index files in the specified directory for later retrieval.
Files are analyzed with the pipeline named by index.tokenizer in the config.
The index is stored in .lexis/index.db within the target directory.

Examples:
  lexis index .                 # Index current directory
  lexis index /path/to/project  # Index specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVar(&indexNoProgress, "no-progress", false, "disable the progress bar")
}

func runIndex(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	cfg := GetConfig()
	out := cmd.OutOrStdout()

	if err := config.EnsureDataDir(path); err != nil {
		return fmt.Errorf("failed to create .lexis directory: %w", err)
	}

	dbPath := config.IndexDBPath(path)
	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}
	defer st.Close()

	migrationResult, err := st.CheckMigration(cfg)
	if err != nil {
		return fmt.Errorf("failed to check migration: %w", err)
	}
	if migrationResult.NeedsRebuild {
		fmt.Fprintf(out, "Index rebuild required: %s\n", migrationResult.Reason)
		logger.Info("clearing index", "reason", migrationResult.Reason)
		if err := st.Clear(); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
	} else if migrationResult.NeedsMigration {
		logger.Info("schema migration", "reason", migrationResult.Reason)
		if err := st.Migrate(cfg); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	walker := fs.NewWalker(cfg.Index.Includes, cfg.Index.Excludes)
	chk := chunker.NewLineChunker(cfg.Index.ChunkTokens, cfg.Index.ChunkOverlap)
	indexUC := usecase.NewIndexUseCase(st, walker, chk, manager, cfg.Index.Tokenizer, cfg.Index.Workers, logger)

	fmt.Fprintf(out, "Scanning %s...\n", path)

	var progress usecase.ProgressFunc
	if !indexNoProgress {
		progress = newProgress()
	}

	start := time.Now()
	result, err := indexUC.Index(cmd.Context(), path, progress)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	// Recorded only after a successful run so an interrupted rebuild is retried.
	if err := st.Migrate(cfg); err != nil {
		return fmt.Errorf("failed to update schema info: %w", err)
	}

	fmt.Fprintf(out, "\nIndexing complete in %s:\n", formatDuration(time.Since(start)))
	fmt.Fprintf(out, "  Tokenizer:      %s\n", cfg.Index.Tokenizer)
	fmt.Fprintf(out, "  Files indexed:  %d\n", result.FilesIndexed)
	fmt.Fprintf(out, "  Files skipped:  %d (unchanged)\n", result.FilesSkipped)
	fmt.Fprintf(out, "  Files deleted:  %d (removed)\n", result.FilesDeleted)
	fmt.Fprintf(out, "  Chunks:         %d\n", result.ChunksCreated)

	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  - %s\n", e)
		}
	}

	fmt.Fprintf(out, "\nIndex stored at: %s\n", dbPath)
	return nil
}

// newProgress returns a callback that drives a progress bar. The bar is
// created on the first call, once the number of changed files is known.
func newProgress() usecase.ProgressFunc {
	var (
		bar       *progressbar.ProgressBar
		barMu     sync.Mutex
		startTime time.Time
	)

	return func(processed, total int, currentFile string) {
		barMu.Lock()
		defer barMu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Indexing[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}

		bar.Set(processed)

		if processed > 0 {
			elapsed := time.Since(startTime)
			rate := float64(processed) / elapsed.Seconds()
			remaining := total - processed
			if rate > 0 {
				eta := time.Duration(float64(remaining)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]Indexing[reset] ETA: %s", formatDuration(eta)))
			}
		}
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
