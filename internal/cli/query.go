package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lexis/config"
	"lexis/internal/adapter/retriever"
	"lexis/internal/adapter/store"
	"lexis/internal/usecase"
)

var (
	queryText  string
	queryTopK  int
	queryJSON  bool
	queryNoMMR bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search indexed files",
	Long: `Search for relevant chunks using BM25 retrieval with MMR deduplication.
The query is analyzed with the same pipeline as the index.

Examples:
  lexis query -q "authentication handler"
  lexis query -q "database connection" --top-k 10 --json`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.Flags().BoolVar(&queryNoMMR, "no-mmr", false, "disable MMR reranking")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	out := cmd.OutOrStdout()

	dbPath := config.IndexDBPath(GetRootDir())
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("no index found. Run 'lexis index' first")
	}

	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer st.Close()

	migrationResult, err := st.CheckMigration(cfg)
	if err != nil {
		return fmt.Errorf("failed to check index schema: %w", err)
	}
	if migrationResult.NeedsRebuild {
		return fmt.Errorf("index is stale (%s). Run 'lexis index' to rebuild", migrationResult.Reason)
	}

	bm25 := retriever.NewBM25Retriever(st, manager, cfg.Index.Tokenizer, retriever.BM25Params{
		K1:                cfg.Index.K1,
		B:                 cfg.Index.B,
		PathBoostWeight:   cfg.Retrieve.PathBoostWeight,
		PhraseBoostWeight: cfg.Retrieve.PhraseBoostWeight,
	})

	var mmr *retriever.MMRReranker
	if !queryNoMMR {
		mmr = retriever.NewMMRReranker(cfg.Retrieve.MMRLambda, cfg.Retrieve.DedupJaccard)
	}
	retrieveUC := usecase.NewRetrieveUseCase(bm25, st, mmr, cfg.Retrieve.MinScoreThreshold, logger)

	topK := cfg.Retrieve.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}

	chunks, err := retrieveUC.Retrieve(queryText, topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	results := retrieveUC.ToResults(chunks)

	if queryJSON {
		output, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}
	fmt.Fprintf(out, "Found %d results for: %s\n\n", len(results), queryText)
	for i, r := range results {
		fmt.Fprintf(out, "--- [%d] %s:L%d-%d (score: %.2f) ---\n", i+1, r.Path, r.StartLine, r.EndLine, r.Score)
		text := r.Text
		if len(text) > 500 {
			text = text[:500] + "..."
		}
		fmt.Fprintln(out, text)
		fmt.Fprintln(out)
	}
	return nil
}
