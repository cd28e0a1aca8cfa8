package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lexis/internal/adapter/analyzer"
	"lexis/internal/domain"
)

var (
	tokenizeName string
	tokenizeJSON bool
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [text|-]",
	Short: "Run text through a named pipeline",
	Long: `Run text through a registered pipeline and print the resulting tokens.
With no argument or "-", the text is read from stdin.

Examples:
  lexis tokenize -t default "Hello World"
  echo "日本語のテキスト" | lexis tokenize -t ja --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokenize,
}

func init() {
	rootCmd.AddCommand(tokenizeCmd)
	tokenizeCmd.Flags().StringVarP(&tokenizeName, "tokenizer", "t", "default", "pipeline name")
	tokenizeCmd.Flags().BoolVar(&tokenizeJSON, "json", false, "output as JSON")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	tok, ok := manager.Get(tokenizeName)
	if !ok {
		return fmt.Errorf("%w: %q (registered: %s)", analyzer.ErrUnknownTokenizer, tokenizeName, strings.Join(manager.Names(), ", "))
	}

	tokens := analyzer.Collect(tok.Tokenize(text))
	logger.Debug("tokenized", "tokenizer", tokenizeName, "bytes", len(text), "tokens", len(tokens))

	out := cmd.OutOrStdout()
	if tokenizeJSON {
		if tokens == nil {
			tokens = []domain.Token{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(tokens)
	}
	return printTokens(out, tokens)
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func printTokens(out io.Writer, tokens []domain.Token) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "POS\tFROM\tTO\tTEXT")
	for _, t := range tokens {
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\n", t.Position, t.OffsetFrom, t.OffsetTo, t.Text)
	}
	return w.Flush()
}
