package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pipelinesCmd = &cobra.Command{
	Use:   "pipelines",
	Short: "List registered pipelines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		out := cmd.OutOrStdout()
		for _, name := range manager.Names() {
			source := "built-in"
			if pc, ok := cfg.Pipeline(name); ok {
				source = fmt.Sprintf("config: %s + %d filters", pc.Tokenizer, len(pc.Filters))
			}
			marker := " "
			if name == cfg.Index.Tokenizer {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %-12s %s\n", marker, name, source)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pipelinesCmd)
}
