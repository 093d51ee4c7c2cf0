package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	contextFacts    string
	contextEvidence string
	contextTopK     int
	contextMinScore float64
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Assemble a RAG context block for judgment generation",
	Long: `Retrieve the statutes relevant to the case facts and print them as a
numbered context block ready to paste into a generation prompt.

Example:
  lawrag context --facts "defendant failed to pay under the sales contract" \
    --evidence "1. sales contract 2. bank transfer records" --top-k 5`,
	RunE: runContext,
}

func init() {
	rootCmd.AddCommand(contextCmd)
	contextCmd.Flags().StringVar(&contextFacts, "facts", "", "case facts (required)")
	contextCmd.Flags().StringVar(&contextEvidence, "evidence", "", "evidence chain summary")
	contextCmd.Flags().IntVarP(&contextTopK, "top-k", "k", 0, "number of laws to retrieve (default from config)")
	contextCmd.Flags().Float64Var(&contextMinScore, "min-score", -1, "minimum similarity (default from config)")
	contextCmd.MarkFlagRequired("facts")
}

func runContext(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	retriever, closeStore, err := newRetriever(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	topK := cfg.Retrieve.TopK
	if contextTopK > 0 {
		topK = contextTopK
	}
	minScore := cfg.Retrieve.MinScore
	if contextMinScore >= 0 {
		minScore = contextMinScore
	}

	contextText, laws, err := retriever.Context(cmd.Context(), contextFacts, contextEvidence, topK, minScore)
	if err != nil {
		return fmt.Errorf("context assembly failed: %w", err)
	}

	fmt.Println(contextText)
	if len(laws) > 0 {
		fmt.Printf("(%d laws retrieved)\n", len(laws))
	}
	return nil
}
