package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lawrag/internal/domain"
)

var (
	queryText      string
	queryTopK      int
	queryThreshold float64
	queryFilters   []string
	queryJSON      bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Semantic search over the collection",
	Long: `Embed the query text and return the most similar stored chunks.

Examples:
  lawrag query -q "liability for breach of contract"
  lawrag query -q "damages" --top-k 10 --threshold 0.3 --filter category=civil`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "query text (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().Float64Var(&queryThreshold, "threshold", -1, "minimum similarity score (default from config)")
	queryCmd.Flags().StringArrayVar(&queryFilters, "filter", nil, "payload equality filter, key=value (repeatable)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	retriever, closeStore, err := newRetriever(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	topK := cfg.Retrieve.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}
	threshold := cfg.Retrieve.ScoreThreshold
	if queryThreshold >= 0 {
		threshold = queryThreshold
	}
	filter, err := parseFilter(queryFilters)
	if err != nil {
		return err
	}

	results, err := retriever.Search(cmd.Context(), queryText, topK, threshold, domain.Filter(filter))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if queryJSON {
		type jsonResult struct {
			ID         string         `json:"id"`
			Score      float64        `json:"score"`
			Text       string         `json:"text"`
			SourceFile string         `json:"source_file"`
			Metadata   map[string]any `json:"metadata"`
		}
		out := make([]jsonResult, 0, len(results))
		for _, r := range results {
			out = append(out, jsonResult{
				ID:         r.ID,
				Score:      r.Score,
				Text:       r.Text(),
				SourceFile: r.SourceFile(),
				Metadata:   r.Payload,
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Found %d results:\n\n", len(results))
	for i, r := range results {
		fmt.Printf("[%d] score: %.4f\n", i+1, r.Score)
		fmt.Printf("    source: %s\n", r.SourceFile())
		fmt.Printf("    %s\n\n", truncate(r.Text(), 200))
	}
	return nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
