package cli

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	ingestChunkSize int
	ingestOverlap   int
	ingestCategory  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Vectorize legal text files into the collection",
	Long: `Segment, embed and store legal text. The path may be a single txt file or
a directory, in which case every matching txt file underneath is ingested;
files that fail (for example, undecodable encodings) are reported and skipped.

Examples:
  lawrag ingest civil_code.txt --category civil
  lawrag ingest ./statutes --chunk-size 500 --overlap 50`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0, "chunk size in characters (default from config)")
	ingestCmd.Flags().IntVar(&ingestOverlap, "overlap", -1, "hard-split overlap in characters, 0 disables (default from config)")
	ingestCmd.Flags().StringVar(&ingestCategory, "category", "", "legal category recorded in every chunk's metadata")
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}

	cfg := GetConfig()
	ing, closeStore, err := newIngestor(cfg, ingestChunkSize, ingestOverlap)
	if err != nil {
		return err
	}
	defer closeStore()

	var metadata map[string]any
	if ingestCategory != "" {
		metadata = map[string]any{"category": ingestCategory}
	}

	ctx := cmd.Context()

	if !info.IsDir() {
		count, err := ing.IngestFile(ctx, path, metadata)
		if err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}
		fmt.Printf("Ingested %s: %d entries\n", path, count)
		return nil
	}

	var bar *progressbar.ProgressBar
	progress := func(done, total int, currentFile string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("Ingesting"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(done)
	}

	result, err := ing.IngestDir(ctx, path, metadata, progress)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "warning: %s\n", e)
	}
	fmt.Printf("Done: %d files ingested, %d failed, %d entries written\n",
		result.FilesProcessed, result.FilesFailed, result.EntriesWritten)
	return nil
}
