package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lawrag/config"
)

var (
	cfgFile    string
	cfg        *config.Config
	collection string
)

var rootCmd = &cobra.Command{
	Use:   "lawrag",
	Short: "Legal knowledge base - ingest statutes and retrieve them semantically",
	Long: `lawrag ingests legal text into a vector collection and serves semantic
retrieval for judgment generation.

Example usage:
  lawrag collection create --dim 1024      # Create the knowledge base
  lawrag ingest ./statutes --category civil
  lawrag query -q "liability for breach of contract"
  lawrag serve                             # HTTP query API`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if collection != "" {
			cfg.Collection.Name = collection
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "lawrag.yaml", "config file")
	rootCmd.PersistentFlags().StringVar(&collection, "collection", "", "collection name (default from config)")
}

func GetConfig() *config.Config {
	return cfg
}
