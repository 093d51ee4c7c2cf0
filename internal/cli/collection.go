package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lawrag/internal/domain"
	"lawrag/internal/usecase"
)

var (
	createDim    int
	createMetric string
	createForce  bool
	assumeYes    bool
)

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage vector collections",
}

var collectionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the collection",
	Long: `Create the configured collection with a fixed dimension and distance
metric. With --force an existing collection is destroyed and recreated,
which requires confirmation.`,
	RunE: runCollectionCreate,
}

var collectionDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the collection (irreversible)",
	RunE:  runCollectionDelete,
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all collections",
	RunE:  runCollectionList,
}

var collectionInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show collection info",
	RunE:  runCollectionInfo,
}

func init() {
	rootCmd.AddCommand(collectionCmd)
	collectionCmd.AddCommand(collectionCreateCmd, collectionDeleteCmd, collectionListCmd, collectionInfoCmd)

	collectionCreateCmd.Flags().IntVar(&createDim, "dim", 0, "vector dimension (default from config)")
	collectionCreateCmd.Flags().StringVar(&createMetric, "metric", "", "distance metric: cosine, dot, euclid (default from config)")
	collectionCreateCmd.Flags().BoolVar(&createForce, "force", false, "destroy and recreate an existing collection")
	collectionCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "confirm destructive operations without prompting")
}

func newAdmin() (*usecase.Admin, func(), error) {
	st, closeStore, err := openStore(GetConfig())
	if err != nil {
		return nil, nil, err
	}
	return usecase.NewAdmin(st), closeStore, nil
}

func runCollectionCreate(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	admin, closeStore, err := newAdmin()
	if err != nil {
		return err
	}
	defer closeStore()

	dim := cfg.Collection.Dimension
	if createDim > 0 {
		dim = createDim
	}
	metricName := cfg.Collection.Distance
	if createMetric != "" {
		metricName = createMetric
	}
	metric, ok := domain.ParseDistance(metricName)
	if !ok {
		return fmt.Errorf("unknown distance metric: %s", metricName)
	}

	name := cfg.Collection.Name
	confirm := false
	if createForce {
		confirm = confirmed(assumeYes, fmt.Sprintf("Recreating '%s' destroys all its data. Continue?", name))
	}
	err = admin.Create(cmd.Context(), name, dim, metric, createForce, confirm)
	if errors.Is(err, domain.ErrNotConfirmed) {
		fmt.Println("Cancelled.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Collection '%s' ready (dim=%d, metric=%s)\n", name, dim, metric)
	return nil
}

func runCollectionDelete(cmd *cobra.Command, args []string) error {
	admin, closeStore, err := newAdmin()
	if err != nil {
		return err
	}
	defer closeStore()

	name := GetConfig().Collection.Name
	confirm := confirmed(assumeYes, fmt.Sprintf("Delete collection '%s'?", name))
	err = admin.Delete(cmd.Context(), name, confirm)
	if errors.Is(err, domain.ErrNotConfirmed) {
		fmt.Println("Cancelled.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Collection '%s' deleted\n", name)
	return nil
}

func runCollectionList(cmd *cobra.Command, args []string) error {
	admin, closeStore, err := newAdmin()
	if err != nil {
		return err
	}
	defer closeStore()

	names, err := admin.List(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("%d collections:\n", len(names))
	for _, name := range names {
		fmt.Printf("  - %s\n", name)
	}
	return nil
}

func runCollectionInfo(cmd *cobra.Command, args []string) error {
	admin, closeStore, err := newAdmin()
	if err != nil {
		return err
	}
	defer closeStore()

	info, err := admin.Info(cmd.Context(), GetConfig().Collection.Name)
	if err != nil {
		return err
	}
	fmt.Printf("Collection: %s\n", info.Name)
	fmt.Printf("Vectors:    %d\n", info.Count)
	fmt.Printf("Dimension:  %d\n", info.Dimension)
	fmt.Printf("Metric:     %s\n", info.Metric)
	return nil
}
