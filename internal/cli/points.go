package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lawrag/internal/domain"
)

var (
	deleteIDs     []string
	deleteFilters []string
	scrollLimit   int
	scrollOffset  string
	pointsYes     bool
)

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Inspect and delete stored points",
}

var pointsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete points by id or by payload filter",
	Long: `Delete points from the collection, selected either by explicit ids or by
an equality filter over payload fields.

Examples:
  lawrag points delete --filter source_file=old_statute.txt
  lawrag points delete --ids 0b07... --ids 9c1e...`,
	RunE: runPointsDelete,
}

var pointsScrollCmd = &cobra.Command{
	Use:   "scroll",
	Short: "Page through stored points",
	RunE:  runPointsScroll,
}

func init() {
	rootCmd.AddCommand(pointsCmd)
	pointsCmd.AddCommand(pointsDeleteCmd, pointsScrollCmd)

	pointsDeleteCmd.Flags().StringArrayVar(&deleteIDs, "ids", nil, "point id to delete (repeatable)")
	pointsDeleteCmd.Flags().StringArrayVar(&deleteFilters, "filter", nil, "payload equality filter, key=value (repeatable)")
	pointsCmd.PersistentFlags().BoolVarP(&pointsYes, "yes", "y", false, "confirm destructive operations without prompting")

	pointsScrollCmd.Flags().IntVar(&scrollLimit, "limit", 10, "points per page")
	pointsScrollCmd.Flags().StringVar(&scrollOffset, "offset", "", "cursor returned by the previous page")
}

func runPointsDelete(cmd *cobra.Command, args []string) error {
	if len(deleteIDs) == 0 && len(deleteFilters) == 0 {
		return fmt.Errorf("either --ids or --filter is required")
	}

	admin, closeStore, err := newAdmin()
	if err != nil {
		return err
	}
	defer closeStore()

	name := GetConfig().Collection.Name
	ctx := cmd.Context()

	if len(deleteIDs) > 0 {
		confirm := confirmed(pointsYes, fmt.Sprintf("Delete %d points from '%s'?", len(deleteIDs), name))
		err = admin.DeletePoints(ctx, name, deleteIDs, confirm)
	} else {
		filter, ferr := parseFilter(deleteFilters)
		if ferr != nil {
			return ferr
		}
		confirm := confirmed(pointsYes, fmt.Sprintf("Delete all points matching %v from '%s'?", filter, name))
		err = admin.DeleteByFilter(ctx, name, domain.Filter(filter), confirm)
	}
	if errors.Is(err, domain.ErrNotConfirmed) {
		fmt.Println("Cancelled.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println("Deleted.")
	return nil
}

func runPointsScroll(cmd *cobra.Command, args []string) error {
	admin, closeStore, err := newAdmin()
	if err != nil {
		return err
	}
	defer closeStore()

	points, next, err := admin.Scroll(cmd.Context(), GetConfig().Collection.Name, scrollLimit, scrollOffset)
	if err != nil {
		return err
	}

	fmt.Printf("%d points:\n\n", len(points))
	for _, p := range points {
		payload, _ := json.MarshalIndent(p.Payload, "", "  ")
		fmt.Printf("ID: %s\nPayload: %s\n%s\n", p.ID, payload, "--------------------------------------------------")
	}
	if next != "" {
		fmt.Printf("\nMore data available, next offset: %s\n", next)
	}
	return nil
}
