package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/client"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/config"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/ui"
)

var (
	browseCategory string
	browseLimit    int
	browseOffset   int
)

// browseCmd is the browse command
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "browse the gear catalog",
	Long:  `Page through the Wayfinder gear catalog, optionally by category.`,
	Example: `  # First page of the catalog
  $ wayctl browse

  # Camping gear, second page
  $ wayctl browse --category camping --limit 20 --offset 20`,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVarP(&browseCategory, "category", "c", "", "Filter by category")
	browseCmd.Flags().IntVarP(&browseLimit, "limit", "l", 20, "Products per page")
	browseCmd.Flags().IntVarP(&browseOffset, "offset", "o", 0, "Page offset")

	browseCmd.SilenceUsage = true
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		ui.PrintError("unexpected argument: %s", args[0])
		return fmt.Errorf("invalid arguments")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	apiClient, err := client.NewAPIClient(cfg.Server, cfg.APIKey)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return fmt.Errorf("client creation failed")
	}

	result, err := apiClient.ListProducts(ctx, browseCategory, browseLimit, browseOffset)
	if err != nil {
		ui.PrintErrorBox("Catalog Unavailable", err.Error())
		return fmt.Errorf("catalog fetch failed")
	}

	fmt.Println(ui.RenderProductTree(result.Products))
	fmt.Println(ui.RenderSearchSummary(result))

	return nil
}
