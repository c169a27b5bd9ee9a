package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/client"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/config"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/ui"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain/entity"
)

var (
	searchMode  string
	searchLimit int
)

// searchCmd is the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "search the gear catalog",
	Long: `Search the Wayfinder gear catalog and print the ranked results.

Three search modes are available:
  • semantic  — meaning-based retrieval (default)
  • lexical   — plain keyword matching
  • hybrid    — keyword matching blended with semantic retrieval`,
	Example: `  # Semantic search (default)
  $ wayctl search "waterproof boots for muddy trails"

  # Keyword-only search
  $ wayctl search --mode lexical "trekking poles"

  # Hybrid search, more results
  $ wayctl search --mode hybrid --limit 10 "ultralight tent"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "semantic", "Search mode: semantic, lexical, or hybrid")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 5, "Maximum number of results")

	searchCmd.SilenceUsage = true
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	query := strings.Join(args, " ")

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

	var result *entity.SearchResult
	switch searchMode {
	case "semantic":
		result, err = apiClient.Search(ctx, query, searchLimit)
	case "lexical":
		result, err = apiClient.SearchLexical(ctx, query, searchLimit)
	case "hybrid":
		result, err = apiClient.SearchHybrid(ctx, query, searchLimit)
	default:
		ui.PrintError("unknown search mode: %s", searchMode)
		return fmt.Errorf("invalid arguments")
	}
	if err != nil {
		ui.PrintErrorBox("Search Failed", err.Error())
		return fmt.Errorf("search failed")
	}

	fmt.Println(ui.RenderProductTree(result.Products))
	fmt.Println(ui.RenderSearchSummary(result))

	return nil
}
