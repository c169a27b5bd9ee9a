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
)

var planItinerary bool

// planCmd is the plan command
var planCmd = &cobra.Command{
	Use:   "plan <message>",
	Short: "extract trip details from a message",
	Long: `Run a message through the trip extraction agents.

By default the trip-context extractor pulls destination, dates, and
activity out of the message. With --itinerary the itinerary extractor
breaks a trip plan into days instead.`,
	Example: `  # Extract destination, dates, and activity
  $ wayctl plan "5 days of trekking in Patagonia next March"

  # Break a trip plan into a day-by-day itinerary
  $ wayctl plan --itinerary "Day 1: arrive in El Chaltén. Day 2: hike to Laguna de los Tres."`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().BoolVarP(&planItinerary, "itinerary", "i", false, "Extract a day-by-day itinerary instead of trip context")

	planCmd.SilenceUsage = true
}

func runPlan(cmd *cobra.Command, args []string) error {
	// Extraction runs an agent turn server-side, so allow it more time
	// than a plain catalog call.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	message := strings.Join(args, " ")

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

	if planItinerary {
		days, err := apiClient.ExtractItinerary(ctx, message)
		if err != nil {
			ui.PrintErrorBox("Itinerary Extraction Failed", err.Error())
			return fmt.Errorf("extraction failed")
		}
		fmt.Println(ui.RenderItinerary(days))
		return nil
	}

	tc, err := apiClient.ParseTripContext(ctx, message)
	if err != nil {
		ui.PrintErrorBox("Trip Context Extraction Failed", err.Error())
		return fmt.Errorf("extraction failed")
	}
	fmt.Println(ui.RenderTripContext(tc))
	return nil
}
