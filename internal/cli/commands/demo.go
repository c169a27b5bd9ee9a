package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/client"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/config"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/ui"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/conversation"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/demo"
)

// defaultDemoQuery is phrased so lexical search misses what semantic
// retrieval catches.
const defaultDemoQuery = "something to keep my feet dry on muddy spring trails"

var demoQuery string

// demoCmd is the demo command
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "run the three-phase search comparison",
	Long: `Walk through the same query three ways, side by side: plain keyword
search, hybrid keyword + semantic search, and the full agentic chat
pipeline. Each phase waits for confirmation before running, and a
failed phase does not discard earlier results.`,
	Example: `  # Run with the built-in comparison query
  $ wayctl demo

  # Run with your own query
  $ wayctl demo --query "warm layers for alpine starts"`,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().StringVarP(&demoQuery, "query", "q", defaultDemoQuery, "Query to run through all three phases")

	demoCmd.SilenceUsage = true
}

func runDemo(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		ui.PrintError("unexpected argument: %s", args[0])
		return fmt.Errorf("invalid arguments")
	}

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

	// The API client serves all three roles: the two search modes, the
	// chat turn, and product-by-id resolution.
	orch := demo.New(demoQuery, cfg.UserID, apiClient, apiClient, apiClient, nil)

	ui.PrintBold("Wayfinder search comparison")
	fmt.Printf("Query: %q\n\n", orch.Query())

	for phase := orch.Advance(); phase != demo.PhaseComplete; phase = orch.Advance() {
		if !confirmPhase(phase) {
			ui.PrintInfo("skipped %s phase", phase)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), phaseTimeout(phase))
		result := orch.Run(ctx)
		cancel()

		printPhaseResult(result)
	}

	fmt.Println()
	ui.PrintSuccess("comparison complete")
	return nil
}

func confirmPhase(phase demo.Phase) bool {
	run := true
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Run %s phase?", phase),
		Default: true,
	}
	if err := survey.AskOne(prompt, &run); err != nil {
		return false
	}
	return run
}

// phaseTimeout gives the agentic phase room for the upstream agent's
// reasoning; the search phases are single round trips.
func phaseTimeout(phase demo.Phase) time.Duration {
	if phase == demo.PhaseAgentic {
		return 2 * time.Minute
	}
	return 30 * time.Second
}

func printPhaseResult(result *demo.Result) {
	fmt.Println()
	ui.PrintBold(strings.ToUpper(string(result.Phase)))

	if result.Err != nil {
		ui.PrintErrorBox("Phase Failed", result.Err.Error())
		fmt.Println()
		return
	}

	if result.Turn != nil {
		printTurn(result.Turn)
	}

	fmt.Println(ui.RenderProductTree(result.Products))
	fmt.Println()
}

// printTurn summarizes the agentic turn: the thought trace, then the reply
func printTurn(turn *conversation.State) {
	for _, step := range turn.Message.Steps {
		switch step.Kind {
		case conversation.StepReasoning:
			ui.PrintInfo("∴ %s", step.Text)
		case conversation.StepToolCall:
			line := fmt.Sprintf("⚒ %s", step.ToolID)
			if step.ResultsSet {
				line += fmt.Sprintf(" → %d results", len(step.Results))
			}
			ui.PrintInfo("%s", line)
		}
	}
	if content := strings.TrimSpace(turn.Message.Content); content != "" {
		fmt.Println()
		fmt.Println(content)
		fmt.Println()
	}
}
