package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/commands"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		// Handle unknown command errors specially
		errMsg := err.Error()
		if strings.Contains(errMsg, "unknown command") {
			ui.PrintError("%s", errMsg)
			fmt.Println("\nRun 'wayctl --help' for usage.")
		}
		os.Exit(1)
	}
}
