// Command dsctl solves average-cost MDP files locally or against a running
// mdp-service, and evaluates the reliability formulas.
package main

import (
	"fmt"
	"os"

	"github.com/decisionstack/decisionstack/cli/internal/commands"
)

func main() {
	rootCommand := commands.NewRootCommand(os.Stdout)
	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dsctl:", err)
		os.Exit(1)
	}
}
