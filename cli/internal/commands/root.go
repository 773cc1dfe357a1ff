package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// app carries what every subcommand prints through.
type app struct {
	out     io.Writer
	noColor bool
	output  string
}

func (a *app) colors() aurora.Aurora {
	return aurora.NewAurora(!a.noColor)
}

func (a *app) checkOutput() error {
	switch a.output {
	case outputText, outputJSON:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want text or json)", a.output)
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// NewRootCommand returns the dsctl root command writing results to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	a := &app{out: out}
	root := &cobra.Command{
		Use:           "dsctl",
		Short:         "Solve average-cost MDPs and evaluate reliability formulas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.checkOutput()
		},
	}
	root.SetOut(out)
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable coloured output")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", outputText, "output format: text or json")

	root.AddCommand(solveCommand(a))
	root.AddCommand(reliabilityCommand(a))
	root.AddCommand(healthCommand(a))
	return root
}
