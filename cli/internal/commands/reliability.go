package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/decisionstack/decisionstack/pkg/reliability"
)

func reliabilityCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reliability",
		Short: "Evaluate reliability formulas",
	}
	cmd.AddCommand(exponentialCommand(a), mtbfCommand(a), seriesCommand(a), kofnCommand(a))
	return cmd
}

func exponentialCommand(a *app) *cobra.Command {
	var rate, mission float64
	cmd := &cobra.Command{
		Use:   "exponential",
		Short: "R(t) = exp(-λt) for a constant failure rate",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			r, err := reliability.Exponential(rate, mission)
			if err != nil {
				return err
			}
			return a.printValue("reliability", r)
		},
	}
	cmd.Flags().Float64Var(&rate, "rate", 0, "failure rate λ")
	cmd.Flags().Float64Var(&mission, "time", 0, "mission time t")
	_ = cmd.MarkFlagRequired("rate")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

func mtbfCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mtbf VALUE",
		Short: "Convert between MTBF and failure rate (1/VALUE)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			vs, err := parseFloats(args)
			if err != nil {
				return err
			}
			v, err := reliability.MTBFConvert(vs[0])
			if err != nil {
				return err
			}
			return a.printValue("converted_value", v)
		},
	}
}

func seriesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "series R...",
		Short: "Reliability of components in series",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			rs, err := parseFloats(args)
			if err != nil {
				return err
			}
			r, err := reliability.Series(rs)
			if err != nil {
				return err
			}
			return a.printValue("reliability", r)
		},
	}
}

func kofnCommand(a *app) *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "kofn --k K R...",
		Short: "Reliability of a k-out-of-n system",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			rs, err := parseFloats(args)
			if err != nil {
				return err
			}
			r, err := reliability.KofN(rs, k)
			if err != nil {
				return err
			}
			return a.printValue("reliability", r)
		},
	}
	cmd.Flags().IntVar(&k, "k", 0, "minimum number of working components")
	_ = cmd.MarkFlagRequired("k")
	return cmd
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, s := range args {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %q is not a number", i+1, s)
		}
		out[i] = v
	}
	return out, nil
}

func (a *app) printValue(key string, v float64) error {
	if a.output == outputJSON {
		return a.writeJSON(map[string]float64{key: v})
	}
	fmt.Fprintf(a.out, "%s  %v\n", key, a.colors().Green(v))
	return nil
}
