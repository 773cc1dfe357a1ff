package commands

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/decisionstack/decisionstack/cli/internal/problem"
	"github.com/decisionstack/decisionstack/pkg/rvi"
	"github.com/decisionstack/decisionstack/pkg/types"
)

type solveFlags struct {
	maxIterations int
	maxTime       time.Duration
	remote        remoteFlags
}

func solveCommand(a *app) *cobra.Command {
	var f solveFlags
	cmd := &cobra.Command{
		Use:   "solve FILE",
		Short: "Run relative value iteration on a YAML or JSON problem file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := problem.Load(args[0])
			if err != nil {
				return err
			}
			if f.maxIterations < 0 || f.maxTime < 0 {
				return fmt.Errorf("budgets must not be negative")
			}
			if f.maxIterations > 0 {
				req.MaxIterations = f.maxIterations
			}
			if f.maxTime > 0 {
				req.MaxTime = f.maxTime.Seconds()
			}

			var (
				resp types.SolveResponse
				id   string
			)
			if f.remote.url != "" {
				resp, id, err = f.remote.client().Solve(cmd.Context(), req)
			} else {
				resp, err = solveLocal(req)
			}
			if err != nil {
				return err
			}
			return a.printSolve(resp, id)
		},
	}
	cmd.Flags().IntVar(&f.maxIterations, "max-iterations", 0, "iteration budget (0 uses the file value or the default)")
	cmd.Flags().DurationVar(&f.maxTime, "max-time", 0, "wall-clock budget, e.g. 500ms (0 uses the file value or the default)")
	f.remote.register(cmd, "submit to an mdp-service at this base URL instead of solving locally")
	return cmd
}

func solveLocal(req types.SolveRequest) (types.SolveResponse, error) {
	p, err := problem.Build(req)
	if err != nil {
		return types.SolveResponse{}, err
	}
	var opts []rvi.Option
	if req.MaxIterations != 0 {
		opts = append(opts, rvi.WithMaxIterations(req.MaxIterations))
	}
	if req.MaxTime > 0 {
		opts = append(opts, rvi.WithMaxTime(seconds(req.MaxTime)))
	} else if req.MaxTime < 0 || math.IsNaN(req.MaxTime) {
		return types.SolveResponse{}, fmt.Errorf("%w: max_time must not be negative, got %v", rvi.ErrInvalidParameter, req.MaxTime)
	}
	res, err := rvi.Solve(p, opts...)
	if err != nil {
		return types.SolveResponse{}, err
	}
	return types.SolveResponse{
		H:          res.H,
		G:          res.G,
		PiStar:     res.Policy,
		Iterations: res.Iterations,
		Converged:  res.Converged,
	}, nil
}

// seconds converts a positive float second count, saturating at the largest
// representable duration and rounding up to at least 1ns.
func seconds(v float64) time.Duration {
	if v >= float64(math.MaxInt64)/float64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	if d := time.Duration(v * float64(time.Second)); d > 0 {
		return d
	}
	return time.Nanosecond
}

func (a *app) printSolve(resp types.SolveResponse, id string) error {
	if a.output == outputJSON {
		return a.writeJSON(resp)
	}
	au := a.colors()
	status := au.Green("converged")
	if !resp.Converged {
		status = au.Yellow("budget exhausted")
	}
	if id != "" {
		fmt.Fprintf(a.out, "request  %s\n", id)
	}
	fmt.Fprintf(a.out, "status   %v after %d iterations\n", status, resp.Iterations)
	fmt.Fprintf(a.out, "g        %v\n", au.Bold(resp.G))
	fmt.Fprintf(a.out, "h        %v\n", resp.H)
	fmt.Fprintf(a.out, "pi*      %v\n", au.Cyan(fmt.Sprint(resp.PiStar)))
	return nil
}
