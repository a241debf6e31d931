package main

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/fieldpulse/internal/adapters/cache"
	"github.com/okian/fieldpulse/internal/adapters/snapshot"
	app "github.com/okian/fieldpulse/internal/app"
	"github.com/okian/fieldpulse/internal/domain/goals"
	"github.com/okian/fieldpulse/internal/domain/performance"
	"github.com/spf13/cobra"
)

const calcAll = "all"

type reportCmd struct {
	snapshotPath string
	now          string
	calculator   string
	staleDays    int
	horizon      int
	noCallbacks  bool
}

func newReportCmd() *cobra.Command {
	rc := &reportCmd{}
	cmd := &cobra.Command{
		Use:          "report",
		Short:        "Print pipeline, team, cash flow and goal views for a snapshot",
		SilenceUsage: true,
		RunE:         rc.run,
		Args:         cobra.NoArgs,
	}

	cmd.Flags().StringVar(&rc.snapshotPath, "snapshot", "", "Path to a JSON or YAML snapshot")
	cmd.Flags().StringVar(&rc.now, "now", "", "Reference time as RFC3339 (default: current time)")
	cmd.Flags().StringVar(&rc.calculator, "calculator", calcAll, "One of all, pipeline, team, cashflow, goals")
	cmd.Flags().IntVar(&rc.staleDays, "stale-days", 0, "Stale quote threshold in days")
	cmd.Flags().IntVar(&rc.horizon, "horizon", 0, "Cash flow horizon in days (30, 60 or 90)")
	cmd.Flags().BoolVar(&rc.noCallbacks, "no-callbacks", false, "Ignore recorded callbacks when scoring quality")

	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

func (rc *reportCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now()
	if rc.now != "" {
		t, err := time.Parse(time.RFC3339, rc.now)
		if err != nil {
			return fmt.Errorf("invalid --now %q: must be RFC3339", rc.now)
		}
		now = t
	}

	f, err := snapshot.Load(rc.snapshotPath)
	if err != nil {
		return err
	}

	opts := []app.Option{
		app.WithClock(func() time.Time { return now }),
		app.WithCache(cache.NewResultCache(cache.WithMaxEntries(0))),
	}
	if rc.noCallbacks {
		opts = append(opts, app.WithQualitySignal(performance.NoCallbacks{}))
	}
	svc := app.New(opts...)
	if err := svc.Load(ctx, f.Snapshot()); err != nil {
		return err
	}

	out, err := rc.views(ctx, svc, now)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
	return err
}

// views runs the selected calculators. A single calculator prints its view
// unwrapped; "all" prints an object keyed by calculator.
func (rc *reportCmd) views(ctx context.Context, svc *app.Service, now time.Time) (any, error) {
	run := map[string]func() any{
		app.CalcPipeline: func() any {
			return svc.PipelineForecast(ctx, app.PipelineRequest{StaleDaysThreshold: rc.staleDays})
		},
		app.CalcTeam: func() any {
			return svc.TeamPerformance(ctx, app.TeamRequest{})
		},
		app.CalcCashFlow: func() any {
			return svc.CashFlow(ctx, app.CashFlowRequest{Horizon: rc.horizon})
		},
		app.CalcGoals: func() any {
			return goalViews(ctx, svc, now)
		},
	}

	if rc.calculator == calcAll {
		all := make(map[string]any, len(run))
		for name, fn := range run {
			all[name] = fn()
		}
		return all, nil
	}
	fn, ok := run[rc.calculator]
	if !ok {
		return nil, fmt.Errorf("unknown calculator %q", rc.calculator)
	}
	return fn(), nil
}

// goalViews reports progress for every stored goal in its own period. Goals
// are tracked directly, so duplicates for one period each get their own row.
func goalViews(ctx context.Context, svc *app.Service, now time.Time) []*goals.Progress {
	projects := svc.Projects(ctx)
	stored := svc.Goals(ctx)
	out := make([]*goals.Progress, 0, len(stored))
	for i := range stored {
		g := &stored[i]
		out = append(out, goals.Track(g, goals.Actual(g, projects, now.Location()), now))
	}
	return out
}
