package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studypulse/internal/ui/views"
)

const reportWidth = 72

// reportCmd builds a read-only command that renders one report for the
// acting user, as text or JSON.
func reportCmd(use, short string, run func(e *appEnv, cmd *cobra.Command, user string) (text string, data any)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			user, err := e.user(cmd)
			if err != nil {
				return err
			}
			text, data := run(e, cmd, user)
			if wantJSON(cmd) {
				return printJSON(e.out, data)
			}
			_, err = fmt.Fprint(e.out, text)
			return err
		},
	}
}

var statsCmd = reportCmd("stats", "Show study totals and counters",
	func(e *appEnv, cmd *cobra.Command, user string) (string, any) {
		stats := e.progress.Cache.Get(cmd.Context(), user)
		streak := e.progress.Aggregator.Streak(cmd.Context(), user)
		return views.Stats(e.styles, stats, streak), outcomeJSON(stats)
	})

var streakCmd = reportCmd("streak", "Show the study streak",
	func(e *appEnv, cmd *cobra.Command, user string) (string, any) {
		o := e.progress.Aggregator.Streak(cmd.Context(), user)
		return views.Streak(e.styles, o), outcomeJSON(o)
	})

var weeklyCmd = reportCmd("weekly", "Summarize the last 7 days",
	func(e *appEnv, cmd *cobra.Command, user string) (string, any) {
		o := e.progress.Engine.Weekly(cmd.Context(), user)
		return views.Weekly(e.styles, o, reportWidth), outcomeJSON(o)
	})

var monthlyCmd = reportCmd("monthly", "Summarize the last 30 days",
	func(e *appEnv, cmd *cobra.Command, user string) (string, any) {
		o := e.progress.Engine.Monthly(cmd.Context(), user)
		return views.Monthly(e.styles, o, reportWidth), outcomeJSON(o)
	})

var insightsCmd = reportCmd("insights", "Show study habits and recommendations",
	func(e *appEnv, cmd *cobra.Command, user string) (string, any) {
		o := e.progress.Engine.Insights(cmd.Context(), user)
		return views.Insights(e.styles, o), outcomeJSON(o)
	})

