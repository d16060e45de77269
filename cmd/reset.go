package cmd

import (
	"fmt"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/studypulse/internal/periodreset"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Zero the weekly or monthly running study totals",
	Long: "The weekly and monthly totals in the stats are running sums. They are\n" +
		"zeroed every Monday 00:00 and on the first of the month at 00:00 by the\n" +
		"scheduler (reset schedule, or serve), or on demand with reset weekly|monthly.",
}

func resetPeriodCmd(p periodreset.Period) *cobra.Command {
	return &cobra.Command{
		Use:   string(p),
		Short: fmt.Sprintf("Zero every user's %s total now", p),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, requireDB())
			if err != nil {
				return err
			}
			defer e.Close()

			loc, _ := e.cfg.Location()
			n, err := periodreset.New(e.progress.Aggregator, loc, e.log).Run(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Reset %s totals for %d users\n", p, n)
			return nil
		},
	}
}

var resetScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the reset scheduler in the foreground until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, requireDB())
		if err != nil {
			return err
		}
		defer e.Close()

		loc, _ := e.cfg.Location()
		s := periodreset.New(e.progress.Aggregator, loc, e.log)
		if err := s.Start(); err != nil {
			return err
		}
		defer s.Stop()

		next := s.NextRuns()
		periods := make([]string, 0, len(next))
		for p := range next {
			periods = append(periods, string(p))
		}
		sort.Strings(periods)
		for _, p := range periods {
			fmt.Fprintf(e.out, "next %-8s reset %s\n", p, next[periodreset.Period(p)].Format("Mon 2006-01-02 15:04 MST"))
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
		return nil
	},
}

func init() {
	resetCmd.AddCommand(resetPeriodCmd(periodreset.Weekly))
	resetCmd.AddCommand(resetPeriodCmd(periodreset.Monthly))
	resetCmd.AddCommand(resetScheduleCmd)
}
