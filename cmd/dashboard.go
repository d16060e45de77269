package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/studypulse/internal/dashboard"
	"github.com/abhisek/studypulse/internal/ui/theme"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive progress dashboard (default command)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd)
	},
}

func runDashboard(cmd *cobra.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := e.user(cmd)
	if err != nil {
		return err
	}
	deps := dashboard.Deps{
		Source: e.progress,
		UserID: user,
		Styles: theme.Color(),
	}
	if t, err := e.tutor(cmd.Context()); err != nil {
		e.log.Warn("tutor disabled", zap.Error(err))
	} else {
		deps.Tutor = t
	}
	return dashboard.Run(deps)
}
