package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/studypulse/internal/store"
	"github.com/abhisek/studypulse/internal/ui/views"
)

var rootCmd = &cobra.Command{
	Use:   "studypulse",
	Short: "Track study sessions, streaks and syllabus progress",
	Long: "StudyPulse records study sessions and turns them into streaks, weekly and\n" +
		"monthly reports, habit insights and per-subject syllabus progress.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd)
	},
}

// Execute runs the command line and prints any error in user terms.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", userMessage(err))
	}
	return err
}

// userMessage turns setup failures into the next step to take.
func userMessage(err error) string {
	switch store.KindOf(err) {
	case store.KindSchemaMissing:
		return views.SetupMessage
	case store.KindNotConfigured:
		return "no progress store configured: set STUDYPULSE_DB or pass --db"
	case store.KindConnectivity:
		return "progress store unreachable: " + err.Error()
	}
	return err.Error()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Database file (sqlite) or URL (postgres); overrides STUDYPULSE_DB")
	pf.String("config", "", "Config file (default $XDG_CONFIG_HOME/studypulse/config.toml)")
	pf.String("user", "", "Act as this user instead of the signed-in one")
	pf.Bool("json", false, "Print reports as JSON")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(streakCmd)
	rootCmd.AddCommand(weeklyCmd)
	rootCmd.AddCommand(monthlyCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(subjectsCmd)
	rootCmd.AddCommand(tutorCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}
