package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/studypulse/internal/export"
	"github.com/abhisek/studypulse/internal/ui/views"
)

var exportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Write every report to an Excel workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
			return fmt.Errorf("export file %q must end in .xlsx", path)
		}

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		user, err := e.user(cmd)
		if err != nil {
			return err
		}
		report := export.Collect(cmd.Context(), e.progress, user, time.Now())
		if report.SetupIncomplete() {
			return errors.New(views.SetupMessage)
		}

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := export.Write(f, report); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", path, err)
		}

		fmt.Fprintf(e.out, "Wrote %s\n", path)
		if d := report.Degraded(); len(d) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: showing defaults for %s (progress store unavailable)\n", strings.Join(d, ", "))
		}
		return nil
	},
}
