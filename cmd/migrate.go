package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the progress tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, requireDB())
		if err != nil {
			return err
		}
		defer e.Close()

		missing := e.db.MissingTables()
		if err := e.db.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if len(missing) == 0 {
			fmt.Fprintln(e.out, "Schema is up to date")
			return nil
		}
		fmt.Fprintf(e.out, "Created %s\n", strings.Join(missing, ", "))
		return nil
	},
}
