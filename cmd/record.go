package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/studypulse/internal/progress"
)

var recordCmd = &cobra.Command{
	Use:   "record <lesson|test|ai_tutor|materials> <subject> <minutes>",
	Short: "Record a study session",
	Example: "  studypulse record lesson Physics 40\n" +
		"  studypulse record test Chemistry 30 --score 82",
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := progress.ParseSessionType(args[0])
		if err != nil {
			return err
		}
		minutes, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("minutes %q: %w", args[2], progress.ErrInvalidDuration)
		}
		var score *int
		if cmd.Flags().Changed("score") {
			s, _ := cmd.Flags().GetInt("score")
			score = &s
		}
		// Fail on bad input before touching config or the store.
		if err := progress.Validate("-", typ, args[1], minutes, score); err != nil {
			return err
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
		if err := e.progress.Recorder.Record(cmd.Context(), user, typ, args[1], minutes, score); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "Recorded %d min of %s for %s\n", minutes, typ, args[1])
		return nil
	},
}

func init() {
	recordCmd.Flags().Int("score", 0, "Test score, 0-100 (test sessions only)")
}
