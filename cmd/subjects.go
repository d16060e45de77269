package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studypulse/internal/ui/views"
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "Manage the subjects whose syllabus progress is tracked",
}

// subjectArgs returns the subjects named on the command line, or expands
// --board/--group through the curriculum when none are named.
func subjectArgs(e *appEnv, cmd *cobra.Command, args []string) ([]string, string, error) {
	grade, _ := cmd.Flags().GetString("grade")
	board, _ := cmd.Flags().GetString("board")
	group, _ := cmd.Flags().GetString("group")
	if len(args) > 0 || board == "" {
		return args, grade, nil
	}
	subjects, err := e.progress.Curriculum().SubjectsFor(grade, board, group)
	if err != nil {
		return nil, "", err
	}
	return subjects, grade, nil
}

// writeSubjects runs a curriculum write and prints the resulting list.
func writeSubjects(cmd *cobra.Command, args []string, allowEmpty bool,
	write func(e *appEnv, cmd *cobra.Command, user string, subjects []string, grade string) error) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := e.user(cmd)
	if err != nil {
		return err
	}
	subjects, grade, err := subjectArgs(e, cmd, args)
	if err != nil {
		return err
	}
	if len(subjects) == 0 && !allowEmpty {
		return errors.New("name at least one subject, or pass --board (and --group) to use the curriculum")
	}
	if err := write(e, cmd, user, subjects, grade); err != nil {
		return err
	}
	return printSubjects(e, cmd, user)
}

func printSubjects(e *appEnv, cmd *cobra.Command, user string) error {
	o := e.progress.Tracker.List(cmd.Context(), user)
	if wantJSON(cmd) {
		return printJSON(e.out, outcomeJSON(o))
	}
	_, err := fmt.Fprint(e.out, views.Subjects(e.styles, o, reportWidth))
	return err
}

var subjectsInitCmd = &cobra.Command{
	Use:   "init [subject...]",
	Short: "Start tracking subjects (resets progress of the named ones)",
	Example: "  studypulse subjects init Physics Chemistry --grade 12\n" +
		"  studypulse subjects init --grade 12 --board CBSE --group science-pcm",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeSubjects(cmd, args, false, func(e *appEnv, cmd *cobra.Command, user string, subjects []string, grade string) error {
			return e.progress.Tracker.Initialize(cmd.Context(), user, subjects, grade)
		})
	},
}

var subjectsReplaceCmd = &cobra.Command{
	Use:   "replace [subject...]",
	Short: "Replace the tracked subjects, keeping progress of those that stay",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeSubjects(cmd, args, true, func(e *appEnv, cmd *cobra.Command, user string, subjects []string, grade string) error {
			return e.progress.Tracker.ReplaceCurriculum(cmd.Context(), user, subjects, grade)
		})
	},
}

var subjectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked subjects and their progress",
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
		return printSubjects(e, cmd, user)
	},
}

var subjectsGroupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List the curriculum groups for a grade and board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		grade, _ := cmd.Flags().GetString("grade")
		board, _ := cmd.Flags().GetString("board")
		c := e.progress.Curriculum()
		groups := c.Groups(grade, board)
		if wantJSON(cmd) {
			out := make(map[string][]string, len(groups))
			for _, g := range groups {
				out[g], _ = c.SubjectsFor(grade, board, g)
			}
			return printJSON(e.out, out)
		}
		if len(groups) == 0 {
			fmt.Fprintf(e.out, "No groups for grade %q, board %q\n", grade, board)
			return nil
		}
		for _, g := range groups {
			subjects, _ := c.SubjectsFor(grade, board, g)
			fmt.Fprintf(e.out, "%s %s\n", e.styles.Heading.Render(fmt.Sprintf("%-14s", g)), strings.Join(subjects, ", "))
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{subjectsInitCmd, subjectsReplaceCmd} {
		c.Flags().String("grade", "", "Grade, used to look up topic counts")
		c.Flags().String("board", "", "Board whose curriculum supplies the subjects")
		c.Flags().String("group", "", "Curriculum group (e.g. science-pcm)")
	}
	subjectsGroupsCmd.Flags().String("grade", "", "Grade")
	subjectsGroupsCmd.Flags().String("board", "", "Board")

	subjectsCmd.AddCommand(subjectsInitCmd)
	subjectsCmd.AddCommand(subjectsReplaceCmd)
	subjectsCmd.AddCommand(subjectsListCmd)
	subjectsCmd.AddCommand(subjectsGroupsCmd)
}
