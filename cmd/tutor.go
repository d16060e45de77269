package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/studypulse/internal/llm"
)

var tutorCmd = &cobra.Command{
	Use:   "tutor",
	Short: "Ask the AI tutor",
}

var tutorAskCmd = &cobra.Command{
	Use:     "ask <subject> <question...>",
	Short:   "Ask a question; the time spent is recorded as an ai_tutor session",
	Example: `  studypulse tutor ask Physics "why does a spinning top stay upright?"`,
	Args:    cobra.MinimumNArgs(2),
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
		t, err := e.tutor(cmd.Context())
		if err != nil {
			return err
		}
		ans, err := t.Ask(cmd.Context(), user, args[0], strings.Join(args[1:], " "))
		if ans == nil {
			return err
		}
		if err != nil {
			// The answer stands even if the session could not be booked.
			e.log.Warn("tutor session not recorded", zap.Error(err))
		}
		if wantJSON(cmd) {
			return printJSON(e.out, ans)
		}

		fmt.Fprintln(e.out, ans.Text)
		if len(ans.FollowUps) > 0 {
			fmt.Fprintln(e.out)
			fmt.Fprintln(e.out, e.styles.Heading.Render("You could also ask"))
			for _, f := range ans.FollowUps {
				fmt.Fprintln(e.out, "  - "+f)
			}
		}
		fmt.Fprintln(e.out, e.styles.Hint.Render(fmt.Sprintf("(%s, %d min recorded)", ans.Model, ans.DurationMinutes)))
		return nil
	},
}

var tutorStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which LLM provider the tutor uses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := llm.NewProvider(cmd.Context(), e.cfg.LLM, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "provider  %s\n", e.cfg.LLM.Provider)
		fmt.Fprintf(e.out, "model     %s\n", p.ModelID())
		if cost := llm.LookupCost(p.ModelID()); cost != nil {
			fmt.Fprintf(e.out, "pricing   $%.2f / $%.2f per 1M tokens (in/out)\n", cost.InputPerMTok, cost.OutputPerMTok)
		}
		if e.cfg.LLM.Provider == llm.ProviderMock {
			fmt.Fprintln(e.out, e.styles.Hint.Render("offline: set STUDYPULSE_LLM_PROVIDER and an API key to get real answers"))
		}
		return nil
	},
}

func init() {
	tutorCmd.AddCommand(tutorAskCmd)
	tutorCmd.AddCommand(tutorStatusCmd)
}
