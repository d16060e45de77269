package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <user>",
	Short: "Sign in as a user on this machine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if _, err := e.auth.SignIn(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("sign in: %w", err)
		}
		fmt.Fprintf(e.out, "Signed in as %s\n", args[0])
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.auth.SignOut(cmd.Context()); err != nil {
			return fmt.Errorf("sign out: %w", err)
		}
		fmt.Fprintln(e.out, "Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
			if _, err := e.auth.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("refresh session: %w", err)
			}
		}
		u, ok := e.auth.CurrentUserID(cmd.Context())
		if !ok {
			return ErrNotSignedIn
		}
		claims, err := e.auth.Verify(e.auth.Token())
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "%s (session expires %s)\n", u, claims.ExpiresAt.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

func init() {
	whoamiCmd.Flags().Bool("refresh", false, "Extend the session before printing it")
}
