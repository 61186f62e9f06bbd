package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codelio/codelio/internal/identity"
)

var guestCmd = &cobra.Command{
	Use:   "guest NAME",
	Short: "Continue as a guest; progress stays on this machine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		t, err := e.ws.StartGuest(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("start guest session: %w", err)
		}
		sess, _ := e.ws.Session()
		fmt.Printf("Continuing as %s, %d solved\n", sess.Label(), t.Count())
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with a token; progress syncs to the remote store",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if !e.cfg.AuthEnabled() {
			return fmt.Errorf("sign-in is disabled: %w", identity.ErrNotConfigured)
		}
		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			token = e.cfg.Auth.Token
		}
		if token == "" {
			return errors.New("no token: pass --token or set CODELIO_TOKEN")
		}

		t, err := e.ws.SignIn(cmd.Context(), token)
		if errors.Is(err, identity.ErrAuthenticationFailed) {
			e.logger.Sugar().Warnw("sign in failed", "error", err)
			return errors.New(identity.FailedLoginMessage)
		}
		if err != nil {
			return err
		}
		sess, _ := e.ws.Session()
		fmt.Printf("Signed in as %s, %d solved\n", sess.Label(), t.Count())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current guest or signed-in session",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		if e.resolver.Resolve(ctx) != identity.StatusActive {
			fmt.Println("Not signed in.")
			return nil
		}
		sess, _ := e.resolver.Current()
		if err := e.ws.End(ctx); err != nil {
			return fmt.Errorf("end session: %w", err)
		}
		fmt.Printf("Signed out %s\n", sess.Label())
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if e.resolver.Resolve(cmd.Context()) != identity.StatusActive {
			fmt.Println("Not signed in.")
			return nil
		}
		sess, _ := e.resolver.Current()
		fmt.Println(sess.Label())
		if !sess.IsGuest() {
			fmt.Printf("  id:    %s\n", sess.ID)
			if sess.Email != "" {
				fmt.Printf("  email: %s\n", sess.Email)
			}
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().String("token", "", "Sign-in token (defaults to CODELIO_TOKEN)")
}
