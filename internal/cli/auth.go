package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/procview/internal/service"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the procedure backend",
	Long: `Sign in and remember the session locally.

Missing credentials are prompted for when stdin is a terminal.

Examples:
  procview login
  procview login --email tech@example.com`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Long: `Forget the stored session. Cached procedures stay available offline.`,
	Args: cobra.NoArgs,
	RunE: runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (prompted if omitted)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	email, password := loginEmail, loginPassword
	if (email == "" || password == "") && stdinIsTerminal() {
		if err := promptCredentials(&email, &password); err != nil {
			return fmt.Errorf("read credentials: %w", err)
		}
	}

	sess, err := library.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), defaultTheme.successStyle().Render("Welcome, "+sess.DisplayName()))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := library.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	sess, err := library.Session(cmd.Context())
	if errors.Is(err, service.ErrNotLoggedIn) {
		fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
		return nil
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	u := sess.User
	fmt.Fprintf(out, "Name:  %s %s\n", u.FirstName, u.LastName)
	fmt.Fprintf(out, "Email: %s\n", u.Email)
	if u.Role != "" {
		fmt.Fprintf(out, "Role:  %s\n", u.Role)
	}
	if verbose {
		fmt.Fprintf(out, "ID:    %s\n", u.ID)
	}
	return nil
}
