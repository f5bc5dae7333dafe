// ABOUTME: Session commands: login, register, logout and status.
// ABOUTME: Prompts for missing credentials; the password is read without echo on a terminal.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/harper/notes/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the notes service",
	Long:  `Exchange email and password for a session token. The token is stored locally until logout.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password, err := credentials(cmd)
		if err != nil {
			return err
		}

		if _, err := sessMgr.Login(cmd.Context(), email, password); err != nil {
			return failure(err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Logged in as "+email))
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	Long:  `Create an account (username is the part of the email before "@") and log in with it.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password, err := credentials(cmd)
		if err != nil {
			return err
		}

		if _, err := sessMgr.Register(cmd.Context(), email, password); err != nil {
			return failure(err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Registered and logged in as "+email))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sessMgr.Logout(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Logged out"))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show API, token store and session state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(cmd.OutOrStdout(), ui.FormatStatus(
			cfg.APIURL+cfg.PathPrefix,
			cfg.TokenStore.Backend,
			cfg.TokenStorePath(),
			sessMgr.IsAuthenticated(),
		))
		return nil
	},
}

// credentials returns email and password from flags, prompting for
// whatever is missing.
func credentials(cmd *cobra.Command) (string, string, error) {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("NOTES_PASSWORD")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	out := cmd.ErrOrStderr()

	if email == "" {
		fmt.Fprint(out, "Email: ")
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", "", fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}

	if password == "" {
		fmt.Fprint(out, "Password: ")
		p, err := readPassword(cmd, reader)
		fmt.Fprintln(out)
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		password = p
	}

	return email, password, nil
}

func readPassword(cmd *cobra.Command, reader *bufio.Reader) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		return string(b), err
	}
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().String("email", "", "account email")
		c.Flags().String("password", "", "account password (prompted when omitted; NOTES_PASSWORD also works)")
	}
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, statusCmd)
}
