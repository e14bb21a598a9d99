package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/trypromptly/promptly-cli/internal/api"
	"github.com/trypromptly/promptly-cli/internal/config"
	perrors "github.com/trypromptly/promptly-cli/internal/errors"
	"github.com/trypromptly/promptly-cli/internal/router"
)

var (
	loginCookie     string
	loginCookieName string
	loginCSRFToken  string
	loginUsername   string
	skipVerify      bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a Promptly session for the console",
	Long: `Stores the session cookie of a signed-in browser so the console can call
the Promptly API on your behalf. Copy the "sessionid" and "csrftoken" cookies
from your browser's developer tools.

If --cookie is not given the session cookie is read from stdin. The session is
checked against the server before it is saved unless --no-verify is set.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().StringVar(&loginCookie, "cookie", "", "Value of the session cookie")
	loginCmd.Flags().StringVar(&loginCookieName, "cookie-name", config.DefaultSessionCookieName, "Name of the session cookie")
	loginCmd.Flags().StringVar(&loginCSRFToken, "csrf-token", "", "Value of the CSRF cookie")
	loginCmd.Flags().StringVar(&loginUsername, "username", "", "Username shown in the console header")
	loginCmd.Flags().BoolVar(&skipVerify, "no-verify", false, "Save without checking the session")
	rootCmd.AddCommand(loginCmd, logoutCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	return runLoginWithReader(cmd, os.Stdin)
}

// runLoginWithReader allows injecting a reader for testing
func runLoginWithReader(cmd *cobra.Command, input io.Reader) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cookie := strings.TrimSpace(loginCookie)
	if cookie == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Session cookie: ")
		line, err := bufio.NewReader(input).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read session cookie: %w", err)
		}
		cookie = strings.TrimSpace(line)
	}
	if cookie == "" {
		return perrors.E(perrors.Op("cmd.login"), perrors.KindInvalid, "a session cookie is required")
	}

	session := config.Session{
		CookieName: loginCookieName,
		Cookie:     cookie,
		CSRFToken:  strings.TrimSpace(loginCSRFToken),
		Username:   strings.TrimSpace(loginUsername),
	}
	cfg.SetSession(session)
	if baseURL != "" {
		// The session belongs to this server, so keep them together
		cfg.SetBaseURL(baseURL)
	}

	if !skipVerify {
		if err := verifySession(cmd, cfg); err != nil {
			return err
		}
	}

	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s\n", cfg.GetBaseURL())
	return nil
}

// verifySession fetches the profile flags with the new session
func verifySession(cmd *cobra.Command, cfg *config.Config) error {
	nav := newHeadlessNavigator(io.Discard, router.PathSettings)
	client, err := api.New(api.OptionsFromConfig(cfg, nav))
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if _, err := client.GetProfileFlags(ctx); err != nil {
		if perrors.Is(err, perrors.KindUnauthorized) {
			return perrors.E(perrors.Op("cmd.login"), perrors.KindUnauthorized, "the server rejected this session", err)
		}
		return fmt.Errorf("could not verify session: %s", perrors.UserMessage(err))
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.ClearSession() {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
		return nil
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
	return nil
}
