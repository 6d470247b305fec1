package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/toodledo/internal/auth"
)

func newAuthCmd(cc *commandContext) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Toodledo authorization",
		Long: `Manage the OAuth tokens used to access Toodledo.

Each account (see --account) keeps its own token file. Tokens are refreshed
automatically and saved after every refresh.`,
	}

	authCmd.AddCommand(newAuthLoginCmd(cc))
	authCmd.AddCommand(newAuthStatusCmd(cc))
	authCmd.AddCommand(newAuthLogoutCmd(cc))

	return authCmd
}

func newAuthLoginCmd(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize access to a Toodledo account",
		Long: `Authorize access to a Toodledo account.

Prints the authorization URL, then asks for the URL the browser was redirected
to after granting access. The resulting token is stored for the account.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cc.cfg.RequireCredentials(); err != nil {
				return err
			}
			store, err := cc.tokenStore(cc.account)
			if err != nil {
				return err
			}

			t := cc.cfg.Toodledo
			authorizer := auth.NewCommandLineAuthorizer(
				auth.OAuthConfig(t.ClientID, t.ClientSecret, t.BaseURL, t.Scopes),
				cc.stdin, cmd.ErrOrStderr())

			token, err := authorizer.Authorize(cmd.Context())
			if err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}
			if err := store.Save(cmd.Context(), token); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Authorized account %q; token saved to %s\n", cc.account, store.Path())
			return nil
		},
	}
}

func newAuthStatusCmd(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored token of an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cc.tokenStore(cc.account)
			if err != nil {
				return err
			}
			token, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if token == nil {
				fmt.Fprintf(out, "Account %q is not authorized. Run 'toodledo auth login'.\n", cc.account)
				return nil
			}

			expiry := "never"
			if !token.Expiry.IsZero() {
				expiry = token.Expiry.Local().Format(time.RFC3339)
				if token.Expiry.Before(time.Now()) {
					expiry += " (expired)"
				}
			}
			refresh := "no"
			if token.RefreshToken != "" {
				refresh = "yes"
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Account", "Token file", "Expires", "Refreshable"},
				[][]string{{cc.account, store.Path(), expiry, refresh}},
				nil,
			))
			return nil
		},
	}
}

func newAuthLogoutCmd(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token of an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cc.tokenStore(cc.account)
			if err != nil {
				return err
			}
			if err := os.Remove(store.Path()); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					fmt.Fprintf(cmd.OutOrStdout(), "Account %q has no stored token\n", cc.account)
					return nil
				}
				return fmt.Errorf("remove token: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed token of account %q\n", cc.account)
			return nil
		},
	}
}
