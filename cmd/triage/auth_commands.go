package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mselway/triage/identity"
	"github.com/mselway/triage/localstore"
)

var loginCmd = &cobra.Command{
	Use:   "login <user-id>",
	Short: "Sign in as a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of the current session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var guestCmd = &cobra.Command{
	Use:   "guest",
	Short: "Use guest mode (local-only storage)",
	Args:  cobra.NoArgs,
	RunE:  runGuest,
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, guestCmd)
}

// openProvider opens the identity provider without starting a full
// session; login/logout only need the provider.
func openProvider() (*identity.FileProvider, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	local := localstore.NewStore(filepath.Join(cfg.Storage.DataDir, "local"))
	return identity.NewFileProvider(local), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	provider, err := openProvider()
	if err != nil {
		return err
	}
	sess, err := provider.SignIn(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s\n", sess.UserID)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	provider, err := openProvider()
	if err != nil {
		return err
	}
	if err := provider.SignOut(); err != nil {
		return err
	}
	fmt.Println("Signed out")
	return nil
}

func runGuest(cmd *cobra.Command, args []string) error {
	provider, err := openProvider()
	if err != nil {
		return err
	}
	if _, ok := provider.CurrentSession(); ok {
		if err := provider.SignOut(); err != nil {
			return err
		}
	}
	fmt.Println("Using guest mode")
	return nil
}
