package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"satfetch/pkg/auth"
	"satfetch/pkg/ui"
)

// authCmd groups token management subcommands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the tile API access token",
	Long: `Store, inspect, or remove the Mapbox API access token.

The token is kept in the system keyring when available, with an
encrypted file fallback. The SATFETCH_API_TOKEN environment variable
always works as a read-only source.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the tile API access token",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a token is stored and where",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored tile API access token",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	token, err := promptToken()
	if err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("no token entered")
	}

	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to open token stores: %w", err)
	}
	if err := manager.Store(token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	ui.PrintSuccess("Token stored")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to open token stores: %w", err)
	}

	token, source, err := manager.Retrieve()
	if err != nil {
		ui.PrintWarning("No token stored")
		return nil
	}

	ui.PrintInfo("Token", maskToken(token))
	ui.PrintInfo("Source", source)
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to open token stores: %w", err)
	}

	if err := manager.Delete(); err != nil {
		ui.PrintWarning("No stored token to remove")
		return nil
	}

	ui.PrintSuccess("Token removed")
	return nil
}

// promptToken reads the token from stdin, without echo when attached to
// a terminal
func promptToken() (string, error) {
	fmt.Print("API token: ")

	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// maskToken shows only the edges of a token
func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
