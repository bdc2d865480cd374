package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sheetpilotlabs/sheetpilot-cli/config"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
}

var setTokenGeminiKey string

var setTokenCmd = &cobra.Command{
	Use:   "set-token <token>",
	Short: "Save a spreadsheet API token locally",
	Long: `Save an OAuth bearer token for the spreadsheet API to the local
config file, optionally alongside a Gemini API key.

The token is stored in plain text under the user config directory
(SHEETPILOT_CONFIG_DIR overrides the location).

Examples:
  sheetpilot auth set-token ya29.a0Af...
  sheetpilot auth set-token ya29.a0Af... --gemini-key AIza...`,
	Args: cobra.ExactArgs(1),
	RunE: runSetToken,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove locally saved credentials",
	RunE:  runLogout,
}

func init() {
	setTokenCmd.Flags().StringVar(&setTokenGeminiKey, "gemini-key", "", "Gemini API key to save alongside the token")
	setTokenCmd.SilenceUsage = true
	logoutCmd.SilenceUsage = true
	authCmd.AddCommand(setTokenCmd)
	authCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(authCmd)
}

func runSetToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Token = args[0]
	if setTokenGeminiKey != "" {
		cfg.GeminiAPIKey = setTokenGeminiKey
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintln(os.Stderr, "✓ Token saved")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Token == "" && cfg.GeminiAPIKey == "" {
		fmt.Fprintln(os.Stderr, "Not logged in.")
		return nil
	}
	if err := config.Delete(); err != nil {
		return fmt.Errorf("failed to delete config: %w", err)
	}
	fmt.Fprintln(os.Stderr, "✓ Logged out")
	return nil
}
