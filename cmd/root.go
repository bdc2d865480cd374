package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sheetpilotlabs/sheetpilot-cli/client"
	"github.com/sheetpilotlabs/sheetpilot-cli/config"
	"github.com/sheetpilotlabs/sheetpilot-cli/internal/resolve"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	apiURL        string
	token         string
	geminiKey     string
	jsonOutput    bool
	debug         bool
	strictColumns bool
)

var rootCmd = &cobra.Command{
	Use:           "sheetpilot",
	Short:         "SheetPilot CLI — plain-English spreadsheet edits",
	Version:       Version,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Spreadsheet API URL (env: SHEETPILOT_API_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "OAuth bearer token for the spreadsheet API (env: SHEETPILOT_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&geminiKey, "gemini-key", "", "Gemini API key (env: GEMINI_API_KEY)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Verbose logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&strictColumns, "strict-columns", false, "Fail instead of guessing when a column reference matches nothing confidently")
}

func resolveToken() (string, error) {
	if token != "" {
		return token, nil
	}
	if v := os.Getenv("SHEETPILOT_TOKEN"); v != "" {
		return v, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("loading auth config: %w", err)
	}
	if cfg.Token == "" {
		return "", fmt.Errorf("not authenticated: run 'sheetpilot auth set-token' or set --token / SHEETPILOT_TOKEN")
	}
	return cfg.Token, nil
}

func resolveGeminiKey() (string, error) {
	if geminiKey != "" {
		return geminiKey, nil
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		return v, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("loading auth config: %w", err)
	}
	if cfg.GeminiAPIKey == "" {
		return "", fmt.Errorf("no Gemini key: set --gemini-key / GEMINI_API_KEY or save one with 'sheetpilot auth set-token'")
	}
	return cfg.GeminiAPIKey, nil
}

func resolveAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	return os.Getenv("SHEETPILOT_API_URL")
}

func newSheetsClient() (*client.Client, error) {
	tok, err := resolveToken()
	if err != nil {
		return nil, err
	}
	return client.New(resolveAPIURL(), tok), nil
}

func resolvePolicy() resolve.Policy {
	return resolve.Policy{Strict: strictColumns}
}

func newLogger() (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	return cfg.Build()
}

func Execute() error {
	return rootCmd.Execute()
}
