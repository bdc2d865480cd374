package cmd

import (
	"strings"
	"testing"

	"github.com/sheetpilotlabs/sheetpilot-cli/config"
)

func resetFlags(t *testing.T) {
	origToken := token
	origGemini := geminiKey
	origURL := apiURL
	origStrict := strictColumns
	t.Cleanup(func() {
		token = origToken
		geminiKey = origGemini
		apiURL = origURL
		strictColumns = origStrict
	})
	token = ""
	geminiKey = ""
	apiURL = ""
	strictColumns = false
}

func TestResolveToken_FlagWinsOverEnv(t *testing.T) {
	resetFlags(t)
	token = "flag-token"
	t.Setenv("SHEETPILOT_TOKEN", "env-token")

	got, err := resolveToken()
	if err != nil {
		t.Fatalf("resolveToken returned error: %v", err)
	}
	if got != "flag-token" {
		t.Fatalf("expected flag token, got %q", got)
	}
}

func TestResolveToken_FallsBackToConfig(t *testing.T) {
	resetFlags(t)
	t.Setenv("SHEETPILOT_TOKEN", "")
	t.Setenv("SHEETPILOT_CONFIG_DIR", t.TempDir())

	if err := config.Save(config.Config{Token: "saved-token"}); err != nil {
		t.Fatalf("saving config: %v", err)
	}

	got, err := resolveToken()
	if err != nil {
		t.Fatalf("resolveToken returned error: %v", err)
	}
	if got != "saved-token" {
		t.Fatalf("expected saved token, got %q", got)
	}
}

func TestResolveToken_ErrorsWhenUnset(t *testing.T) {
	resetFlags(t)
	t.Setenv("SHEETPILOT_TOKEN", "")
	t.Setenv("SHEETPILOT_CONFIG_DIR", t.TempDir())

	_, err := resolveToken()
	if err == nil {
		t.Fatal("expected an error without any token source")
	}
	if !strings.Contains(err.Error(), "set-token") {
		t.Fatalf("error should name the fix, got %q", err.Error())
	}
}

func TestResolveGeminiKey_EnvFallback(t *testing.T) {
	resetFlags(t)
	t.Setenv("GEMINI_API_KEY", "env-key")

	got, err := resolveGeminiKey()
	if err != nil {
		t.Fatalf("resolveGeminiKey returned error: %v", err)
	}
	if got != "env-key" {
		t.Fatalf("expected env key, got %q", got)
	}
}

func TestResolvePolicy_Strict(t *testing.T) {
	resetFlags(t)
	strictColumns = true
	if !resolvePolicy().Strict {
		t.Fatal("expected strict policy when --strict-columns is set")
	}
}
