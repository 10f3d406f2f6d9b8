package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultsApplyWhenNothingIsSet(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvAPIKeyLegacy, "")
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvModel, "")
	t.Setenv(EnvTimeout, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Model != "gemini-2.0-flash" {
		t.Errorf("Unexpected default model %q", cfg.Model)
	}
	if cfg.Timeout != 2*time.Minute {
		t.Errorf("Unexpected default timeout %v", cfg.Timeout)
	}
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvModel, "gemini-2.0-pro")
	t.Setenv(EnvTimeout, "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.APIKey != "env-key" {
		t.Errorf("Expected env-key, got %q", cfg.APIKey)
	}
	if cfg.Model != "gemini-2.0-pro" {
		t.Errorf("Expected the env model, got %q", cfg.Model)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Expected 30s, got %v", cfg.Timeout)
	}
}

func TestLegacyAPIKeyVariableIsHonored(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvAPIKeyLegacy, "legacy-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.APIKey != "legacy-key" {
		t.Errorf("Expected legacy-key, got %q", cfg.APIKey)
	}
}

func TestPrimaryKeyWinsOverLegacy(t *testing.T) {
	t.Setenv(EnvAPIKey, "primary")
	t.Setenv(EnvAPIKeyLegacy, "legacy")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.APIKey != "primary" {
		t.Errorf("Expected primary, got %q", cfg.APIKey)
	}
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "googleai.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return path
}

func TestFileOverlaysDefaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvAPIKeyLegacy, "")
	t.Setenv(EnvModel, "")

	path := writeConfigFile(t, `
api_key: file-key
model: gemini-2.0-flash-lite
timeout: 45s
generation:
  temperature: 0.2
  max_output_tokens: 512
safety:
  - category: HARM_CATEGORY_HARASSMENT
    threshold: BLOCK_ONLY_HIGH
`)
	cfg, err := Load(WithFile(path))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.APIKey != "file-key" || cfg.Model != "gemini-2.0-flash-lite" {
		t.Errorf("File values not applied: %+v", cfg)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("Expected 45s, got %v", cfg.Timeout)
	}
	if cfg.Generation.Temperature == nil || *cfg.Generation.Temperature != 0.2 {
		t.Errorf("Generation defaults not applied: %+v", cfg.Generation)
	}
	if len(cfg.Safety) != 1 || cfg.Safety[0].Threshold != "BLOCK_ONLY_HIGH" {
		t.Errorf("Safety defaults not applied: %+v", cfg.Safety)
	}
}

func TestEnvironmentWinsOverFile(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvModel, "")

	path := writeConfigFile(t, "api_key: file-key\n")
	cfg, err := Load(WithFile(path))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.APIKey != "env-key" {
		t.Errorf("Expected the environment to win, got %q", cfg.APIKey)
	}
}

func TestExplicitOptionWinsOverEverything(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")

	path := writeConfigFile(t, "api_key: file-key\n")
	cfg, err := Load(WithFile(path), WithAPIKey("option-key"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.APIKey != "option-key" {
		t.Errorf("Expected the option to win, got %q", cfg.APIKey)
	}
}

func TestMissingFileFailsLoad(t *testing.T) {
	if _, err := Load(WithFile("/nonexistent/googleai.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestMalformedTimeoutInFileFailsLoad(t *testing.T) {
	path := writeConfigFile(t, "timeout: banana\n")
	if _, err := Load(WithFile(path)); err == nil {
		t.Error("Expected an error for a malformed timeout")
	}
}
