package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LLM_PROVIDER", "LLM_MODEL",
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadConfig_DefaultsWhenFileMissing(t *testing.T) {
	clearLLMEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Provider != ProviderOllama {
		t.Errorf("provider = %q, want ollama", cfg.Provider)
	}
	if cfg.Model != "qwen2.5:7b" {
		t.Errorf("model = %q", cfg.Model)
	}
	if cfg.API.Port != 5001 {
		t.Errorf("port = %d, want 5001", cfg.API.Port)
	}
	if cfg.Agent.MaxWaitSeconds != 30 {
		t.Errorf("max_wait_seconds = %g, want 30", cfg.Agent.MaxWaitSeconds)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	clearLLMEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"provider": "openai",
		"model": "gpt-4o-mini",
		"api_key": "sk-test",
		"api": {"port": 8080},
		"agent": {"max_wait_seconds": 10}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Provider != ProviderOpenAI || cfg.Model != "gpt-4o-mini" {
		t.Errorf("got provider=%q model=%q", cfg.Provider, cfg.Model)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("port = %d", cfg.API.Port)
	}
	if cfg.Agent.MaxWaitSeconds != 10 {
		t.Errorf("max_wait_seconds = %g", cfg.Agent.MaxWaitSeconds)
	}
}

func TestLoadConfig_EnvKeyImpliesProvider(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Provider != ProviderAnthropic {
		t.Errorf("provider = %q, want anthropic (implied by key env)", cfg.Provider)
	}
	if cfg.APIKey != "sk-ant-test" {
		t.Errorf("api_key = %q", cfg.APIKey)
	}
}

func TestLoadConfig_UnknownProviderRejected(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("LLM_PROVIDER", "skynet")

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("unknown provider should fail validation")
	}
}

func TestLoadConfig_CloudProviderRequiresKey(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("LLM_PROVIDER", "openai")

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("openai without api_key should fail validation")
	}
}

func TestSanitized_MasksKey(t *testing.T) {
	cfg := &Config{Provider: "openai", Model: "gpt-4o-mini", APIKey: "sk-secret"}
	out := cfg.Sanitized()
	if out["api_key"] != "***hidden***" {
		t.Errorf("api_key = %v, want masked", out["api_key"])
	}

	cfg.APIKey = ""
	out = cfg.Sanitized()
	if out["api_key"] != "" {
		t.Errorf("empty key should stay empty, got %v", out["api_key"])
	}
}
