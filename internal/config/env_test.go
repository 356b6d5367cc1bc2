package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.PyrightCmd != "pyright" {
		t.Errorf("unexpected default pyright cmd: %q", cfg.PyrightCmd)
	}
	if cfg.RequestTimeout != 5*time.Minute {
		t.Errorf("unexpected default gemini timeout: %v", cfg.RequestTimeout)
	}
	if cfg.OutDir != "out" {
		t.Errorf("unexpected default out dir: %q", cfg.OutDir)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("EUI_PYRIGHT_CMD", "basedpyright")
	t.Setenv("TTS_TIMEOUT", "30s")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.GeminiAPIKey != "test-key" {
		t.Errorf("api key not read from env: %q", cfg.GeminiAPIKey)
	}
	if cfg.PyrightCmd != "basedpyright" {
		t.Errorf("pyright cmd not read from env: %q", cfg.PyrightCmd)
	}
	if cfg.TTSTimeout != 30*time.Second {
		t.Errorf("tts timeout not parsed: %v", cfg.TTSTimeout)
	}
}
