package bootstrap

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"SERVER_ADDR", "OPENAI_BASE_URL", "DESCRIPTION_MODEL", "IMAGE_MODEL", "REMOTE_TIMEOUT", "REDIS_ADDR", "VERIFICATION_ADDR", "SESSION_TTL"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	if cfg.ServerAddr != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.ServerAddr)
	}
	if cfg.DescriptionModel != "gpt-4o" {
		t.Errorf("expected gpt-4o, got %s", cfg.DescriptionModel)
	}
	if cfg.ImageModel != "dall-e-3" {
		t.Errorf("expected dall-e-3, got %s", cfg.ImageModel)
	}
	if cfg.RemoteTimeout != 120*time.Second {
		t.Errorf("expected 120s, got %v", cfg.RemoteTimeout)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("expected no redis by default, got %s", cfg.RedisAddr)
	}
	if cfg.VerificationAddr != ":8081" {
		t.Errorf("expected :8081, got %s", cfg.VerificationAddr)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("expected 24h, got %v", cfg.SessionTTL)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9000")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("REMOTE_TIMEOUT", "30s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("VERIFICATION_PATH", "/verify.txt")

	cfg := LoadConfig()
	if cfg.ServerAddr != ":9000" {
		t.Errorf("expected :9000, got %s", cfg.ServerAddr)
	}
	if cfg.OpenAIAPIKey != "sk-env" {
		t.Errorf("expected sk-env, got %s", cfg.OpenAIAPIKey)
	}
	if cfg.RemoteTimeout != 30*time.Second {
		t.Errorf("expected 30s, got %v", cfg.RemoteTimeout)
	}
	if cfg.RedisDB != 2 {
		t.Errorf("expected db 2, got %d", cfg.RedisDB)
	}
	if !cfg.CookieSecure {
		t.Error("expected secure cookies")
	}
	if cfg.VerificationPath != "/verify.txt" {
		t.Errorf("expected /verify.txt, got %s", cfg.VerificationPath)
	}
}

func TestGetEnvHelpers_InvalidValues(t *testing.T) {
	t.Setenv("TEST_INT", "abc")
	t.Setenv("TEST_DURATION", "soon")

	if v := getEnvInt("TEST_INT", 7); v != 7 {
		t.Errorf("expected fallback 7, got %d", v)
	}
	if v := getEnvDuration("TEST_DURATION", time.Minute); v != time.Minute {
		t.Errorf("expected fallback 1m, got %v", v)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]string{
		"debug": "DEBUG",
		"warn":  "WARN",
		"error": "ERROR",
		"info":  "INFO",
		"":      "INFO",
	}
	for in, expected := range tests {
		if got := parseLogLevel(in).String(); got != expected {
			t.Errorf("parseLogLevel(%q): expected %s, got %s", in, expected, got)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{VerificationFile: "verify.txt"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error without api key")
	}

	cfg.OpenAIAPIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.VerificationFile = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error without verification file")
	}
}
