package bootstrap

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eleven-am/aura-studio/internal/verification"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

const testVerificationName = "tiktokK3jS5DxkwT6dmdBmroH3Xyp31Gvu90Me.txt"

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, testVerificationName)
	if err := os.WriteFile(file, []byte("verify-me\n"), 0o644); err != nil {
		t.Fatalf("write verification file: %v", err)
	}
	return &Config{
		ServerAddr:       "127.0.0.1:0",
		LogLevel:         "error",
		OpenAIAPIKey:     "sk-test",
		OpenAIBaseURL:    "http://127.0.0.1:1",
		DescriptionModel: "gpt-4o",
		ImageModel:       "dall-e-3",
		RemoteTimeout:    time.Second,
		TempDir:          filepath.Join(dir, "uploads"),
		MaxUploadBytes:   1 << 20,
		HMACKey:          []byte("test-key"),
		SessionTTL:       time.Hour,
		VerificationAddr: "127.0.0.1:0",
		VerificationFile: file,
	}
}

func TestModule_Validates(t *testing.T) {
	if err := fx.ValidateApp(fx.Provide(LoadConfig), Module); err != nil {
		t.Fatalf("production graph does not resolve: %v", err)
	}
	if err := fx.ValidateApp(fx.Supply(testConfig(t)), Module); err != nil {
		t.Fatalf("graph does not resolve: %v", err)
	}
}

func TestModule_StartsVerificationFirst(t *testing.T) {
	var responder *verification.Responder
	app := fxtest.New(t,
		fx.NopLogger,
		fx.Supply(testConfig(t)),
		Module,
		fx.Populate(&responder),
	)

	app.RequireStart()
	if responder.State() != verification.StateListening {
		t.Fatalf("expected verification responder listening, got %s", responder.State())
	}

	resp, err := http.Get("http://" + responder.Addr() + "/" + testVerificationName)
	if err != nil {
		t.Fatalf("GET verification file: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !bytes.Equal(body, []byte("verify-me\n")) {
		t.Errorf("unexpected verification response %d %q", resp.StatusCode, body)
	}

	app.RequireStop()
	if responder.State() != verification.StateIdle {
		t.Errorf("expected idle after stop, got %s", responder.State())
	}
}

func TestModule_RejectsMissingAPIKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.OpenAIAPIKey = ""

	app := fx.New(fx.NopLogger, fx.Supply(cfg), Module)
	if app.Err() == nil {
		t.Fatal("expected the app to fail without an api key")
	}
}
