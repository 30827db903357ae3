package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/folio/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestDocumentsConfig_Extension(t *testing.T) {
	tests := []struct {
		ext     string
		wantErr bool
	}{
		{".md", false},
		{"markdown", false},
		{"", true},
		{".tar.gz", true},
		{"../md", true},
	}
	for _, tt := range tests {
		cfg := DocumentsConfig{Extension: tt.ext}
		if err := cfg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("Validate(%q) err = %v, wantErr %v", tt.ext, err, tt.wantErr)
		}
	}
}

func TestEventsConfig_NegativeThrottle(t *testing.T) {
	cfg := EventsConfig{OutlineThrottle: -time.Second}
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative throttle should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadYAMLWithEnv(t *testing.T) {
	t.Setenv("FOLIO_TEST_TOKEN", "s3cret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `app:
  log_level: debug
  http:
    port: 9090
library:
  path: /srv/docs
documents:
  extension: mdx
  default_toc: true
auth:
  mode: token
  token: ${FOLIO_TEST_TOKEN}
events:
  outline_throttle: 5s
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
	if cfg.App.HTTP.Port != 9090 {
		t.Errorf("port = %d", cfg.App.HTTP.Port)
	}
	if cfg.Library.Path != "/srv/docs" || !cfg.Library.Watch {
		t.Errorf("library = %+v", cfg.Library)
	}
	if cfg.Documents.Extension != "mdx" || !cfg.Documents.DefaultTOC {
		t.Errorf("documents = %+v", cfg.Documents)
	}
	if cfg.Auth.Token != "s3cret" {
		t.Errorf("token = %q, want s3cret", cfg.Auth.Token)
	}
	if cfg.Events.OutlineThrottle != 5*time.Second {
		t.Errorf("throttle = %v", cfg.Events.OutlineThrottle)
	}
	if cfg.SQLite.Path != "./folio.db" {
		t.Errorf("sqlite path = %q, want default", cfg.SQLite.Path)
	}
}
