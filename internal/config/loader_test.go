package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	def := DefaultConfig()
	if cfg.Audit.Rotate != def.Audit.Rotate {
		t.Errorf("expected default rotate %q, got %q", def.Audit.Rotate, cfg.Audit.Rotate)
	}
	if len(cfg.Servers) == 0 {
		t.Error("expected default servers configured")
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, map[string]any{
		"workspace": "/srv/apk-workspace",
		"servers": map[string]any{
			"jadx": map[string]any{
				"url":            "http://jadx.internal:9000/rpc",
				"timeoutSeconds": 45,
				"secretHeaders":  map[string]any{"Authorization": "jadx-token"},
			},
		},
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WorkspacePath() != "/srv/apk-workspace" {
		t.Errorf("expected workspace override, got %q", cfg.WorkspacePath())
	}
	s := cfg.Servers["jadx"]
	if s.URL != "http://jadx.internal:9000/rpc" {
		t.Errorf("expected server URL, got %q", s.URL)
	}
	if s.Timeout() != 45*time.Second {
		t.Errorf("expected 45s timeout, got %v", s.Timeout())
	}
	if s.SecretHeaders["Authorization"] != "jadx-token" {
		t.Errorf("expected secret header ref, got %v", s.SecretHeaders)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	cfg := DefaultConfig()
	cfg.Workspace = "/tmp/ws"
	cfg.Slack = SlackConfig{Enabled: true, TokenSecret: "slack-bot", Channel: "C123"}

	if err := Save(&cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Workspace != "/tmp/ws" {
		t.Errorf("workspace did not round-trip, got %q", loaded.Workspace)
	}
	if !loaded.Slack.Enabled || loaded.Slack.TokenSecret != "slack-bot" {
		t.Errorf("slack config did not round-trip: %+v", loaded.Slack)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config must be written 0600, got %v", info.Mode().Perm())
	}
}
