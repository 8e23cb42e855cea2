// Package config defines the toolgate configuration and its JSON loader.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// ServerConfig describes one tool-provider server endpoint.
type ServerConfig struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	// SecretHeaders maps header name to secret name; values resolve
	// through the secrets source, never from this file directly.
	SecretHeaders  map[string]string `json:"secretHeaders,omitempty"`
	TimeoutSeconds int               `json:"timeoutSeconds,omitempty"`
}

// Timeout returns the configured bounded wait, or zero for the default.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// SlackConfig configures the Slack mutation-alert notifier.
type SlackConfig struct {
	Enabled     bool   `json:"enabled"`
	TokenSecret string `json:"tokenSecret"` // secret name, not the token
	Channel     string `json:"channel"`
}

// TelegramConfig configures the Telegram mutation-alert notifier.
type TelegramConfig struct {
	Enabled     bool   `json:"enabled"`
	TokenSecret string `json:"tokenSecret"`
	ChatID      int64  `json:"chatId"`
}

// AuditConfig locates the audit sink and its rotation schedule.
type AuditConfig struct {
	Path string `json:"path,omitempty"`
	// Rotate is a standard 5-field cron expression; empty disables
	// rotation.
	Rotate string `json:"rotate,omitempty"`
}

// Config is the root configuration object.
type Config struct {
	Workspace   string                  `json:"workspace,omitempty"`
	Servers     map[string]ServerConfig `json:"servers,omitempty"`
	Audit       AuditConfig             `json:"audit,omitempty"`
	Slack       SlackConfig             `json:"slack,omitempty"`
	Telegram    TelegramConfig          `json:"telegram,omitempty"`
	ManifestDir string                  `json:"manifestDir,omitempty"`
	// Secrets is a fallback store; environment variables win.
	Secrets map[string]string `json:"secrets,omitempty"`
}

// DefaultConfig returns a runnable configuration pointing at local servers.
func DefaultConfig() Config {
	return Config{
		Workspace: filepath.Join(DataDir(), "workspace"),
		Servers: map[string]ServerConfig{
			"jadx":        {URL: "http://127.0.0.1:8650/rpc", TimeoutSeconds: 30},
			"shodan":      {URL: "http://127.0.0.1:8651/rpc", TimeoutSeconds: 20},
			"webresearch": {URL: "http://127.0.0.1:8652/rpc", TimeoutSeconds: 30},
		},
		Audit: AuditConfig{
			Path:   filepath.Join(DataDir(), "audit", "mutations.jsonl"),
			Rotate: "0 0 * * *",
		},
		ManifestDir: filepath.Join(DataDir(), "manifests"),
	}
}

// WorkspacePath returns the workspace root, falling back to the default.
func (c *Config) WorkspacePath() string {
	if c.Workspace != "" {
		return c.Workspace
	}
	return filepath.Join(DataDir(), "workspace")
}

// AuditPath returns the audit sink path, falling back to the default.
func (c *Config) AuditPath() string {
	if c.Audit.Path != "" {
		return c.Audit.Path
	}
	return filepath.Join(DataDir(), "audit", "mutations.jsonl")
}

// ConfigPath returns the default configuration file path:
// ~/.toolgate/config.json.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".toolgate/config.json"
	}
	return filepath.Join(home, ".toolgate", "config.json")
}

// DataDir returns the toolgate data directory: ~/.toolgate.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".toolgate"
	}
	return filepath.Join(home, ".toolgate")
}
