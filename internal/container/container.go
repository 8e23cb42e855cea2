// Package container wires core toolgate services using go.uber.org/dig.
package container

import (
	"log/slog"

	"go.uber.org/dig"

	"github.com/toolgate/toolgate/internal/audit"
	"github.com/toolgate/toolgate/internal/config"
	"github.com/toolgate/toolgate/internal/confirm"
	"github.com/toolgate/toolgate/internal/engine"
	"github.com/toolgate/toolgate/internal/manifest"
	"github.com/toolgate/toolgate/internal/notify"
	"github.com/toolgate/toolgate/internal/schema"
	"github.com/toolgate/toolgate/internal/secrets"
	"github.com/toolgate/toolgate/internal/transport"
	"github.com/toolgate/toolgate/internal/wrappers"
)

// Container holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig
// directly.
type Container struct {
	engine   *engine.Engine
	auditLog *audit.Log
	rotator  *audit.Rotator
	client   *transport.Client
}

func (c *Container) Engine() *engine.Engine       { return c.engine }
func (c *Container) AuditLog() *audit.Log         { return c.auditLog }
func (c *Container) Rotator() *audit.Rotator      { return c.rotator }
func (c *Container) Transport() *transport.Client { return c.client }

// New builds and wires all core services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	providers := []any{
		func() *config.Config { return cfg },
		newSecretSource,
		newManifests,
		newTransport,
		newAuditLog,
		newRotator,
		newNotifiers,
		newMachine,
		newRegistry,
		newEngine,
	}
	for _, p := range providers {
		if err := d.Provide(p); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		eng *engine.Engine,
		log *audit.Log,
		rot *audit.Rotator,
		client *transport.Client,
	) {
		result = &Container{engine: eng, auditLog: log, rotator: rot, client: client}
	})
	return result, err
}

func newSecretSource(cfg *config.Config) schema.SecretSource {
	return secrets.New(cfg.Secrets)
}

func newManifests(cfg *config.Config) (*manifest.Set, error) {
	return manifest.Load(cfg.ManifestDir)
}

func newTransport(cfg *config.Config, src schema.SecretSource) *transport.Client {
	servers := make(map[string]transport.ServerConfig, len(cfg.Servers))
	for name, s := range cfg.Servers {
		servers[name] = transport.ServerConfig{
			URL:           s.URL,
			Headers:       s.Headers,
			SecretHeaders: s.SecretHeaders,
			Timeout:       s.Timeout(),
		}
	}
	return transport.New(servers, src)
}

func newAuditLog(cfg *config.Config) (*audit.Log, error) {
	return audit.NewLog(cfg.AuditPath())
}

// newRotator returns nil when rotation is disabled; callers must check.
func newRotator(cfg *config.Config, log *audit.Log) (*audit.Rotator, error) {
	if cfg.Audit.Rotate == "" {
		return nil, nil
	}
	return audit.NewRotator(log, cfg.Audit.Rotate)
}

func newNotifiers(cfg *config.Config, src schema.SecretSource) []schema.Notifier {
	var out []schema.Notifier

	if cfg.Slack.Enabled {
		token, err := src.GetSecret(cfg.Slack.TokenSecret)
		if err != nil {
			slog.Warn("slack notifier disabled", "err", err)
		} else {
			out = append(out, notify.NewSlackNotifier(token, cfg.Slack.Channel))
		}
	}
	if cfg.Telegram.Enabled {
		token, err := src.GetSecret(cfg.Telegram.TokenSecret)
		if err != nil {
			slog.Warn("telegram notifier disabled", "err", err)
		} else if n, err := notify.NewTelegramNotifier(token, cfg.Telegram.ChatID); err != nil {
			slog.Warn("telegram notifier disabled", "err", err)
		} else {
			out = append(out, n)
		}
	}
	return out
}

func newMachine(log *audit.Log, notifiers []schema.Notifier) *confirm.Machine {
	return confirm.NewMachine(log, notifiers...)
}

func newRegistry(cfg *config.Config, manifests *manifest.Set) (*engine.Registry, error) {
	return wrappers.All(cfg.WorkspacePath(), manifests)
}

func newEngine(reg *engine.Registry, client *transport.Client, machine *confirm.Machine) *engine.Engine {
	return engine.New(reg, client, machine)
}
