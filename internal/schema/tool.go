// Package schema contains the core contracts shared across toolgate packages.
// Concrete implementations live in their respective packages; this package is
// the single canonical source of truth for every interface definition.
package schema

import (
	"context"
	"encoding/json"
	"time"
)

// Tool is the interface every wrapped tool-server operation must satisfy.
// Execute is the only entry point the calling agent ever touches; the
// transport layer is never reached directly.
type Tool interface {
	// Name returns the stable "<server>.<operation>" identity used for
	// dispatch and audit records.
	Name() string
	Description() string
	// InputSchema returns the JSON Schema (as raw JSON bytes) for this
	// tool's input object.
	InputSchema() json.RawMessage
	Execute(ctx context.Context, input map[string]any) (*Result, error)
}

// Transport is the uniform remote-call primitive to a tool-provider server.
// It performs no retries; a call that does not settle within the bounded
// wait fails with a timeout-classified error rather than hanging.
type Transport interface {
	Call(ctx context.Context, server, operation string, args map[string]any) (map[string]any, error)
}

// SecretSource supplies credentials for transport client construction.
// Secret values are never logged and never appear in outputs or audit
// entries.
type SecretSource interface {
	GetSecret(name string) (string, error)
}

// AuditSink is the append-only store for confirmed mutation records.
// Entries are appended, never updated in place.
type AuditSink interface {
	Append(ctx context.Context, e AuditEntry) error
}

// Notifier delivers an out-of-band alert for a confirmed mutation.
// Delivery failures are logged by the caller, never fatal.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, e AuditEntry) error
}

// Result is what Execute returns on success: exactly one of Output or
// Preview is set. Output for completed calls, Preview for mutating calls
// that still need confirmation.
type Result struct {
	Output  *Output  `json:"output,omitempty"`
	Preview *Preview `json:"preview,omitempty"`
}

// Output is the only shape a completed call ever hands back to the caller.
// Fields holds the allow-listed, truncated projection of the raw response;
// EstimatedTokens is computed over the final serialized shape, never over
// the raw response.
type Output struct {
	Tool            string         `json:"tool"`
	Fields          map[string]any `json:"fields"`
	EstimatedTokens int            `json:"estimatedTokens"`
}

// Preview is returned when a mutating operation is invoked without
// confirmation. It never causes an external side effect.
type Preview struct {
	Tool                 string         `json:"tool"`
	Current              map[string]any `json:"current,omitempty"`
	Proposed             map[string]any `json:"proposed,omitempty"`
	RequiresConfirmation bool           `json:"requiresConfirmation"`
}

// AuditEntry records one confirmed mutating attempt, success or failure.
type AuditEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Tool      string         `json:"tool"`
	Operation string         `json:"operation"`
	Old       map[string]any `json:"old,omitempty"`
	New       map[string]any `json:"new,omitempty"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
}
