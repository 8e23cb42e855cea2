// Package confirm implements the two-step protocol for mutating operations:
// an unconfirmed call halts in a side-effect-free preview, and only a call
// repeated with confirmed=true reaches the transport. Every confirmed
// attempt writes exactly one audit entry, success or failure, before
// control returns to the caller.
package confirm

import (
	"context"
	"log/slog"
	"time"

	"github.com/toolgate/toolgate/internal/schema"
)

// State names the machine positions; Preview and Succeeded/Failed are
// terminal for an invocation.
type State string

const (
	StateUnconfirmed State = "unconfirmed"
	StatePreview     State = "preview"
	StateConfirmed   State = "confirmed"
	StateExecuting   State = "executing"
	StateSucceeded   State = "succeeded"
	StateFailed      State = "failed"
)

// ExecFunc performs the side-effecting transport call.
type ExecFunc func(ctx context.Context) (map[string]any, error)

// Request describes one mutating invocation.
type Request struct {
	Tool      string // "<server>.<operation>"
	Operation string // operation kind recorded in the audit entry
	Confirmed bool
	// Current and Proposed carry the identity fields the confirmed call
	// would change, shown in the preview and recorded in the audit entry.
	Current  map[string]any
	Proposed map[string]any
}

// Machine drives mutating invocations through the confirmation protocol.
// It is stateless between invocations; the audit sink is the only shared
// collaborator.
type Machine struct {
	audit     schema.AuditSink
	notifiers []schema.Notifier
}

// NewMachine wires the machine to its audit sink and optional alert
// notifiers.
func NewMachine(audit schema.AuditSink, notifiers ...schema.Notifier) *Machine {
	return &Machine{audit: audit, notifiers: notifiers}
}

// Run executes one invocation. Unconfirmed requests return a preview and
// never invoke exec. Confirmed requests invoke exec and then append an
// audit entry whose success flag matches the outcome; the entry is written
// under a non-cancelable context because the external side effect has
// already been set in motion even if the caller abandoned the wait.
func (m *Machine) Run(ctx context.Context, req Request, exec ExecFunc) (map[string]any, *schema.Preview, error) {
	if !req.Confirmed {
		return nil, &schema.Preview{
			Tool:                 req.Tool,
			Current:              req.Current,
			Proposed:             req.Proposed,
			RequiresConfirmation: true,
		}, nil
	}

	raw, execErr := exec(ctx)

	entry := schema.AuditEntry{
		Timestamp: time.Now().UTC(),
		Tool:      req.Tool,
		Operation: req.Operation,
		Old:       req.Current,
		New:       req.Proposed,
		Success:   execErr == nil,
	}
	if execErr != nil {
		entry.Error = execErr.Error()
	}

	auditCtx := context.WithoutCancel(ctx)
	if err := m.audit.Append(auditCtx, entry); err != nil {
		slog.Error("audit append failed", "tool", req.Tool, "err", err)
	}
	for _, n := range m.notifiers {
		if err := n.Notify(auditCtx, entry); err != nil {
			slog.Warn("mutation alert failed", "notifier", n.Name(), "tool", req.Tool, "err", err)
		}
	}

	if execErr != nil {
		return nil, nil, execErr
	}
	return raw, nil, nil
}
