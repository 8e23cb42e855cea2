package confirm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/toolgate/toolgate/internal/schema"
)

type memorySink struct {
	mu      sync.Mutex
	entries []schema.AuditEntry
}

func (m *memorySink) Append(_ context.Context, e schema.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

type countingNotifier struct {
	calls int
	last  schema.AuditEntry
}

func (n *countingNotifier) Name() string { return "counting" }
func (n *countingNotifier) Notify(_ context.Context, e schema.AuditEntry) error {
	n.calls++
	n.last = e
	return nil
}

func renameRequest(confirmed bool) Request {
	return Request{
		Tool:      "jadx.rename-class",
		Operation: "rename-class",
		Confirmed: confirmed,
		Current:   map[string]any{"class_name": "a.b.Obfuscated"},
		Proposed:  map[string]any{"class_name": "a.b.Decoded"},
	}
}

func TestRun_UnconfirmedReturnsPreviewWithoutExec(t *testing.T) {
	sink := &memorySink{}
	m := NewMachine(sink)

	execCalls := 0
	raw, preview, err := m.Run(context.Background(), renameRequest(false),
		func(ctx context.Context) (map[string]any, error) {
			execCalls++
			return nil, nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw != nil {
		t.Error("unconfirmed call must not produce a raw response")
	}
	if execCalls != 0 {
		t.Fatalf("unconfirmed call must never execute, got %d calls", execCalls)
	}
	if preview == nil || !preview.RequiresConfirmation {
		t.Fatalf("expected preview with requiresConfirmation, got %+v", preview)
	}
	if preview.Proposed["class_name"] != "a.b.Decoded" {
		t.Errorf("preview must carry the proposed identity fields, got %v", preview.Proposed)
	}
	if len(sink.entries) != 0 {
		t.Errorf("preview must not write audit entries, got %d", len(sink.entries))
	}
}

func TestRun_ConfirmedSuccessWritesOneEntry(t *testing.T) {
	sink := &memorySink{}
	notifier := &countingNotifier{}
	m := NewMachine(sink, notifier)

	raw, preview, err := m.Run(context.Background(), renameRequest(true),
		func(ctx context.Context) (map[string]any, error) {
			return map[string]any{"result": "renamed"}, nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if preview != nil {
		t.Error("confirmed call must not return a preview")
	}
	if raw["result"] != "renamed" {
		t.Errorf("expected raw response passed through, got %v", raw)
	}

	if len(sink.entries) != 1 {
		t.Fatalf("expected exactly one audit entry, got %d", len(sink.entries))
	}
	e := sink.entries[0]
	if !e.Success {
		t.Error("expected success=true")
	}
	if e.Tool != "jadx.rename-class" || e.Old["class_name"] != "a.b.Obfuscated" || e.New["class_name"] != "a.b.Decoded" {
		t.Errorf("entry missing identity fields: %+v", e)
	}
	if notifier.calls != 1 {
		t.Errorf("expected one alert, got %d", notifier.calls)
	}
}

func TestRun_ConfirmedFailureStillAudited(t *testing.T) {
	sink := &memorySink{}
	m := NewMachine(sink)

	boom := errors.New("server exploded")
	_, _, err := m.Run(context.Background(), renameRequest(true),
		func(ctx context.Context) (map[string]any, error) {
			return nil, boom
		})
	if !errors.Is(err, boom) {
		t.Fatalf("expected exec error propagated, got: %v", err)
	}

	if len(sink.entries) != 1 {
		t.Fatalf("expected exactly one audit entry on failure, got %d", len(sink.entries))
	}
	e := sink.entries[0]
	if e.Success {
		t.Error("expected success=false")
	}
	if e.Error != "server exploded" {
		t.Errorf("expected error text preserved, got %q", e.Error)
	}
}

func TestRun_AuditSurvivesCallerCancellation(t *testing.T) {
	sink := &memorySink{}
	m := NewMachine(sink)

	ctx, cancel := context.WithCancel(context.Background())
	_, _, err := m.Run(ctx, renameRequest(true),
		func(ctx context.Context) (map[string]any, error) {
			// The caller gives up while the side effect is in motion.
			cancel()
			return map[string]any{"result": "renamed"}, nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sink.entries) != 1 {
		t.Fatalf("audit entry must be written despite cancellation, got %d", len(sink.entries))
	}
}

type sinkWithCtxCheck struct {
	t       *testing.T
	entries int
}

func (s *sinkWithCtxCheck) Append(ctx context.Context, _ schema.AuditEntry) error {
	if err := ctx.Err(); err != nil {
		s.t.Errorf("audit context must not be canceled, got: %v", err)
	}
	s.entries++
	return nil
}

func TestRun_AuditContextNotCancelable(t *testing.T) {
	sink := &sinkWithCtxCheck{t: t}
	m := NewMachine(sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, _ = m.Run(ctx, renameRequest(true),
		func(ctx context.Context) (map[string]any, error) {
			return nil, context.Canceled
		})
	if sink.entries != 1 {
		t.Fatalf("expected one audit write, got %d", sink.entries)
	}
}
