package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/toolgate/toolgate/internal/confirm"
	"github.com/toolgate/toolgate/internal/filter"
	"github.com/toolgate/toolgate/internal/gate"
	"github.com/toolgate/toolgate/internal/schema"
	"github.com/toolgate/toolgate/internal/toolerr"
	"github.com/toolgate/toolgate/internal/validate"
)

type mockTransport struct {
	mu       sync.Mutex
	calls    int
	lastArgs map[string]any
	response map[string]any
	err      error
}

func (m *mockTransport) Call(_ context.Context, server, operation string, args map[string]any) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastArgs = args
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

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

func readDescriptor() *Descriptor {
	return &Descriptor{
		Server:    "shodan",
		Operation: "host-info",
		Input: &validate.Object{Fields: []validate.Field{
			{Name: "ip", Type: validate.String, Required: true, Format: validate.FormatIP},
		}},
		Filter: filter.Spec{Allow: []string{"ip", "org"}, TextCeiling: 2000},
	}
}

func renameDescriptor() *Descriptor {
	return &Descriptor{
		Server:    "jadx",
		Operation: "rename-class",
		Input: &validate.Object{Fields: []validate.Field{
			{Name: "class_name", Type: validate.String, Required: true, Format: validate.FormatIdentifier},
			{Name: "new_name", Type: validate.String, Required: true, Format: validate.FormatIdentifier},
		}},
		Checks:   []gate.Check{gate.ReservedIdentifier("new_name", gate.JavaReserved)},
		Filter:   filter.Spec{Allow: []string{"result"}, TextCeiling: 2000},
		Mutating: true,
		Preview: func(args map[string]any) (map[string]any, map[string]any) {
			return map[string]any{"class_name": args["class_name"]},
				map[string]any{"class_name": args["new_name"]}
		},
	}
}

func newTestEngine(t *testing.T, transport *mockTransport, descs ...*Descriptor) (*Engine, *memorySink) {
	t.Helper()
	reg := NewRegistry()
	for _, d := range descs {
		if err := reg.Register(d); err != nil {
			t.Fatalf("register %s: %v", d.Name(), err)
		}
	}
	sink := &memorySink{}
	return New(reg, transport, confirm.NewMachine(sink)), sink
}

func TestExecute_UnknownTool(t *testing.T) {
	tr := &mockTransport{}
	eng, _ := newTestEngine(t, tr)

	_, err := eng.Execute(context.Background(), "nope.missing", map[string]any{})
	if toolerr.KindOf(err) != toolerr.KindValidation {
		t.Fatalf("expected validation error for unknown tool, got: %v", err)
	}
	if tr.calls != 0 {
		t.Errorf("transport must not be reached, got %d calls", tr.calls)
	}
}

func TestExecute_SchemaClosure(t *testing.T) {
	tr := &mockTransport{response: map[string]any{"ip": "8.8.8.8"}}
	eng, _ := newTestEngine(t, tr, readDescriptor())

	_, err := eng.Execute(context.Background(), "shodan.host-info", map[string]any{
		"ip":    "8.8.8.8",
		"extra": "field",
	})
	if toolerr.KindOf(err) != toolerr.KindValidation {
		t.Fatalf("expected validation error for unknown field, got: %v", err)
	}
	if tr.calls != 0 {
		t.Errorf("transport must not be reached, got %d calls", tr.calls)
	}
}

func TestExecute_ReadToolSuccess(t *testing.T) {
	tr := &mockTransport{response: map[string]any{
		"ip":      "8.8.8.8",
		"org":     "Google LLC",
		"_shodan": map[string]any{"crawler": "x"},
	}}
	eng, sink := newTestEngine(t, tr, readDescriptor())

	res, err := eng.Execute(context.Background(), "shodan.host-info", map[string]any{"ip": "8.8.8.8"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := res.Output
	if out == nil {
		t.Fatal("expected output, got preview")
	}
	if out.Fields["ip"] != "8.8.8.8" {
		t.Errorf("expected ip echoed, got %v", out.Fields["ip"])
	}
	if _, ok := out.Fields["_shodan"]; ok {
		t.Error("internal fields must be stripped")
	}
	if out.EstimatedTokens <= 0 {
		t.Errorf("expected estimatedTokens > 0, got %d", out.EstimatedTokens)
	}
	if len(sink.entries) != 0 {
		t.Errorf("read-only calls must not be audited, got %d entries", len(sink.entries))
	}
}

func TestExecute_NoSideEffectWithoutConfirmation(t *testing.T) {
	for _, input := range []map[string]any{
		{"class_name": "a.b.C", "new_name": "a.b.Decoded"},
		{"class_name": "a.b.C", "new_name": "a.b.Decoded", "confirmed": false},
	} {
		tr := &mockTransport{}
		eng, sink := newTestEngine(t, tr, renameDescriptor())

		res, err := eng.Execute(context.Background(), "jadx.rename-class", input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Preview == nil || !res.Preview.RequiresConfirmation {
			t.Fatalf("expected preview with requiresConfirmation, got %+v", res)
		}
		if tr.calls != 0 {
			t.Fatalf("transport must receive zero calls without confirmation, got %d", tr.calls)
		}
		if len(sink.entries) != 0 {
			t.Errorf("preview must not be audited, got %d entries", len(sink.entries))
		}
	}
}

func TestExecute_ConfirmedMutationAuditedOnce(t *testing.T) {
	tr := &mockTransport{response: map[string]any{"result": "renamed"}}
	eng, sink := newTestEngine(t, tr, renameDescriptor())

	res, err := eng.Execute(context.Background(), "jadx.rename-class", map[string]any{
		"class_name": "a.b.C",
		"new_name":   "a.b.Decoded",
		"confirmed":  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output == nil {
		t.Fatal("expected output after confirmed execution")
	}
	if tr.calls != 1 {
		t.Fatalf("expected one transport call, got %d", tr.calls)
	}
	if _, ok := tr.lastArgs["confirmed"]; ok {
		t.Error("confirmed flag must not be forwarded to the server")
	}
	if len(sink.entries) != 1 || !sink.entries[0].Success {
		t.Fatalf("expected one successful audit entry, got %+v", sink.entries)
	}
}

func TestExecute_ConfirmedFailureAudited(t *testing.T) {
	tr := &mockTransport{err: toolerr.Tool("jadx.rename-class", "rename rejected by decompiler")}
	eng, sink := newTestEngine(t, tr, renameDescriptor())

	_, err := eng.Execute(context.Background(), "jadx.rename-class", map[string]any{
		"class_name": "a.b.C",
		"new_name":   "a.b.Decoded",
		"confirmed":  true,
	})
	if toolerr.KindOf(err) != toolerr.KindTool {
		t.Fatalf("expected tool error propagated, got: %v", err)
	}
	if len(sink.entries) != 1 || sink.entries[0].Success {
		t.Fatalf("expected one failed audit entry, got %+v", sink.entries)
	}
}

func TestExecute_SecurityRejectionBeforeTransport(t *testing.T) {
	tr := &mockTransport{}
	eng, _ := newTestEngine(t, tr, renameDescriptor())

	_, err := eng.Execute(context.Background(), "jadx.rename-class", map[string]any{
		"class_name": "a.b.C",
		"new_name":   "class",
		"confirmed":  true,
	})
	if toolerr.KindOf(err) != toolerr.KindSecurity {
		t.Fatalf("expected security rejection, got: %v", err)
	}
	if tr.calls != 0 {
		t.Errorf("transport must not be reached after rejection, got %d calls", tr.calls)
	}
}

func TestExecute_TimeoutKindPropagated(t *testing.T) {
	tr := &mockTransport{err: toolerr.Timeout("shodan.host-info", "call did not settle", nil)}
	eng, _ := newTestEngine(t, tr, readDescriptor())

	_, err := eng.Execute(context.Background(), "shodan.host-info", map[string]any{"ip": "8.8.8.8"})
	if toolerr.KindOf(err) != toolerr.KindTimeout {
		t.Fatalf("expected timeout kind, got: %v", err)
	}
}

func TestExecuteMany_Independent(t *testing.T) {
	tr := &mockTransport{response: map[string]any{"ip": "8.8.8.8", "org": "Google LLC"}}
	eng, _ := newTestEngine(t, tr, readDescriptor())

	reqs := []BatchRequest{
		{Tool: "shodan.host-info", Input: map[string]any{"ip": "8.8.8.8"}},
		{Tool: "shodan.host-info", Input: map[string]any{"ip": "bogus"}},
		{Tool: "shodan.host-info", Input: map[string]any{"ip": "1.1.1.1"}},
	}
	results := eng.ExecuteMany(context.Background(), reqs, 2)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("valid requests must succeed: %v, %v", results[0].Err, results[2].Err)
	}
	if toolerr.KindOf(results[1].Err) != toolerr.KindValidation {
		t.Errorf("invalid request must fail validation, got: %v", results[1].Err)
	}
}

func TestRegister_Rules(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(&Descriptor{Operation: "x", Input: &validate.Object{}}); err == nil {
		t.Error("expected rejection of descriptor without server")
	}
	if err := reg.Register(&Descriptor{Server: "s", Operation: "x"}); err == nil {
		t.Error("expected rejection of descriptor without input schema")
	}
	if err := reg.Register(&Descriptor{Server: "s", Operation: "x", Input: &validate.Object{}, Mutating: true}); err == nil {
		t.Error("expected rejection of mutating descriptor without Preview")
	}

	d := readDescriptor()
	if err := reg.Register(d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := reg.Register(readDescriptor()); err == nil {
		t.Error("expected duplicate rejection")
	}
}

func TestRegister_MutatingGetsConfirmedField(t *testing.T) {
	reg := NewRegistry()
	d := renameDescriptor()
	if err := reg.Register(d); err != nil {
		t.Fatal(err)
	}

	found := false
	for _, f := range d.Input.Fields {
		if f.Name == "confirmed" && f.Type == validate.Bool {
			found = true
		}
	}
	if !found {
		t.Error("expected confirmed field appended to mutating input schema")
	}
}
