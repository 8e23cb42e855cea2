package engine

import (
	"context"
	"encoding/json"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/toolgate/toolgate/internal/confirm"
	"github.com/toolgate/toolgate/internal/filter"
	"github.com/toolgate/toolgate/internal/gate"
	"github.com/toolgate/toolgate/internal/schema"
	"github.com/toolgate/toolgate/internal/toolerr"
)

// Engine executes wrapper invocations. Safe for concurrent use: each
// invocation is a single call chain with no internal parallelism and no
// state shared with other invocations.
type Engine struct {
	registry  *Registry
	transport schema.Transport
	machine   *confirm.Machine
}

// New wires the engine.
func New(registry *Registry, transport schema.Transport, machine *confirm.Machine) *Engine {
	return &Engine{registry: registry, transport: transport, machine: machine}
}

// Registry exposes the registered descriptors for listings.
func (e *Engine) Registry() *Registry { return e.registry }

// Execute runs one invocation through the pipeline. The returned Result
// holds either the filtered output or, for an unconfirmed mutating call, a
// preview; every failure is a classified error.
func (e *Engine) Execute(ctx context.Context, name string, input map[string]any) (*schema.Result, error) {
	d := e.registry.Lookup(name)
	if d == nil {
		return nil, toolerr.Validation(name, "", "unknown tool")
	}

	args, err := d.Input.Apply(name, input)
	if err != nil {
		return nil, err
	}
	if err := gate.Run(name, args, d.Checks); err != nil {
		return nil, err
	}

	var raw map[string]any
	if d.Mutating {
		confirmed, _ := args["confirmed"].(bool)
		current, proposed := d.Preview(args)
		callArgs := withoutConfirmed(args)

		var preview *schema.Preview
		raw, preview, err = e.machine.Run(ctx, confirm.Request{
			Tool:      name,
			Operation: d.Operation,
			Confirmed: confirmed,
			Current:   current,
			Proposed:  proposed,
		}, func(ctx context.Context) (map[string]any, error) {
			return e.transport.Call(ctx, d.Server, d.Operation, callArgs)
		})
		if err != nil {
			return nil, err
		}
		if preview != nil {
			slog.Info("mutation preview issued", "tool", name)
			return &schema.Result{Preview: preview}, nil
		}
	} else {
		raw, err = e.transport.Call(ctx, d.Server, d.Operation, args)
		if err != nil {
			return nil, err
		}
	}

	out := filter.Apply(d.Filter, name, raw)
	slog.Debug("tool call completed", "tool", name, "estimated_tokens", out.EstimatedTokens)
	return &schema.Result{Output: out}, nil
}

// withoutConfirmed copies args minus the protocol flag, which is consumed
// here and never forwarded to the server.
func withoutConfirmed(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if k != "confirmed" {
			out[k] = v
		}
	}
	return out
}

// BatchRequest is one invocation in a fan-out.
type BatchRequest struct {
	Tool  string
	Input map[string]any
}

// BatchResult pairs a request with its outcome; requests are independent,
// one failure does not cancel the rest.
type BatchResult struct {
	Tool   string
	Result *schema.Result
	Err    error
}

// ExecuteMany runs the requests concurrently, at most limit in flight
// (limit <= 0 means unbounded; the framework itself imposes no cap).
func (e *Engine) ExecuteMany(ctx context.Context, reqs []BatchRequest, limit int) []BatchResult {
	results := make([]BatchResult, len(reqs))
	g := new(errgroup.Group)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			res, err := e.Execute(ctx, req.Tool, req.Input)
			results[i] = BatchResult{Tool: req.Tool, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// boundTool adapts a registered descriptor to the schema.Tool invocation
// surface exposed to the calling agent.
type boundTool struct {
	engine *Engine
	desc   *Descriptor
}

func (t *boundTool) Name() string                 { return t.desc.Name() }
func (t *boundTool) Description() string          { return t.desc.Description }
func (t *boundTool) InputSchema() json.RawMessage { return t.desc.Input.JSONSchema() }

func (t *boundTool) Execute(ctx context.Context, input map[string]any) (*schema.Result, error) {
	return t.engine.Execute(ctx, t.desc.Name(), input)
}

// Tools returns the invocation surface for every registered descriptor.
func (e *Engine) Tools() []schema.Tool {
	descs := e.registry.All()
	out := make([]schema.Tool, 0, len(descs))
	for _, d := range descs {
		out = append(out, &boundTool{engine: e, desc: d})
	}
	return out
}
