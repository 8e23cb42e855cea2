// Package transport implements the uniform remote-call primitive to the
// tool-provider servers. One narrow operation: Call(server, operation, args).
// No retries happen here; retry policy, if any, belongs to the caller.
//
// Two wire variants are supported, selected by the server URL scheme:
// http(s) posts one JSON-RPC 2.0 request per call, ws(s) keeps a persistent
// connection and correlates responses by request id.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/toolgate/toolgate/internal/schema"
	"github.com/toolgate/toolgate/internal/toolerr"
)

// DefaultTimeout bounds a call when the server config does not set one.
const DefaultTimeout = 30 * time.Second

// ServerConfig describes how to reach one tool-provider server.
type ServerConfig struct {
	URL     string            // http(s):// or ws(s)://
	Headers map[string]string // static headers
	// SecretHeaders maps header name to secret name; values are resolved
	// through the SecretSource at client construction and never logged.
	SecretHeaders map[string]string
	Timeout       time.Duration
}

// Client routes calls to named servers. Safe for concurrent use; each
// invocation is independent and the client holds no per-call state.
type Client struct {
	servers map[string]ServerConfig
	secrets schema.SecretSource

	httpClient *http.Client
	nextID     atomic.Int64

	mu      sync.Mutex
	wsConns map[string]*wsConn
}

var _ schema.Transport = (*Client)(nil)

// New builds a Client over the configured servers.
func New(servers map[string]ServerConfig, secrets schema.SecretSource) *Client {
	return &Client{
		servers:    servers,
		secrets:    secrets,
		httpClient: &http.Client{},
		wsConns:    make(map[string]*wsConn),
	}
}

type rpcRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int64          `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     json.Number     `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Call performs the remote call and returns the raw, untyped result. Errors
// are classified before they leave this package: connection failures and
// bad statuses as transport errors, bounded-wait expiry as timeouts, and
// JSON-RPC error objects as tool-reported errors with the tool's own
// message preserved.
func (c *Client) Call(ctx context.Context, server, operation string, args map[string]any) (map[string]any, error) {
	name := server + "." + operation
	cfg, ok := c.servers[server]
	if !ok {
		return nil, toolerr.Transport(name, fmt.Sprintf("unknown server %q", server), nil)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  operation,
		Params:  args,
	}

	var (
		resp *rpcResponse
		err  error
	)
	if strings.HasPrefix(cfg.URL, "ws://") || strings.HasPrefix(cfg.URL, "wss://") {
		resp, err = c.callWS(callCtx, server, cfg, req)
	} else {
		resp, err = c.callHTTP(callCtx, name, cfg, req)
	}
	if err != nil {
		return nil, c.classify(name, callCtx, err)
	}
	if resp.Error != nil {
		return nil, toolerr.Tool(name, resp.Error.Message)
	}

	var result map[string]any
	if len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, &result); err != nil {
			return nil, toolerr.Transport(name, "malformed result payload", err)
		}
	}
	return result, nil
}

// classify maps a wire-level failure to its error kind. A call that did not
// settle within the bounded wait is a timeout, everything else a transport
// failure.
func (c *Client) classify(name string, ctx context.Context, err error) error {
	if k := toolerr.KindOf(err); k != "" {
		return err
	}
	var netErr net.Error
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return toolerr.Timeout(name, "call did not settle within bounded wait", err)
	default:
		return toolerr.Transport(name, err.Error(), err)
	}
}

func (c *Client) callHTTP(ctx context.Context, name string, cfg ServerConfig, req rpcRequest) (*rpcResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if err := c.applyHeaders(httpReq.Header.Set, cfg); err != nil {
		return nil, err
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, toolerr.Transport(name, fmt.Sprintf("server returned HTTP %d", httpResp.StatusCode), nil)
	}

	var resp rpcResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) applyHeaders(set func(k, v string), cfg ServerConfig) error {
	for k, v := range cfg.Headers {
		set(k, v)
	}
	for header, secretName := range cfg.SecretHeaders {
		v, err := c.secrets.GetSecret(secretName)
		if err != nil {
			return fmt.Errorf("resolve secret for header %s: %w", header, err)
		}
		set(header, v)
	}
	return nil
}
