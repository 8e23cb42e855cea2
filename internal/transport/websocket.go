package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// wsConn is one persistent websocket connection to a tool-provider server.
// Requests are serialized under mu and responses are read in-line until the
// matching id arrives, the same correlation scheme the server speaks over
// stdio-style streams.
type wsConn struct {
	conn *websocket.Conn
}

// wsFor returns the live connection for server, dialing on first use.
func (c *Client) wsFor(ctx context.Context, server string, cfg ServerConfig) (*wsConn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if wc, ok := c.wsConns[server]; ok {
		return wc, nil
	}

	header := http.Header{}
	if err := c.applyHeaders(header.Set, cfg); err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.URL, header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", server, err)
	}
	wc := &wsConn{conn: conn}
	c.wsConns[server] = wc
	return wc, nil
}

func (c *Client) callWS(ctx context.Context, server string, cfg ServerConfig, req rpcRequest) (*rpcResponse, error) {
	wc, err := c.wsFor(ctx, server, cfg)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		deadline = time.Now().Add(DefaultTimeout)
	}
	_ = wc.conn.SetWriteDeadline(deadline)
	_ = wc.conn.SetReadDeadline(deadline)

	if err := wc.conn.WriteJSON(req); err != nil {
		c.dropWS(server)
		return nil, err
	}

	// Read frames until the response with our id arrives; skip server
	// notifications and stale replies.
	for {
		select {
		case <-ctx.Done():
			c.dropWS(server)
			return nil, ctx.Err()
		default:
		}

		_, data, err := wc.conn.ReadMessage()
		if err != nil {
			c.dropWS(server)
			return nil, err
		}
		var resp rpcResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			continue
		}
		id, err := resp.ID.Int64()
		if err != nil || id != req.ID {
			continue
		}
		return &resp, nil
	}
}

// dropWS discards a connection after a wire error so the next call redials.
// Caller holds mu.
func (c *Client) dropWS(server string) {
	if wc, ok := c.wsConns[server]; ok {
		_ = wc.conn.Close()
		delete(c.wsConns, server)
	}
}

// Close shuts down any persistent connections.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for server, wc := range c.wsConns {
		_ = wc.conn.Close()
		delete(c.wsConns, server)
	}
}
