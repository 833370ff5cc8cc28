package client

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/shade-labs/shade-privacy-go/pkg/sdkerrors"
)

// ProofHandler is invoked synchronously for each proof event, in arrival
// order, once per successfully parsed frame.
type ProofHandler func(event map[string]interface{})

// ListenProofs opens a WebSocket to /ws/proofs/{intentID}/ and blocks,
// invoking onMessage for every inbound JSON text frame. Binary frames are
// ignored and non-JSON text frames are dropped with a warning.
//
// It returns nil when the peer closes the connection cleanly or ctx is
// cancelled, and a WebSocketError on any other transport failure. The
// connection is released on every exit path, including a panicking handler.
// There is no automatic reconnect, and a single connection must not be
// listened on concurrently.
func (c *Client) ListenProofs(ctx context.Context, intentID string, onMessage ProofHandler) error {
	if intentID == "" {
		return sdkerrors.NewValidationError("intent_id is required")
	}

	wsURL := c.proofsURL(intentID)
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return sdkerrors.NewWebSocketError("WebSocket connection failed", err)
	}
	defer func() { _ = conn.Close() }()

	c.logger.Sugar().Infow("Connected to WebSocket", "url", wsURL)

	// Cancellation has no protocol-level channel; closing the socket is the
	// only way to unblock the read below.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	// Liveness probe so an idle connection stays open.
	if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return sdkerrors.NewWebSocketError("failed to send ping", err)
	}

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Sugar().Infow("WebSocket connection closed", "intent_id", intentID)
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return sdkerrors.NewWebSocketError("WebSocket connection failed", err)
		}

		if messageType != websocket.TextMessage {
			continue
		}

		var event map[string]interface{}
		if err := json.Unmarshal(message, &event); err != nil {
			c.logger.Sugar().Warnw("Received non-JSON message", "message", string(message))
			continue
		}

		onMessage(event)
	}
}

// proofsURL maps the HTTP base URL onto the streaming endpoint for intentID.
func (c *Client) proofsURL(intentID string) string {
	wsBase := c.baseURL
	if strings.HasPrefix(wsBase, "https://") {
		wsBase = "wss://" + strings.TrimPrefix(wsBase, "https://")
	} else if strings.HasPrefix(wsBase, "http://") {
		wsBase = "ws://" + strings.TrimPrefix(wsBase, "http://")
	}
	return wsBase + "/ws/proofs/" + intentID + "/"
}
