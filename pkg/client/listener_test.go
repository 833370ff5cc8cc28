package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shade-labs/shade-privacy-go/pkg/sdkerrors"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// newProofServer runs script against each websocket connection made to
// /ws/proofs/{id}/ and returns a client wired to it.
func newProofServer(t *testing.T, script func(conn *websocket.Conn)) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer func() { _ = conn.Close() }()
		script(conn)
	}))
	t.Cleanup(server.Close)
	return newTestClient(t, server.URL)
}

func closeCleanly(conn *websocket.Conn) {
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	// Give the peer a moment to observe the close frame before the TCP
	// connection drops.
	time.Sleep(50 * time.Millisecond)
}

func TestListenProofs_SingleEventThenCleanClose(t *testing.T) {
	client := newProofServer(t, func(conn *websocket.Conn) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"intentId":"int_1","status":"proof_ready"}`)))
		closeCleanly(conn)
	})

	var events []map[string]interface{}
	err := client.ListenProofs(context.Background(), "int_1", func(event map[string]interface{}) {
		events = append(events, event)
	})

	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "proof_ready", events[0]["status"])
}

func TestListenProofs_InvalidFrameDroppedValidDelivered(t *testing.T) {
	client := newProofServer(t, func(conn *websocket.Conn) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json at all")))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"status":"proof_ready"}`)))
		closeCleanly(conn)
	})

	var events []map[string]interface{}
	err := client.ListenProofs(context.Background(), "int_2", func(event map[string]interface{}) {
		events = append(events, event)
	})

	require.NoError(t, err)
	// The malformed frame is dropped, not fatal: exactly one delivery.
	require.Len(t, events, 1)
	require.Equal(t, "proof_ready", events[0]["status"])
}

func TestListenProofs_BinaryFramesIgnored(t *testing.T) {
	client := newProofServer(t, func(conn *websocket.Conn) {
		require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02}))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"status":"proof_ready"}`)))
		closeCleanly(conn)
	})

	var count int
	err := client.ListenProofs(context.Background(), "int_3", func(event map[string]interface{}) {
		count++
	})

	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestListenProofs_EventsDeliveredInOrder(t *testing.T) {
	client := newProofServer(t, func(conn *websocket.Conn) {
		for _, seq := range []string{`{"seq":1}`, `{"seq":2}`, `{"seq":3}`} {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(seq)))
		}
		closeCleanly(conn)
	})

	var seqs []float64
	err := client.ListenProofs(context.Background(), "int_4", func(event map[string]interface{}) {
		seqs = append(seqs, event["seq"].(float64))
	})

	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3}, seqs)
}

func TestListenProofs_AbnormalCloseIsError(t *testing.T) {
	client := newProofServer(t, func(conn *websocket.Conn) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"status":"proof_ready"}`)))
		// Drop the TCP connection with no close handshake.
		_ = conn.UnderlyingConn().Close()
	})

	err := client.ListenProofs(context.Background(), "int_5", func(event map[string]interface{}) {})
	require.Error(t, err)

	var wsErr *sdkerrors.WebSocketError
	require.ErrorAs(t, err, &wsErr)
}

func TestListenProofs_DialFailure(t *testing.T) {
	client, err := NewClient(&Config{
		APIKey:     testAPIKey,
		HMACSecret: testSecret,
		BaseURL:    "http://127.0.0.1:1/api",
	})
	require.NoError(t, err)

	err = client.ListenProofs(context.Background(), "int_6", func(event map[string]interface{}) {})
	require.Error(t, err)

	var wsErr *sdkerrors.WebSocketError
	require.ErrorAs(t, err, &wsErr)
}

func TestListenProofs_EmptyIntentID(t *testing.T) {
	client := newTestClient(t, "http://localhost:1")
	err := client.ListenProofs(context.Background(), "", func(event map[string]interface{}) {})

	var valErr *sdkerrors.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestListenProofs_ContextCancellationClosesCleanly(t *testing.T) {
	client := newProofServer(t, func(conn *websocket.Conn) {
		// Hold the connection open until the client hangs up.
		_, _, _ = conn.ReadMessage()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := client.ListenProofs(ctx, "int_7", func(event map[string]interface{}) {})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestListenProofs_HandlerPanicReleasesConnection(t *testing.T) {
	client := newProofServer(t, func(conn *websocket.Conn) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"status":"proof_ready"}`)))
		time.Sleep(200 * time.Millisecond)
	})

	// The panic propagates to the caller; the deferred close still runs.
	require.Panics(t, func() {
		_ = client.ListenProofs(context.Background(), "int_8", func(event map[string]interface{}) {
			panic("handler exploded")
		})
	})
}

func TestProofsURLScheme(t *testing.T) {
	tests := []struct {
		baseURL  string
		expected string
	}{
		{baseURL: "http://localhost:8000/api", expected: "ws://localhost:8000/api/ws/proofs/int_9/"},
		{baseURL: "https://api.example.com/api", expected: "wss://api.example.com/api/ws/proofs/int_9/"},
	}

	for _, tt := range tests {
		client := newTestClient(t, tt.baseURL)
		require.Equal(t, tt.expected, client.proofsURL("int_9"))
	}
}
