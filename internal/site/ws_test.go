package site

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialViewer(t *testing.T, h *harness, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(h.srv.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

type wsMessage struct {
	frame
	Error string `json:"error"`
}

// readUntil reads messages until match returns true or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(wsMessage) bool) wsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg wsMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if match(msg) {
			return msg
		}
	}
}

func TestViewerSocketUnknownProduct(t *testing.T) {
	h := newHarness(t, nil)
	u := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/ws/viewer/ball-valves/gate"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestViewerSocketLoadsAndFlies(t *testing.T) {
	h := newHarness(t, nil)
	conn := dialViewer(t, h, "/ws/viewer/ball-valves/3-piece-ball-valve")

	first := readUntil(t, conn, func(m wsMessage) bool { return m.Type == "frame" })
	assert.NotEmpty(t, first.Session)
	assert.Equal(t, imageRef, first.FallbackImage)
	assert.Equal(t, modelRef, first.ModelPath)

	ready := readUntil(t, conn, func(m wsMessage) bool { return m.State == "model_ready" })
	assert.False(t, ready.FallbackVisible)
	assert.GreaterOrEqual(t, ready.Seq, first.Seq)

	// A short press in the middle of the viewport lands on the model.
	cx, cy := float32(h.cfg.Viewer.Width)/2, float32(h.cfg.Viewer.Height)/2
	require.NoError(t, conn.WriteJSON(clientEvent{Type: "pointerdown", X: cx, Y: cy, T: 1000}))
	require.NoError(t, conn.WriteJSON(clientEvent{Type: "pointerup", X: cx, Y: cy, T: 1010}))

	flying := readUntil(t, conn, func(m wsMessage) bool { return m.FlyTarget != nil })
	assert.Contains(t, []string{"animating_to_point", "model_ready"}, flying.State)
}

func TestViewerSocketFallbackOnly(t *testing.T) {
	h := newHarness(t, nil)
	conn := dialViewer(t, h, "/ws/viewer/plug-valves/jacketed-plug-valve")

	msg := readUntil(t, conn, func(m wsMessage) bool { return m.Type == "frame" && !m.Loading })
	assert.Equal(t, "showing_fallback", msg.State)
	assert.True(t, msg.FallbackVisible)
	assert.Empty(t, msg.ModelPath)
}

func TestViewerSocketEvents(t *testing.T) {
	h := newHarness(t, nil)
	conn := dialViewer(t, h, "/ws/viewer/plug-valves/jacketed-plug-valve")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	msg := readUntil(t, conn, func(m wsMessage) bool { return m.Type == "error" })
	assert.Equal(t, "malformed event", msg.Error)

	require.NoError(t, conn.WriteJSON(clientEvent{Type: "teleport"}))
	msg = readUntil(t, conn, func(m wsMessage) bool { return m.Type == "error" })
	assert.Equal(t, "unknown event type teleport", msg.Error)

	require.NoError(t, conn.WriteJSON(clientEvent{Type: "load", Category: "ball-valves", Product: "nope"}))
	msg = readUntil(t, conn, func(m wsMessage) bool { return m.Type == "error" })
	assert.Equal(t, "product not found", msg.Error)

	// Switching products in the same session starts the new load.
	require.NoError(t, conn.WriteJSON(clientEvent{Type: "load", Category: "ball-valves", Product: "3-piece-ball-valve"}))
	msg = readUntil(t, conn, func(m wsMessage) bool { return m.State == "model_ready" })
	assert.Equal(t, modelRef, msg.ModelPath)
}
