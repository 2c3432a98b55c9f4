package transport

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestServer(t *testing.T, b *Broadcaster) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastFrameReachesSubscriber(t *testing.T) {
	b := NewBroadcaster()
	go b.Run()
	defer b.Close()

	conn := dialTestServer(t, b)

	// give the register channel a moment to be serviced
	time.Sleep(50 * time.Millisecond)

	payload, _ := json.Marshal(map[string]int{"x": 42})
	require.NoError(t, b.BroadcastFrame(7, payload))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	assert.Equal(t, uint32(7), env.Frame)
	assert.JSONEq(t, `{"x":42}`, string(env.Data))
	assert.False(t, env.SentAt.IsZero())
}

func TestBroadcastAfterClose(t *testing.T) {
	b := NewBroadcaster()
	go b.Run()
	b.Close()

	err := b.BroadcastFrame(1, nil)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMultipleSubscribersEachReceive(t *testing.T) {
	b := NewBroadcaster()
	go b.Run()
	defer b.Close()

	first := dialTestServer(t, b)
	second := dialTestServer(t, b)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, b.BroadcastFrame(3, nil))

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)

		var env Envelope
		require.NoError(t, json.Unmarshal(msg, &env))
		assert.Equal(t, uint32(3), env.Frame)
	}
}
