package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/clinic-chat-api/internal/config"
	"github.com/harentsoaR/clinic-chat-api/internal/models"
)

func startServer(t *testing.T, e *testEnv) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(e.channel.ServeWS))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = e.channel.Shutdown(ctx)
		srv.Close()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame(t, event, data)))
}

func read(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env
}

func TestServeWS_EndToEnd(t *testing.T) {
	e := newTestEnv(t, config.RealtimeConfig{MaxMessageSize: 4096})
	a := e.register(t, "a@clinic.mg")
	b := e.register(t, "b@clinic.mg")
	room, err := e.rooms.Create(context.Background(), a.id, "consult", []string{b.id.UserID})
	require.NoError(t, err)
	roomID := room.ID.Hex()
	url := startServer(t, e)

	ca := dial(t, url+"?token="+a.token, nil)
	assert.Equal(t, EventAuthenticated, read(t, ca).Event)

	cb := dial(t, url, nil)
	send(t, cb, EventAuthenticate, b.token)
	assert.Equal(t, EventAuthenticated, read(t, cb).Event)

	send(t, ca, EventJoinRoom, roomPayload{RoomID: roomID})
	assert.Equal(t, EventJoined, read(t, ca).Event)
	send(t, cb, EventJoinRoom, roomPayload{RoomID: roomID})
	assert.Equal(t, EventJoined, read(t, cb).Event)

	send(t, ca, EventRoomMessage, roomMessagePayload{RoomID: roomID, Message: "hello"})
	for _, conn := range []*websocket.Conn{ca, cb} {
		env := read(t, conn)
		require.Equal(t, EventNewMessage, env.Event)
		var msg models.Message
		require.NoError(t, json.Unmarshal(env.Data, &msg))
		assert.Equal(t, "hello", msg.Content)
	}
}

func TestServeWS_BadHandshakeTokenClosesConnection(t *testing.T) {
	e := newTestEnv(t, config.RealtimeConfig{})
	url := startServer(t, e)

	conn := dial(t, url+"?token=garbage", nil)
	env := read(t, conn)
	assert.Equal(t, EventAuthenticationError, env.Event)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestServeWS_RejectsDisallowedOrigin(t *testing.T) {
	e := newTestEnv(t, config.RealtimeConfig{AllowedOrigins: []string{"http://localhost:3000"}})
	url := startServer(t, e)

	header := http.Header{}
	header.Set("Origin", "http://evil.example")
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if conn != nil {
		_ = conn.Close()
	}
	require.Error(t, err)
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "http://LOCALHOST:3000")
	dial(t, url, header)
}

func TestOriginPolicy(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no origin header", []string{"http://localhost:3000"}, "", true},
		{"exact match", []string{"http://localhost:3000"}, "http://localhost:3000", true},
		{"case insensitive", []string{"http://localhost:3000"}, "HTTP://Localhost:3000", true},
		{"other port", []string{"http://localhost:3000"}, "http://localhost:4000", false},
		{"wildcard", []string{"*"}, "https://anywhere.example", true},
		{"nothing configured", nil, "http://localhost:3000", false},
		{"invalid origin", []string{"http://localhost:3000"}, "not a url", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newOriginPolicy(tt.allowed)
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, p.check(r))
		})
	}
}

func TestShutdownWhileClientsConnect(t *testing.T) {
	e := newTestEnv(t, config.RealtimeConfig{})
	a := e.register(t, "a@clinic.mg")
	url := startServer(t, e) + "?token=" + a.token

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
				if resp != nil && resp.Body != nil {
					_ = resp.Body.Close()
				}
				if err != nil {
					continue
				}
				_ = conn.Close()
			}
		}()
	}

	time.Sleep(5 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.channel.Shutdown(ctx))
	wg.Wait()

	assert.Zero(t, e.channel.Hub().SessionCount())
	_, err := e.channel.Connect("127.0.0.1:0")
	assert.ErrorIs(t, err, errHubClosed)
}
