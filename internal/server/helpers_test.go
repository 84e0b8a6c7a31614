package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/lox/redtens/internal/protocol"
	"github.com/lox/redtens/internal/randutil"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// startTestServer serves s over httptest and returns the websocket URL.
func startTestServer(t *testing.T, opts ...ServerOption) (*Server, string) {
	t.Helper()
	opts = append([]ServerOption{WithRand(randutil.New(42))}, opts...)
	s := NewServer(testLogger(), opts...)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.rooms.Close()
	})
	return s, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
	id   string
}

// dial connects and consumes the welcome message.
func dial(t *testing.T, url string) *testClient {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	c := &testClient{t: t, conn: conn}
	var welcome protocol.Welcome
	c.expect(protocol.TypeWelcome, &welcome)
	require.NotEmpty(t, welcome.PlayerID)
	require.Equal(t, protocol.TurnDurationMs, welcome.TurnDuration)
	c.id = welcome.PlayerID
	return c
}

func (c *testClient) send(typ protocol.MessageType, payload any) {
	c.t.Helper()
	msg, err := protocol.NewMessage(typ, payload)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

func (c *testClient) sendRaw(data string) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, []byte(data)))
}

// next reads one envelope, failing the test after a second of silence.
func (c *testClient) next() (*protocol.Message, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg protocol.Message
	if err := c.conn.ReadJSON(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// expect skips messages until one of type typ arrives and decodes it.
func (c *testClient) expect(typ protocol.MessageType, into any) {
	c.t.Helper()
	for {
		msg, err := c.next()
		require.NoError(c.t, err, "waiting for %s", typ)
		if msg.Type != typ {
			continue
		}
		if into != nil {
			require.NoError(c.t, json.Unmarshal(msg.Data, into))
		}
		return
	}
}
