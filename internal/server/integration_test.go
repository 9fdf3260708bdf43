package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guillu97/battlestar/internal/game"
	"github.com/guillu97/battlestar/internal/protocol"
	"github.com/guillu97/battlestar/internal/session"
)

// ---------- helpers ----------

type testServer struct {
	http  *httptest.Server
	wsURL string
	state *session.State
	hub   *Hub
}

// startTestServer runs a server with a fast tick loop and no asteroids
func startTestServer(t *testing.T, limits Limits) *testServer {
	t.Helper()
	opts := game.DefaultOptions()
	opts.Asteroids = []game.Asteroid{}
	state := session.New(game.NewWorld(opts), session.DefaultConfig())

	logger := log.NewWithOptions(io.Discard, log.Options{})
	hub := NewHub(limits)
	srv := New(state, hub, nil, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go srv.RunTickLoop(ctx, 10*time.Millisecond)

	hs := httptest.NewServer(srv.Routes())
	t.Cleanup(func() {
		cancel()
		hs.Close()
	})
	return &testServer{
		http:  hs,
		wsURL: "ws" + strings.TrimPrefix(hs.URL, "http") + "/ws",
		state: state,
		hub:   hub,
	}
}

func dialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "dial WS")
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) protocol.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	mt, raw, err := conn.ReadMessage()
	require.NoError(t, err, "read WS")
	enc := protocol.JSON
	if mt == websocket.BinaryMessage {
		enc = protocol.MsgPack
	}
	msg, err := protocol.Decode(enc, raw)
	require.NoError(t, err)
	return msg
}

func readWelcome(t *testing.T, conn *websocket.Conn) uint32 {
	t.Helper()
	msg := readMessage(t, conn)
	w, ok := msg.(protocol.Welcome)
	require.True(t, ok, "first message should be Welcome, got %s", msg.MessageType())
	return w.AssignedID
}

// readUntil reads messages until match returns true or two seconds pass
func readUntil(t *testing.T, conn *websocket.Conn, match func(protocol.Message) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if match(readMessage(t, conn)) {
			return
		}
	}
	t.Fatal("condition not met before deadline")
}

func shipIDs(msg protocol.Message) map[uint32]bool {
	ids := map[uint32]bool{}
	switch m := msg.(type) {
	case protocol.DeltaState:
		for _, s := range m.ChangedShips {
			ids[s.ID] = true
		}
	case protocol.GameState:
		for _, s := range m.Ships {
			ids[s.ID] = true
		}
	}
	return ids
}

func sendJSON(t *testing.T, conn *websocket.Conn, raw string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))
}

// ---------- tests ----------

func TestWelcomeThenOwnShip(t *testing.T) {
	ts := startTestServer(t, DefaultLimits())
	conn := dialWS(t, ts.wsURL)

	id := readWelcome(t, conn)
	assert.Equal(t, uint32(1), id)

	// the claimed player id is ignored
	sendJSON(t, conn, `{"player_id":42,"thrust":1,"rotate":0}`)
	readUntil(t, conn, func(msg protocol.Message) bool {
		ids := shipIDs(msg)
		assert.False(t, ids[42], "server must not trust the claimed id")
		return ids[id]
	})
}

func TestMalformedInputIsIgnored(t *testing.T) {
	ts := startTestServer(t, DefaultLimits())
	conn := dialWS(t, ts.wsURL)
	id := readWelcome(t, conn)

	sendJSON(t, conn, `garbage`)
	sendJSON(t, conn, `{"thrust":1}`)
	sendJSON(t, conn, `{"player_id":0,"thrust":0.5,"rotate":0.5}`)
	readUntil(t, conn, func(msg protocol.Message) bool { return shipIDs(msg)[id] })
}

func TestTicksArriveInOrder(t *testing.T) {
	ts := startTestServer(t, DefaultLimits())
	conn := dialWS(t, ts.wsURL)
	readWelcome(t, conn)

	var last uint64
	for i := 0; i < 20; i++ {
		var tick uint64
		switch m := readMessage(t, conn).(type) {
		case protocol.DeltaState:
			tick = m.Tick
		case protocol.GameState:
			tick = m.Tick
		default:
			t.Fatalf("unexpected %s", m.MessageType())
		}
		assert.Greater(t, tick, last)
		last = tick
	}
}

func TestDisconnectRemovesShip(t *testing.T) {
	ts := startTestServer(t, DefaultLimits())
	a := dialWS(t, ts.wsURL)
	aID := readWelcome(t, a)
	b := dialWS(t, ts.wsURL)
	readWelcome(t, b)

	sendJSON(t, a, `{"player_id":0,"thrust":0,"rotate":0}`)
	readUntil(t, b, func(msg protocol.Message) bool { return shipIDs(msg)[aID] })

	a.Close()
	readUntil(t, b, func(msg protocol.Message) bool {
		switch m := msg.(type) {
		case protocol.DeltaState:
			for _, id := range m.RemovedShipIDs {
				if id == aID {
					return true
				}
			}
		case protocol.GameState:
			return !shipIDs(m)[aID]
		}
		return false
	})

	require.Eventually(t, func() bool { return ts.state.Stats().Connected == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, ts.state.Stats().Ships)
}

func TestMsgPackConnection(t *testing.T) {
	ts := startTestServer(t, DefaultLimits())
	conn := dialWS(t, ts.wsURL+"?enc=msgpack")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	mt, _, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, mt)

	payload, err := protocol.EncodeInput(protocol.MsgPack, protocol.ClientInput{Thrust: 1})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, payload))
	readUntil(t, conn, func(msg protocol.Message) bool { return shipIDs(msg)[1] })
}

func TestConnectionLimitRejects(t *testing.T) {
	ts := startTestServer(t, Limits{PerIP: 1, Total: 10})
	conn := dialWS(t, ts.wsURL)
	readWelcome(t, conn)

	_, resp, err := websocket.DefaultDialer.Dial(ts.wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealthAndStats(t *testing.T) {
	ts := startTestServer(t, DefaultLimits())

	resp, err := http.Get(ts.http.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "OK", string(body))

	conn := dialWS(t, ts.wsURL)
	readWelcome(t, conn)
	require.Eventually(t, func() bool { return ts.hub.SubscriberCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp, err = http.Get(ts.http.URL + "/stats")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `"connected":1`)
	assert.Contains(t, string(body), `"subscribers":1`)
}
