package server

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/guillu97/battlestar/internal/analytics"
	"github.com/guillu97/battlestar/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Conn is one player's WebSocket session
type Conn struct {
	srv       *Server
	ws        *websocket.Conn
	enc       protocol.Encoding
	ip        string
	id        uint32
	sessionID string
	logger    *log.Logger
}

func newConn(srv *Server, ws *websocket.Conn, enc protocol.Encoding, ip string) *Conn {
	return &Conn{
		srv:       srv,
		ws:        ws,
		enc:       enc,
		ip:        ip,
		sessionID: uuid.NewString(),
	}
}

func messageType(enc protocol.Encoding) int {
	if enc == protocol.MsgPack {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// Serve runs the connection until the socket fails or closes. The Welcome
// message is written before the connection subscribes to broadcasts, so it
// is always the first frame the client sees.
func (c *Conn) Serve() {
	defer c.srv.hub.TrackDisconnect(c.ip)
	defer c.ws.Close()

	c.id = c.srv.state.NextPlayerID()
	c.logger = c.srv.logger.With("player", c.id, "ip", c.ip)

	welcome, err := protocol.Encode(c.enc, protocol.NewWelcome(c.id))
	if err != nil {
		c.logger.Error("encode welcome", "err", err)
		return
	}
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteMessage(messageType(c.enc), welcome); err != nil {
		c.logger.Debug("write welcome", "err", err)
		return
	}

	c.srv.state.Connect(c.id)
	sub := c.srv.hub.Subscribe(c.enc)
	connectedAt := time.Now()
	c.srv.tracker.Track(analytics.EvtSessionStart, c.id, c.sessionID, map[string]string{"encoding": c.enc.String()})
	c.logger.Info("player connected", "encoding", c.enc)

	go c.writePump(sub)
	c.readPump()

	c.srv.hub.Unsubscribe(sub)
	c.srv.state.Disconnect(c.id)
	c.srv.tracker.Track(analytics.EvtSessionEnd, c.id, c.sessionID, map[string]int64{
		"duration_ms": time.Since(connectedAt).Milliseconds(),
	})
	c.logger.Info("player disconnected")
}

// readPump stores inputs until the socket errors. Frames that do not parse
// as an input are ignored.
func (c *Conn) readPump() {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("ws read", "err", err)
			}
			return
		}

		enc := protocol.JSON
		if mt == websocket.BinaryMessage {
			enc = protocol.MsgPack
		}
		in, err := protocol.DecodeInput(enc, data)
		if err != nil {
			c.logger.Debug("dropping malformed input", "err", err)
			continue
		}
		c.srv.state.SubmitInput(c.id, in, time.Now())
	}
}

// writePump forwards broadcast frames and keepalive pings. The first failed
// write closes the socket, which ends readPump and with it the session.
func (c *Conn) writePump(sub *Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	mt := messageType(sub.Encoding())
	for {
		select {
		case frame, ok := <-sub.C():
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(mt, frame); err != nil {
				c.logger.Debug("ws write", "err", err)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
