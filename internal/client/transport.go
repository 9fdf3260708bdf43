package client

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/guillu97/battlestar/internal/protocol"
)

const writeWait = 10 * time.Second

// Conn is a client connection to a battlestar server
type Conn struct {
	ws  *websocket.Conn
	enc protocol.Encoding

	writeMu sync.Mutex
}

// Dial connects to the server's WebSocket endpoint, e.g. ws://host:8080/ws,
// asking for frames in enc.
func Dial(ctx context.Context, rawURL string, enc protocol.Encoding) (*Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", rawURL)
	}
	if enc == protocol.MsgPack {
		q := u.Query()
		q.Set("enc", enc.String())
		u.RawQuery = q.Encode()
	}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", u)
	}
	return &Conn{ws: ws, enc: enc}, nil
}

// ReadMessage blocks for the next server message
func (c *Conn) ReadMessage() (protocol.Message, error) {
	mt, data, err := c.ws.ReadMessage()
	if err != nil {
		return nil, err
	}
	enc := protocol.JSON
	if mt == websocket.BinaryMessage {
		enc = protocol.MsgPack
	}
	return protocol.Decode(enc, data)
}

// SendInput sends one input frame. It is safe to call from any goroutine.
func (c *Conn) SendInput(in protocol.ClientInput) error {
	data, err := protocol.EncodeInput(c.enc, in)
	if err != nil {
		return err
	}
	mt := websocket.TextMessage
	if c.enc == protocol.MsgPack {
		mt = websocket.BinaryMessage
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return errors.Wrap(c.ws.WriteMessage(mt, data), "send input")
}

// Close sends a close frame and closes the socket
func (c *Conn) Close() error {
	c.writeMu.Lock()
	c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.ws.Close()
}
