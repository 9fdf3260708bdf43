package protocol

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Encoding selects the wire format of a connection
type Encoding int

const (
	// JSON is sent as text frames and is the default
	JSON Encoding = iota
	// MsgPack is sent as binary frames
	MsgPack
)

// Encodings lists every supported encoding
var Encodings = []Encoding{JSON, MsgPack}

// ParseEncoding maps a query value to an encoding, defaulting to JSON
func ParseEncoding(s string) Encoding {
	switch s {
	case "msgpack", "binary":
		return MsgPack
	default:
		return JSON
	}
}

func (e Encoding) String() string {
	if e == MsgPack {
		return "msgpack"
	}
	return "json"
}

var (
	ErrUnknownType  = errors.New("unknown message type")
	ErrMissingField = errors.New("missing field")
)

func marshal(enc Encoding, v any) ([]byte, error) {
	if enc == MsgPack {
		return msgpack.Marshal(v)
	}
	return json.Marshal(v)
}

func unmarshal(enc Encoding, data []byte, v any) error {
	if enc == MsgPack {
		return msgpack.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

// Encode serializes msg, setting its type tag
func Encode(enc Encoding, msg Message) ([]byte, error) {
	var v any
	switch m := msg.(type) {
	case Welcome:
		m.Type = TypeWelcome
		v = m
	case GameState:
		m.Type = TypeGameState
		v = m
	case DeltaState:
		m.Type = TypeDeltaState
		v = m
	default:
		return nil, errors.Wrapf(ErrUnknownType, "%T", msg)
	}
	data, err := marshal(enc, v)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s as %s", msg.MessageType(), enc)
	}
	return data, nil
}

// Decode parses a server message, dispatching on its type tag
func Decode(enc Encoding, data []byte) (Message, error) {
	var head struct {
		Type string `json:"type" msgpack:"type"`
	}
	if err := unmarshal(enc, data, &head); err != nil {
		return nil, errors.Wrap(err, "decode message type")
	}

	var (
		msg Message
		err error
	)
	switch head.Type {
	case TypeWelcome:
		var m Welcome
		err = unmarshal(enc, data, &m)
		msg = m
	case TypeGameState:
		var m GameState
		err = unmarshal(enc, data, &m)
		msg = m
	case TypeDeltaState:
		var m DeltaState
		err = unmarshal(enc, data, &m)
		msg = m
	default:
		return nil, errors.Wrapf(ErrUnknownType, "%q", head.Type)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", head.Type)
	}
	return msg, nil
}

// EncodeInput serializes a client input
func EncodeInput(enc Encoding, in ClientInput) ([]byte, error) {
	data, err := marshal(enc, in)
	return data, errors.Wrap(err, "encode input")
}

// DecodeInput parses a client input. All three fields must be present.
func DecodeInput(enc Encoding, data []byte) (ClientInput, error) {
	var raw struct {
		PlayerID *uint32  `json:"player_id" msgpack:"player_id"`
		Thrust   *float32 `json:"thrust" msgpack:"thrust"`
		Rotate   *float32 `json:"rotate" msgpack:"rotate"`
	}
	if err := unmarshal(enc, data, &raw); err != nil {
		return ClientInput{}, errors.Wrap(err, "decode input")
	}
	if raw.PlayerID == nil || raw.Thrust == nil || raw.Rotate == nil {
		return ClientInput{}, errors.Wrap(ErrMissingField, "decode input")
	}
	return ClientInput{PlayerID: *raw.PlayerID, Thrust: *raw.Thrust, Rotate: *raw.Rotate}, nil
}

// Frame holds one message encoded for every encoding a subscriber asked for.
// A nil payload means no subscriber needed that encoding.
type Frame struct {
	Text   []byte
	Binary []byte
}

// Payload returns the encoded bytes for enc
func (f Frame) Payload(enc Encoding) []byte {
	if enc == MsgPack {
		return f.Binary
	}
	return f.Text
}

// EncodeFrame encodes msg once per requested encoding
func EncodeFrame(msg Message, encs ...Encoding) (Frame, error) {
	var f Frame
	for _, enc := range encs {
		data, err := Encode(enc, msg)
		if err != nil {
			return Frame{}, err
		}
		if enc == MsgPack {
			f.Binary = data
		} else {
			f.Text = data
		}
	}
	return f, nil
}
