// Package protocol defines the messages exchanged between clients and the
// server and their JSON and msgpack encodings.
package protocol

import (
	"github.com/guillu97/battlestar/internal/game"
	"github.com/guillu97/battlestar/internal/physics"
)

// Server -> client message types, carried in the "type" field
const (
	TypeWelcome    = "Welcome"
	TypeGameState  = "GameState"
	TypeDeltaState = "DeltaState"
)

// Message is a server -> client message
type Message interface {
	MessageType() string
}

// Welcome is the first message on every connection
type Welcome struct {
	Type       string `json:"type" msgpack:"type"`
	AssignedID uint32 `json:"assigned_id" msgpack:"assigned_id"`
}

// GameState is a full snapshot, sent every full-state interval
type GameState struct {
	Type           string `json:"type" msgpack:"type"`
	game.GameState `msgpack:",inline"`
}

// DeltaState carries per-ship motion for a regular tick
type DeltaState struct {
	Type            string `json:"type" msgpack:"type"`
	game.DeltaState `msgpack:",inline"`
}

func (Welcome) MessageType() string    { return TypeWelcome }
func (GameState) MessageType() string  { return TypeGameState }
func (DeltaState) MessageType() string { return TypeDeltaState }

func NewWelcome(id uint32) Welcome {
	return Welcome{Type: TypeWelcome, AssignedID: id}
}

func NewGameState(gs game.GameState) GameState {
	return GameState{Type: TypeGameState, GameState: gs}
}

func NewDeltaState(d game.DeltaState) DeltaState {
	return DeltaState{Type: TypeDeltaState, DeltaState: d}
}

// ClientInput is sent by clients. PlayerID is advisory only; the server
// replaces it with the id assigned to the connection.
type ClientInput struct {
	PlayerID uint32  `json:"player_id" msgpack:"player_id"`
	Thrust   float32 `json:"thrust" msgpack:"thrust"`
	Rotate   float32 `json:"rotate" msgpack:"rotate"`
}

// Input returns the physics control for this input
func (c ClientInput) Input() physics.Input {
	return physics.Input{Thrust: c.Thrust, Rotate: c.Rotate}
}

// Clamp restricts thrust and rotate to [-1, 1]
func (c *ClientInput) Clamp() {
	c.Thrust = physics.Clamp(c.Thrust, -1, 1)
	c.Rotate = physics.Clamp(c.Rotate, -1, 1)
}
