package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guillu97/battlestar/internal/game"
	"github.com/guillu97/battlestar/internal/physics"
	"github.com/guillu97/battlestar/internal/protocol"
)

func newState() *State {
	opts := game.DefaultOptions()
	opts.Asteroids = []game.Asteroid{}
	return New(game.NewWorld(opts), DefaultConfig())
}

func step(t *testing.T, s *State) protocol.Message {
	t.Helper()
	f, err := s.Step(protocol.JSON)
	require.NoError(t, err)
	msg, err := protocol.Decode(protocol.JSON, f.Text)
	require.NoError(t, err)
	return msg
}

func delta(t *testing.T, s *State) protocol.DeltaState {
	t.Helper()
	msg := step(t, s)
	d, ok := msg.(protocol.DeltaState)
	require.True(t, ok, "expected DeltaState, got %s", msg.MessageType())
	return d
}

func TestNextPlayerIDUnique(t *testing.T) {
	s := newState()
	assert.Equal(t, uint32(1), s.NextPlayerID())
	assert.Equal(t, uint32(2), s.NextPlayerID())

	var mu sync.Mutex
	seen := map[uint32]bool{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := s.NextPlayerID()
			mu.Lock()
			defer mu.Unlock()
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}

func TestSubmitInputRateLimit(t *testing.T) {
	s := newState()
	s.Connect(1)
	t0 := time.Now()
	in := protocol.ClientInput{Thrust: 1}

	assert.True(t, s.SubmitInput(1, in, t0))
	assert.False(t, s.SubmitInput(1, in, t0.Add(10*time.Millisecond)))
	assert.True(t, s.SubmitInput(1, in, t0.Add(16*time.Millisecond)))
	assert.False(t, s.SubmitInput(1, in, t0.Add(20*time.Millisecond)))
	assert.True(t, s.SubmitInput(1, in, t0.Add(32*time.Millisecond)))

	// limits are per player
	s.Connect(2)
	assert.True(t, s.SubmitInput(2, in, t0.Add(33*time.Millisecond)))
}

func TestSubmitInputRequiresConnection(t *testing.T) {
	s := newState()
	assert.False(t, s.SubmitInput(5, protocol.ClientInput{Thrust: 1}, time.Now()))
	d := delta(t, s)
	assert.Empty(t, d.ChangedShips)
}

func TestSubmitInputOverridesPlayerID(t *testing.T) {
	s := newState()
	id := s.NextPlayerID()
	s.Connect(id)
	require.True(t, s.SubmitInput(id, protocol.ClientInput{PlayerID: 999, Thrust: 1}, time.Now()))

	d := delta(t, s)
	require.Len(t, d.ChangedShips, 1)
	assert.Equal(t, id, d.ChangedShips[0].ID)
	assert.NotNil(t, d.ChangedShips[0].Color, "spawn tick carries color")
}

func TestLatestInputWins(t *testing.T) {
	s := newState()
	s.Connect(1)
	t0 := time.Now()
	require.True(t, s.SubmitInput(1, protocol.ClientInput{Thrust: 1}, t0))
	require.True(t, s.SubmitInput(1, protocol.ClientInput{Thrust: 0}, t0.Add(20*time.Millisecond)))

	d := delta(t, s)
	require.Len(t, d.ChangedShips, 1)
	assert.Equal(t, physics.Zero, d.ChangedShips[0].Velocity)
}

func TestInputIsClampedAndPersists(t *testing.T) {
	s := newState()
	ref := game.NewWorld(game.Options{Constants: physics.DefaultConstants(), Asteroids: []game.Asteroid{}})

	s.Connect(1)
	require.True(t, s.SubmitInput(1, protocol.ClientInput{Thrust: 10, Rotate: 4}, time.Now()))
	var last protocol.DeltaState
	for i := 0; i < 3; i++ {
		last = delta(t, s)
		ref.ApplyInput(1, physics.Input{Thrust: 1, Rotate: 1}, s.DT())
		ref.Tick(s.DT())
	}

	want, _ := ref.Ship(1)
	got := last.ChangedShips[0]
	assert.Equal(t, want.Position, got.Position)
	assert.Equal(t, want.Velocity, got.Velocity)
	assert.Equal(t, want.Rotation, got.Rotation)
}

func TestDisconnectQueuesRemoval(t *testing.T) {
	s := newState()
	s.Connect(1)
	s.Connect(2)
	require.True(t, s.SubmitInput(1, protocol.ClientInput{}, time.Now()))
	delta(t, s)

	s.Disconnect(1)
	s.Disconnect(2)
	d := delta(t, s)
	assert.Empty(t, d.ChangedShips)
	assert.Equal(t, []uint32{1}, d.RemovedShipIDs, "only players with ships are announced")

	d = delta(t, s)
	assert.Empty(t, d.RemovedShipIDs)
	assert.False(t, s.SubmitInput(1, protocol.ClientInput{}, time.Now().Add(time.Second)))
	assert.Equal(t, Stats{Connected: 0, Ships: 0, Tick: 3}, s.Stats())
}

func TestStepAlternatesFullAndDelta(t *testing.T) {
	s := newState()
	for tick := uint64(1); tick <= 200; tick++ {
		msg := step(t, s)
		switch m := msg.(type) {
		case protocol.GameState:
			assert.Contains(t, []uint64{100, 200}, tick)
			assert.Equal(t, tick, m.Tick)
		case protocol.DeltaState:
			assert.NotEqual(t, uint64(0), tick%100)
			assert.Equal(t, tick, m.Tick)
		default:
			t.Fatalf("unexpected %T", msg)
		}
	}
}

func TestStepEncodesRequestedEncodings(t *testing.T) {
	s := newState()
	f, err := s.Step()
	require.NoError(t, err)
	assert.Nil(t, f.Text)
	assert.Nil(t, f.Binary)

	f, err = s.Step(protocol.MsgPack)
	require.NoError(t, err)
	msg, err := protocol.Decode(protocol.MsgPack, f.Binary)
	require.NoError(t, err)
	assert.Equal(t, protocol.TypeDeltaState, msg.MessageType())
}

func TestTickPeriod(t *testing.T) {
	assert.Equal(t, 50*time.Millisecond, DefaultConfig().TickPeriod())
}
