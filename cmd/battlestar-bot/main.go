// Command battlestar-bot is a headless player. It flies a scripted pattern,
// predicts its own ship locally and reconciles against the server, logging
// how far prediction drifts.
package main

import (
	"context"
	"flag"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/guillu97/battlestar/internal/client"
	"github.com/guillu97/battlestar/internal/config"
	"github.com/guillu97/battlestar/internal/physics"
	"github.com/guillu97/battlestar/internal/protocol"
)

const frameRate = 60

func main() {
	url := flag.String("url", config.GetEnv("BATTLESTAR_URL", "ws://localhost:8080/ws"), "server WebSocket URL")
	enc := flag.String("enc", config.GetEnv("BATTLESTAR_ENC", "json"), "wire encoding: json or msgpack")
	duration := flag.Duration("duration", 0, "stop after this long (0 = until interrupted)")
	constantsFile := flag.String("constants", config.GetEnv("BATTLESTAR_CONSTANTS", ""), "JSON file overriding physics constants")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "bot"})

	constants, err := config.LoadConstants(*constantsFile)
	if err != nil {
		logger.Fatal("constants", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	conn, err := client.Dial(ctx, *url, protocol.ParseEncoding(*enc))
	if err != nil {
		logger.Fatal("connect", "err", err)
	}
	defer conn.Close()

	msgs := make(chan protocol.Message, 64)
	go func() {
		defer close(msgs)
		for {
			msg, err := conn.ReadMessage()
			if err != nil {
				logger.Warn("connection closed", "err", err)
				return
			}
			msgs <- msg
		}
	}()

	fly(ctx, logger, conn, msgs, client.NewMirror(client.DefaultConfig(), constants))
}

// fly runs the frame loop: gather input, predict, send, reconcile
func fly(ctx context.Context, logger *log.Logger, conn *client.Conn, msgs <-chan protocol.Message, m *client.Mirror) {
	const dt = float32(1) / frameRate
	frames := time.NewTicker(time.Second / frameRate)
	defer frames.Stop()
	report := time.NewTicker(5 * time.Second)
	defer report.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-msgs:
			if !ok {
				return
			}
			m.Apply(msg)

		case now := <-frames.C:
			if m.LocalID() == 0 {
				continue
			}
			in := pattern(now.Sub(start))
			m.Predict(in, dt)
			m.Advance(dt)
			if err := conn.SendInput(protocol.ClientInput{PlayerID: m.LocalID(), Thrust: in.Thrust, Rotate: in.Rotate}); err != nil {
				logger.Warn("send input", "err", err)
				return
			}

		case <-report.C:
			local, _ := m.Local()
			logger.Info("status",
				"id", m.LocalID(),
				"tick", m.Tick(),
				"x", local.Position.X,
				"y", local.Position.Y,
				"remote", len(m.RemoteIDs()),
				"snaps", m.Snaps(),
				"opacity", client.BlinkOpacity(local.Invincible, float32(time.Since(start).Seconds())),
			)
		}
	}
}

// pattern is a slow weave: constant thrust, rotation swinging back and forth
func pattern(elapsed time.Duration) physics.Input {
	t := elapsed.Seconds()
	return physics.Input{
		Thrust: 0.6,
		Rotate: float32(math.Sin(t * 0.8)),
	}
}
