package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/guillu97/battlestar/internal/analytics"
	"github.com/guillu97/battlestar/internal/config"
	"github.com/guillu97/battlestar/internal/game"
	"github.com/guillu97/battlestar/internal/server"
	"github.com/guillu97/battlestar/internal/session"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "battlestar",
	})
	if err := run(logger, os.Args[1:]); err != nil {
		logger.Fatal("server exited", "err", err)
	}
}

func run(logger *log.Logger, args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	logger.SetLevel(level)

	constants, err := config.LoadConstants(cfg.ConstantsFile)
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	world := game.NewWorld(game.Options{
		Constants:          constants,
		FullStateInterval:  cfg.FullStateInterval,
		InvincibilityTicks: cfg.InvincibilityTicks(),
		Seed:               seed,
	})

	var tracker *analytics.Tracker
	if cfg.AnalyticsDB != "" {
		db, err := analytics.OpenDB(cfg.AnalyticsDB)
		if err != nil {
			return err
		}
		defer db.Close()
		tracker = analytics.NewTracker(db, logger.WithPrefix("analytics"))
		defer tracker.Stop()
		logger.Info("analytics enabled", "db", cfg.AnalyticsDB)
	}

	world.OnRespawn = func(id uint32, tick uint64) {
		logger.Debug("ship respawned", "player", id, "tick", tick)
		tracker.Track(analytics.EvtShipRespawn, id, "", map[string]uint64{"tick": tick})
	}

	state := session.New(world, session.Config{
		TickRate:         cfg.TickRate,
		MinInputInterval: cfg.MinInputInterval,
	})
	hub := server.NewHub(server.Limits{PerIP: cfg.MaxConnsPerIP, Total: cfg.MaxConns})
	srv := server.New(state, hub, tracker, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go srv.RunTickLoop(ctx, cfg.TickPeriod())

	httpSrv := &http.Server{Addr: cfg.Addr, Handler: srv.Routes()}
	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			"addr", cfg.Addr,
			"tick_rate", cfg.TickRate,
			"full_state_interval", cfg.FullStateInterval,
			"invincibility_ticks", cfg.InvincibilityTicks(),
		)
		if err := httpSrv.ListenAndServe(); err != http.ErrServerClosed {
			errc <- err
		}
	}()

	if cfg.PrintQR {
		url := joinURL(cfg.PublicURL, cfg.Addr)
		logger.Info("join", "url", url)
		if err := printQR(os.Stdout, url); err != nil {
			logger.Warn("qr code", "err", err)
		}
	}

	select {
	case err := <-errc:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
