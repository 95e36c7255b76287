package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jason-s-yu/sleepingqueens/engine"
	"github.com/jason-s-yu/sleepingqueens/service/internal/auth"
	"github.com/jason-s-yu/sleepingqueens/service/internal/cache"
	"github.com/jason-s-yu/sleepingqueens/service/internal/config"
	"github.com/jason-s-yu/sleepingqueens/service/internal/database"
	"github.com/jason-s-yu/sleepingqueens/service/internal/game"
	"github.com/jason-s-yu/sleepingqueens/service/internal/handlers"
	"github.com/sirupsen/logrus"
)

const snapshotTTL = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load configuration")
	}
	cfg.ConfigureLogging()
	auth.Init(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Both stores are optional; the server runs in memory without them.
	var (
		snapshots game.SnapshotStore
		moves     game.MoveLog
	)
	if cfg.RedisAddr != "" {
		if err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword); err != nil {
			logrus.WithError(err).Warn("redis unavailable, snapshots and move log disabled")
		} else {
			defer cache.Close()
			store := cache.NewSnapshotStore(cache.Rdb, snapshotTTL)
			snapshots, moves = store, store
			logrus.WithField("addr", cfg.RedisAddr).Info("redis connected")
		}
	}
	if cfg.DatabaseURL != "" {
		if err := database.ConnectDB(ctx, cfg.DatabaseURL); err != nil {
			logrus.WithError(err).Warn("database unavailable, game history disabled")
		} else {
			defer database.Close()
			logrus.Info("database connected")
		}
	}

	var tables atomic.Uint64
	rules := cfg.Rules()
	newEngine := func() *engine.Engine {
		sh := engine.NewRandomShuffler()
		if cfg.ShuffleSeed != 0 {
			// Each table gets its own stream so games stay reproducible in order.
			sh = engine.NewShuffler(cfg.ShuffleSeed + tables.Add(1))
		}
		return engine.New(engine.WithRules(rules), engine.WithShuffler(sh))
	}

	games := game.NewManager(newEngine, snapshots, moves)
	h := handlers.NewHandlers(games, cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.WithField("addr", cfg.ListenAddr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("shutdown")
	}
}

