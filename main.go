package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/puoklam/intersection-backend/auth"
	"github.com/puoklam/intersection-backend/db"
	"github.com/puoklam/intersection-backend/env"
	"github.com/puoklam/intersection-backend/events"
	"github.com/puoklam/intersection-backend/logging"
	"github.com/puoklam/intersection-backend/notify"
	"github.com/puoklam/intersection-backend/server"
	"github.com/puoklam/intersection-backend/ws"
)

const pushTimeout = 10 * time.Second

func main() {
	cfg, err := env.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	gdb, err := db.Open(cfg.DatabaseURL, cfg.DBMaxOpenConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("database")
	}
	store := db.NewStore(gdb)

	tokens, err := auth.NewTokens(cfg.SecretKey, cfg.Algorithm, cfg.AccessTokenExpire)
	if err != nil {
		logger.Fatal().Err(err).Msg("token config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub(logger)
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	var bus events.Bus
	if cfg.NSQDTCPAddr != "" {
		bus, err = events.NewNSQ(events.NSQConfig{
			NSQDAddr:    cfg.NSQDTCPAddr,
			LookupdAddr: cfg.NSQLookupdAddr,
			Topic:       cfg.EventsTopic,
			Channel:     cfg.ServerID,
		}, logger, ws.FeedHandler(hub))
		if err != nil {
			logger.Fatal().Err(err).Msg("nsq")
		}
	} else {
		bus = events.NewLocal(ws.FeedHandler(hub))
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.PushEnabled {
		notifier = notify.NewExpo("", &http.Client{Timeout: pushTimeout}, logger)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := server.NewRouter(server.Deps{
		Logger:         logger,
		Store:          store,
		Tokens:         tokens,
		Bus:            bus,
		Hub:            hub,
		Notifier:       notifier,
		Registry:       reg,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		LoginRateLimit: cfg.LoginRateLimit,
	})
	srv := server.New(cfg.Addr(), r)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Str("server_id", cfg.ServerID).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("serve")
		stop()
	}

	if err := bus.Close(); err != nil {
		logger.Error().Err(err).Msg("close event bus")
	}
	<-hubDone
	if err := db.Close(gdb); err != nil {
		logger.Error().Err(err).Msg("close database")
	}
	logger.Info().Msg("quit")
}
