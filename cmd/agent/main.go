package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/worklens/worklens-agent-go/internal/config"
	"github.com/worklens/worklens-agent-go/internal/handler/control"
	"github.com/worklens/worklens-agent-go/internal/pkg/backend"
	"github.com/worklens/worklens-agent-go/internal/pkg/companion"
	"github.com/worklens/worklens-agent-go/internal/realtime"
	"github.com/worklens/worklens-agent-go/internal/service/tracker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}
	if err := cfg.ValidateAgent(); err != nil {
		fmt.Println("Invalid agent configuration:", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("app", "worklens-agent"),
	)

	apiClient := backend.NewClient(cfg.Agent.ServerURL, cfg.Agent.APIToken)

	var comp companion.Notifier = companion.NoopNotifier{}
	if cfg.Agent.CompanionURL != "" {
		comp = companion.NewHTTPNotifier(cfg.Agent.CompanionURL, logger)
	}

	// One realtime channel per authenticated session, owned here and closed
	// on shutdown. The socket reconnects on its own; Dial only fails on a
	// malformed URL.
	var socket *realtime.Socket
	if cfg.Agent.RealtimeURL != "" {
		socket, err = realtime.Dial(cfg.Agent.RealtimeURL, cfg.Agent.APIToken, logger)
		if err != nil {
			logger.Warn("realtime channel disabled", "error", err)
		} else {
			defer socket.Close()
		}
	}

	var heartbeater tracker.Heartbeater
	if socket != nil {
		heartbeater = socket
	}

	engine := tracker.New(apiClient, comp, heartbeater, cfg.Agent.APIToken, tracker.Options{
		TickInterval:      cfg.Agent.TickInterval,
		PollInterval:      cfg.Agent.PollInterval,
		HeartbeatInterval: cfg.Agent.HeartbeatInterval,
	}, logger)

	events := engine.Subscribe(16)
	go func() {
		for event := range events {
			logger.Info("notification", "kind", string(event.Kind), "message", event.Message)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := engine.Start(ctx); err != nil {
		fmt.Println("Error starting tracking engine:", err)
		return
	}
	defer engine.Stop()

	trackingHandler := control.NewTrackingHandler(engine)
	router := control.NewRouter(trackingHandler)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Agent.ControlPort)
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		fmt.Printf("Agent control surface at http://%s\n", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("control surface error", "error", err)
			cancel()
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case <-ctx.Done():
	}

	_ = server.Shutdown(context.Background())
}
