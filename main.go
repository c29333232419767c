// main.go - Entry point for the course management backend

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

	"course-management-backend/auth"
	"course-management-backend/config"
	"course-management-backend/database"
	"course-management-backend/events"
	"course-management-backend/logger"
	"course-management-backend/routes"
	"course-management-backend/tracing"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

// run wires the service and blocks until shutdown.
func run() error {
	// STEP 1: Load configuration and logger
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()
	log.Info("starting", "config", cfg.String())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// STEP 2: Establish connections
	shutdownTracing, err := tracing.Init(ctx, log, tracing.Config{
		Enabled:     cfg.OtelEnabled,
		Endpoint:    cfg.OtelEndpoint,
		ServiceName: cfg.OtelServiceName,
		Environment: cfg.Env,
	})
	if err != nil {
		log.Warn("tracing disabled", "error", err)
	}

	db, err := database.Connect(cfg.DBDriver, cfg.DBDSN, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("close database", "error", err)
		}
	}()

	if cfg.CreateAdmin {
		if err := database.SeedAdmin(ctx, db, cfg.AdminUsername, cfg.AdminPassword, log); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.MQTTBroker != "" {
		mqttPub, err := events.NewMQTTPublisher(events.MQTTConfig{
			Broker:      cfg.MQTTBroker,
			ClientID:    cfg.MQTTClientID,
			TopicPrefix: cfg.MQTTTopicPrefix,
			QoS:         1,
		}, log)
		if err != nil {
			log.Warn("MQTT unavailable, domain events disabled", "error", err)
		} else {
			publisher = mqttPub
		}
	}
	defer publisher.Close()

	// STEP 3: Build the router
	router := routes.SetupRouter(routes.Deps{
		Log:         log,
		DB:          db,
		Tokens:      auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		Events:      publisher,
		CORSOrigins: cfg.CORSOrigins,
		Tracing:     cfg.OtelEnabled,
		ServiceName: cfg.OtelServiceName,
	})

	// STEP 4: Serve until interrupted
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case runErr = <-serveErr:
		log.Error("http server failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracing shutdown", "error", err)
	}
	return runErr
}
