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

	"github.com/bryanwahyu/enquiry-console/internal/application"
	"github.com/bryanwahyu/enquiry-console/internal/application/console"
	appenq "github.com/bryanwahyu/enquiry-console/internal/application/enquiries"
	"github.com/bryanwahyu/enquiry-console/internal/bootstrap"
	"github.com/bryanwahyu/enquiry-console/internal/config"
	"github.com/bryanwahyu/enquiry-console/internal/infra/httpserver"
	"github.com/bryanwahyu/enquiry-console/internal/logger"
	"github.com/bryanwahyu/enquiry-console/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "enquiry-console",
	})
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// connect store (+ archive)
	inf, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store init error")
	}
	defer inf.Close()

	// init service
	svc := appenq.NewService(inf.Repo, inf.Archive, application.SystemClock{})

	sessions := console.NewSessions(svc, cfg.Console.LimitPerPage)
	go sessions.Run(ctx, cfg.Console.SessionIdleTimeout)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Cleanup(10 * time.Minute)
			}
		}
	}()

	// init router
	handler := httpserver.NewRouter(httpserver.Deps{
		Service:        svc,
		Sessions:       sessions,
		Health:         inf.Health,
		Limiter:        limiter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		LimitPerPage:   cfg.Console.LimitPerPage,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
