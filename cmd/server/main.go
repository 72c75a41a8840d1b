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

	"golang.org/x/sync/errgroup"

	"aesthetica/internal/config"
	"aesthetica/internal/event"
	"aesthetica/internal/httpapi"
	"aesthetica/internal/llm"
	"aesthetica/internal/logger"
	"aesthetica/internal/observability"
	"aesthetica/internal/persist"
	"aesthetica/internal/service"
	"aesthetica/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "aesthetica: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:], ".env")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, log, observability.TracingConfig{
		Enabled:     cfg.OTelEnabled,
		ServiceName: "aesthetica",
	})
	if err != nil {
		log.Warn("tracing disabled", "error", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	st, err := store.NewByEngine(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn("store close failed", "error", err)
		}
	}()
	log.Info("store ready",
		"engine", cfg.Store.Engine,
		"path", cfg.Store.Path,
		"quota_bytes", cfg.Store.QuotaBytes,
	)

	client, err := llm.NewClient(llm.Config{
		BaseURL:    cfg.LLMBaseURL,
		APIKey:     cfg.LLMAPIKey,
		ChatModel:  cfg.LLMChatModel,
		ImageModel: cfg.LLMImageModel,
		Timeout:    cfg.LLMTimeout,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("init llm client: %w", err)
	}
	log.Info("llm client ready", "base", cfg.LLMBaseURL, "key_meta", config.SafeKeyMeta(cfg.LLMAPIKey))

	publisher, err := event.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
	if err != nil {
		return fmt.Errorf("init event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("event publisher close failed", "error", err)
		}
	}()

	svc := service.New(service.Deps{
		Repo:      persist.New(st, log),
		Provider:  client,
		Evaluator: client,
		Publisher: publisher,
		Location:  cfg.Location,
		Logger:    log,
		APIKey:    cfg.LLMAPIKey,
	})
	svc.Load(ctx)
	defer svc.Close()

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewRouter(httpapi.NewHandler(svc, log), log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("aesthetica listening", "addr", cfg.Addr, "timezone", cfg.Location.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return server.Shutdown(sctx)
	})
	return g.Wait()
}
