package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uniformedi/dlpgate/internal/audit"
	"github.com/uniformedi/dlpgate/internal/auth"
	"github.com/uniformedi/dlpgate/internal/config"
	"github.com/uniformedi/dlpgate/internal/files"
	"github.com/uniformedi/dlpgate/internal/filter"
	"github.com/uniformedi/dlpgate/internal/server"
	"github.com/uniformedi/dlpgate/internal/telemetry"
)

func main() {
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "dlpgate.yaml", "Path to dlpgate config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// The host pipeline's upload dir can be overridden by env, matching how
	// the deployment images wire it.
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		cfg.Uploads.Dir = dir
	}

	addr := cfg.Server.Addr
	if *addrFlag != "" {
		addr = *addrFlag
	}

	ctx := context.Background()
	tel, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
		Protocol: cfg.Telemetry.Protocol,
		Service:  cfg.Telemetry.Service,
		Version:  cfg.Telemetry.Version,
	})
	if err != nil {
		log.Fatalf("telemetry setup: %v", err)
	}

	sinks, err := audit.BuildSinks(cfg.Audit.Sinks)
	if err != nil {
		log.Fatalf("audit setup: %v", err)
	}
	emitter := audit.NewEmitter(audit.EmitterConfig{
		QueueSize:       cfg.Audit.QueueSize,
		Workers:         cfg.Audit.Workers,
		ShutdownTimeout: time.Duration(cfg.Audit.ShutdownTimeoutMS) * time.Millisecond,
	}, sinks)

	store := config.NewStore(cfg)
	engine := filter.New(store, files.NewDirResolver(cfg.Uploads.Dir), emitter)
	admin := auth.NewFromConfig(cfg)
	srv := server.New(store, *configPath, engine, admin, tel)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		emitter.Close(ctx)
		tel.Shutdown(ctx)
		log.Fatalf("server error: %v", err)
	case sig := <-sigCh:
		log.Printf("received %s, shutting down", sig)
		emitter.Close(ctx)
		tel.Shutdown(ctx)
	}
}
