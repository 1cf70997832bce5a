package main

import (
	"context"
	"errors"
	"os"

	"daybook/internal/amqp"
	"daybook/internal/backend"
	"daybook/internal/cli"
	"daybook/internal/core"
	"daybook/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	logger.Info("Starting daybook-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required to run the mirror worker")
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	if backendCfg.Type == backend.MemoryBackend {
		logger.Warn("Memory backend is private to this process; the worker will only see days it provisions itself")
	}
	// The worker consumes; it never publishes
	backendCfg.AMQPURL = ""

	factory := backend.NewFactory(logger)
	res, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", backendCfg.Type)
		os.Exit(1)
	}
	defer res.Close()

	writer, err := factory.CreateMirror(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create mirror", "error", err, "mirror", backendCfg.Mirror)
		os.Exit(1)
	}
	if writer == nil {
		logger.Info("Mirroring disabled, nothing to do", "mirror", backendCfg.Mirror)
		return
	}

	mirror := worker.NewMirrorWorker(res.Store, writer, cfg.MirrorConcurrency)
	if err := mirror.StartupResync(ctx, core.Today(), cfg.ResyncDays); err != nil {
		// Messages still flow; the next start retries the resync
		logger.Error("Startup resync failed", "error", err)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	logger.Info("Consuming day updates",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		"concurrency", cfg.MirrorConcurrency)

	err = client.ConsumeDayUpdated(ctx, mirror.HandleDayUpdated)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
	}

	cli.RunCleanup(logger, cfg.ShutdownTimeout, func(context.Context) {
		if err := client.Close(); err != nil {
			logger.Error("AMQP close error", "error", err)
		}
	})
}
