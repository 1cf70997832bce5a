package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"daybook/internal/backend"
	"daybook/internal/cli"
	"daybook/internal/controller"
	"daybook/internal/core"
	apphttp "daybook/internal/http"
	"daybook/internal/log"
	"daybook/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", backendCfg.Type)
		os.Exit(1)
	}

	ledgerSvc := services.NewLedgerService(res.Store, cfg.ProvisionWindowDays, res.Publisher)
	if cfg.StartupProvision {
		if err := ledgerSvc.Bootstrap(ctx, core.Today()); err != nil {
			// Reads provision on demand, so a failed bootstrap is not fatal
			logger.Error("Startup provisioning failed", "error", err)
		}
	}

	opts := []apphttp.Option{
		apphttp.WithLogger(log.FromSlog(logger, log.ComponentHTTP)),
	}
	if p, ok := res.Store.(apphttp.Pinger); ok {
		opts = append(opts, apphttp.WithPinger(p))
	}
	view := controller.New(ledgerSvc)
	srv := apphttp.NewServer(":"+cfg.Port, ledgerSvc, view, opts...)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting daybook server",
			"port", cfg.Port,
			"backend", backendCfg.Type,
			"provision_window", ledgerSvc.Provisioner().Window(),
			"publishing", res.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			logger.Error("Server error", "error", err, "port", cfg.Port)
			exitCode = 1
		}
	}

	cli.RunCleanup(logger, cfg.ShutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})
	cancel()
	os.Exit(exitCode)
}
