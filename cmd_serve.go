package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotel-pms/config"
	"hotel-pms/models"
	"hotel-pms/services"
	"hotel-pms/telemetry"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the automation scheduler",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	shutdownTracer := telemetry.Setup(cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.Insecure)

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	if err := config.AutoMigrate(db); err != nil {
		return err
	}
	if err := config.SeedDatabase(db, cfg.Seed, cfg.Server.BcryptCost); err != nil {
		return err
	}

	a := newApp(cfg, db, true)
	defer a.close()

	automationCfg, err := a.automation.Config(cmd.Context())
	if err != nil {
		return err
	}
	scheduler := services.NewScheduler(a.automation)
	if err := scheduler.Start(*automationCfg); err != nil {
		return err
	}
	a.automation.OnConfigChange = func(c models.AutomationConfig) {
		if err := scheduler.Reload(c); err != nil {
			log.WithError(err).Error("scheduler reload failed")
		}
	}

	router, err := a.router(scheduler)
	if err != nil {
		return err
	}

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(router, cfg.Telemetry.ServiceName),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("🚀 Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
		log.Info("⚠️  Shutdown signal received, shutting down server...")
	case err := <-serverErr:
		log.WithError(err).Error("❌ ListenAndServe failed")
		scheduler.Stop()
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	scheduler.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("❌ Server forced to shutdown")
	}
	if err := shutdownTracer(ctx); err != nil {
		log.WithError(err).Warn("tracer shutdown failed")
	}

	log.Info("✅ Server stopped gracefully")
	return nil
}
