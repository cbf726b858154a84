package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bwise1/groupsplit_api/config"
	deps "github.com/bwise1/groupsplit_api/internal/debs"
	api "github.com/bwise1/groupsplit_api/internal/http/rest"
	"github.com/bwise1/groupsplit_api/util"
)

const (
	allowConnectionsAfterShutdown = 1 * time.Second
	shutdownTimeout               = 15 * time.Second
)

func main() {
	cfg := config.New()
	util.InitLogger(cfg.LogLevel, cfg.AppEnv)

	deps, err := deps.New(cfg)
	if err != nil {
		util.Logger.WithFields(logrus.Fields{"error": err}).Fatal("failed to initialise dependencies")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.AutoMigrate {
		applied, err := deps.DB.Migrate(ctx)
		if err != nil {
			deps.Close()
			util.Logger.WithFields(logrus.Fields{"error": err}).Fatal("failed to run migrations")
		}
		util.Logger.WithFields(logrus.Fields{"applied": len(applied)}).Info("migrations complete")
	}

	go deps.WebSocket.Run(ctx)
	deps.Scheduler.Start()

	a := &api.API{
		Config: cfg,
		Deps:   deps,
	}
	if cfg.MetricsEnabled {
		a.Metrics = api.NewMetrics()
	}

	go func() {
		util.Logger.WithFields(logrus.Fields{"port": cfg.Port}).Info("server running")
		if err := a.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			util.Logger.WithFields(logrus.Fields{"error": err}).Fatal("server stopped")
		}
	}()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-stopChan

	util.Logger.Infof("shutdown requested, waiting %s before closing listeners", allowConnectionsAfterShutdown)
	time.Sleep(allowConnectionsAfterShutdown)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := a.Shutdown(shutdownCtx); err != nil {
		util.Logger.WithFields(logrus.Fields{"error": err}).Error("server shutdown failed")
	}
	deps.Scheduler.Stop(shutdownCtx)
	cancel()
	deps.Close()
	util.Logger.Info("server stopped")
}
