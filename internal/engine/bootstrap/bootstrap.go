// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-arcade/arcade-admin/internal/engine/config"
	"github.com/go-arcade/arcade-admin/internal/engine/job"
	"github.com/go-arcade/arcade-admin/internal/engine/router"
	"github.com/go-arcade/arcade-admin/internal/pkg/datascope"
	"github.com/go-arcade/arcade-admin/pkg/http/middleware"
	"github.com/go-arcade/arcade-admin/pkg/log"
	"github.com/go-arcade/arcade-admin/pkg/metrics"
	"github.com/go-arcade/arcade-admin/pkg/trace"
	"github.com/gofiber/fiber/v2"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

type App struct {
	HttpApp   *fiber.App
	Metrics   *metrics.Server
	Scheduler *job.Scheduler
	Logger    *log.Logger
	AppConf   *config.AppConfig
}

// InitAppFunc init app function type
type InitAppFunc func(configPath string) (*App, func(), error)

func NewApp(
	rt *router.Router,
	logger *log.Logger,
	metricsServer *metrics.Server,
	scheduler *job.Scheduler,
	_ *sdktrace.TracerProvider,
	appConf *config.AppConfig,
) (*App, func(), error) {
	// 日志自动携带请求ID、链路ID与调用方身份
	log.RegisterContextFields(middleware.RequestLogFields)
	log.RegisterContextFields(trace.LogFields)
	log.RegisterContextFields(datascope.LogFields)

	app := &App{
		HttpApp:   rt.Router(),
		Metrics:   metricsServer,
		Scheduler: scheduler,
		Logger:    logger,
		AppConf:   appConf,
	}

	cleanup := func() {
		scheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Stop(ctx); err != nil {
			logger.Log.Warnw("metrics server shutdown error", zap.Error(err))
		}
	}

	return app, cleanup, nil
}

// Bootstrap init app, return App instance and cleanup function
func Bootstrap(configFile string, initApp InitAppFunc) (*App, func(), error) {
	// Wire build App (所有依赖都由 wire 自动注入)
	return initApp(configFile)
}

// Run start app and wait for exit signal, then gracefully shutdown
func Run(app *App, cleanup func()) {
	logger := app.Logger.Log
	httpConf := app.AppConf.Http

	if err := app.Metrics.Start(); err != nil {
		logger.Errorw("metrics server failed to start", zap.Error(err))
	}
	app.Scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		addr := httpConf.Addr()
		logger.Infow("HTTP listener started", "address", addr)
		if err := app.HttpApp.Listen(addr); err != nil {
			logger.Errorw("HTTP listener failed", "address", addr, zap.Error(err))
		}
	}()

	sig := <-quit
	logger.Infof("Received signal: %v, shutting down gracefully...", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(httpConf.ShutdownTimeout)*time.Second)
	defer shutdownCancel()
	if err := app.HttpApp.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Errorf("HTTP server shutdown error: %v", err)
	} else {
		logger.Info("HTTP server shut down gracefully")
	}

	cleanup()
	_ = log.Sync()

	logger.Info("Server shutdown complete")
}
