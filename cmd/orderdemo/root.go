package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/totegamma/orderdemo/internal/config"
	"github.com/totegamma/orderdemo/internal/infra/metrics"
	"github.com/totegamma/orderdemo/internal/infra/tracing"
	"github.com/totegamma/orderdemo/internal/logging"
	"github.com/totegamma/orderdemo/internal/present/rest"
	restmiddleware "github.com/totegamma/orderdemo/internal/present/rest/middleware"
)

const version = "1.0.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "orderdemo",
	Short:         "Order, user and board demo services",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the yaml config file")
}

// app is what every service needs before it registers its routes.
type app struct {
	conf     config.Config
	metrics  *metrics.Metrics
	shutdown func(context.Context) error
}

// setup loads the config, lets prepare apply command line overrides and
// service specific checks, then starts logging and tracing.
func setup(ctx context.Context, serviceName string, prepare func(*config.Config) error) (*app, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if prepare != nil {
		if err := prepare(&conf); err != nil {
			return nil, err
		}
		if err := conf.Validate(); err != nil {
			return nil, err
		}
	}

	slog.SetDefault(logging.New(conf.Server.LogFormat, conf.Server.LogLevel).With(
		slog.String("service", serviceName),
	))
	slog.Info("starting", slog.String("version", version), slog.String("config", configPath), slog.String("module", "main"))

	shutdown := func(context.Context) error { return nil }
	if conf.Server.EnableTrace {
		shutdown, err = tracing.Setup(ctx, conf.Server.TraceEndpoint, serviceName, version)
		if err != nil {
			return nil, err
		}
	}

	return &app{
		conf:     conf,
		metrics:  metrics.New(true),
		shutdown: shutdown,
	}, nil
}

func (a *app) newEcho(serviceName string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = rest.HTTPErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(a.metrics.Middleware())
	e.Use(otelecho.Middleware(serviceName))
	e.Use(restmiddleware.RequestTracing)

	rest.NewHandler(serviceName, a.metrics).RegisterRoutes(e)
	return e
}

// serve runs e on listen until ctx is done, then drains in-flight
// requests and flushes traces.
func (a *app) serve(ctx context.Context, e *echo.Echo, listen string) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", slog.String("listen", listen), slog.String("module", "main"))
		errCh <- e.Start(listen)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("shutting down", slog.String("module", "main"))
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", slog.String("error", err.Error()), slog.String("module", "main"))
	}
	if err := a.shutdown(shutdownCtx); err != nil {
		slog.Error("tracer shutdown failed", slog.String("error", err.Error()), slog.String("module", "main"))
	}
	return nil
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
