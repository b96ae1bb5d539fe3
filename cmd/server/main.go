package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sanchex-22/flow-console/internal/server"
	"github.com/Sanchex-22/flow-console/modules"
	"github.com/Sanchex-22/flow-console/modules/core"
	"github.com/Sanchex-22/flow-console/pkg/application"
	"github.com/Sanchex-22/flow-console/pkg/configuration"
	"github.com/Sanchex-22/flow-console/pkg/eventbus"
	"github.com/Sanchex-22/flow-console/pkg/logging"
	"github.com/Sanchex-22/flow-console/pkg/metrics"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	if conf.OpenTelemetry.Enabled {
		cleanup := logging.SetupTracing(
			context.Background(),
			conf.OpenTelemetry.ServiceName,
			conf.OpenTelemetry.TempoURL,
		)
		defer cleanup()
		logger.Info("OpenTelemetry tracing enabled, exporting to " + conf.OpenTelemetry.TempoURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})

	coreModule := core.NewModule()
	if err := modules.Load(app, coreModule); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}

	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	// The company list loads once at startup and keeps itself fresh in the
	// background; SIGHUP forces an immediate refetch, which also revives a
	// loader that exhausted its retry budget.
	loader := coreModule.Loader()
	loader.Start(context.Background())
	defer loader.Stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			logger.Info("SIGHUP received, refreshing company list")
			loader.Resume()
		}
	}()

	serverInstance, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Pool:          pool,
		ScopeManager:  coreModule.Manager(),
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	log.Printf("Listening on: %s://%s\n", conf.Scheme(), conf.SocketAddress)
	if err := serverInstance.Start(conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
