package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/iota-uz/org-console/internal/server"
	"github.com/iota-uz/org-console/modules"
	"github.com/iota-uz/org-console/modules/core"
	"github.com/iota-uz/org-console/modules/core/presentation/controllers"
	"github.com/iota-uz/org-console/pkg/application"
	"github.com/iota-uz/org-console/pkg/configuration"
	"github.com/iota-uz/org-console/pkg/crud"
	"github.com/iota-uz/org-console/pkg/eventbus"
	"github.com/iota-uz/org-console/pkg/favorites"
	"github.com/iota-uz/org-console/pkg/logging"
	"github.com/iota-uz/org-console/pkg/metrics"
	"github.com/iota-uz/org-console/pkg/resource"
	"github.com/iota-uz/org-console/pkg/rest"
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
	defer conf.Unload()
	logger := conf.Logger()

	// Set up OpenTelemetry if enabled
	if conf.OpenTelemetry.Enabled {
		tracingCleanup := logging.SetupTracing(
			context.Background(),
			conf.OpenTelemetry.ServiceName,
			conf.OpenTelemetry.TempoURL,
		)
		defer tracingCleanup()
		logger.Info("OpenTelemetry tracing enabled, exporting to Tempo at " + conf.OpenTelemetry.TempoURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	slot, err := favorites.OpenSlot(ctx, conf)
	if err != nil {
		log.Fatalf("failed to open favorites storage: %v", err)
	}
	store := favorites.NewStore(slot, favorites.WithLogger(logger.WithField("component", "favorites")))
	defer store.Close()
	if err := store.Load(ctx); err != nil {
		logger.WithError(err).Warn("favorites could not be loaded, starting empty")
	}

	transport, err := rest.New(rest.Options{
		BaseURL:         conf.Backend.BaseURL(),
		Timeout:         conf.Backend.Timeout,
		RequestIDHeader: conf.RequestIDHeader,
		Logger:          logger.WithField("component", "rest"),
	})
	if err != nil {
		log.Fatalf("failed to create backend client: %v", err)
	}

	app := application.New(&application.ApplicationOptions{
		EventBus:  eventbus.NewEventPublisher(logger),
		Logger:    logger,
		Favorites: store,
		Views:     crud.NewRegistry(conf.ViewSessionSize, conf.ViewSessionTTL),
	})
	app.RegisterServices(transport, &resource.Config{
		Logger:            logger,
		DeleteConcurrency: conf.Backend.DeleteConcurrency,
	})

	builtIn := modules.BuiltInModules(&core.ModuleOptions{
		Health: resource.NewHealth(transport, conf.Backend.HealthTimeout),
		Logger: logger,
	})
	if err := modules.Load(app, builtIn...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}
	app.RegisterNavItems(modules.NavLinks...)
	app.RegisterControllers(
		controllers.NewStaticFilesController(app.HashFsAssets(), conf.GoAppEnvironment == configuration.Production),
	)
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path, app))
	}

	serverInstance, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := serverInstance.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("graceful shutdown failed")
		}
	}()

	log.Printf("Listening on: %s\n", conf.Origin)
	if err := serverInstance.Start(conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
