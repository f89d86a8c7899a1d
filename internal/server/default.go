package server

import (
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	"golang.org/x/text/language"

	"github.com/iota-uz/org-console/modules/core/presentation/assets"
	"github.com/iota-uz/org-console/modules/core/presentation/controllers"
	"github.com/iota-uz/org-console/pkg/application"
	"github.com/iota-uz/org-console/pkg/configuration"
	"github.com/iota-uz/org-console/pkg/constants"
	"github.com/iota-uz/org-console/pkg/metrics"
	"github.com/iota-uz/org-console/pkg/middleware"
	"github.com/iota-uz/org-console/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	// Core middleware stack with tracing capabilities
	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, middleware.DefaultLoggerOptions()), // creates the root span for each request

		middleware.TracedMiddleware("provide"),
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.HeadKey, assets.StylesheetPath()),

		middleware.TracedMiddleware("cors"),
		middleware.Cors(conf.AllowedOrigins()...),
	}

	if conf.RateLimit.Enabled {
		var store limiter.Store
		var err error

		switch conf.RateLimit.Storage {
		case "redis":
			store, err = middleware.NewRedisStore(conf.RateLimit.RedisURL)
			if err != nil {
				options.Logger.WithError(err).Warn("Failed to create Redis store for rate limiting, falling back to memory")
				store = middleware.NewMemoryStore()
			}
		default:
			store = middleware.NewMemoryStore()
		}

		middlewares = append(middlewares,
			middleware.TracedMiddleware("rateLimit"),
			middleware.RateLimit(middleware.RateLimitConfig{
				RequestsPerPeriod: conf.RateLimit.GlobalRPS,
				Store:             store,
			}),
		)
	}

	middlewares = append(middlewares,
		middleware.TracedMiddleware("requestParams"),
		middleware.RequestParams(),
		middleware.TracedMiddleware("localizer"),
		middleware.ProvideLocalizer(app, language.Make(conf.DefaultLocale)),
		middleware.WithPageContext(),
		middleware.NavItems(),
		middleware.ViewSession(conf.SidCookieKey),
	)
	if conf.Prometheus.Enabled {
		middlewares = append(middlewares, metrics.Middleware())
	}

	app.RegisterMiddleware(middlewares...)

	serverInstance := server.NewHTTPServer(
		app,
		controllers.NotFound(),
		controllers.MethodNotAllowed(),
	)
	return serverInstance, nil
}
