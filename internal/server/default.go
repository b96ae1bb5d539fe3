package server

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/Sanchex-22/flow-console/modules/core/presentation/controllers"
	"github.com/Sanchex-22/flow-console/pkg/application"
	"github.com/Sanchex-22/flow-console/pkg/configuration"
	"github.com/Sanchex-22/flow-console/pkg/constants"
	"github.com/Sanchex-22/flow-console/pkg/middleware"
	"github.com/Sanchex-22/flow-console/pkg/scope"
	"github.com/Sanchex-22/flow-console/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
	ScopeManager  *scope.Manager
}

// Default assembles the middleware stack around the registered modules.
// Order matters: logging first, then context plumbing, then auth.
func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger),

		middleware.Traced("provide"),
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.PoolKey, options.Pool),
	}

	if options.Configuration.RateLimit.Enabled {
		var store limiter.Store
		var err error
		switch options.Configuration.RateLimit.Storage {
		case "redis":
			store, err = middleware.NewRedisStore(options.Configuration.RateLimit.RedisURL)
			if err != nil {
				options.Logger.WithError(err).Warn("redis rate limit store unavailable, falling back to memory")
				store = middleware.NewMemoryStore()
			}
		default:
			store = middleware.NewMemoryStore()
		}

		middlewares = append(middlewares,
			middleware.Traced("rateLimit"),
			middleware.RateLimit(middleware.RateLimitConfig{
				RequestsPerPeriod: options.Configuration.RateLimit.GlobalRPS,
				Store:             store,
			}),
		)
	}

	middlewares = append(middlewares,
		middleware.Traced("requestParams"),
		middleware.RequestParams(),
		middleware.Traced("authorize"),
		middleware.Authorize(app, options.ScopeManager),
	)

	app.RegisterMiddleware(middlewares...)

	return server.NewHTTPServer(
		app,
		controllers.NotFound(),
		controllers.MethodNotAllowed(),
	), nil
}
