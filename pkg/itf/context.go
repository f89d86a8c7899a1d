// Package itf builds a console application wired to a fake backend for
// module integration tests.
package itf

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/iota-uz/org-console/pkg/application"
	"github.com/iota-uz/org-console/pkg/constants"
	"github.com/iota-uz/org-console/pkg/crud"
	"github.com/iota-uz/org-console/pkg/eventbus"
	"github.com/iota-uz/org-console/pkg/favorites"
	"github.com/iota-uz/org-console/pkg/logging"
	"github.com/iota-uz/org-console/pkg/middleware"
	"github.com/iota-uz/org-console/pkg/resource"
	"github.com/iota-uz/org-console/pkg/rest"
	"github.com/iota-uz/org-console/pkg/server"
	"github.com/iota-uz/org-console/pkg/types"
)

// SessionCookie is the view session cookie used by test environments.
const SessionCookie = "console_sid"

// TestContext provides a fluent API for building test environments
type TestContext struct {
	modules  []application.Module
	navItems []types.NavigationItem
	backend  http.Handler
	locale   language.Tag
}

func NewTestContext() *TestContext {
	return &TestContext{locale: language.Arabic}
}

// WithModules adds modules to the test context
func (tc *TestContext) WithModules(modules ...application.Module) *TestContext {
	tc.modules = append(tc.modules, modules...)
	return tc
}

func (tc *TestContext) WithNavItems(items ...types.NavigationItem) *TestContext {
	tc.navItems = append(tc.navItems, items...)
	return tc
}

// WithBackend serves the fake REST backend. Paths are relative to /api.
func (tc *TestContext) WithBackend(h http.Handler) *TestContext {
	tc.backend = h
	return tc
}

func (tc *TestContext) WithLocale(tag language.Tag) *TestContext {
	tc.locale = tag
	return tc
}

// Build creates the application, registers the modules and starts the backend.
func (tc *TestContext) Build(tb testing.TB) *TestEnvironment {
	tb.Helper()

	backend := tc.backend
	if backend == nil {
		backend = http.NotFoundHandler()
	}
	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", backend))
	srv := httptest.NewServer(mux)
	tb.Cleanup(srv.Close)

	logger := logging.DiscardLogger()
	transport, err := rest.New(rest.Options{
		BaseURL: srv.URL + "/api",
		Timeout: 2 * time.Second,
		Logger:  logger,
	})
	if err != nil {
		tb.Fatal(err)
	}

	slot := favorites.NewMemorySlot(nil)
	store := favorites.NewStore(slot, favorites.WithLogger(logger))
	app := application.New(&application.ApplicationOptions{
		EventBus:  eventbus.NewEventPublisher(logger),
		Logger:    logger,
		Favorites: store,
		Views:     crud.NewRegistry(64, time.Minute),
	})
	app.RegisterServices(transport, &resource.Config{Logger: logger, DeleteConcurrency: 4})

	for _, m := range tc.modules {
		if err := m.Register(app); err != nil {
			tb.Fatalf("register module %s: %v", m.Name(), err)
		}
	}
	app.RegisterNavItems(tc.navItems...)

	app.RegisterMiddleware(
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.LoggerKey, logger.WithField("test", tb.Name())),
		middleware.RequestParams(),
		middleware.ProvideLocalizer(app, tc.locale),
		middleware.WithPageContext(),
		middleware.NavItems(),
		middleware.ViewSession(SessionCookie),
	)
	handler := server.NewHTTPServer(app, nil, nil).Router()

	return &TestEnvironment{
		App:     app,
		Handler: handler,
		Backend: srv,
		Store:   store,
		Slot:    slot,
	}
}

// TestEnvironment contains all test dependencies
type TestEnvironment struct {
	App     application.Application
	Handler http.Handler
	Backend *httptest.Server
	Store   *favorites.Store
	Slot    *favorites.MemorySlot

	cookies []*http.Cookie
}

// Service retrieves a service from the application
func (te *TestEnvironment) Service(service interface{}) interface{} {
	return te.App.Service(service)
}

// GetService is a generic helper that retrieves and casts a service
func GetService[T any](te *TestEnvironment) *T {
	var zero T
	service := te.App.Service(zero)
	if service == nil {
		return nil
	}
	return service.(*T)
}
