package core

import (
	"embed"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/org-console/modules/core/handlers"
	"github.com/iota-uz/org-console/modules/core/presentation/assets"
	"github.com/iota-uz/org-console/modules/core/presentation/controllers"
	"github.com/iota-uz/org-console/pkg/application"
	"github.com/iota-uz/org-console/pkg/spotlight"
)

//go:embed presentation/locales/*.toml
var LocaleFiles embed.FS

type ModuleOptions struct {
	// Health backs the home page status line. Nil reports the backend as down.
	Health controllers.HealthChecker
	Logger *logrus.Logger
}

func NewModule(opts *ModuleOptions) application.Module {
	if opts == nil {
		opts = &ModuleOptions{}
	}
	return &Module{
		options: opts,
	}
}

type Module struct {
	options *ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	logger := m.options.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	app.RegisterLocaleFiles(&LocaleFiles)
	app.RegisterHashFsAssets(assets.HashFS)
	app.RegisterControllers(
		controllers.NewHomeController(app, m.options.Health),
		controllers.NewFavoritesController(app),
		controllers.NewFavoritesAPIController(app),
		controllers.NewSpotlightController(app),
	)
	app.QuickLinks().Add(
		spotlight.NewQuickLink(HomeLink.Icon, HomeLink.Name, HomeLink.Href),
		spotlight.NewQuickLink(FavoritesLink.Icon, FavoritesLink.Name, FavoritesLink.Href),
	)
	handlers.RegisterFavoritesEventHandlers(app, logger)
	return nil
}

func (m *Module) Name() string {
	return "core"
}
