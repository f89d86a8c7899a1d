package application

import (
	"context"
	"embed"
	"errors"

	"github.com/benbjohnson/hashfs"
	"github.com/gorilla/mux"
	"github.com/iota-uz/go-i18n/v2/i18n"

	"github.com/iota-uz/org-console/pkg/constants"
	"github.com/iota-uz/org-console/pkg/crud"
	"github.com/iota-uz/org-console/pkg/eventbus"
	"github.com/iota-uz/org-console/pkg/favorites"
	"github.com/iota-uz/org-console/pkg/spotlight"
	"github.com/iota-uz/org-console/pkg/types"
)

var ErrAppNotFound = errors.New("application not found in context")

type Controller interface {
	Register(r *mux.Router)
	Key() string
}

type Module interface {
	Register(app Application) error
	Name() string
}

// Application with a dynamically extendable service registry
type Application interface {
	EventPublisher() eventbus.EventBus
	Favorites() *favorites.Store
	Views() *crud.Registry
	Controllers() []Controller
	Middleware() []mux.MiddlewareFunc
	HashFsAssets() []*hashfs.FS
	QuickLinks() *spotlight.QuickLinks
	NavItems(localizer *i18n.Localizer) []types.NavigationItem
	RegisterNavItems(items ...types.NavigationItem)
	RegisterControllers(controllers ...Controller)
	RegisterHashFsAssets(fs ...*hashfs.FS)
	RegisterLocaleFiles(fs ...*embed.FS)
	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
	RegisterServices(services ...interface{})
	Service(service interface{}) interface{}
	Bundle() *i18n.Bundle
	GetSupportedLanguages() []string
}

func UseApp(ctx context.Context) (Application, error) {
	app, ok := ctx.Value(constants.AppKey).(Application)
	if !ok {
		return nil, ErrAppNotFound
	}
	return app, nil
}
