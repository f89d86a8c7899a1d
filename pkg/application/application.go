package application

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"

	"github.com/benbjohnson/hashfs"
	"github.com/gorilla/mux"
	"github.com/iota-uz/go-i18n/v2/i18n"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"

	"github.com/iota-uz/org-console/pkg/crud"
	"github.com/iota-uz/org-console/pkg/eventbus"
	"github.com/iota-uz/org-console/pkg/favorites"
	"github.com/iota-uz/org-console/pkg/intl"
	"github.com/iota-uz/org-console/pkg/spotlight"
	"github.com/iota-uz/org-console/pkg/types"
)

func translate(localizer *i18n.Localizer, items []types.NavigationItem) []types.NavigationItem {
	translated := make([]types.NavigationItem, 0, len(items))
	for _, item := range items {
		name, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: item.Name})
		if err != nil {
			name = item.Name
		}
		translated = append(translated, types.NavigationItem{
			Name:        name,
			Href:        item.Href,
			Children:    translate(localizer, item.Children),
			Icon:        item.Icon,
			Favoritable: item.Favoritable,
		})
	}
	return translated
}

func listFiles(fsys fs.FS, dir string) ([]string, error) {
	var fileList []string

	err := fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			fileList = append(fileList, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error reading directory %q: %w", dir, err)
	}

	return fileList, nil
}

// ---- Application implementation ----

type ApplicationOptions struct {
	EventBus           eventbus.EventBus
	Logger             *logrus.Logger
	Bundle             *i18n.Bundle
	Favorites          *favorites.Store
	Views              *crud.Registry
	SupportedLanguages []string
}

// LoadBundle returns an empty bundle whose default language is Arabic.
func LoadBundle() *i18n.Bundle {
	return intl.NewBundle(language.Arabic)
}

func defaultSupportedLanguageCodes() []string {
	return []string{"ar", "en"}
}

func New(opts *ApplicationOptions) Application {
	supportedLanguages := opts.SupportedLanguages
	if len(supportedLanguages) == 0 {
		supportedLanguages = defaultSupportedLanguageCodes()
	}
	bundle := opts.Bundle
	if bundle == nil {
		bundle = LoadBundle()
	}

	return &application{
		eventPublisher:     opts.EventBus,
		favorites:          opts.Favorites,
		views:              opts.Views,
		controllers:        make(map[string]Controller),
		services:           make(map[reflect.Type]interface{}),
		quickLinks:         &spotlight.QuickLinks{},
		bundle:             bundle,
		supportedLanguages: supportedLanguages,
	}
}

type application struct {
	eventPublisher     eventbus.EventBus
	favorites          *favorites.Store
	views              *crud.Registry
	services           map[reflect.Type]interface{}
	controllers        map[string]Controller
	controllerOrder    []string
	middleware         []mux.MiddlewareFunc
	hashFsAssets       []*hashfs.FS
	bundle             *i18n.Bundle
	quickLinks         *spotlight.QuickLinks
	navItems           []types.NavigationItem
	supportedLanguages []string
}

func (app *application) QuickLinks() *spotlight.QuickLinks {
	return app.quickLinks
}

func (app *application) NavItems(localizer *i18n.Localizer) []types.NavigationItem {
	return translate(localizer, app.navItems)
}

func (app *application) RegisterNavItems(items ...types.NavigationItem) {
	app.navItems = append(app.navItems, items...)
}

func (app *application) Middleware() []mux.MiddlewareFunc {
	return app.middleware
}

func (app *application) EventPublisher() eventbus.EventBus {
	return app.eventPublisher
}

func (app *application) Favorites() *favorites.Store {
	return app.favorites
}

func (app *application) Views() *crud.Registry {
	return app.views
}

// Controllers returns the registered controllers in registration order.
func (app *application) Controllers() []Controller {
	controllers := make([]Controller, 0, len(app.controllers))
	for _, key := range app.controllerOrder {
		controllers = append(controllers, app.controllers[key])
	}
	return controllers
}

func (app *application) HashFsAssets() []*hashfs.FS {
	return app.hashFsAssets
}

func (app *application) RegisterControllers(controllers ...Controller) {
	for _, c := range controllers {
		if _, exists := app.controllers[c.Key()]; !exists {
			app.controllerOrder = append(app.controllerOrder, c.Key())
		}
		app.controllers[c.Key()] = c
	}
}

func (app *application) RegisterMiddleware(middleware ...mux.MiddlewareFunc) {
	app.middleware = append(app.middleware, middleware...)
}

func (app *application) RegisterHashFsAssets(fs ...*hashfs.FS) {
	app.hashFsAssets = append(app.hashFsAssets, fs...)
}

func (app *application) RegisterLocaleFiles(fs ...*embed.FS) {
	for _, localeFs := range fs {
		files, err := listFiles(localeFs, ".")
		if err != nil {
			panic(err)
		}
		for _, file := range files {
			localeFile, err := localeFs.ReadFile(file)
			if err != nil {
				panic(err)
			}
			app.bundle.MustParseMessageFileBytes(localeFile, filepath.Base(file))
		}
	}
}

// RegisterServices registers a new service in the application by its type
func (app *application) RegisterServices(services ...interface{}) {
	for _, service := range services {
		serviceType := reflect.TypeOf(service).Elem()
		app.services[serviceType] = service
	}
}

// Service retrieves a service by its type
func (app *application) Service(service interface{}) interface{} {
	serviceType := reflect.TypeOf(service)
	svc, exists := app.services[serviceType]
	if !exists {
		panic(fmt.Sprintf("service %s not found", serviceType.Name()))
	}
	return svc
}

func (app *application) Bundle() *i18n.Bundle {
	return app.bundle
}

func (app *application) GetSupportedLanguages() []string {
	return app.supportedLanguages
}
