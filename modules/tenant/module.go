package tenant

import (
	"embed"

	"github.com/iota-uz/org-console/pkg/application"
	"github.com/iota-uz/org-console/pkg/crud"
	"github.com/iota-uz/org-console/pkg/resource"
	"github.com/iota-uz/org-console/pkg/rest"
	"github.com/iota-uz/org-console/pkg/spotlight"
)

//go:embed presentation/locales/*.toml
var LocaleFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	transport := app.Service(rest.Client{}).(*rest.Client)
	conf := *app.Service(resource.Config{}).(*resource.Config)
	conf.Publisher = app.EventPublisher()

	app.RegisterLocaleFiles(&LocaleFiles)
	schema := NewSchema(NewCityLookup(transport, conf), conf.Logger)
	app.RegisterControllers(
		crud.NewController[Tenant, CreateTenant, UpdateTenant, Draft](
			schema, NewClient(transport, conf), app.Views(), crud.ViewOptions{Logger: conf.Logger},
		),
	)
	app.QuickLinks().Add(
		spotlight.NewQuickLink(Link.Icon, Link.Name, Link.Href),
		spotlight.NewQuickLink("+", "Tenants.List.New", Link.Href+"/add"),
	)
	return nil
}

func (m *Module) Name() string {
	return "tenant"
}
