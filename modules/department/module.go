package department

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

	client := NewClient(transport, conf)
	schema := NewSchema(client, NewManagerLookup(transport, conf), conf.Logger)

	app.RegisterLocaleFiles(&LocaleFiles)
	app.RegisterControllers(
		crud.NewController[Department, CreateDepartment, UpdateDepartment, Draft](
			schema, client, app.Views(), crud.ViewOptions{Logger: conf.Logger},
		),
	)
	app.QuickLinks().Add(
		spotlight.NewQuickLink(Link.Icon, Link.Name, Link.Href),
		spotlight.NewQuickLink("+", "Departments.List.New", Link.Href+"/add"),
	)
	return nil
}

func (m *Module) Name() string {
	return "department"
}
