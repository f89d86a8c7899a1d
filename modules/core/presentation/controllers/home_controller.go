package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/iota-uz/org-console/pkg/application"
	"github.com/iota-uz/org-console/pkg/composables"
	"github.com/iota-uz/org-console/pkg/crud"
	"github.com/iota-uz/org-console/pkg/favorites"
	"github.com/iota-uz/org-console/pkg/intl"
	"github.com/iota-uz/org-console/pkg/types"
	"github.com/iota-uz/org-console/pkg/views"
)

// homeHealthBudget caps how long the landing page waits for the backend.
const homeHealthBudget = 1500 * time.Millisecond

// HealthChecker reports backend reachability; *resource.Health implements it.
type HealthChecker interface {
	Status(ctx context.Context) error
}

type HomeController struct {
	app    application.Application
	health HealthChecker
}

// NewHomeController serves the landing page. Without a checker the backend is
// reported as unreachable.
func NewHomeController(app application.Application, health HealthChecker) application.Controller {
	return &HomeController{app: app, health: health}
}

func (c *HomeController) Key() string {
	return "/"
}

func (c *HomeController) Register(r *mux.Router) {
	r.HandleFunc("/", c.Home).Methods(http.MethodGet)
	r.HandleFunc("/home", c.Home).Methods(http.MethodGet)
}

func (c *HomeController) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tr := intl.UseTranslator(ctx)
	props := views.HomePageProps{Tr: tr, Healthy: true}

	if c.health == nil {
		props.Healthy = false
	} else if err := c.checkHealth(ctx); err != nil {
		composables.UseLogger(ctx).WithError(err).Warn("backend health check failed")
		props.Healthy = false
		props.HealthErr = err.Error()
	}

	for _, item := range types.Flatten(composables.UseNavItems(ctx)) {
		if item.Favoritable {
			props.Modules = append(props.Modules, views.ModuleCard{Name: item.Name, Href: item.Href, Icon: item.Icon})
		}
	}
	if store, ok := composables.UseFavorites(ctx); ok {
		for _, e := range store.ListByType(favorites.DefaultType) {
			props.Favorites = append(props.Favorites, views.NavLink{Name: e.Name, Href: e.Path, Icon: e.Icon})
		}
	}
	crud.RenderPage(w, r, tr.T("NavigationLinks.Home"), views.HomePage(props), nil)
}

func (c *HomeController) checkHealth(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, homeHealthBudget)
	defer cancel()
	return c.health.Status(ctx)
}
