package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/org-console/modules/core/presentation/controllers/dtos"
	"github.com/iota-uz/org-console/pkg/application"
	"github.com/iota-uz/org-console/pkg/composables"
	"github.com/iota-uz/org-console/pkg/crud"
	"github.com/iota-uz/org-console/pkg/favorites"
	"github.com/iota-uz/org-console/pkg/intl"
	"github.com/iota-uz/org-console/pkg/types"
	"github.com/iota-uz/org-console/pkg/views"
)

const (
	statusAdded   = "added"
	statusRemoved = "removed"
	statusCleared = "cleared"
	statusFailed  = "failed"
)

var statusAlerts = map[string]views.Alert{
	statusAdded:   {Severity: "success", Message: "Favorites.Added"},
	statusRemoved: {Severity: "success", Message: "Favorites.Removed"},
	statusCleared: {Severity: "info", Message: "Favorites.Cleared"},
	statusFailed:  {Severity: "error", Message: "Favorites.SaveFailed"},
}

type FavoritesController struct {
	app      application.Application
	basePath string
}

func NewFavoritesController(app application.Application) application.Controller {
	return &FavoritesController{app: app, basePath: "/favorites"}
}

func (c *FavoritesController) Key() string {
	return c.basePath
}

func (c *FavoritesController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/toggle", c.Toggle).Methods(http.MethodPost)
	router.HandleFunc("/remove", c.Remove).Methods(http.MethodPost)
	router.HandleFunc("/clear", c.Clear).Methods(http.MethodPost)
}

func (c *FavoritesController) List(w http.ResponseWriter, r *http.Request) {
	tr := intl.UseTranslator(r.Context())
	props := views.FavoritesPageProps{Tr: tr}
	for _, g := range c.app.Favorites().Grouped() {
		group := views.FavoriteGroup{Type: g.Type}
		for _, e := range g.Entries {
			group.Entries = append(group.Entries, views.FavoriteRow{
				Key:       e.ID,
				Name:      e.Name,
				Path:      e.Path,
				Icon:      e.Icon,
				DateAdded: e.DateAdded.Format("2006-01-02 15:04"),
			})
		}
		props.Groups = append(props.Groups, group)
	}
	query, err := composables.UseQuery(&dtos.FavoritesPageQuery{}, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if a, ok := statusAlerts[query.Status]; ok {
		a.Message = tr.T(a.Message)
		props.Alert = &a
	}
	crud.RenderPage(w, r, tr.T("Favorites.Title"), views.FavoritesPage(props), nil)
}

// Toggle flips the favorite for ?path=. Module links are named after their
// navigation entry; records pass name and type along.
func (c *FavoritesController) Toggle(w http.ResponseWriter, r *http.Request) {
	q, err := composables.UseQuery(&dtos.ToggleFavoriteQuery{}, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	path := strings.TrimSpace(q.Path)
	if !isLocalPath(path) {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}
	item := favorites.Item{Path: path, Name: q.Name, Type: q.Type}
	if nav, ok := findNavItem(composables.UseNavItems(r.Context()), path); ok {
		item.Name = nav.Name
		item.Icon = nav.Icon
		item.Type = favorites.DefaultType
	}
	if item.Name == "" {
		item.Name = path
	}

	logger := requestLogger(r).WithField("path", path)
	added, err := c.app.Favorites().Toggle(r.Context(), item)
	if err != nil {
		logger.WithError(err).Error("favorite toggle was not persisted")
	} else {
		logger.WithField("added", added).Info("favorite toggled")
	}
	http.Redirect(w, r, backTo(r, path), http.StatusSeeOther)
}

func (c *FavoritesController) Remove(w http.ResponseWriter, r *http.Request) {
	form, err := composables.UseForm(&dtos.RemoveFavoriteForm{}, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	status := statusRemoved
	if _, err := c.app.Favorites().Remove(r.Context(), form.Key); err != nil {
		requestLogger(r).WithField("key", form.Key).WithError(err).Error("favorite remove was not persisted")
		status = statusFailed
	}
	http.Redirect(w, r, c.basePath+"?status="+status, http.StatusSeeOther)
}

func (c *FavoritesController) Clear(w http.ResponseWriter, r *http.Request) {
	status := statusCleared
	if err := c.app.Favorites().ClearAll(r.Context()); err != nil {
		requestLogger(r).WithError(err).Error("favorites clear was not persisted")
		status = statusFailed
	}
	http.Redirect(w, r, c.basePath+"?status="+status, http.StatusSeeOther)
}

func findNavItem(items []types.NavigationItem, href string) (types.NavigationItem, bool) {
	for _, item := range types.Flatten(items) {
		if item.Favoritable && item.Href == href {
			return item, true
		}
	}
	return types.NavigationItem{}, false
}

// requestLogger tags favorites changes with the client that made them.
func requestLogger(r *http.Request) *logrus.Entry {
	logger := composables.UseLogger(r.Context())
	if ip, ok := composables.UseIP(r.Context()); ok {
		logger = logger.WithField("ip", ip)
	}
	if ua, ok := composables.UseUserAgent(r.Context()); ok {
		logger = logger.WithField("user-agent", ua)
	}
	return logger
}

// isLocalPath accepts absolute paths on this host, excluding protocol
// relative and backslash forms.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}

// backTo returns the same-site referer path, or fallback.
func backTo(r *http.Request, fallback string) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || (ref.Host != "" && ref.Host != r.Host) || !isLocalPath(ref.Path) {
		return fallback
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
