package controllers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iota-uz/org-console/modules/core/presentation/controllers/dtos"
	"github.com/iota-uz/org-console/pkg/application"
	"github.com/iota-uz/org-console/pkg/composables"
	"github.com/iota-uz/org-console/pkg/favorites"
	"github.com/iota-uz/org-console/pkg/httpapi"
)

// FavoritesAPIController is the JSON face of the favorites store.
//
//	GET    /api/favorites[?type=]   list
//	POST   /api/favorites           add
//	POST   /api/favorites/toggle    toggle
//	DELETE /api/favorites/{id}      remove by id
//	DELETE /api/favorites?key=      remove by key (path keyed entries)
//	DELETE /api/favorites           clear
type FavoritesAPIController struct {
	app      application.Application
	basePath string
}

func NewFavoritesAPIController(app application.Application) application.Controller {
	return &FavoritesAPIController{app: app, basePath: "/api/favorites"}
}

func (c *FavoritesAPIController) Key() string {
	return c.basePath
}

func (c *FavoritesAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Add).Methods(http.MethodPost)
	router.HandleFunc("", c.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/toggle", c.Toggle).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.RemoveByID).Methods(http.MethodDelete)
}

func (c *FavoritesAPIController) store() *favorites.Store {
	return c.app.Favorites()
}

func (c *FavoritesAPIController) List(w http.ResponseWriter, r *http.Request) {
	query, err := composables.UseQuery(&dtos.FavoriteListQuery{}, r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeInvalidRequest, err.Error(), nil)
		return
	}
	var entries []favorites.Entry
	if typ := strings.TrimSpace(query.Type); typ != "" {
		entries = c.store().ListByType(typ)
	} else {
		entries = c.store().All()
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.FavoriteListResponse{Favorites: dtos.FavoritesToDTOs(entries)})
}

func (c *FavoritesAPIController) decode(w http.ResponseWriter, r *http.Request) (favorites.Item, bool) {
	var dto dtos.CreateFavoriteDTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeInvalidRequest, err.Error(), nil)
		return favorites.Item{}, false
	}
	if env := httpapi.Validate(dto); env != nil {
		_ = httpapi.WriteJSON(w, http.StatusUnprocessableEntity, env)
		return favorites.Item{}, false
	}
	return dto.ToItem(), true
}

func (c *FavoritesAPIController) Add(w http.ResponseWriter, r *http.Request) {
	item, ok := c.decode(w, r)
	if !ok {
		return
	}
	created, err := c.store().Add(r.Context(), item)
	if err != nil {
		c.persistFailed(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.respond(w, status, created, item.Key())
}

func (c *FavoritesAPIController) Toggle(w http.ResponseWriter, r *http.Request) {
	item, ok := c.decode(w, r)
	if !ok {
		return
	}
	if _, err := c.store().Toggle(r.Context(), item); err != nil {
		c.persistFailed(w, r, err)
		return
	}
	c.respond(w, http.StatusOK, true, item.Key())
}

func (c *FavoritesAPIController) RemoveByID(w http.ResponseWriter, r *http.Request) {
	c.remove(w, r, mux.Vars(r)["id"])
}

func (c *FavoritesAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	query, err := composables.UseQuery(&dtos.FavoriteListQuery{}, r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeInvalidRequest, err.Error(), nil)
		return
	}
	if key := query.Key; key != "" {
		c.remove(w, r, key)
		return
	}
	if err := c.store().ClearAll(r.Context()); err != nil {
		c.persistFailed(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *FavoritesAPIController) remove(w http.ResponseWriter, r *http.Request, key string) {
	removed, err := c.store().Remove(r.Context(), key)
	if err != nil {
		c.persistFailed(w, r, err)
		return
	}
	if !removed {
		_ = httpapi.WriteError(w, http.StatusNotFound, httpapi.CodeNotFound, "favorite not found", map[string]string{"key": key})
		return
	}
	c.respond(w, http.StatusOK, true, key)
}

func (c *FavoritesAPIController) respond(w http.ResponseWriter, status int, changed bool, key string) {
	_ = httpapi.WriteJSON(w, status, dtos.FavoriteMutationResponse{
		Changed:   changed,
		Favorite:  c.store().IsFavorite(key),
		Key:       key,
		Favorites: c.store().Len(),
	})
}

// persistFailed reports a slot write failure. The in-memory change stands.
func (c *FavoritesAPIController) persistFailed(w http.ResponseWriter, r *http.Request, err error) {
	composables.UseLogger(r.Context()).WithError(err).Error("favorites not persisted")
	_ = httpapi.WriteError(w, http.StatusInternalServerError, httpapi.CodeInternal, "favorites could not be saved", nil)
}
