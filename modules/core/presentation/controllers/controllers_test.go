package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/iota-uz/org-console/modules/core/presentation/controllers/dtos"
	"github.com/iota-uz/org-console/pkg/application"
	"github.com/iota-uz/org-console/pkg/constants"
	"github.com/iota-uz/org-console/pkg/eventbus"
	"github.com/iota-uz/org-console/pkg/favorites"
	"github.com/iota-uz/org-console/pkg/httpapi"
	"github.com/iota-uz/org-console/pkg/middleware"
	"github.com/iota-uz/org-console/pkg/server"
	"github.com/iota-uz/org-console/pkg/spotlight"
	"github.com/iota-uz/org-console/pkg/types"
)

type stubHealth struct {
	err error
}

func (h stubHealth) Status(context.Context) error {
	return h.err
}

// hangingHealth blocks until the caller gives up.
type hangingHealth struct{}

func (hangingHealth) Status(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

var tenantLink = types.NavigationItem{Name: "NavigationLinks.Tenants", Href: "/modules/tenant", Favoritable: true}

type testEnv struct {
	app    application.Application
	store  *favorites.Store
	slot   *favorites.MemorySlot
	router *mux.Router
}

func newTestEnv(t *testing.T, health HealthChecker) *testEnv {
	t.Helper()
	slot := favorites.NewMemorySlot(nil)
	store := favorites.NewStore(slot)
	app := application.New(&application.ApplicationOptions{
		EventBus:  eventbus.NewEventPublisher(nil),
		Favorites: store,
	})
	app.RegisterNavItems(tenantLink)
	app.QuickLinks().Add(spotlight.NewQuickLink("", tenantLink.Name, tenantLink.Href))
	app.RegisterControllers(
		NewHomeController(app, health),
		NewFavoritesController(app),
		NewFavoritesAPIController(app),
		NewSpotlightController(app),
	)

	app.RegisterMiddleware(
		middleware.Provide(constants.AppKey, app),
		middleware.RequestParams(),
		middleware.ProvideLocalizer(app, language.Arabic),
		middleware.WithPageContext(),
		middleware.NavItems(),
	)
	r := server.NewHTTPServer(app, NotFound(), MethodNotAllowed()).Router()
	return &testEnv{app: app, store: store, slot: slot, router: r}
}

func (e *testEnv) do(t *testing.T, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func jsonHeaders() map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}

func formHeaders() map[string]string {
	return map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
}

func TestHomeController_ReportsBackendHealth(t *testing.T) {
	env := newTestEnv(t, stubHealth{})
	rec := env.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Home.BackendUp")
	assert.Contains(t, body, `href="/modules/tenant"`)
	assert.Contains(t, body, `dir="rtl"`)

	env = newTestEnv(t, stubHealth{err: errors.New("connection refused")})
	body = env.do(t, http.MethodGet, "/home", "", nil).Body.String()
	assert.Contains(t, body, "Home.BackendDown")
	assert.Contains(t, body, "connection refused")
}

func TestFavoritesController_ToggleUsesNavigationName(t *testing.T) {
	env := newTestEnv(t, stubHealth{})

	rec := env.do(t, http.MethodPost, "/favorites/toggle?path=%2Fmodules%2Ftenant", "", map[string]string{
		"Referer": "http://example.com/modules/tenant?x=1",
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/modules/tenant?x=1", rec.Header().Get("Location"))

	entries := env.store.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "NavigationLinks.Tenants", entries[0].Name)
	assert.Equal(t, favorites.DefaultType, entries[0].Type)

	env.do(t, http.MethodPost, "/favorites/toggle?path=%2Fmodules%2Ftenant", "", nil)
	assert.Zero(t, env.store.Len())
}

func TestHomeController_DoesNotWaitOnHangingBackend(t *testing.T) {
	env := newTestEnv(t, hangingHealth{})

	start := time.Now()
	rec := env.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Less(t, time.Since(start), homeHealthBudget+time.Second)
	assert.Contains(t, rec.Body.String(), "Home.BackendDown")
}

func TestFavoritesController_ToggleIgnoresOffsiteReferer(t *testing.T) {
	env := newTestEnv(t, stubHealth{})

	for _, referer := range []string{
		"http://example.com//evil.example/phish",
		"http://example.com/\\evil.example/phish",
		"http://evil.example/modules/tenant",
	} {
		env.do(t, http.MethodPost, "/favorites/toggle?path=%2Fmodules%2Ftenant", "", map[string]string{"Referer": referer})
		rec := env.do(t, http.MethodPost, "/favorites/toggle?path=%2Fmodules%2Ftenant", "", map[string]string{"Referer": referer})
		require.Equal(t, http.StatusSeeOther, rec.Code, referer)
		assert.Equal(t, "/modules/tenant", rec.Header().Get("Location"), referer)
	}
}

func TestFavoritesController_ToggleRejectsProtocolRelativePath(t *testing.T) {
	env := newTestEnv(t, stubHealth{})
	rec := env.do(t, http.MethodPost, "/favorites/toggle?path=%2F%2Fevil.example", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, env.store.Len())
}

func TestIsLocalPath(t *testing.T) {
	cases := map[string]bool{
		"/modules/tenant": true,
		"/":               true,
		"":                false,
		"modules":         false,
		"//evil.example":  false,
		"/\\evil.example": false,
		"https://evil":    false,
	}
	for path, want := range cases {
		assert.Equal(t, want, isLocalPath(path), path)
	}
}

func TestFavoritesController_ToggleRejectsMissingPath(t *testing.T) {
	env := newTestEnv(t, stubHealth{})
	rec := env.do(t, http.MethodPost, "/favorites/toggle", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, env.store.Len())
}

func TestFavoritesController_ListGroupsAndRemove(t *testing.T) {
	env := newTestEnv(t, stubHealth{})
	ctx := context.Background()
	_, err := env.store.Add(ctx, favorites.Item{Name: "Tenants", Path: "/modules/tenant"})
	require.NoError(t, err)
	_, err = env.store.Add(ctx, favorites.Item{Name: "Acme", Path: "/modules/tenant/edit/3", Type: "record"})
	require.NoError(t, err)

	body := env.do(t, http.MethodGet, "/favorites", "", nil).Body.String()
	assert.Contains(t, body, "Favorites.Types.module")
	assert.Contains(t, body, "Favorites.Types.record")
	assert.Contains(t, body, "Acme")

	form := url.Values{"key": {"/modules/tenant/edit/3"}}
	rec := env.do(t, http.MethodPost, "/favorites/remove", form.Encode(), formHeaders())
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/favorites?status=removed", rec.Header().Get("Location"))
	assert.Equal(t, 1, env.store.Len())

	body = env.do(t, http.MethodGet, "/favorites?status=removed", "", nil).Body.String()
	assert.Contains(t, body, "Favorites.Removed")
}

func TestFavoritesController_ClearReportsWriteFailure(t *testing.T) {
	env := newTestEnv(t, stubHealth{})
	_, err := env.store.Add(context.Background(), favorites.Item{Name: "Tenants", Path: "/modules/tenant"})
	require.NoError(t, err)
	env.slot.FailWrites(errors.New("disk full"))

	rec := env.do(t, http.MethodPost, "/favorites/clear", "", nil)
	assert.Equal(t, "/favorites?status=failed", rec.Header().Get("Location"))
	assert.Zero(t, env.store.Len())
}

func TestFavoritesAPI_AddListAndRemove(t *testing.T) {
	env := newTestEnv(t, stubHealth{})

	rec := env.do(t, http.MethodPost, "/api/favorites", `{"name":"Tenants","path":"/modules/tenant"}`, jsonHeaders())
	require.Equal(t, http.StatusCreated, rec.Code)
	var mutation dtos.FavoriteMutationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mutation))
	assert.True(t, mutation.Changed)
	assert.True(t, mutation.Favorite)
	assert.Equal(t, "/modules/tenant", mutation.Key)
	assert.Equal(t, 1, mutation.Favorites)

	rec = env.do(t, http.MethodPost, "/api/favorites", `{"name":"Tenants","path":"/modules/tenant"}`, jsonHeaders())
	assert.Equal(t, http.StatusOK, rec.Code, "adding twice is a no-op")

	rec = env.do(t, http.MethodPost, "/api/favorites", `{"id":"dept-7","name":"HR","path":"/modules/departments/edit/7","type":"record"}`, jsonHeaders())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/favorites?type=record", "", nil)
	var list dtos.FavoriteListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Favorites, 1)
	assert.Equal(t, "dept-7", list.Favorites[0].ID)

	rec = env.do(t, http.MethodDelete, "/api/favorites/dept-7", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/favorites/dept-7", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/favorites?key="+url.QueryEscape("/modules/tenant"), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, env.store.Len())
}

func TestFavoritesAPI_ValidationEnvelope(t *testing.T) {
	env := newTestEnv(t, stubHealth{})

	rec := env.do(t, http.MethodPost, "/api/favorites", `{"path":"/modules/tenant"}`, jsonHeaders())
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var envelope httpapi.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, httpapi.CodeValidation, envelope.Code)
	assert.Contains(t, envelope.Meta, "name")

	rec = env.do(t, http.MethodPost, "/api/favorites", `{"name":"x","bogus":1}`, jsonHeaders())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, env.store.Len())
}

func TestFavoritesAPI_ToggleAndClear(t *testing.T) {
	env := newTestEnv(t, stubHealth{})
	payload := `{"name":"Positions","path":"/modules/positions"}`

	rec := env.do(t, http.MethodPost, "/api/favorites/toggle", payload, jsonHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	var mutation dtos.FavoriteMutationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mutation))
	assert.True(t, mutation.Favorite)

	env.do(t, http.MethodPost, "/api/favorites/toggle", payload, jsonHeaders())
	assert.False(t, env.store.IsFavorite("/modules/positions"))

	env.do(t, http.MethodPost, "/api/favorites/toggle", payload, jsonHeaders())
	rec = env.do(t, http.MethodDelete, "/api/favorites", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, env.store.Len())
}

func TestSpotlightController_SingleMatchRedirects(t *testing.T) {
	env := newTestEnv(t, stubHealth{})

	rec := env.do(t, http.MethodGet, "/spotlight?q=tenant", "", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/modules/tenant", rec.Header().Get("Location"))

	rec = env.do(t, http.MethodGet, "/spotlight?q=tenant", "", map[string]string{"Hx-Request": "true"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/modules/tenant"`)
}

func TestNotFound_APIUsesEnvelope(t *testing.T) {
	env := newTestEnv(t, stubHealth{})

	rec := env.do(t, http.MethodGet, "/api/nothing", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	var envelope httpapi.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, httpapi.CodeNotFound, envelope.Code)

	rec = env.do(t, http.MethodGet, "/nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Errors.NotFound")
}
