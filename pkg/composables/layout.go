package composables

import (
	"context"
	"net/url"
	"strings"

	"github.com/iota-uz/org-console/pkg/constants"
	"github.com/iota-uz/org-console/pkg/favorites"
	"github.com/iota-uz/org-console/pkg/intl"
	"github.com/iota-uz/org-console/pkg/types"
	"github.com/iota-uz/org-console/pkg/views"
)

func WithFavorites(ctx context.Context, store *favorites.Store) context.Context {
	return context.WithValue(ctx, constants.FavoritesKey, store)
}

func UseFavorites(ctx context.Context) (*favorites.Store, bool) {
	store, ok := ctx.Value(constants.FavoritesKey).(*favorites.Store)
	return store, ok && store != nil
}

func UseNavItems(ctx context.Context) []types.NavigationItem {
	items, _ := ctx.Value(constants.NavItemsKey).([]types.NavigationItem)
	return items
}

// ToggleFavoriteURL is the sidebar star action for a nav link.
func ToggleFavoriteURL(path string) string {
	return "/favorites/toggle?path=" + url.QueryEscape(path)
}

// RecordType is the favorites category for a single entity record.
const RecordType = "record"

// ToggleRecordFavoriteURL is the edit form star action for a record.
func ToggleRecordFavoriteURL(path, name string) string {
	q := url.Values{"path": {path}, "name": {name}, "type": {RecordType}}
	return "/favorites/toggle?" + q.Encode()
}

// UseLayoutProps assembles the page chrome from the request context.
func UseLayoutProps(ctx context.Context, title string) views.LayoutProps {
	props := views.LayoutProps{
		Tr:    intl.UseTranslator(ctx),
		Title: title,
		Lang:  "ar",
		Dir:   "rtl",
	}
	current := ""
	if pageCtx, ok := TryUsePageCtx(ctx); ok {
		props.Lang = pageCtx.GetLocale().String()
		props.Dir = pageCtx.Dir()
		if u := pageCtx.GetURL(); u != nil {
			current = u.Path
			props.Query = u.Query().Get("q")
		}
	}
	if css, ok := ctx.Value(constants.HeadKey).(string); ok {
		props.CSS = css
	}

	store, hasStore := UseFavorites(ctx)
	for _, item := range types.Flatten(UseNavItems(ctx)) {
		link := views.NavLink{
			Name:   item.Name,
			Href:   item.Href,
			Icon:   item.Icon,
			Active: isActive(current, item.Href),
		}
		if item.Favoritable && hasStore {
			link.Favorite = store.IsFavorite(item.Href)
			link.ToggleURL = ToggleFavoriteURL(item.Href)
		}
		props.Nav = append(props.Nav, link)
	}
	if hasStore {
		for _, e := range store.ListByType(favorites.DefaultType) {
			props.Favorites = append(props.Favorites, views.NavLink{Name: e.Name, Href: e.Path, Icon: e.Icon})
		}
	}
	return props
}

func isActive(current, href string) bool {
	if href == "/" {
		return current == "/" || current == "/home"
	}
	return current == href || strings.HasPrefix(current, href+"/")
}
