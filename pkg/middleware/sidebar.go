package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/org-console/pkg/application"
	"github.com/iota-uz/org-console/pkg/composables"
	"github.com/iota-uz/org-console/pkg/constants"
	"github.com/iota-uz/org-console/pkg/intl"
	"github.com/iota-uz/org-console/pkg/types"
)

// getEnabledNavItems drops empty groups and inlines groups with one child.
func getEnabledNavItems(items []types.NavigationItem) []types.NavigationItem {
	var out []types.NavigationItem
	for _, item := range items {
		if len(item.Children) > 0 {
			children := getEnabledNavItems(item.Children)
			childrenLen := len(children)
			if childrenLen == 0 {
				continue
			}
			if childrenLen == 1 {
				out = append(out, children[0])
			} else {
				item.Children = children
				out = append(out, item)
			}
		} else if item.Href != "" {
			out = append(out, item)
		}
	}

	return out
}

// NavItems translates the registered navigation and exposes the sidebar
// links and the favorites store to handlers.
func NavItems() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				app, err := application.UseApp(r.Context())
				if err != nil {
					panic(err.Error())
				}
				localizer, ok := intl.UseLocalizer(r.Context())
				if !ok {
					panic("localizer not found in context")
				}

				all := app.NavItems(localizer)
				ctx := context.WithValue(r.Context(), constants.AllNavItemsKey, all)
				ctx = context.WithValue(ctx, constants.NavItemsKey, getEnabledNavItems(all))
				if store := app.Favorites(); store != nil {
					ctx = composables.WithFavorites(ctx, store)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
			},
		)
	}
}
