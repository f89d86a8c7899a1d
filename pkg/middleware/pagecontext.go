package middleware

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/org-console/pkg/composables"
	"github.com/iota-uz/org-console/pkg/intl"
	"github.com/iota-uz/org-console/pkg/types"
)

func WithPageContext() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				locale, ok := intl.UseLocale(r.Context())
				if !ok {
					panic("locale not found")
				}
				pageCtx := &types.PageContext{
					URL:    r.URL,
					Locale: locale,
				}
				next.ServeHTTP(w, r.WithContext(composables.WithPageCtx(r.Context(), pageCtx)))
			},
		)
	}
}
