package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iota-uz/org-console/pkg/composables"
	"github.com/iota-uz/org-console/pkg/constants"
	"github.com/iota-uz/org-console/pkg/crud"
)

func Provide(k constants.ContextKey, v any) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), k, v)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequestParams() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			params := &composables.Params{
				IP:        r.RemoteAddr,
				UserAgent: r.UserAgent(),
			}
			next.ServeHTTP(w, r.WithContext(composables.WithParams(r.Context(), params)))
		})
	}
}

// ViewSession binds the request to a view session, issuing the cookie on
// first contact. Views kept between requests are looked up by this id.
func ViewSession(cookieKey string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if c, err := r.Cookie(cookieKey); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					sid = c.Value
				}
			}
			if sid == "" {
				sid = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieKey,
					Value:    sid,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(crud.WithSession(r.Context(), sid)))
		})
	}
}
