package controllers

import (
	"net/http"
	"strings"

	"github.com/iota-uz/org-console/pkg/crud"
	"github.com/iota-uz/org-console/pkg/httpapi"
	"github.com/iota-uz/org-console/pkg/intl"
	"github.com/iota-uz/org-console/pkg/routing"
	"github.com/iota-uz/org-console/pkg/views"
)

func isAPI(r *http.Request) bool {
	return routing.Default().ClassifyPath(r.URL.Path) == routing.RouteClassAPI
}

func NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if isAPI(r) {
			_ = httpapi.WriteError(w, http.StatusNotFound, httpapi.CodeNotFound, "not found", map[string]string{
				"path":       r.URL.Path,
				"request_id": requestIDFromResponse(w, r),
			})
			return
		}
		if _, ok := intl.UseLocalizer(r.Context()); !ok {
			http.NotFound(w, r)
			return
		}
		tr := intl.UseTranslator(r.Context())
		msg := tr.T("Errors.NotFound")
		crud.RenderStatus(w, r, http.StatusNotFound, msg, views.ErrorPage(views.ErrorPageProps{
			Tr:      tr,
			Status:  http.StatusNotFound,
			Message: msg,
		}))
	}
}

func MethodNotAllowed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if isAPI(r) {
			_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", map[string]string{
				"method":     r.Method,
				"path":       r.URL.Path,
				"request_id": requestIDFromResponse(w, r),
			})
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func requestIDFromResponse(w http.ResponseWriter, r *http.Request) string {
	if requestID := strings.TrimSpace(w.Header().Get("X-Request-Id")); requestID != "" {
		return requestID
	}
	return strings.TrimSpace(r.Header.Get("X-Request-Id"))
}
