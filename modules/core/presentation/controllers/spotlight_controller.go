package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/org-console/modules/core/presentation/controllers/dtos"
	"github.com/iota-uz/org-console/pkg/application"
	"github.com/iota-uz/org-console/pkg/composables"
	"github.com/iota-uz/org-console/pkg/crud"
	"github.com/iota-uz/org-console/pkg/intl"
	"github.com/iota-uz/org-console/pkg/views"
)

type SpotlightController struct {
	app application.Application
}

func NewSpotlightController(app application.Application) application.Controller {
	return &SpotlightController{app: app}
}

func (c *SpotlightController) Key() string {
	return "/spotlight"
}

func (c *SpotlightController) Register(r *mux.Router) {
	r.HandleFunc("/spotlight", c.Search).Methods(http.MethodGet)
}

func (c *SpotlightController) Search(w http.ResponseWriter, r *http.Request) {
	query, err := composables.UseQuery(&dtos.SpotlightQuery{}, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	q := query.Q
	tr := intl.UseTranslator(r.Context())

	found := c.app.QuickLinks().Find(r.Context(), q)
	results := make([]views.SearchResult, 0, len(found))
	for _, it := range found {
		results = append(results, views.SearchResult{Label: it.Label, Link: it.Link, Icon: it.Icon})
	}
	if len(results) == 1 && r.Header.Get("Hx-Request") != "true" {
		http.Redirect(w, r, results[0].Link, http.StatusSeeOther)
		return
	}
	crud.RenderPage(w, r, tr.T("Spotlight.Title"), views.SpotlightResults(views.SpotlightProps{
		Tr:      tr,
		Query:   q,
		Results: results,
	}), nil)
}
