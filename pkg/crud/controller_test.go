package crud

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/iota-uz/go-i18n/v2/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/iota-uz/org-console/pkg/intl"
	"github.com/iota-uz/org-console/pkg/resource"
)

func newTestRouter(t *testing.T, res *fakeWidgets) *mux.Router {
	t.Helper()
	bundle := intl.NewBundle(language.Arabic)
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := intl.WithLocalizer(req.Context(), i18n.NewLocalizer(bundle, "ar"))
			ctx = WithSession(ctx, "test-session")
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	c := NewController[widget, widgetPayload, widgetPayload, widgetDraft](
		&widgetSchema{}, res, NewRegistry(16, time.Minute), testOptions(nil),
	)
	c.Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestController_ListRendersRows(t *testing.T) {
	router := newTestRouter(t, &fakeWidgets{items: sampleWidgets()})

	rec := do(t, router, http.MethodGet, "/modules/widgets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "alpha")
	assert.Contains(t, body, "/modules/widgets/edit/4")
	assert.Contains(t, body, `dir="rtl"`)
}

func TestController_BatchDeleteFlow(t *testing.T) {
	res := &fakeWidgets{items: sampleWidgets()}
	router := newTestRouter(t, res)

	require.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/modules/widgets", nil).Code)
	do(t, router, http.MethodPost, "/modules/widgets/select/1", url.Values{})
	do(t, router, http.MethodPost, "/modules/widgets/select/2", url.Values{})

	rec := do(t, router, http.MethodPost, "/modules/widgets/delete", url.Values{})
	assert.Contains(t, rec.Body.String(), `role="dialog"`)

	rec = do(t, router, http.MethodPost, "/modules/widgets/delete/confirm", url.Values{})
	body := rec.Body.String()
	assert.Contains(t, body, "Widgets.List.Deleted")
	assert.NotContains(t, body, "/modules/widgets/edit/1\"")
	assert.Contains(t, body, "/modules/widgets/edit/3")
	require.Len(t, res.deleteCalls, 1)
	assert.Equal(t, []int64{1, 2}, res.deleteCalls[0])
	assert.Equal(t, 1, res.listCalls)
}

func TestController_EditMissingRecordRendersErrorPanel(t *testing.T) {
	router := newTestRouter(t, &fakeWidgets{})

	rec := do(t, router, http.MethodGet, "/modules/widgets/edit/404", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "error-panel")
	assert.Contains(t, body, "Widgets.Form.NotFound")
	assert.Contains(t, body, "Common.Retry")
	assert.Contains(t, body, "Common.BackToList")
	assert.NotContains(t, body, `name="name"`)
}

func TestController_CreateWithInvalidDraftMakesNoCall(t *testing.T) {
	res := &fakeWidgets{}
	router := newTestRouter(t, res)

	rec := do(t, router, http.MethodPost, "/modules/widgets/add", url.Values{"name": {""}, "budget": {"abc"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Widgets.Validation.Name.notblank")
	assert.Contains(t, body, "Widgets.Validation.Budget.budget")
	assert.Empty(t, res.created)
}

func TestController_CreateSuccessSchedulesRedirect(t *testing.T) {
	res := &fakeWidgets{createRes: resource.MutationResult[widget]{Success: true}}
	router := newTestRouter(t, res)

	rec := do(t, router, http.MethodPost, "/modules/widgets/add", url.Values{"name": {"alpha"}, "budget": {"12.5"}})
	body := rec.Body.String()
	assert.Contains(t, body, "Widgets.Form.Created")
	assert.Contains(t, body, `http-equiv="refresh"`)
	assert.Contains(t, body, "2000")
	require.Len(t, res.created, 1)
	assert.Equal(t, "alpha", res.created[0].Name)
}
