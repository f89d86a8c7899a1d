package position_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/org-console/modules/core"
	"github.com/iota-uz/org-console/modules/position"
	"github.com/iota-uz/org-console/pkg/itf"
)

func newEnv(t *testing.T, backend *itf.Backend) *itf.TestEnvironment {
	t.Helper()
	return itf.NewTestContext().
		WithModules(core.NewModule(nil), position.NewModule()).
		WithNavItems(position.NavItems...).
		WithBackend(backend).
		Build(t)
}

func TestPositionList_DepartmentFallback(t *testing.T) {
	backend := itf.NewBackend().Reply(http.MethodGet, "/positions/getallpositions", http.StatusOK, `{"positions":[
		{"id":1,"title":"مهندس","code":"ENG","tenantId":1,"departmentId":2,"departmentName":"تقنية المعلومات"},
		{"id":2,"title":"محاسب","code":"ACC","tenantId":1,"departmentId":5}
	]}`)
	env := newEnv(t, backend)

	env.GET(t, "/modules/positions").Do().
		AssertStatus(http.StatusOK).
		AssertContains("مهندس", "تقنية المعلومات", "محاسب", "قسم 5")
}

func TestPositionAdd_CreatesActivePosition(t *testing.T) {
	backend := itf.NewBackend().
		Reply(http.MethodGet, "/department/getalldepartment", http.StatusOK, `{"departments":[{"id":2,"departmentName":"تقنية المعلومات"}]}`).
		Reply(http.MethodPost, "/positions/createposition", http.StatusCreated, `{"id":11}`)
	env := newEnv(t, backend)

	env.GET(t, "/modules/positions/add").Do().
		AssertStatus(http.StatusOK).
		AssertContains("تقنية المعلومات").
		AssertNotContains(`name="isActive"`)

	env.POST(t, "/modules/positions/add").Form(url.Values{
		"title":        {"مهندس"},
		"code":         {"ENG"},
		"departmentId": {"2"},
	}).Do().AssertContains("تم إضافة المنصب بنجاح!")

	calls := backend.Calls(http.MethodPost, "/positions/createposition")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"title":"مهندس","code":"ENG","tenantId":1,"isActive":true,"departmentId":2}`, calls[0])
}

func TestPositionAdd_MissingDepartment(t *testing.T) {
	backend := itf.NewBackend().Reply(http.MethodGet, "/department/getalldepartment", http.StatusOK, `[]`)
	env := newEnv(t, backend)

	env.POST(t, "/modules/positions/add").Form(url.Values{
		"title": {"مهندس"},
		"code":  {"ENG"},
	}).Do().AssertContains("يرجى اختيار القسم")
	assert.Empty(t, backend.Calls(http.MethodPost, "/positions/createposition"))
}

func TestPositionList_BatchDelete(t *testing.T) {
	backend := itf.NewBackend().
		Reply(http.MethodGet, "/positions/getallpositions", http.StatusOK, `[{"id":1,"title":"A","code":"A"},{"id":2,"title":"B","code":"B"},{"id":3,"title":"C","code":"C"}]`).
		Reply(http.MethodDelete, "/positions/deleteposition", http.StatusOK, ``)
	env := newEnv(t, backend)

	env.GET(t, "/modules/positions").Do().AssertStatus(http.StatusOK)
	env.POST(t, "/modules/positions/select/1").Form(url.Values{}).Do()
	env.POST(t, "/modules/positions/select/3").Form(url.Values{}).Do()
	env.POST(t, "/modules/positions/delete").Form(url.Values{}).Do().
		AssertContains("هل أنت متأكد من حذف 2 مناصب؟")
	env.POST(t, "/modules/positions/delete/confirm").Form(url.Values{}).Do().
		AssertContains("تم حذف 2 منصب بنجاح")

	assert.ElementsMatch(t, []string{"Id=1", "Id=3"}, backend.Queries(http.MethodDelete, "/positions/deleteposition"))
}
