package tenant_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/org-console/modules/core"
	"github.com/iota-uz/org-console/modules/tenant"
	"github.com/iota-uz/org-console/pkg/itf"
)

const tenantsJSON = `{"tenants":[
	{"id":1,"tenantName":"Acme","institutionName":"Acme Holdings","cityName":"الرياض","address":"a","phone":"0501234567","email":"a@acme.sa"},
	{"id":2,"tenantName":"Globex","institutionName":"Globex LLC","address":"b","phone":"0501234568","email":"b@globex.sa","isActive":false}
]}`

func newEnv(t *testing.T, backend *itf.Backend) *itf.TestEnvironment {
	t.Helper()
	return itf.NewTestContext().
		WithModules(core.NewModule(nil), tenant.NewModule()).
		WithNavItems(tenant.NavItems...).
		WithBackend(backend).
		Build(t)
}

func TestTenantList_RendersArabicGrid(t *testing.T) {
	backend := itf.NewBackend().Reply(http.MethodGet, "/tenant/getalltenants", http.StatusOK, tenantsJSON)
	env := newEnv(t, backend)

	env.GET(t, "/modules/tenant").Do().
		AssertStatus(http.StatusOK).
		AssertContains(`dir="rtl"`, "اسم المؤسسة", "Acme", "Globex", "/modules/tenant/edit/2", "مؤسسة جديدة")
}

func TestTenantAdd_ValidationJoinsMessages(t *testing.T) {
	backend := itf.NewBackend().Reply(http.MethodGet, "/city/getallcities", http.StatusOK, `[{"id":1,"name":"الرياض"}]`)
	env := newEnv(t, backend)

	env.GET(t, "/modules/tenant/add").Do().AssertStatus(http.StatusOK).AssertContains("الرياض")
	env.POST(t, "/modules/tenant/add").Form(url.Values{
		"tenantName": {""},
		"phone":      {"123"},
	}).Do().AssertContains("اسم المؤسسة مطلوب، اسم المنشأة مطلوب")

	assert.Empty(t, backend.Calls(http.MethodPost, "/tenant/creartetenant"))
}

func TestTenantAdd_PostsTrimmedPayload(t *testing.T) {
	backend := itf.NewBackend().
		Reply(http.MethodGet, "/city/getallcities", http.StatusOK, `[]`).
		Reply(http.MethodPost, "/tenant/creartetenant", http.StatusOK, `{"id":9}`)
	env := newEnv(t, backend)

	env.POST(t, "/modules/tenant/add").Form(url.Values{
		"tenantName":      {" Acme "},
		"institutionName": {"Acme Holdings"},
		"address":         {"Riyadh"},
		"phone":           {"0501234567"},
		"email":           {"info@acme.sa"},
	}).Do().AssertContains("تم إضافة المؤسسة بنجاح!")

	calls := backend.Calls(http.MethodPost, "/tenant/creartetenant")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"tenantName":"Acme","institutionName":"Acme Holdings","cityId":0,"address":"Riyadh","phone":"0501234567","email":"info@acme.sa"}`, calls[0])
}

func TestTenantEdit_MissingRecordShowsErrorPanel(t *testing.T) {
	backend := itf.NewBackend().
		Reply(http.MethodGet, "/city/getallcities", http.StatusOK, `[]`).
		Reply(http.MethodGet, "/tenant/getbyidtenant", http.StatusNotFound, `{"message":"not found"}`)
	env := newEnv(t, backend)

	env.GET(t, "/modules/tenant/edit/44").Do().
		AssertStatus(http.StatusOK).
		AssertContains("error-panel", "فشل في تحميل بيانات المؤسسة", "إعادة المحاولة").
		AssertNotContains(`name="tenantName"`)
	assert.Equal(t, []string{"Id=44"}, backend.Queries(http.MethodGet, "/tenant/getbyidtenant"))
}
