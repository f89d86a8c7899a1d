package department

import (
	"context"
	"errors"
	"testing"

	"github.com/Rhymond/go-money"
	"github.com/iota-uz/go-i18n/v2/i18n"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/iota-uz/org-console/pkg/crud"
	"github.com/iota-uz/org-console/pkg/intl"
	"github.com/iota-uz/org-console/pkg/logging"
)

type stubDepartments struct {
	items []Department
	err   error
}

func (s stubDepartments) ListAll(context.Context) ([]Department, error) {
	return s.items, s.err
}

type stubManagers struct {
	items []Manager
	err   error
}

func (s stubManagers) ListAll(context.Context) ([]Manager, error) {
	return s.items, s.err
}

func arabicContext(t *testing.T) context.Context {
	t.Helper()
	bundle := intl.NewBundle(language.Arabic)
	require.NoError(t, intl.LoadMessages(bundle, LocaleFiles))
	return intl.WithLocalizer(context.Background(), i18n.NewLocalizer(bundle, "ar"))
}

func int64Ptr(v int64) *int64 {
	return &v
}

func TestSchema_BudgetRules(t *testing.T) {
	s := NewSchema(nil, nil, logging.DiscardLogger())
	cases := []struct {
		budget string
		want   []string
	}{
		{"", []string{"Departments.Validation.Budget.budget"}},
		{"abc", []string{"Departments.Validation.Budget.budget"}},
		{"0", []string{"Departments.Validation.Budget.positive"}},
		{"-10", []string{"Departments.Validation.Budget.positive"}},
		{"1e400", []string{"Departments.Validation.Budget.budget"}},
		{"10000000000000000", []string{"Departments.Validation.Budget.budget"}},
		{" 1500.50 ", nil},
	}
	for _, tc := range cases {
		got := s.Validate(Draft{DepartmentName: "HR", Budget: tc.budget}, crud.ModeCreate)
		assert.Equal(t, tc.want, got, "budget %q", tc.budget)
	}
}

func TestSchema_ValidationCollectsAllFields(t *testing.T) {
	s := NewSchema(nil, nil, logging.DiscardLogger())
	assert.Equal(t, []string{
		"Departments.Validation.DepartmentName.notblank",
		"Departments.Validation.Budget.budget",
	}, s.Validate(Draft{DepartmentName: "   "}, crud.ModeEdit))
}

func TestSchema_CreatePayloadUsesDefaultTenant(t *testing.T) {
	s := NewSchema(nil, nil, logging.DiscardLogger())
	p := s.CreatePayload(Draft{DepartmentName: " HR ", Budget: "2500.75", ManagerID: "9"})
	assert.Equal(t, CreateDepartment{
		DepartmentName: "HR",
		TenantID:       DefaultTenantID,
		ManagerID:      int64Ptr(9),
		Budget:         2500.75,
	}, p)
}

func TestSchema_UpdatePayloadKeepsRecordTenant(t *testing.T) {
	s := NewSchema(nil, nil, logging.DiscardLogger())
	d := Draft{DepartmentName: "Ops", Budget: "10", ParentDepartmentID: "3", IsActive: false}

	up := s.UpdatePayload(5, d, Department{ID: 5, TenantID: int64Ptr(4)})
	assert.Equal(t, int64(5), up.ID)
	assert.Equal(t, int64(4), up.TenantID)
	assert.Equal(t, int64Ptr(3), up.ParentDepartmentID)
	assert.Nil(t, up.ManagerID)
	assert.False(t, up.IsActive)

	up = s.UpdatePayload(5, d, Department{ID: 5})
	assert.Equal(t, DefaultTenantID, up.TenantID)
}

func TestSchema_FromRecord(t *testing.T) {
	s := NewSchema(nil, nil, logging.DiscardLogger())
	d := s.FromRecord(Department{
		DepartmentName:     "Finance",
		Budget:             decimal.RequireFromString("1200.5"),
		ParentDepartmentID: int64Ptr(2),
	})
	assert.Equal(t, Draft{DepartmentName: "Finance", Budget: "1200.5", ParentDepartmentID: "2", IsActive: true}, d)
}

func TestSchema_OptionsExcludeSelfAndLabelManagers(t *testing.T) {
	s := NewSchema(
		stubDepartments{items: []Department{{ID: 1, DepartmentName: "HR"}, {ID: 2, DepartmentName: "IT"}, {ID: 3, DepartmentName: "Ops"}}},
		stubManagers{items: []Manager{{ID: 7, FullName: "Sara Ali", Name: "sara"}, {ID: 8, Name: "omar"}, {ID: 9}}},
		logging.DiscardLogger(),
	)

	opts := s.Options(arabicContext(t), 2)
	assert.Equal(t, []crud.Option{{Value: "1", Label: "HR"}, {Value: "3", Label: "Ops"}}, opts["parents"])
	assert.Equal(t, []crud.Option{
		{Value: "7", Label: "Sara Ali"},
		{Value: "8", Label: "omar"},
		{Value: "9", Label: "مدير 9"},
	}, opts["managers"])
}

func TestSchema_OptionsSurviveLookupFailures(t *testing.T) {
	s := NewSchema(stubDepartments{err: errors.New("down")}, stubManagers{err: errors.New("down")}, logging.DiscardLogger())
	opts := s.Options(context.Background(), 0)
	assert.Empty(t, opts["parents"])
	assert.Empty(t, opts["managers"])
}

func TestFormatBudget(t *testing.T) {
	d := Department{Budget: decimal.RequireFromString("1500.456")}
	assert.Equal(t, money.New(150046, money.SAR).Display(), FormatBudget(d))
}
