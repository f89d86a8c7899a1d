package department

import (
	"context"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/org-console/pkg/constants"
	"github.com/iota-uz/org-console/pkg/crud"
	"github.com/iota-uz/org-console/pkg/intl"
)

const Currency = money.SAR

type Draft struct {
	DepartmentName     string `form:"departmentName" validate:"notblank"`
	Budget             string `form:"budget" validate:"budget,positive"`
	ParentDepartmentID string `form:"parentDepartmentId"`
	ManagerID          string `form:"managerId"`
	IsActive           bool   `form:"isActive"`
}

type DepartmentLister interface {
	ListAll(ctx context.Context) ([]Department, error)
}

type ManagerLister interface {
	ListAll(ctx context.Context) ([]Manager, error)
}

type Schema struct {
	departments DepartmentLister
	managers    ManagerLister
	log         logrus.FieldLogger
}

func NewSchema(departments DepartmentLister, managers ManagerLister, logger logrus.FieldLogger) *Schema {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Schema{departments: departments, managers: managers, log: logger}
}

func (s *Schema) Kind() string {
	return Kind
}

func (s *Schema) BasePath() string {
	return Link.Href
}

func (s *Schema) ID(d Department) int64 {
	return d.ID
}

func (s *Schema) Messages() crud.Messages {
	return crud.Messages{
		ListTitle:          "Departments.List.Title",
		AddTitle:           "Departments.Add.Title",
		EditTitle:          "Departments.Edit.Title",
		AddButton:          "Departments.List.New",
		Empty:              "Departments.List.Empty",
		LoadFailed:         "Departments.List.LoadFailed",
		ConfirmOne:         "Departments.List.ConfirmOne",
		ConfirmMany:        "Departments.List.ConfirmMany",
		Deleted:            "Departments.List.Deleted",
		DeleteFailed:       "Departments.List.DeleteFailed",
		Created:            "Departments.Form.Created",
		CreateFailed:       "Departments.Form.CreateFailed",
		Updated:            "Departments.Form.Updated",
		UpdateFailed:       "Departments.Form.UpdateFailed",
		RecordDeleted:      "Departments.Form.Deleted",
		RecordDeleteFailed: "Departments.Form.DeleteFailed",
		FetchFailed:        "Departments.Form.FetchFailed",
		NotFound:           "Departments.Form.NotFound",
	}
}

func (s *Schema) Columns() []crud.Column {
	return []crud.Column{
		{Label: "Departments.Fields.DepartmentName", Width: 250},
		{Label: "Departments.Fields.Budget", Width: 150},
	}
}

func (s *Schema) Row(d Department, _ crud.Translator) []string {
	return []string{d.DepartmentName, FormatBudget(d)}
}

// FormatBudget renders the budget in riyals, rounded to halalas.
func FormatBudget(d Department) string {
	return money.New(d.Budget.Shift(2).Round(0).IntPart(), Currency).Display()
}

func (s *Schema) Fields() []crud.Field {
	return []crud.Field{
		{Name: "departmentName", Label: "Departments.Fields.DepartmentName", Kind: crud.FieldText, Required: true},
		{Name: "budget", Label: "Departments.Fields.Budget", Kind: crud.FieldNumber, Required: true},
		{Name: "parentDepartmentId", Label: "Departments.Fields.Parent", Kind: crud.FieldSelect, Options: "parents"},
		{Name: "managerId", Label: "Departments.Fields.Manager", Kind: crud.FieldSelect, Options: "managers"},
		{Name: "isActive", Label: "Departments.Fields.IsActive", Kind: crud.FieldCheckbox, EditOnly: true},
	}
}

func (s *Schema) Empty() Draft {
	return Draft{IsActive: true}
}

func (s *Schema) FromRecord(d Department) Draft {
	draft := Draft{
		DepartmentName: d.DepartmentName,
		Budget:         d.Budget.String(),
		IsActive:       d.Active(),
	}
	if d.ParentDepartmentID != nil {
		draft.ParentDepartmentID = strconv.FormatInt(*d.ParentDepartmentID, 10)
	}
	if d.ManagerID != nil {
		draft.ManagerID = strconv.FormatInt(*d.ManagerID, 10)
	}
	return draft
}

func (s *Schema) Validate(d Draft, _ crud.Mode) []string {
	return crud.CheckStruct("Departments", d)
}

func (s *Schema) CreatePayload(d Draft) CreateDepartment {
	return s.payload(d, DefaultTenantID)
}

func (s *Schema) UpdatePayload(id int64, d Draft, original Department) UpdateDepartment {
	tenantID := DefaultTenantID
	if original.TenantID != nil && *original.TenantID > 0 {
		tenantID = *original.TenantID
	}
	return UpdateDepartment{
		ID:               id,
		CreateDepartment: s.payload(d, tenantID),
		IsActive:         d.IsActive,
	}
}

func (s *Schema) payload(d Draft, tenantID int64) CreateDepartment {
	// Validate has already rejected unparsable budgets.
	budget, _ := constants.ParseAmount(d.Budget)
	return CreateDepartment{
		DepartmentName:     strings.TrimSpace(d.DepartmentName),
		TenantID:           tenantID,
		ParentDepartmentID: optionalID(d.ParentDepartmentID),
		ManagerID:          optionalID(d.ManagerID),
		Budget:             budget.InexactFloat64(),
	}
}

func (s *Schema) Options(ctx context.Context, self int64) map[string][]crud.Option {
	options := map[string][]crud.Option{"parents": {}, "managers": {}}
	if s.departments != nil {
		departments, err := s.departments.ListAll(ctx)
		if err != nil {
			s.log.WithError(err).Warn("parent department lookup failed, continuing without options")
		}
		for _, d := range departments {
			if d.ID == self {
				continue
			}
			options["parents"] = append(options["parents"], crud.Option{Value: strconv.FormatInt(d.ID, 10), Label: d.DepartmentName})
		}
	}
	if s.managers != nil {
		managers, err := s.managers.ListAll(ctx)
		if err != nil {
			s.log.WithError(err).Warn("manager lookup failed, continuing without options")
		}
		for _, m := range managers {
			options["managers"] = append(options["managers"], crud.Option{Value: strconv.FormatInt(m.ID, 10), Label: managerLabel(ctx, m)})
		}
	}
	return options
}

func managerLabel(ctx context.Context, m Manager) string {
	switch {
	case m.FullName != "":
		return m.FullName
	case m.Name != "":
		return m.Name
	}
	return intl.UseTranslator(ctx).T("Departments.ManagerFallback", map[string]interface{}{"ID": m.ID})
}

func optionalID(v string) *int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}
