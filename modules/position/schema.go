package position

import (
	"context"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/org-console/pkg/crud"
)

type Draft struct {
	Title        string `form:"title" validate:"notblank"`
	Code         string `form:"code" validate:"notblank"`
	DepartmentID string `form:"departmentId" validate:"selected"`
	IsActive     bool   `form:"isActive"`
}

type DepartmentLister interface {
	ListAll(ctx context.Context) ([]Department, error)
}

type Schema struct {
	departments DepartmentLister
	log         logrus.FieldLogger
}

func NewSchema(departments DepartmentLister, logger logrus.FieldLogger) *Schema {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Schema{departments: departments, log: logger}
}

func (s *Schema) Kind() string {
	return Kind
}

func (s *Schema) BasePath() string {
	return Link.Href
}

func (s *Schema) ID(p Position) int64 {
	return p.ID
}

func (s *Schema) Messages() crud.Messages {
	return crud.Messages{
		ListTitle:          "Positions.List.Title",
		AddTitle:           "Positions.Add.Title",
		EditTitle:          "Positions.Edit.Title",
		AddButton:          "Positions.List.New",
		Empty:              "Positions.List.Empty",
		LoadFailed:         "Positions.List.LoadFailed",
		ConfirmOne:         "Positions.List.ConfirmOne",
		ConfirmMany:        "Positions.List.ConfirmMany",
		Deleted:            "Positions.List.Deleted",
		DeleteFailed:       "Positions.List.DeleteFailed",
		Created:            "Positions.Form.Created",
		CreateFailed:       "Positions.Form.CreateFailed",
		Updated:            "Positions.Form.Updated",
		UpdateFailed:       "Positions.Form.UpdateFailed",
		RecordDeleted:      "Positions.Form.Deleted",
		RecordDeleteFailed: "Positions.Form.DeleteFailed",
		FetchFailed:        "Positions.Form.FetchFailed",
		NotFound:           "Positions.Form.NotFound",
	}
}

func (s *Schema) Columns() []crud.Column {
	return []crud.Column{
		{Label: "Positions.Fields.Title", Width: 250},
		{Label: "Positions.Fields.Code", Width: 150},
		{Label: "Positions.Fields.Department", Width: 200},
	}
}

func (s *Schema) Row(p Position, tr crud.Translator) []string {
	department := p.DepartmentName
	if department == "" {
		department = tr.T("Positions.DepartmentFallback", map[string]interface{}{"ID": p.DepartmentID})
	}
	return []string{p.Title, p.Code, department}
}

func (s *Schema) Fields() []crud.Field {
	return []crud.Field{
		{Name: "title", Label: "Positions.Fields.Title", Kind: crud.FieldText, Required: true},
		{Name: "code", Label: "Positions.Fields.Code", Kind: crud.FieldText, Required: true},
		{Name: "departmentId", Label: "Positions.Fields.Department", Kind: crud.FieldSelect, Options: "departments", Required: true},
		{Name: "isActive", Label: "Positions.Fields.IsActive", Kind: crud.FieldCheckbox, EditOnly: true},
	}
}

func (s *Schema) Empty() Draft {
	return Draft{IsActive: true}
}

func (s *Schema) FromRecord(p Position) Draft {
	d := Draft{Title: p.Title, Code: p.Code, IsActive: p.Active()}
	if p.DepartmentID > 0 {
		d.DepartmentID = strconv.FormatInt(p.DepartmentID, 10)
	}
	return d
}

func (s *Schema) Validate(d Draft, _ crud.Mode) []string {
	return crud.CheckStruct("Positions", d)
}

// CreatePayload always creates active positions.
func (s *Schema) CreatePayload(d Draft) CreatePosition {
	p := s.payload(d)
	p.IsActive = true
	return p
}

func (s *Schema) UpdatePayload(id int64, d Draft, _ Position) UpdatePosition {
	return UpdatePosition{ID: id, CreatePosition: s.payload(d)}
}

func (s *Schema) payload(d Draft) CreatePosition {
	departmentID, _ := strconv.ParseInt(strings.TrimSpace(d.DepartmentID), 10, 64)
	return CreatePosition{
		Title:        strings.TrimSpace(d.Title),
		Code:         strings.TrimSpace(d.Code),
		TenantID:     TenantID,
		IsActive:     d.IsActive,
		DepartmentID: departmentID,
	}
}

func (s *Schema) Options(ctx context.Context, _ int64) map[string][]crud.Option {
	options := map[string][]crud.Option{"departments": {}}
	if s.departments == nil {
		return options
	}
	departments, err := s.departments.ListAll(ctx)
	if err != nil {
		s.log.WithError(err).Warn("department lookup failed, continuing without options")
		return options
	}
	for _, d := range departments {
		options["departments"] = append(options["departments"], crud.Option{Value: strconv.FormatInt(d.ID, 10), Label: d.DepartmentName})
	}
	return options
}
