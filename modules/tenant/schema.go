package tenant

import (
	"context"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/org-console/pkg/crud"
)

// Draft is the tenant form as posted. CityID is required only when editing.
type Draft struct {
	TenantName      string `form:"tenantName" validate:"notblank"`
	InstitutionName string `form:"institutionName" validate:"notblank"`
	CityID          string `form:"cityId" validate:"selected"`
	Address         string `form:"address" validate:"notblank"`
	Phone           string `form:"phone" validate:"notblank,phone"`
	Email           string `form:"email" validate:"notblank,email_plain"`
	IsActive        bool   `form:"isActive"`
}

// CityLister fills the city select.
type CityLister interface {
	ListAll(ctx context.Context) ([]City, error)
}

type Schema struct {
	cities CityLister
	log    logrus.FieldLogger
}

func NewSchema(cities CityLister, logger logrus.FieldLogger) *Schema {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Schema{cities: cities, log: logger}
}

func (s *Schema) Kind() string {
	return Kind
}

func (s *Schema) BasePath() string {
	return Link.Href
}

func (s *Schema) ID(t Tenant) int64 {
	return t.ID
}

func (s *Schema) Messages() crud.Messages {
	return crud.Messages{
		ListTitle:          "Tenants.List.Title",
		AddTitle:           "Tenants.Add.Title",
		EditTitle:          "Tenants.Edit.Title",
		AddButton:          "Tenants.List.New",
		Empty:              "Tenants.List.Empty",
		LoadFailed:         "Tenants.List.LoadFailed",
		ConfirmOne:         "Tenants.List.ConfirmOne",
		ConfirmMany:        "Tenants.List.ConfirmMany",
		Deleted:            "Tenants.List.Deleted",
		DeleteFailed:       "Tenants.List.DeleteFailed",
		Created:            "Tenants.Form.Created",
		CreateFailed:       "Tenants.Form.CreateFailed",
		Updated:            "Tenants.Form.Updated",
		UpdateFailed:       "Tenants.Form.UpdateFailed",
		RecordDeleted:      "Tenants.Form.Deleted",
		RecordDeleteFailed: "Tenants.Form.DeleteFailed",
		FetchFailed:        "Tenants.Form.FetchFailed",
		NotFound:           "Tenants.Form.NotFound",
	}
}

func (s *Schema) Columns() []crud.Column {
	return []crud.Column{
		{Label: "Tenants.Fields.TenantName", Width: 200},
		{Label: "Tenants.Fields.InstitutionName", Width: 200},
		{Label: "Tenants.Fields.City", Width: 150},
		{Label: "Tenants.Fields.Email", Width: 200},
		{Label: "Tenants.Fields.Phone", Width: 150},
	}
}

func (s *Schema) Row(t Tenant, _ crud.Translator) []string {
	return []string{t.TenantName, t.InstitutionName, t.CityName, t.Email, t.Phone}
}

func (s *Schema) Fields() []crud.Field {
	return []crud.Field{
		{Name: "tenantName", Label: "Tenants.Fields.TenantName", Placeholder: "Tenants.Placeholders.TenantName", Kind: crud.FieldText, Required: true},
		{Name: "institutionName", Label: "Tenants.Fields.InstitutionName", Placeholder: "Tenants.Placeholders.InstitutionName", Kind: crud.FieldText, Required: true},
		{Name: "cityId", Label: "Tenants.Fields.City", Kind: crud.FieldSelect, Options: "cities"},
		{Name: "address", Label: "Tenants.Fields.Address", Placeholder: "Tenants.Placeholders.Address", Kind: crud.FieldTextArea, Required: true},
		{Name: "phone", Label: "Tenants.Fields.Phone", Placeholder: "Tenants.Placeholders.Phone", Kind: crud.FieldTel, Required: true},
		{Name: "email", Label: "Tenants.Fields.Email", Placeholder: "Tenants.Placeholders.Email", Kind: crud.FieldEmail, Required: true},
		{Name: "isActive", Label: "Tenants.Fields.IsActive", Kind: crud.FieldCheckbox, EditOnly: true},
	}
}

func (s *Schema) Empty() Draft {
	return Draft{IsActive: true}
}

func (s *Schema) FromRecord(t Tenant) Draft {
	d := Draft{
		TenantName:      t.TenantName,
		InstitutionName: t.InstitutionName,
		Address:         t.Address,
		Phone:           t.Phone,
		Email:           t.Email,
		IsActive:        t.Active(),
	}
	if t.CityID != nil && *t.CityID > 0 {
		d.CityID = strconv.FormatInt(*t.CityID, 10)
	}
	return d
}

func (s *Schema) Validate(d Draft, mode crud.Mode) []string {
	if mode == crud.ModeEdit {
		return crud.CheckStruct("Tenants", d)
	}
	return crud.CheckStruct("Tenants", d, "CityID")
}

func (s *Schema) CreatePayload(d Draft) CreateTenant {
	return CreateTenant{
		TenantName:      strings.TrimSpace(d.TenantName),
		InstitutionName: strings.TrimSpace(d.InstitutionName),
		CityID:          parseID(d.CityID),
		Address:         strings.TrimSpace(d.Address),
		Phone:           strings.TrimSpace(d.Phone),
		Email:           strings.TrimSpace(d.Email),
	}
}

func (s *Schema) UpdatePayload(id int64, d Draft, _ Tenant) UpdateTenant {
	return UpdateTenant{
		ID:              id,
		TenantName:      strings.TrimSpace(d.TenantName),
		InstitutionName: strings.TrimSpace(d.InstitutionName),
		CityID:          parseID(d.CityID),
		IsActive:        d.IsActive,
		Email:           strings.TrimSpace(d.Email),
		Address:         strings.TrimSpace(d.Address),
		Phone:           strings.TrimSpace(d.Phone),
	}
}

func (s *Schema) Options(ctx context.Context, _ int64) map[string][]crud.Option {
	options := map[string][]crud.Option{"cities": {}}
	if s.cities == nil {
		return options
	}
	cities, err := s.cities.ListAll(ctx)
	if err != nil {
		s.log.WithError(err).Warn("city lookup failed, continuing without options")
		return options
	}
	for _, c := range cities {
		options["cities"] = append(options["cities"], crud.Option{Value: strconv.FormatInt(c.ID, 10), Label: c.Name})
	}
	return options
}

// parseID reads a select value; blank or malformed input yields zero.
func parseID(v string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
