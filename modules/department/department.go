package department

import (
	"github.com/shopspring/decimal"

	"github.com/iota-uz/org-console/pkg/resource"
	"github.com/iota-uz/org-console/pkg/rest"
)

const Kind = "department"

// Department is an organisational unit. Budget accepts both JSON numbers and strings.
type Department struct {
	ID                 int64           `json:"id"`
	DepartmentName     string          `json:"departmentName"`
	Budget             decimal.Decimal `json:"budget"`
	IsActive           *bool           `json:"isActive,omitempty"`
	ParentDepartmentID *int64          `json:"parentDepartmentId,omitempty"`
	ManagerID          *int64          `json:"managerId,omitempty"`
	TenantID           *int64          `json:"tenantId,omitempty"`
}

func (d Department) Active() bool {
	return d.IsActive == nil || *d.IsActive
}

type CreateDepartment struct {
	DepartmentName     string  `json:"departmentName"`
	TenantID           int64   `json:"tenantId"`
	ParentDepartmentID *int64  `json:"parentDepartmentId,omitempty"`
	ManagerID          *int64  `json:"managerId,omitempty"`
	Budget             float64 `json:"budget"`
}

type UpdateDepartment struct {
	ID int64 `json:"id"`
	CreateDepartment
	IsActive bool `json:"isActive"`
}

// Manager is a user that can head a department.
type Manager struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName,omitempty"`
	Name     string `json:"name,omitempty"`
}

var Endpoints = resource.Endpoints{
	Kind:      Kind,
	List:      "/department/getalldepartment",
	Get:       "/department/getbyiddepartment",
	Create:    "/department/createdepartment",
	Update:    "/department/updatedepartment",
	Delete:    "/department/deletedepartment",
	IDParam:   "Id",
	Envelopes: []string{"departments"},
}

const ManagersPath = "/users"

// DefaultTenantID is used when a department carries no tenant.
const DefaultTenantID int64 = 1

type Client = resource.Client[Department, CreateDepartment, UpdateDepartment]

func NewClient(transport *rest.Client, conf resource.Config) *Client {
	return resource.NewClient[Department, CreateDepartment, UpdateDepartment](transport, Endpoints, conf)
}

func NewManagerLookup(transport *rest.Client, conf resource.Config) *resource.Lookup[Manager] {
	return resource.NewLookup[Manager](transport, "manager", ManagersPath, conf.Logger, "users")
}
