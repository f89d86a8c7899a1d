package position

import (
	"github.com/iota-uz/org-console/pkg/resource"
	"github.com/iota-uz/org-console/pkg/rest"
)

const Kind = "position"

type Position struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Code           string `json:"code"`
	TenantID       int64  `json:"tenantId"`
	IsActive       *bool  `json:"isActive,omitempty"`
	DepartmentID   int64  `json:"departmentId"`
	DepartmentName string `json:"departmentName,omitempty"`
}

func (p Position) Active() bool {
	return p.IsActive == nil || *p.IsActive
}

type CreatePosition struct {
	Title        string `json:"title"`
	Code         string `json:"code"`
	TenantID     int64  `json:"tenantId"`
	IsActive     bool   `json:"isActive"`
	DepartmentID int64  `json:"departmentId"`
}

type UpdatePosition struct {
	ID int64 `json:"id"`
	CreatePosition
}

// Department is the subset of a department the position form needs.
type Department struct {
	ID             int64  `json:"id"`
	DepartmentName string `json:"departmentName"`
}

var Endpoints = resource.Endpoints{
	Kind:      Kind,
	List:      "/positions/getallpositions",
	Get:       "/positions/getbyidposition",
	Create:    "/positions/createposition",
	Update:    "/positions/updateposition",
	Delete:    "/positions/deleteposition",
	IDParam:   "Id",
	Envelopes: []string{"positions"},
}

const (
	DepartmentsPath       = "/department/getalldepartment"
	TenantID        int64 = 1
)

type Client = resource.Client[Position, CreatePosition, UpdatePosition]

func NewClient(transport *rest.Client, conf resource.Config) *Client {
	return resource.NewClient[Position, CreatePosition, UpdatePosition](transport, Endpoints, conf)
}

func NewDepartmentLookup(transport *rest.Client, conf resource.Config) *resource.Lookup[Department] {
	return resource.NewLookup[Department](transport, "department", DepartmentsPath, conf.Logger, "departments")
}
