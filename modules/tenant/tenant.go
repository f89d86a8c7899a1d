package tenant

import (
	"github.com/iota-uz/org-console/pkg/resource"
	"github.com/iota-uz/org-console/pkg/rest"
)

const Kind = "tenant"

// Tenant is an institution as the backend returns it.
type Tenant struct {
	ID              int64  `json:"id"`
	TenantName      string `json:"tenantName"`
	InstitutionName string `json:"institutionName"`
	CityID          *int64 `json:"cityId,omitempty"`
	CityName        string `json:"cityName,omitempty"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	IsActive        *bool  `json:"isActive,omitempty"`
}

// Active treats a missing flag as active.
func (t Tenant) Active() bool {
	return t.IsActive == nil || *t.IsActive
}

type CreateTenant struct {
	TenantName      string `json:"tenantName"`
	InstitutionName string `json:"institutionName"`
	CityID          int64  `json:"cityId"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
}

type UpdateTenant struct {
	ID              int64  `json:"id"`
	TenantName      string `json:"tenantName"`
	InstitutionName string `json:"institutionName"`
	CityID          int64  `json:"cityId"`
	IsActive        bool   `json:"isActive"`
	Email           string `json:"email"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
}

type City struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

var Endpoints = resource.Endpoints{
	Kind:      Kind,
	List:      "/tenant/getalltenants",
	Get:       "/tenant/getbyidtenant",
	Create:    "/tenant/creartetenant",
	Update:    "/tenant/updatetenant",
	Delete:    "/tenant/deletetenant",
	IDParam:   "Id",
	Envelopes: []string{"tenants"},
}

const CitiesPath = "/city/getallcities"

type Client = resource.Client[Tenant, CreateTenant, UpdateTenant]

func NewClient(transport *rest.Client, conf resource.Config) *Client {
	return resource.NewClient[Tenant, CreateTenant, UpdateTenant](transport, Endpoints, conf)
}

func NewCityLookup(transport *rest.Client, conf resource.Config) *resource.Lookup[City] {
	return resource.NewLookup[City](transport, "city", CitiesPath, conf.Logger, "cities")
}
