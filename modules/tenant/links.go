package tenant

import (
	"github.com/iota-uz/org-console/pkg/types"
)

var Link = types.NavigationItem{
	Name:        "NavigationLinks.Tenants",
	Icon:        "🏛",
	Href:        "/modules/tenant",
	Favoritable: true,
}

var NavItems = []types.NavigationItem{Link}
