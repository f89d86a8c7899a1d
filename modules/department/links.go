package department

import (
	"github.com/iota-uz/org-console/pkg/types"
)

var Link = types.NavigationItem{
	Name:        "NavigationLinks.Departments",
	Icon:        "🏢",
	Href:        "/modules/departments",
	Favoritable: true,
}

var NavItems = []types.NavigationItem{Link}
