package position

import (
	"github.com/iota-uz/org-console/pkg/types"
)

var Link = types.NavigationItem{
	Name:        "NavigationLinks.Positions",
	Icon:        "💼",
	Href:        "/modules/positions",
	Favoritable: true,
}

var NavItems = []types.NavigationItem{Link}
