package core

import (
	"github.com/iota-uz/org-console/pkg/types"
)

var HomeLink = types.NavigationItem{
	Name:     "NavigationLinks.Home",
	Icon:     "⌂",
	Href:     "/",
	Children: nil,
}

var FavoritesLink = types.NavigationItem{
	Name:     "NavigationLinks.Favorites",
	Icon:     "★",
	Href:     "/favorites",
	Children: nil,
}

var NavItems = []types.NavigationItem{
	HomeLink,
	FavoritesLink,
}
