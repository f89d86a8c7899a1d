package types

type NavigationItem struct {
	Name     string
	Href     string
	Icon     string
	Children []NavigationItem
	// Favoritable items get a star toggle in the sidebar.
	Favoritable bool
}

// Flatten returns the item and its descendants depth first.
func Flatten(items []NavigationItem) []NavigationItem {
	var out []NavigationItem
	for _, item := range items {
		out = append(out, item)
		out = append(out, Flatten(item.Children)...)
	}
	return out
}
