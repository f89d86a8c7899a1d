package dtos

// SpotlightQuery is the quick search request.
type SpotlightQuery struct {
	Q string `form:"q"`
}

type FavoritesPageQuery struct {
	Status string `form:"status"`
}

// ToggleFavoriteQuery identifies the link behind a sidebar or record star.
type ToggleFavoriteQuery struct {
	Path string `form:"path"`
	Name string `form:"name"`
	Type string `form:"type"`
}

type RemoveFavoriteForm struct {
	Key string `form:"key"`
}

type FavoriteListQuery struct {
	Type string `form:"type"`
	Key  string `form:"key"`
}
