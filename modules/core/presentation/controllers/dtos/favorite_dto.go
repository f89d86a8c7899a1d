package dtos

import (
	"time"

	"github.com/iota-uz/org-console/pkg/favorites"
)

type FavoriteDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	Icon      string `json:"icon,omitempty"`
	Type      string `json:"type"`
	DateAdded string `json:"dateAdded"`
}

func FavoriteToDTO(e favorites.Entry) FavoriteDTO {
	return FavoriteDTO{
		ID:        e.ID,
		Name:      e.Name,
		Path:      e.Path,
		Icon:      e.Icon,
		Type:      e.Type,
		DateAdded: e.DateAdded.Format(time.RFC3339),
	}
}

func FavoritesToDTOs(entries []favorites.Entry) []FavoriteDTO {
	out := make([]FavoriteDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, FavoriteToDTO(e))
	}
	return out
}

type CreateFavoriteDTO struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required"`
	Path string `json:"path" validate:"required_without=ID"`
	Icon string `json:"icon"`
	Type string `json:"type"`
}

func (d CreateFavoriteDTO) ToItem() favorites.Item {
	return favorites.Item{ID: d.ID, Name: d.Name, Path: d.Path, Icon: d.Icon, Type: d.Type}
}

type FavoriteListResponse struct {
	Favorites []FavoriteDTO `json:"favorites"`
}

type FavoriteMutationResponse struct {
	// Changed is false when the add was a no-op or the remove found nothing.
	Changed   bool   `json:"changed"`
	Favorite  bool   `json:"favorite"`
	Key       string `json:"key"`
	Favorites int    `json:"count"`
}
