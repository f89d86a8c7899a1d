package favorites

import (
	"context"

	"github.com/pkg/errors"

	"github.com/iota-uz/org-console/pkg/configuration"
)

// OpenSlot builds the slot selected by FAVORITES_STORAGE.
func OpenSlot(ctx context.Context, conf *configuration.Configuration) (Slot, error) {
	opts := conf.Favorites
	switch opts.Storage {
	case configuration.FavoritesFile:
		return NewFileSlot(opts.Path), nil
	case configuration.FavoritesSQLite:
		return OpenSQLiteSlot(ctx, opts.SQLitePath, opts.Key)
	case configuration.FavoritesRedis:
		return OpenRedisSlot(ctx, conf.RedisURL, opts.Key)
	case configuration.FavoritesMemory:
		return NewMemorySlot(nil), nil
	default:
		return nil, errors.Errorf("favorites: unknown storage %q", opts.Storage)
	}
}
